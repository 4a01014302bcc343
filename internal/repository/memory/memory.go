// Package memory is an in-process repository.Store.
//
// It exists for tests and for `store.driver: memory` when poking at the
// API locally. Nothing survives a restart, so it is never a production choice.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/ijwihub/studio-cms/internal/apperror"
	"github.com/ijwihub/studio-cms/internal/model"
	"github.com/ijwihub/studio-cms/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store keeps every collection in maps guarded by one mutex. Slices of ids
// remember insertion order for List.
type Store struct {
	mu sync.RWMutex

	services     map[string]model.Service
	serviceOrder []string
	works        map[string]model.PortfolioWork
	workOrder    []string
	admins       map[string]model.Admin // keyed by id
	sessions     map[string]model.Session

	// Err, when set, is returned (wrapped as a store error) by every call.
	// Tests use it to simulate the database going away.
	Err error
}

func New() *Store {
	return &Store{
		services: make(map[string]model.Service),
		works:    make(map[string]model.PortfolioWork),
		admins:   make(map[string]model.Admin),
		sessions: make(map[string]model.Session),
	}
}

func (s *Store) fail(op string) error {
	if s.Err != nil {
		return apperror.Store(op, s.Err)
	}
	return nil
}

func (s *Store) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fail("ping")
}

func (s *Store) Close() error { return nil }

// =========================================================================
// SERVICES
// =========================================================================

func (s *Store) CreateService(_ context.Context, svc *model.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("creating service"); err != nil {
		return err
	}

	svc.ID = xid.New().String()
	now := time.Now().UTC()
	svc.CreatedAt, svc.UpdatedAt = now, now
	if svc.Features == nil {
		svc.Features = []string{}
	}
	s.services[svc.ID] = cloneService(*svc)
	s.serviceOrder = append(s.serviceOrder, svc.ID)
	return nil
}

func (s *Store) GetService(_ context.Context, id string) (*model.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fail("getting service"); err != nil {
		return nil, err
	}

	svc, ok := s.services[id]
	if !ok {
		return nil, apperror.NotFound("service", id)
	}
	out := cloneService(svc)
	return &out, nil
}

func (s *Store) ListServices(context.Context) ([]model.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fail("listing services"); err != nil {
		return nil, err
	}

	out := make([]model.Service, 0, len(s.serviceOrder))
	for _, id := range s.serviceOrder {
		out = append(out, cloneService(s.services[id]))
	}
	return out, nil
}

func (s *Store) UpdateService(_ context.Context, svc *model.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("updating service"); err != nil {
		return err
	}

	old, ok := s.services[svc.ID]
	if !ok {
		return apperror.NotFound("service", svc.ID)
	}
	svc.CreatedAt = old.CreatedAt
	svc.UpdatedAt = time.Now().UTC()
	s.services[svc.ID] = cloneService(*svc)
	return nil
}

func (s *Store) DeleteService(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("deleting service"); err != nil {
		return err
	}

	if _, ok := s.services[id]; !ok {
		return apperror.NotFound("service", id)
	}
	delete(s.services, id)
	s.serviceOrder = without(s.serviceOrder, id)
	return nil
}

// =========================================================================
// PORTFOLIO
// =========================================================================

func (s *Store) CreateWork(_ context.Context, work *model.PortfolioWork) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("creating portfolio work"); err != nil {
		return err
	}

	work.ID = xid.New().String()
	now := time.Now().UTC()
	work.CreatedAt, work.UpdatedAt = now, now
	s.works[work.ID] = *work
	s.workOrder = append(s.workOrder, work.ID)
	return nil
}

func (s *Store) GetWork(_ context.Context, id string) (*model.PortfolioWork, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fail("getting portfolio work"); err != nil {
		return nil, err
	}

	work, ok := s.works[id]
	if !ok {
		return nil, apperror.NotFound("portfolio work", id)
	}
	return &work, nil
}

func (s *Store) ListWorks(context.Context) ([]model.PortfolioWork, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fail("listing portfolio works"); err != nil {
		return nil, err
	}

	out := make([]model.PortfolioWork, 0, len(s.workOrder))
	for _, id := range s.workOrder {
		out = append(out, s.works[id])
	}
	return out, nil
}

func (s *Store) UpdateWork(_ context.Context, work *model.PortfolioWork) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("updating portfolio work"); err != nil {
		return err
	}

	old, ok := s.works[work.ID]
	if !ok {
		return apperror.NotFound("portfolio work", work.ID)
	}
	work.CreatedAt = old.CreatedAt
	work.UpdatedAt = time.Now().UTC()
	s.works[work.ID] = *work
	return nil
}

func (s *Store) DeleteWork(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("deleting portfolio work"); err != nil {
		return err
	}

	if _, ok := s.works[id]; !ok {
		return apperror.NotFound("portfolio work", id)
	}
	delete(s.works, id)
	s.workOrder = without(s.workOrder, id)
	return nil
}

// =========================================================================
// ADMINS
// =========================================================================

func (s *Store) UpsertAdmin(_ context.Context, admin *model.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("upserting admin"); err != nil {
		return err
	}

	if admin.Role == "" {
		admin.Role = model.RoleAdmin
	}
	now := time.Now().UTC()
	for id, existing := range s.admins {
		if existing.Email == admin.Email {
			admin.ID = id
			admin.CreatedAt = existing.CreatedAt
			admin.UpdatedAt = now
			s.admins[id] = *admin
			return nil
		}
	}

	admin.ID = xid.New().String()
	admin.CreatedAt, admin.UpdatedAt = now, now
	s.admins[admin.ID] = *admin
	return nil
}

func (s *Store) GetAdminByEmail(_ context.Context, email string) (*model.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fail("getting admin by email"); err != nil {
		return nil, err
	}

	for _, a := range s.admins {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, apperror.NotFound("admin", email)
}

func (s *Store) GetAdminByID(_ context.Context, id string) (*model.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fail("getting admin"); err != nil {
		return nil, err
	}

	a, ok := s.admins[id]
	if !ok {
		return nil, apperror.NotFound("admin", id)
	}
	return &a, nil
}

func (s *Store) ListAdmins(context.Context) ([]model.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fail("listing admins"); err != nil {
		return nil, err
	}

	out := make([]model.Admin, 0, len(s.admins))
	for _, a := range s.admins {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// =========================================================================
// SESSIONS
// =========================================================================

func (s *Store) CreateSession(_ context.Context, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("creating session"); err != nil {
		return err
	}
	if _, ok := s.admins[sess.AdminID]; !ok {
		return apperror.Store("creating session", apperror.NotFound("admin", sess.AdminID))
	}
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *Store) GetSession(_ context.Context, id string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fail("getting session"); err != nil {
		return nil, err
	}

	sess, ok := s.sessions[id]
	if !ok {
		return nil, apperror.NotFound("session", id)
	}
	return &sess, nil
}

func (s *Store) ExtendSession(_ context.Context, id string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("extending session"); err != nil {
		return err
	}

	sess, ok := s.sessions[id]
	if !ok || sess.RevokedAt != nil {
		return apperror.NotFound("session", id)
	}
	sess.ExpiresAt = expiresAt
	s.sessions[id] = sess
	return nil
}

func (s *Store) RevokeSession(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("revoking session"); err != nil {
		return err
	}

	sess, ok := s.sessions[id]
	if !ok || sess.RevokedAt != nil {
		return nil
	}
	sess.RevokedAt = &at
	s.sessions[id] = sess
	return nil
}

func (s *Store) PurgeSessions(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("purging sessions"); err != nil {
		return 0, err
	}

	var n int64
	for id, sess := range s.sessions {
		if sess.ExpiresAt.Before(cutoff) || (sess.RevokedAt != nil && sess.RevokedAt.Before(cutoff)) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

func cloneService(svc model.Service) model.Service {
	svc.Features = append([]string{}, svc.Features...)
	return svc
}

func without(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
