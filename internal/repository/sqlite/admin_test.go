package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ijwihub/studio-cms/internal/apperror"
	"github.com/ijwihub/studio-cms/internal/model"
)

func createTestAdmin(t *testing.T, db *DB, email string) *model.Admin {
	t.Helper()
	admin := &model.Admin{Email: email, PasswordHash: "$2a$04$fakehashfakehashfakehashfakehashfakehashfakehashfake"}
	if err := db.UpsertAdmin(context.Background(), admin); err != nil {
		t.Fatalf("failed to create test admin: %v", err)
	}
	return admin
}

// =========================================================================
// ADMINS
// =========================================================================

func TestUpsertAdmin_New(t *testing.T) {
	db := newTestDB(t)
	admin := createTestAdmin(t, db, "info@ijwihub.com")

	if admin.ID == "" {
		t.Error("UpsertAdmin() did not set ID")
	}
	if admin.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want default %q", admin.Role, model.RoleAdmin)
	}

	found, err := db.GetAdminByEmail(context.Background(), "info@ijwihub.com")
	if err != nil {
		t.Fatalf("GetAdminByEmail() error = %v", err)
	}
	if found.ID != admin.ID {
		t.Errorf("ID = %q, want %q", found.ID, admin.ID)
	}
}

func TestUpsertAdmin_ExistingKeepsID(t *testing.T) {
	db := newTestDB(t)
	first := createTestAdmin(t, db, "info@ijwihub.com")

	second := &model.Admin{Email: "info@ijwihub.com", PasswordHash: "new-hash"}
	if err := db.UpsertAdmin(context.Background(), second); err != nil {
		t.Fatalf("UpsertAdmin() second: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("UpsertAdmin() changed ID: got %q, want %q", second.ID, first.ID)
	}

	found, err := db.GetAdminByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("GetAdminByID() error = %v", err)
	}
	if found.PasswordHash != "new-hash" {
		t.Errorf("PasswordHash = %q, want replaced hash", found.PasswordHash)
	}

	admins, err := db.ListAdmins(context.Background())
	if err != nil {
		t.Fatalf("ListAdmins() error = %v", err)
	}
	if len(admins) != 1 {
		t.Errorf("ListAdmins() returned %d, want 1", len(admins))
	}
}

func TestGetAdmin_NotFound(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.GetAdminByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetAdminByEmail() error = %v, want ErrNotFound", err)
	}
	if _, err := db.GetAdminByID(context.Background(), "nope"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetAdminByID() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// SESSIONS
// =========================================================================

func newTestSession(t *testing.T, db *DB, adminID, id string, expiresAt time.Time) *model.Session {
	t.Helper()
	s := &model.Session{
		ID:        id,
		AdminID:   adminID,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		ExpiresAt: expiresAt.UTC().Truncate(time.Second),
	}
	if err := db.CreateSession(context.Background(), s); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	return s
}

func TestSessionCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	admin := createTestAdmin(t, db, "a@example.com")
	created := newTestSession(t, db, admin.ID, "sess-1", time.Now().Add(time.Hour))

	found, err := db.GetSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if found.AdminID != admin.ID {
		t.Errorf("AdminID = %q, want %q", found.AdminID, admin.ID)
	}
	if !found.ExpiresAt.Equal(created.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", found.ExpiresAt, created.ExpiresAt)
	}
	if found.RevokedAt != nil {
		t.Error("new session should not be revoked")
	}
}

func TestSessionRevoke(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	admin := createTestAdmin(t, db, "a@example.com")
	newTestSession(t, db, admin.ID, "sess-1", time.Now().Add(time.Hour))

	first := time.Now().Add(-time.Minute)
	if err := db.RevokeSession(ctx, "sess-1", first); err != nil {
		t.Fatalf("RevokeSession() error = %v", err)
	}
	// second revoke keeps the first timestamp
	if err := db.RevokeSession(ctx, "sess-1", time.Now()); err != nil {
		t.Fatalf("RevokeSession() again error = %v", err)
	}

	found, err := db.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if found.RevokedAt == nil || found.RevokedAt.Unix() != first.Unix() {
		t.Errorf("RevokedAt = %v, want %v", found.RevokedAt, first)
	}
	if found.Active(time.Now()) {
		t.Error("revoked session reported active")
	}

	// revoked sessions cannot be extended
	if err := db.ExtendSession(ctx, "sess-1", time.Now().Add(2*time.Hour)); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("ExtendSession() on revoked error = %v, want ErrNotFound", err)
	}
}

func TestSessionExtend(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	admin := createTestAdmin(t, db, "a@example.com")
	newTestSession(t, db, admin.ID, "sess-1", time.Now().Add(time.Minute))

	later := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	if err := db.ExtendSession(ctx, "sess-1", later); err != nil {
		t.Fatalf("ExtendSession() error = %v", err)
	}
	found, err := db.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if !found.ExpiresAt.Equal(later) {
		t.Errorf("ExpiresAt = %v, want %v", found.ExpiresAt, later)
	}
}

func TestPurgeSessions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	admin := createTestAdmin(t, db, "a@example.com")
	now := time.Now()

	newTestSession(t, db, admin.ID, "expired", now.Add(-2*time.Hour))
	newTestSession(t, db, admin.ID, "live", now.Add(time.Hour))
	newTestSession(t, db, admin.ID, "revoked", now.Add(time.Hour))
	if err := db.RevokeSession(ctx, "revoked", now.Add(-2*time.Hour)); err != nil {
		t.Fatalf("RevokeSession() error = %v", err)
	}

	n, err := db.PurgeSessions(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("PurgeSessions() error = %v", err)
	}
	if n != 2 {
		t.Errorf("PurgeSessions() removed %d, want 2", n)
	}
	if _, err := db.GetSession(ctx, "live"); err != nil {
		t.Errorf("live session should survive purge, got %v", err)
	}
	if _, err := db.GetSession(ctx, "expired"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expired session should be gone, got %v", err)
	}
}

func TestSessionRequiresExistingAdmin(t *testing.T) {
	db := newTestDB(t)

	s := &model.Session{ID: "orphan", AdminID: "no-such-admin", CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}
	err := db.CreateSession(context.Background(), s)
	if !errors.Is(err, apperror.ErrStore) {
		t.Errorf("CreateSession() for unknown admin error = %v, want ErrStore (foreign key)", err)
	}
}
