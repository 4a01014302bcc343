// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes the database
//
// Services take repository interfaces, not *sqlite.DB, so the same code runs
// against SQLite, Postgres, or the in-memory store used in tests, and the
// studioctl CLI reuses it without any HTTP in the way.
//
// Services return apperror values (ValidationFailed, MissingFields, NotFound,
// Unauthorized, Store). The handler package is the only place that maps those
// to HTTP status codes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ijwihub/studio-cms/internal/model"
	"github.com/ijwihub/studio-cms/internal/repository"
	"github.com/ijwihub/studio-cms/internal/validate"
)

// ServiceInput is the payload for creating a Service.
type ServiceInput struct {
	Title       string   `json:"title" validate:"notblank,max=200"`
	Description string   `json:"description" validate:"notblank,max=5000"`
	Icon        string   `json:"icon" validate:"notblank,max=200"`
	Price       string   `json:"price" validate:"notblank,max=200"`
	Features    []string `json:"features" validate:"max=30,dive,max=200"`
}

// ServicePatch is a partial update. A nil field is left as it is.
// Required fields, when present, must still be non-blank.
type ServicePatch struct {
	Title       *string   `json:"title" validate:"omitnil,notblank,max=200"`
	Description *string   `json:"description" validate:"omitnil,notblank,max=5000"`
	Icon        *string   `json:"icon" validate:"omitnil,notblank,max=200"`
	Price       *string   `json:"price" validate:"omitnil,notblank,max=200"`
	Features    *[]string `json:"features" validate:"omitnil,max=30,dive,max=200"`
}

// CatalogService manages the studio's service offerings.
type CatalogService struct {
	repo     repository.ServiceRepository
	validate *validate.Validator
	logger   *slog.Logger
}

func NewCatalogService(repo repository.ServiceRepository, v *validate.Validator, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:     repo,
		validate: v,
		logger:   logger,
	}
}

// Create validates in and stores a new Service.
//
// Every missing required field is reported at once, e.g.
// "missing required fields: icon, price".
func (s *CatalogService) Create(ctx context.Context, in ServiceInput) (*model.Service, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	svc := &model.Service{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Icon:        strings.TrimSpace(in.Icon),
		Price:       strings.TrimSpace(in.Price),
		Features:    cleanFeatures(in.Features),
	}

	if err := s.repo.CreateService(ctx, svc); err != nil {
		s.logger.Error("failed to create service",
			slog.String("title", svc.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating service: %w", err)
	}

	s.logger.Info("service created",
		slog.String("id", svc.ID),
		slog.String("title", svc.Title),
	)
	return svc, nil
}

// GetByID returns apperror.ErrNotFound for unknown ids.
func (s *CatalogService) GetByID(ctx context.Context, id string) (*model.Service, error) {
	return s.repo.GetService(ctx, strings.TrimSpace(id))
}

// List returns every service, oldest first. There is no pagination: the
// catalogue is a handful of entries.
func (s *CatalogService) List(ctx context.Context) ([]model.Service, error) {
	services, err := s.repo.ListServices(ctx)
	if err != nil {
		s.logger.Error("failed to list services", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing services: %w", err)
	}
	return services, nil
}

// Update applies patch to the service with id.
//
// STRATEGY: fetch, apply, save. Concurrent edits are last-writer-wins; there
// is no version check.
func (s *CatalogService) Update(ctx context.Context, id string, patch ServicePatch) (*model.Service, error) {
	if err := s.validate.Struct(patch); err != nil {
		return nil, err
	}

	svc, err := s.repo.GetService(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}

	applyString(&svc.Title, patch.Title)
	applyString(&svc.Description, patch.Description)
	applyString(&svc.Icon, patch.Icon)
	applyString(&svc.Price, patch.Price)
	if patch.Features != nil {
		svc.Features = cleanFeatures(*patch.Features)
	}

	if err := s.repo.UpdateService(ctx, svc); err != nil {
		s.logger.Error("failed to update service",
			slog.String("id", svc.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating service: %w", err)
	}

	s.logger.Info("service updated", slog.String("id", svc.ID))
	return svc, nil
}

// Delete removes the service. A second delete of the same id is NotFound.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if err := s.repo.DeleteService(ctx, id); err != nil {
		return err
	}
	s.logger.Info("service deleted", slog.String("id", id))
	return nil
}

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// cleanFeatures trims entries and drops blank ones. Never returns nil.
func cleanFeatures(in []string) []string {
	out := make([]string, 0, len(in))
	for _, f := range in {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
