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

// WorkInput is the payload for creating a PortfolioWork.
//
// OwnerProducer is an older name for ClientName still sent by some forms;
// ClientName wins when both are set.
type WorkInput struct {
	Title         string `json:"title" validate:"notblank,max=200"`
	Description   string `json:"description" validate:"notblank,max=5000"`
	Category      string `json:"category" validate:"notblank,max=200"`
	ImageURL      string `json:"imageUrl" validate:"notblank,max=2048"`
	TrailerURL    string `json:"trailerUrl" validate:"max=2048"`
	ClientName    string `json:"clientName" validate:"max=200"`
	OwnerProducer string `json:"ownerProducer" validate:"max=200"`
}

// WorkPatch is a partial update. Optional fields can be cleared with "".
type WorkPatch struct {
	Title         *string `json:"title" validate:"omitnil,notblank,max=200"`
	Description   *string `json:"description" validate:"omitnil,notblank,max=5000"`
	Category      *string `json:"category" validate:"omitnil,notblank,max=200"`
	ImageURL      *string `json:"imageUrl" validate:"omitnil,notblank,max=2048"`
	TrailerURL    *string `json:"trailerUrl" validate:"omitnil,max=2048"`
	ClientName    *string `json:"clientName" validate:"omitnil,max=200"`
	OwnerProducer *string `json:"ownerProducer" validate:"omitnil,max=200"`
}

// PortfolioService manages portfolio works. It mirrors CatalogService.
type PortfolioService struct {
	repo     repository.PortfolioRepository
	validate *validate.Validator
	logger   *slog.Logger
}

func NewPortfolioService(repo repository.PortfolioRepository, v *validate.Validator, logger *slog.Logger) *PortfolioService {
	return &PortfolioService{
		repo:     repo,
		validate: v,
		logger:   logger,
	}
}

func (s *PortfolioService) Create(ctx context.Context, in WorkInput) (*model.PortfolioWork, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	client := in.ClientName
	if strings.TrimSpace(client) == "" {
		client = in.OwnerProducer
	}

	work := &model.PortfolioWork{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		TrailerURL:  strings.TrimSpace(in.TrailerURL),
		ClientName:  strings.TrimSpace(client),
	}

	if err := s.repo.CreateWork(ctx, work); err != nil {
		s.logger.Error("failed to create portfolio work",
			slog.String("title", work.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating portfolio work: %w", err)
	}

	s.logger.Info("portfolio work created",
		slog.String("id", work.ID),
		slog.String("title", work.Title),
	)
	return work, nil
}

func (s *PortfolioService) GetByID(ctx context.Context, id string) (*model.PortfolioWork, error) {
	return s.repo.GetWork(ctx, strings.TrimSpace(id))
}

func (s *PortfolioService) List(ctx context.Context) ([]model.PortfolioWork, error) {
	works, err := s.repo.ListWorks(ctx)
	if err != nil {
		s.logger.Error("failed to list portfolio works", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing portfolio works: %w", err)
	}
	return works, nil
}

func (s *PortfolioService) Update(ctx context.Context, id string, patch WorkPatch) (*model.PortfolioWork, error) {
	if err := s.validate.Struct(patch); err != nil {
		return nil, err
	}

	work, err := s.repo.GetWork(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}

	applyString(&work.Title, patch.Title)
	applyString(&work.Description, patch.Description)
	applyString(&work.Category, patch.Category)
	applyString(&work.ImageURL, patch.ImageURL)
	applyString(&work.TrailerURL, patch.TrailerURL)
	if patch.ClientName != nil {
		applyString(&work.ClientName, patch.ClientName)
	} else {
		applyString(&work.ClientName, patch.OwnerProducer)
	}

	if err := s.repo.UpdateWork(ctx, work); err != nil {
		s.logger.Error("failed to update portfolio work",
			slog.String("id", work.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating portfolio work: %w", err)
	}

	s.logger.Info("portfolio work updated", slog.String("id", work.ID))
	return work, nil
}

func (s *PortfolioService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if err := s.repo.DeleteWork(ctx, id); err != nil {
		return err
	}
	s.logger.Info("portfolio work deleted", slog.String("id", id))
	return nil
}
