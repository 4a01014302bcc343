package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/rs/xid"
	"gorm.io/gorm"

	"github.com/ijwihub/studio-cms/internal/apperror"
	"github.com/ijwihub/studio-cms/internal/model"
)

// insertion order; xid breaks ties inside one timestamp tick
const insertionOrder = "created_at, id"

func (db *DB) CreateService(ctx context.Context, svc *model.Service) error {
	svc.ID = xid.New().String()
	now := time.Now().UTC()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	rec, err := toServiceRecord(svc)
	if err != nil {
		return apperror.Store("encoding service features", err)
	}
	if err := db.gorm.WithContext(ctx).Create(rec).Error; err != nil {
		return apperror.Store("creating service", err)
	}
	return nil
}

func (db *DB) GetService(ctx context.Context, id string) (*model.Service, error) {
	var rec serviceRecord
	if err := db.gorm.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("service", id)
		}
		return nil, apperror.Store("getting service", err)
	}
	svc, err := rec.toModel()
	if err != nil {
		return nil, apperror.Store("decoding service features", err)
	}
	return svc, nil
}

func (db *DB) ListServices(ctx context.Context) ([]model.Service, error) {
	var recs []serviceRecord
	if err := db.gorm.WithContext(ctx).Order(insertionOrder).Find(&recs).Error; err != nil {
		return nil, apperror.Store("listing services", err)
	}

	services := make([]model.Service, 0, len(recs))
	for i := range recs {
		svc, err := recs[i].toModel()
		if err != nil {
			return nil, apperror.Store("decoding service features", err)
		}
		services = append(services, *svc)
	}
	return services, nil
}

func (db *DB) UpdateService(ctx context.Context, svc *model.Service) error {
	svc.UpdatedAt = time.Now().UTC()
	rec, err := toServiceRecord(svc)
	if err != nil {
		return apperror.Store("encoding service features", err)
	}

	result := db.gorm.WithContext(ctx).Model(&serviceRecord{}).Where("id = ?", svc.ID).Updates(map[string]any{
		"title":       rec.Title,
		"description": rec.Description,
		"icon":        rec.Icon,
		"price":       rec.Price,
		"features":    rec.Features,
		"updated_at":  rec.UpdatedAt,
	})
	return checkAffected(result, "updating service", "service", svc.ID)
}

func (db *DB) DeleteService(ctx context.Context, id string) error {
	result := db.gorm.WithContext(ctx).Delete(&serviceRecord{}, "id = ?", id)
	return checkAffected(result, "deleting service", "service", id)
}

func (db *DB) CreateWork(ctx context.Context, work *model.PortfolioWork) error {
	work.ID = xid.New().String()
	now := time.Now().UTC()
	work.CreatedAt = now
	work.UpdatedAt = now

	if err := db.gorm.WithContext(ctx).Create(toWorkRecord(work)).Error; err != nil {
		return apperror.Store("creating portfolio work", err)
	}
	return nil
}

func (db *DB) GetWork(ctx context.Context, id string) (*model.PortfolioWork, error) {
	var rec workRecord
	if err := db.gorm.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("portfolio work", id)
		}
		return nil, apperror.Store("getting portfolio work", err)
	}
	return rec.toModel(), nil
}

func (db *DB) ListWorks(ctx context.Context) ([]model.PortfolioWork, error) {
	var recs []workRecord
	if err := db.gorm.WithContext(ctx).Order(insertionOrder).Find(&recs).Error; err != nil {
		return nil, apperror.Store("listing portfolio works", err)
	}

	works := make([]model.PortfolioWork, 0, len(recs))
	for i := range recs {
		works = append(works, *recs[i].toModel())
	}
	return works, nil
}

func (db *DB) UpdateWork(ctx context.Context, work *model.PortfolioWork) error {
	work.UpdatedAt = time.Now().UTC()

	// a map so that clearing trailer_url or client_name to "" is written too
	result := db.gorm.WithContext(ctx).Model(&workRecord{}).Where("id = ?", work.ID).Updates(map[string]any{
		"title":       work.Title,
		"description": work.Description,
		"category":    work.Category,
		"image_url":   work.ImageURL,
		"trailer_url": work.TrailerURL,
		"client_name": work.ClientName,
		"updated_at":  work.UpdatedAt,
	})
	return checkAffected(result, "updating portfolio work", "portfolio work", work.ID)
}

func (db *DB) DeleteWork(ctx context.Context, id string) error {
	result := db.gorm.WithContext(ctx).Delete(&workRecord{}, "id = ?", id)
	return checkAffected(result, "deleting portfolio work", "portfolio work", id)
}
