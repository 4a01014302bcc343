package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/xid"

	"github.com/ijwihub/studio-cms/internal/apperror"
	"github.com/ijwihub/studio-cms/internal/model"
	"github.com/ijwihub/studio-cms/internal/repository"
)

var _ repository.ServiceRepository = (*DB)(nil)

const serviceColumns = `id, title, description, icon, price, features, created_at, updated_at`

// CreateService inserts svc, filling in its xid and timestamps.
//
// xid ids are 20 URL-safe chars and sort by creation time, which keeps them
// short in admin URLs (/services/cv37rs3pp9olc6atsptg).
func (db *DB) CreateService(ctx context.Context, svc *model.Service) error {
	features, err := encodeFeatures(svc.Features)
	if err != nil {
		return err
	}

	svc.ID = xid.New().String()
	now := time.Now().UTC()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO services (`+serviceColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		svc.ID,
		svc.Title,
		svc.Description,
		svc.Icon,
		svc.Price,
		features,
		svc.CreatedAt,
		svc.UpdatedAt,
	)
	if err != nil {
		return apperror.Store("creating service", err)
	}

	return nil
}

// GetService returns the service with id, or apperror.ErrNotFound.
func (db *DB) GetService(ctx context.Context, id string) (*model.Service, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = ?`, id)

	svc, err := scanService(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("service", id)
		}
		return nil, apperror.Store("getting service", err)
	}
	return svc, nil
}

// ListServices returns every service in insertion order.
func (db *DB) ListServices(ctx context.Context) ([]model.Service, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+serviceColumns+` FROM services ORDER BY rowid`)
	if err != nil {
		return nil, apperror.Store("listing services", err)
	}
	defer rows.Close()

	services := make([]model.Service, 0)
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, apperror.Store("scanning service row", err)
		}
		services = append(services, *svc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Store("iterating services", err)
	}

	return services, nil
}

// UpdateService overwrites every mutable column of svc. id and created_at never change.
func (db *DB) UpdateService(ctx context.Context, svc *model.Service) error {
	features, err := encodeFeatures(svc.Features)
	if err != nil {
		return err
	}
	svc.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE services
		 SET title = ?, description = ?, icon = ?, price = ?, features = ?, updated_at = ?
		 WHERE id = ?`,
		svc.Title,
		svc.Description,
		svc.Icon,
		svc.Price,
		features,
		svc.UpdatedAt,
		svc.ID,
	)
	if err != nil {
		return apperror.Store("updating service", err)
	}

	return checkAffected(result, "service", svc.ID)
}

func (db *DB) DeleteService(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id)
	if err != nil {
		return apperror.Store("deleting service", err)
	}
	return checkAffected(result, "service", id)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanService(s scanner) (*model.Service, error) {
	var (
		svc      model.Service
		features string
	)
	if err := s.Scan(
		&svc.ID,
		&svc.Title,
		&svc.Description,
		&svc.Icon,
		&svc.Price,
		&features,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(features), &svc.Features); err != nil {
		return nil, err
	}
	if svc.Features == nil {
		svc.Features = []string{}
	}
	return &svc, nil
}

// encodeFeatures stores the feature list as a JSON array; nil becomes "[]".
func encodeFeatures(features []string) (string, error) {
	if features == nil {
		features = []string{}
	}
	b, err := json.Marshal(features)
	if err != nil {
		return "", apperror.Store("encoding service features", err)
	}
	return string(b), nil
}
