package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/xid"

	"github.com/ijwihub/studio-cms/internal/apperror"
	"github.com/ijwihub/studio-cms/internal/model"
	"github.com/ijwihub/studio-cms/internal/repository"
)

var _ repository.PortfolioRepository = (*DB)(nil)

const workColumns = `id, title, description, category, image_url, trailer_url, client_name, created_at, updated_at`

func (db *DB) CreateWork(ctx context.Context, work *model.PortfolioWork) error {
	work.ID = xid.New().String()
	now := time.Now().UTC()
	work.CreatedAt = now
	work.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO portfolio_works (`+workColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		work.ID,
		work.Title,
		work.Description,
		work.Category,
		work.ImageURL,
		work.TrailerURL,
		work.ClientName,
		work.CreatedAt,
		work.UpdatedAt,
	)
	if err != nil {
		return apperror.Store("creating portfolio work", err)
	}
	return nil
}

func (db *DB) GetWork(ctx context.Context, id string) (*model.PortfolioWork, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+workColumns+` FROM portfolio_works WHERE id = ?`, id)

	work, err := scanWork(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("portfolio work", id)
		}
		return nil, apperror.Store("getting portfolio work", err)
	}
	return work, nil
}

func (db *DB) ListWorks(ctx context.Context) ([]model.PortfolioWork, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+workColumns+` FROM portfolio_works ORDER BY rowid`)
	if err != nil {
		return nil, apperror.Store("listing portfolio works", err)
	}
	defer rows.Close()

	works := make([]model.PortfolioWork, 0)
	for rows.Next() {
		work, err := scanWork(rows)
		if err != nil {
			return nil, apperror.Store("scanning portfolio work row", err)
		}
		works = append(works, *work)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Store("iterating portfolio works", err)
	}
	return works, nil
}

func (db *DB) UpdateWork(ctx context.Context, work *model.PortfolioWork) error {
	work.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE portfolio_works
		 SET title = ?, description = ?, category = ?, image_url = ?,
		     trailer_url = ?, client_name = ?, updated_at = ?
		 WHERE id = ?`,
		work.Title,
		work.Description,
		work.Category,
		work.ImageURL,
		work.TrailerURL,
		work.ClientName,
		work.UpdatedAt,
		work.ID,
	)
	if err != nil {
		return apperror.Store("updating portfolio work", err)
	}
	return checkAffected(result, "portfolio work", work.ID)
}

func (db *DB) DeleteWork(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM portfolio_works WHERE id = ?`, id)
	if err != nil {
		return apperror.Store("deleting portfolio work", err)
	}
	return checkAffected(result, "portfolio work", id)
}

func scanWork(s scanner) (*model.PortfolioWork, error) {
	var w model.PortfolioWork
	if err := s.Scan(
		&w.ID,
		&w.Title,
		&w.Description,
		&w.Category,
		&w.ImageURL,
		&w.TrailerURL,
		&w.ClientName,
		&w.CreatedAt,
		&w.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &w, nil
}
