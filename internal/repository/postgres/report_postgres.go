package postgres

import (
	"context"
	"database/sql"
	"errors"

	"mrireport/internal/model"
	"mrireport/internal/repository"
)

const reportColumns = `id, filename, storage_path, size, content_type, patient_name, patient_email,
		prediction, confidence, image_embedded, template_version, created_at`

// ReportPostgres is the PostgreSQL implementation of repository.ReportRepository.
type ReportPostgres struct {
	db *sql.DB
}

// NewReportPostgres creates a new ReportPostgres repository.
func NewReportPostgres(db *sql.DB) *ReportPostgres {
	return &ReportPostgres{db: db}
}

var _ repository.ReportRepository = (*ReportPostgres)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(s rowScanner) (*model.Report, error) {
	var r model.Report
	if err := s.Scan(
		&r.ID,
		&r.Filename,
		&r.StoragePath,
		&r.Size,
		&r.ContentType,
		&r.PatientName,
		&r.PatientEmail,
		&r.Prediction,
		&r.Confidence,
		&r.ImageEmbedded,
		&r.TemplateVersion,
		&r.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a new report row and returns the stored record.
func (p *ReportPostgres) Create(ctx context.Context, r *model.Report) (*model.Report, error) {
	const q = `
		INSERT INTO reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + reportColumns
	row := p.db.QueryRowContext(ctx, q,
		r.ID,
		r.Filename,
		r.StoragePath,
		r.Size,
		r.ContentType,
		r.PatientName,
		r.PatientEmail,
		r.Prediction,
		r.Confidence,
		r.ImageEmbedded,
		r.TemplateVersion,
		r.CreatedAt,
	)
	return scanReport(row)
}

// FindByID fetches a single report by its ID.
func (p *ReportPostgres) FindByID(ctx context.Context, id string) (*model.Report, error) {
	const q = `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`
	r, err := scanReport(p.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return r, err
}

// List returns reports using LIMIT/OFFSET pagination and a total count.
func (p *ReportPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Report], error) {
	var total int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`).Scan(&total); err != nil {
		return nil, err
	}

	const q = `SELECT ` + reportColumns + ` FROM reports
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`
	rows, err := p.db.QueryContext(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Report, 0)
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Report]{Items: items, Total: total}, nil
}

// Delete removes a report by ID.
func (p *ReportPostgres) Delete(ctx context.Context, id string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
	return err
}
