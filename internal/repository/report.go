package repository

import (
	"context"
	"errors"

	"mrireport/internal/model"
)

// ErrNotFound is returned when no row matches the lookup.
var ErrNotFound = errors.New("record not found")

// ReportRepository persists archived report metadata. SQL only, no business rules.
type ReportRepository interface {
	// Create inserts a report row and returns it as stored.
	Create(ctx context.Context, r *model.Report) (*model.Report, error)

	// FindByID returns ErrNotFound when the id is unknown.
	FindByID(ctx context.Context, id string) (*model.Report, error)

	// List returns one page of reports, newest first, with the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Report], error)

	// Delete removes a report row. Deleting a missing row is not an error.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
