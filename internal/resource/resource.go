// Package resource serves every catalog tab as a generic REST resource.
package resource

import (
	"context"
	"errors"

	"github.com/hrmspro/hrms/internal/catalog"
)

// Record is one row keyed by column name.
type Record = map[string]any

// Filter is an equality condition on a storage column.
type Filter struct {
	Column string
	Value  any
}

var ErrNoRows = errors.New("no rows")

// Repository persists records of any catalog table. Column names are taken
// from the table definition only; values are always bound parameters.
type Repository interface {
	List(ctx context.Context, table catalog.Table, filters []Filter) ([]Record, error)
	Get(ctx context.Context, table catalog.Table, id int64) (Record, error)
	Create(ctx context.Context, table catalog.Table, values Record) (Record, error)
	Update(ctx context.Context, table catalog.Table, id int64, values Record) (Record, error)
	Delete(ctx context.Context, table catalog.Table, id int64) (int64, error)
}

type ServiceAPI interface {
	List(ctx context.Context, resource string, query map[string][]string) ([]Record, error)
	Get(ctx context.Context, resource, id string) (Record, error)
	Create(ctx context.Context, resource string, body []byte) (Record, error)
	Update(ctx context.Context, resource, id string, body []byte) (Record, error)
	Delete(ctx context.Context, resource, id string) (int64, error)
}

// DeleteResponse is the body returned after a delete.
type DeleteResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}
