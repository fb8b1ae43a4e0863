package resource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/hrmspro/hrms/internal"
	"github.com/hrmspro/hrms/internal/catalog"
	"github.com/hrmspro/hrms/internal/database"
)

// Service implements the generic CRUD operations over catalog resources.
type Service struct {
	repo    Repository
	schemas *Schemas
	logger  *slog.Logger
}

func NewService(repo Repository, schemas *Schemas, logger *slog.Logger) *Service {
	if schemas == nil {
		schemas = NewSchemas()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, schemas: schemas, logger: logger}
}

func (s *Service) lookup(resource string) (catalog.Tab, error) {
	tab, ok := catalog.Lookup(resource)
	if !ok {
		return catalog.Tab{}, internal.ErrResourceNotFound
	}
	return tab, nil
}

// List returns every row ordered by primary key. Query keys that are not
// columns of the resource are ignored.
func (s *Service) List(ctx context.Context, resource string, query map[string][]string) ([]Record, error) {
	tab, err := s.lookup(resource)
	if err != nil {
		return nil, err
	}
	table := tab.Storage()

	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var filters []Filter
	for _, k := range keys {
		col, ok := table.Column(k)
		if !ok || len(query[k]) == 0 {
			continue
		}
		v, err := filterValue(col, query[k][0])
		if err != nil {
			return nil, internal.NewValidationFieldError(k, fmt.Sprintf("Invalid filter value for %s", k), internal.ErrCodeValidationFailed)
		}
		filters = append(filters, Filter{Column: k, Value: v})
	}

	records, err := s.repo.List(ctx, table, filters)
	if err != nil {
		return nil, s.dbError(tab, "list", err)
	}
	return records, nil
}

func (s *Service) Get(ctx context.Context, resource, id string) (Record, error) {
	tab, err := s.lookup(resource)
	if err != nil {
		return nil, err
	}
	pk, err := parseID(id)
	if err != nil {
		return nil, err
	}

	rec, err := s.repo.Get(ctx, tab.Storage(), pk)
	if err != nil {
		return nil, s.dbError(tab, "get", err)
	}
	return rec, nil
}

func (s *Service) Create(ctx context.Context, resource string, body []byte) (Record, error) {
	tab, err := s.lookup(resource)
	if err != nil {
		return nil, err
	}

	values, err := s.schemas.Validate(tab, ModeCreate, body)
	if err != nil {
		return nil, err
	}
	table := tab.Storage()
	stripManaged(table, values)
	for k, v := range values {
		if k == table.PK && !table.NaturalKey && v == nil {
			delete(values, k)
			continue
		}
		if f, ok := tab.Field(k); ok && f.Default != "" && blank(v) {
			delete(values, k)
		}
	}

	rec, err := s.repo.Create(ctx, table, values)
	if err != nil {
		return nil, s.dbError(tab, "create", err)
	}
	s.logger.Info("record created", "resource", resource, "id", rec[table.PK])
	return rec, nil
}

// Update applies the supplied keys only. The primary key cannot change.
func (s *Service) Update(ctx context.Context, resource, id string, body []byte) (Record, error) {
	tab, err := s.lookup(resource)
	if err != nil {
		return nil, err
	}
	pk, err := parseID(id)
	if err != nil {
		return nil, err
	}

	values, err := s.schemas.Validate(tab, ModeUpdate, body)
	if err != nil {
		return nil, err
	}
	table := tab.Storage()
	delete(values, table.PK)
	stripManaged(table, values)

	rec, err := s.repo.Update(ctx, table, pk, values)
	if err != nil {
		return nil, s.dbError(tab, "update", err)
	}
	s.logger.Info("record updated", "resource", resource, "id", pk)
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, resource, id string) (int64, error) {
	tab, err := s.lookup(resource)
	if err != nil {
		return 0, err
	}
	pk, err := parseID(id)
	if err != nil {
		return 0, err
	}

	n, err := s.repo.Delete(ctx, tab.Storage(), pk)
	if err != nil {
		return 0, s.dbError(tab, "delete", err)
	}
	if n == 0 {
		return 0, internal.ErrRecordNotFound
	}
	s.logger.Info("record deleted", "resource", resource, "id", pk)
	return n, nil
}

func (s *Service) dbError(tab catalog.Tab, op string, err error) error {
	switch {
	case errors.Is(err, ErrNoRows):
		return internal.ErrRecordNotFound
	case database.IsUniqueViolation(err):
		return internal.NewConflictError(tab.Title+" record already exists", internal.ErrCodeRecordConflict).WithCause(err)
	case database.IsForeignKeyViolation(err):
		msg := "Referenced record does not exist"
		if op == "delete" {
			msg = "Record is still referenced by other records"
		}
		return internal.NewConflictError(msg, internal.ErrCodeRecordConflict).WithCause(err)
	case database.IsBadInput(err):
		return internal.NewValidationError("Invalid value for "+tab.Title, internal.ErrCodeValidationFailed).WithCause(err)
	}
	s.logger.Error("resource query failed", "resource", tab.Resource, "op", op, "error", err)
	return internal.NewInternalError("failed to "+op+" "+strings.ToLower(tab.Title), err)
}

func stripManaged(table catalog.Table, values Record) {
	for k := range values {
		if col, ok := table.Column(k); ok && col.Timestamp {
			delete(values, k)
		}
	}
}

func parseID(id string) (int64, error) {
	pk, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0, internal.NewValidationError("Invalid id", internal.ErrCodeInvalidID)
	}
	return pk, nil
}

func filterValue(col catalog.TableColumn, raw string) (any, error) {
	if col.Type != catalog.FieldNumber {
		return raw, nil
	}
	if col.Decimal {
		return strconv.ParseFloat(raw, 64)
	}
	return strconv.ParseInt(raw, 10, 64)
}
