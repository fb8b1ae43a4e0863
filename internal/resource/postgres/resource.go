package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hrmspro/hrms/internal/catalog"
	"github.com/hrmspro/hrms/internal/resource"
	"github.com/jmoiron/sqlx"
)

const (
	dateLayout      = "2006-01-02"
	timeLayout      = "15:04:05"
	dateTimeLayout  = "2006-01-02T15:04:05"
	timestampLayout = "2006-01-02 15:04:05"
)

// ResourceRepository implements resource.Repository on top of sqlx.
type ResourceRepository struct {
	db *sqlx.DB
}

func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

func (r *ResourceRepository) List(ctx context.Context, table catalog.Table, filters []resource.Filter) ([]resource.Record, error) {
	var (
		where []string
		args  []any
	)
	for _, f := range filters {
		where = append(where, catalog.Quote(f.Column)+" = ?")
		args = append(args, f.Value)
	}

	query := "SELECT * FROM " + catalog.Quote(table.Name)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + catalog.Quote(table.PK)

	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table.Name, err)
	}
	defer rows.Close()

	records := []resource.Record{}
	for rows.Next() {
		rec := resource.Record{}
		if err := rows.MapScan(rec); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table.Name, err)
		}
		records = append(records, normalize(table, rec))
	}
	return records, rows.Err()
}

func (r *ResourceRepository) Get(ctx context.Context, table catalog.Table, id int64) (resource.Record, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", catalog.Quote(table.Name), catalog.Quote(table.PK))
	return r.queryRow(ctx, table, query, id)
}

func (r *ResourceRepository) Create(ctx context.Context, table catalog.Table, values resource.Record) (resource.Record, error) {
	cols, args := columns(table, values)

	var query string
	if len(cols) == 0 {
		query = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING *", catalog.Quote(table.Name))
	} else {
		quoted := make([]string, len(cols))
		marks := make([]string, len(cols))
		for i, c := range cols {
			quoted[i] = catalog.Quote(c)
			marks[i] = "?"
		}
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
			catalog.Quote(table.Name), strings.Join(quoted, ", "), strings.Join(marks, ", "))
	}
	return r.queryRow(ctx, table, query, args...)
}

func (r *ResourceRepository) Update(ctx context.Context, table catalog.Table, id int64, values resource.Record) (resource.Record, error) {
	cols, args := columns(table, values)
	if len(cols) == 0 {
		return r.Get(ctx, table, id)
	}

	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = catalog.Quote(c) + " = ?"
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ? RETURNING *",
		catalog.Quote(table.Name), strings.Join(sets, ", "), catalog.Quote(table.PK))
	return r.queryRow(ctx, table, query, append(args, id)...)
}

func (r *ResourceRepository) Delete(ctx context.Context, table catalog.Table, id int64) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", catalog.Quote(table.Name), catalog.Quote(table.PK))
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), id)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", table.Name, err)
	}
	return res.RowsAffected()
}

func (r *ResourceRepository) queryRow(ctx context.Context, table catalog.Table, query string, args ...any) (resource.Record, error) {
	rec := resource.Record{}
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(query), args...).MapScan(rec)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, resource.ErrNoRows
		}
		return nil, fmt.Errorf("%s: %w", table.Name, err)
	}
	return normalize(table, rec), nil
}

// columns orders the known keys of values the way the table declares them.
func columns(table catalog.Table, values resource.Record) ([]string, []any) {
	var (
		cols []string
		args []any
	)
	if v, ok := values[table.PK]; ok {
		cols = append(cols, table.PK)
		args = append(args, v)
	}
	for _, c := range table.Columns {
		if v, ok := values[c.Name]; ok {
			cols = append(cols, c.Name)
			args = append(args, v)
		}
	}
	return cols, args
}

func normalize(table catalog.Table, rec resource.Record) resource.Record {
	for k, v := range rec {
		col, _ := table.Column(k)
		switch val := v.(type) {
		case []byte:
			rec[k] = string(val)
		case time.Time:
			rec[k] = formatTime(col, val)
		}
	}
	return rec
}

func formatTime(col catalog.TableColumn, t time.Time) string {
	switch {
	case col.Timestamp:
		return t.Format(timestampLayout)
	case col.Type == catalog.FieldDate:
		return t.Format(dateLayout)
	case col.Type == catalog.FieldTime:
		return t.Format(timeLayout)
	default:
		return t.Format(dateTimeLayout)
	}
}
