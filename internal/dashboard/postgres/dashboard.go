package postgres

import (
	"context"
	"fmt"

	"github.com/hrmspro/hrms/internal/dashboard"
	"github.com/jmoiron/sqlx"
)

const statsQuery = `SELECT
	(SELECT COUNT(*) FROM "employees") AS total_employees,
	(SELECT COUNT(*) FROM "employees" WHERE UPPER("status") = 'ACTIVE') AS active_employees,
	(SELECT COUNT(DISTINCT "emp_id") FROM "attendance" WHERE "attendance_date" = ?) AS present_today,
	(SELECT COUNT(DISTINCT "emp_id") FROM "leave_requests"
		WHERE UPPER("status") = 'APPROVED' AND "from_date" <= ? AND "to_date" >= ?) AS on_leave_today`

type DashboardRepository struct {
	db *sqlx.DB
}

func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) Stats(ctx context.Context, day string) (dashboard.Stats, error) {
	var stats dashboard.Stats
	if err := r.db.GetContext(ctx, &stats, r.db.Rebind(statsQuery), day, day, day); err != nil {
		return dashboard.Stats{}, fmt.Errorf("dashboard stats: %w", err)
	}
	return stats, nil
}
