package dashboard_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/hrmspro/hrms/internal"
	"github.com/hrmspro/hrms/internal/catalog"
	"github.com/hrmspro/hrms/internal/dashboard"
	dashboardPostgres "github.com/hrmspro/hrms/internal/dashboard/postgres"
	"github.com/hrmspro/hrms/internal/database"
	"github.com/hrmspro/hrms/internal/migrations"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDashboard(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dashboard Suite")
}

type failingRepo struct{}

func (failingRepo) Stats(context.Context, string) (dashboard.Stats, error) {
	return dashboard.Stats{}, errors.New("boom")
}

var _ = Describe("Dashboard", func() {
	var db *sqlx.DB

	BeforeEach(func() {
		var err error
		db, err = database.Open(internal.DatabaseConfig{
			Driver: "sqlite3",
			Source: filepath.Join(GinkgoT().TempDir(), "dashboard.db"),
		})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)

		_, err = migrations.Up(context.Background(), db.DB, catalog.SQLite)
		Expect(err).NotTo(HaveOccurred())
	})

	exec := func(query string, args ...any) {
		_, err := db.Exec(query, args...)
		Expect(err).NotTo(HaveOccurred(), query)
	}

	It("counts headcount, presence and approved leave covering today", func() {
		today := time.Now().Format("2006-01-02")
		yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
		tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

		exec(`INSERT INTO companies (name) VALUES ('Acme')`)
		exec(`INSERT INTO branches (company_id, name) VALUES (1, 'HQ')`)
		exec(`INSERT INTO departments (branch_id, name) VALUES (1, 'Ops')`)
		exec(`INSERT INTO employees (company_id, dept_id, status) VALUES (1, 1, 'ACTIVE'), (1, 1, 'active'), (1, 1, 'INACTIVE')`)
		exec(`INSERT INTO attendance (emp_id, attendance_date) VALUES (1, ?), (1, ?), (2, ?)`, today, today, yesterday)
		exec(`INSERT INTO leave_types (name) VALUES ('Annual')`)
		exec(`INSERT INTO leave_requests (emp_id, leave_type_id, from_date, to_date, status) VALUES
			(2, 1, ?, ?, 'APPROVED'),
			(3, 1, ?, ?, 'PENDING'),
			(1, 1, ?, ?, 'APPROVED')`,
			yesterday, tomorrow, today, today, tomorrow, tomorrow)

		stats, err := dashboard.NewService(dashboardPostgres.NewDashboardRepository(db)).Stats(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(stats).To(Equal(dashboard.Stats{
			TotalEmployees:  3,
			ActiveEmployees: 2,
			PresentToday:    1,
			OnLeaveToday:    1,
		}))
	})

	It("serves the stats as JSON", func() {
		h := dashboard.NewHandler(dashboard.NewService(dashboardPostgres.NewDashboardRepository(db)))
		rec := httptest.NewRecorder()
		h.GetStats(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		var body map[string]int
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body).To(HaveKeyWithValue("total_employees", 0))
		Expect(body).To(HaveKey("on_leave_today"))
	})

	It("hides repository failures behind a 500", func() {
		h := dashboard.NewHandler(dashboard.NewService(failingRepo{}))
		rec := httptest.NewRecorder()
		h.GetStats(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil))

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).NotTo(ContainSubstring("boom"))
	})
})
