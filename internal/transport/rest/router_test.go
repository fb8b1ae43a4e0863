package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/hrmspro/hrms/internal"
	"github.com/hrmspro/hrms/internal/auth"
	authPostgres "github.com/hrmspro/hrms/internal/auth/postgres"
	"github.com/hrmspro/hrms/internal/catalog"
	"github.com/hrmspro/hrms/internal/dashboard"
	dashboardPostgres "github.com/hrmspro/hrms/internal/dashboard/postgres"
	"github.com/hrmspro/hrms/internal/database"
	"github.com/hrmspro/hrms/internal/migrations"
	"github.com/hrmspro/hrms/internal/resource"
	resourcePostgres "github.com/hrmspro/hrms/internal/resource/postgres"
	"github.com/hrmspro/hrms/internal/transport/rest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "REST Router Suite")
}

var _ = Describe("Router", func() {
	var (
		handler  http.Handler
		security internal.SecurityConfig
	)

	build := func() {
		db, err := database.Open(internal.DatabaseConfig{
			Driver: "sqlite3",
			Source: filepath.Join(GinkgoT().TempDir(), "router.db"),
		})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)

		_, err = migrations.Up(context.Background(), db.DB, catalog.SQLite)
		Expect(err).NotTo(HaveOccurred())

		gormDB, err := database.Gorm(db)
		Expect(err).NotTo(HaveOccurred())

		tokens := auth.NewJWTTokenGenerator(security.AccessTokenSecret, security.RefreshTokenSecret, time.Hour, 24*time.Hour)
		authService := auth.NewService(authPostgres.NewRepository(gormDB), tokens, bcrypt.MinCost)

		router := chi.NewRouter()
		rest.RegisterAllRoutes(router, db.DB, rest.Handlers{
			Auth:      auth.NewHandler(authService),
			Resources: resource.NewHandler(resource.NewService(resourcePostgres.NewResourceRepository(db), resource.NewSchemas(), nil)),
			Dashboard: dashboard.NewHandler(dashboard.NewService(dashboardPostgres.NewDashboardRepository(db))),
		}, security, "*", slog.New(slog.DiscardHandler))
		handler = rest.Instrument(router)
	}

	BeforeEach(func() {
		security = internal.SecurityConfig{
			AccessTokenSecret:  "router-access-secret-0123456789abcdef",
			RefreshTokenSecret: "router-refresh-secret-0123456789abcdef",
			RequireAuth:        true,
			AuthRatePerMinute:  60,
			AuthRateBurst:      20,
		}
	})

	do := func(method, path, body, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	signup := func() string {
		rec := do(http.MethodPost, "/api/auth/signup", `{"full_name":"Ada Admin","email":"ada@hrms.local","password":"secret1"}`, "")
		Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
		var out struct {
			Session struct {
				AccessToken string `json:"access_token"`
			} `json:"session"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &out)).To(Succeed())
		return out.Session.AccessToken
	}

	It("serves operational endpoints without a token", func() {
		build()
		Expect(do(http.MethodGet, "/api/ping", "", "").Code).To(Equal(http.StatusOK))

		rec := do(http.MethodGet, "/api/version", "", "")
		Expect(rec.Body.String()).To(ContainSubstring(internal.Version))

		rec = do(http.MethodGet, "/api/health", "", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"database"`))

		Expect(do(http.MethodGet, "/openapi.json", "", "").Code).To(Equal(http.StatusOK))
	})

	It("tags every response with a trace id", func() {
		build()
		rec := do(http.MethodGet, "/api/ping", "", "")
		Expect(rec.Header().Get("X-Trace-ID")).NotTo(BeEmpty())
	})

	It("guards resources and the dashboard behind a bearer token", func() {
		build()
		Expect(do(http.MethodGet, "/api/companies", "", "").Code).To(Equal(http.StatusUnauthorized))
		Expect(do(http.MethodGet, "/api/dashboard/stats", "", "").Code).To(Equal(http.StatusUnauthorized))

		token := signup()
		rec := do(http.MethodPost, "/api/companies", `{"name":"Acme"}`, token)
		Expect(rec.Code).To(Equal(http.StatusCreated))

		rec = do(http.MethodGet, "/api/companies", "", token)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("Acme"))

		Expect(do(http.MethodGet, "/api/dashboard/stats", "", token).Code).To(Equal(http.StatusOK))
	})

	It("opens resources when auth is switched off", func() {
		security.RequireAuth = false
		build()
		Expect(do(http.MethodGet, "/api/companies", "", "").Code).To(Equal(http.StatusOK))
	})

	It("rate limits login attempts per client", func() {
		security.AuthRateBurst = 2
		security.AuthRatePerMinute = 1
		build()

		codes := []int{}
		for i := 0; i < 3; i++ {
			codes = append(codes, do(http.MethodPost, "/api/auth/login", `{"email":"x@y.z","password":"nopenope"}`, "").Code)
		}
		Expect(codes).To(Equal([]int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}))
	})

	It("returns 404 for unknown resources", func() {
		security.RequireAuth = false
		build()
		Expect(do(http.MethodGet, "/api/spaceships", "", "").Code).To(Equal(http.StatusNotFound))
	})
})
