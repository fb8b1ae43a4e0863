// Package dashboard computes the headcount and presence figures shown on
// the landing screen.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hrmspro/hrms/internal"
	"github.com/hrmspro/hrms/internal/transport"
	"github.com/hrmspro/hrms/pkg/logger"
)

type Stats struct {
	TotalEmployees  int64 `json:"total_employees" db:"total_employees" yaml:"total_employees"`
	ActiveEmployees int64 `json:"active_employees" db:"active_employees" yaml:"active_employees"`
	PresentToday    int64 `json:"present_today" db:"present_today" yaml:"present_today"`
	OnLeaveToday    int64 `json:"on_leave_today" db:"on_leave_today" yaml:"on_leave_today"`
}

type Repository interface {
	Stats(ctx context.Context, day string) (Stats, error)
}

type ServiceAPI interface {
	Stats(ctx context.Context) (Stats, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Stats counts employees, today's attendance and approved leave covering today.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	stats, err := s.repo.Stats(ctx, s.now().Format("2006-01-02"))
	if err != nil {
		return Stats{}, internal.NewInternalError("failed to load dashboard stats", err)
	}
	return stats, nil
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, stats)
}
