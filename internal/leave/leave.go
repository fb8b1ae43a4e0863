// Package leave covers one employee's leave: history, balances, applying
// and deciding requests. Everything goes through the leave-requests,
// leave-balances and leave-types resources.
package leave

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hrmspro/hrms/internal"
	"github.com/hrmspro/hrms/internal/apiclient"
	"github.com/hrmspro/hrms/internal/catalog"
	"github.com/hrmspro/hrms/internal/core/common/validation"
)

const (
	ResourceRequests = "leave-requests"
	ResourceBalances = "leave-balances"
	ResourceTypes    = "leave-types"

	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

type API interface {
	List(ctx context.Context, resource string, filters url.Values) ([]apiclient.Record, error)
	Create(ctx context.Context, resource string, values apiclient.Record) (apiclient.Record, error)
	Update(ctx context.Context, resource string, id any, values apiclient.Record) (apiclient.Record, error)
}

type Request struct {
	EmpID       int64  `json:"emp_id"`
	LeaveTypeID int64  `json:"leave_type_id"`
	FromDate    string `json:"from_date"`
	ToDate      string `json:"to_date"`
	Status      string `json:"status,omitempty"`
}

func (r Request) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("emp_id", r.EmpID).Label("Employee ID").Positive()
	v.Field("leave_type_id", r.LeaveTypeID).Label("Leave Type ID").Positive()
	v.Field("from_date", r.FromDate).Label("From Date").Required().Date()
	v.Field("to_date", r.ToDate).Label("To Date").Required().Date().Custom(func(any) *internal.AppError {
		from, errFrom := time.Parse(validation.DateLayout, r.FromDate)
		to, errTo := time.Parse(validation.DateLayout, r.ToDate)
		if errFrom == nil && errTo == nil && to.Before(from) {
			return internal.NewValidationFieldError("to_date", "To Date must not be before From Date", internal.ErrCodeValidationFailed)
		}
		return nil
	})
	if r.Status != "" {
		v.Field("status", r.Status).Custom(func(any) *internal.AppError {
			switch strings.ToUpper(r.Status) {
			case StatusPending, StatusApproved, StatusRejected:
				return nil
			}
			return internal.NewValidationFieldError("status", "Status must be PENDING, APPROVED or REJECTED", internal.ErrCodeValidationFailed)
		})
	}
	return v.Validate()
}

// Days is the inclusive length of the request in calendar days.
func (r Request) Days() int {
	from, err := time.Parse(validation.DateLayout, r.FromDate)
	if err != nil {
		return 0
	}
	to, err := time.Parse(validation.DateLayout, r.ToDate)
	if err != nil || to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}

type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

func byEmployee(empID int64) url.Values {
	return url.Values{"emp_id": {strconv.FormatInt(empID, 10)}}
}

// History lists the employee's requests, each tagged with its leave type
// name under leave_type.
func (s *Service) History(ctx context.Context, empID int64) ([]apiclient.Record, error) {
	rows, err := s.api.List(ctx, ResourceRequests, byEmployee(empID))
	if err != nil {
		return nil, err
	}
	return s.withTypeNames(ctx, rows)
}

func (s *Service) Balances(ctx context.Context, empID int64) ([]apiclient.Record, error) {
	rows, err := s.api.List(ctx, ResourceBalances, byEmployee(empID))
	if err != nil {
		return nil, err
	}
	return s.withTypeNames(ctx, rows)
}

func (s *Service) withTypeNames(ctx context.Context, rows []apiclient.Record) ([]apiclient.Record, error) {
	if len(rows) == 0 {
		return rows, nil
	}
	types, err := s.api.List(ctx, ResourceTypes, nil)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(types))
	for _, t := range types {
		names[catalog.Text(t["leave_type_id"])] = catalog.Text(t["name"])
	}
	for _, r := range rows {
		r["leave_type"] = names[catalog.Text(r["leave_type_id"])]
	}
	return rows, nil
}

// Apply files a new request. Status defaults to PENDING.
func (s *Service) Apply(ctx context.Context, req Request) (apiclient.Record, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	status := strings.ToUpper(req.Status)
	if status == "" {
		status = StatusPending
	}
	return s.api.Create(ctx, ResourceRequests, apiclient.Record{
		"emp_id":        req.EmpID,
		"leave_type_id": req.LeaveTypeID,
		"from_date":     req.FromDate,
		"to_date":       req.ToDate,
		"status":        status,
	})
}

// SetStatus approves or rejects a request.
func (s *Service) SetStatus(ctx context.Context, requestID int64, status string) (apiclient.Record, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
	default:
		return nil, internal.NewValidationFieldError("status", "Status must be PENDING, APPROVED or REJECTED", internal.ErrCodeValidationFailed)
	}
	return s.api.Update(ctx, ResourceRequests, requestID, apiclient.Record{"status": status})
}
