// Package finance summarizes expense claims from the finance/expenses
// resource.
package finance

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/hrmspro/hrms/internal/apiclient"
	"github.com/hrmspro/hrms/internal/catalog"
)

const ResourceExpenses = "finance/expenses"

type API interface {
	List(ctx context.Context, resource string, filters url.Values) ([]apiclient.Record, error)
}

// Bucket is the count and amount of claims sharing one key.
type Bucket struct {
	Key    string  `json:"key" yaml:"key"`
	Count  int     `json:"count" yaml:"count"`
	Amount float64 `json:"amount" yaml:"amount"`
}

type Summary struct {
	Claims     int      `json:"claims" yaml:"claims"`
	Total      float64  `json:"total" yaml:"total"`
	ByStatus   []Bucket `json:"by_status" yaml:"by_status"`
	ByCategory []Bucket `json:"by_category" yaml:"by_category"`
}

type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

// Summary totals the claims, optionally for one employee (employeeID > 0).
func (s *Service) Summary(ctx context.Context, employeeID int64) (Summary, error) {
	var filters url.Values
	if employeeID > 0 {
		filters = url.Values{"employee_id": {strconv.FormatInt(employeeID, 10)}}
	}
	rows, err := s.api.List(ctx, ResourceExpenses, filters)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(rows), nil
}

// Summarize groups rows by status and category. Buckets are ordered by
// amount, largest first, then by key.
func Summarize(rows []apiclient.Record) Summary {
	var sum Summary
	status := map[string]*Bucket{}
	category := map[string]*Bucket{}

	for _, r := range rows {
		amount := amountOf(r["amount"])
		sum.Claims++
		sum.Total += amount
		add(status, statusKey(r["status"]), amount)
		add(category, keyOf(r["category"]), amount)
	}

	sum.ByStatus = ordered(status)
	sum.ByCategory = ordered(category)
	return sum
}

func add(m map[string]*Bucket, key string, amount float64) {
	b, ok := m[key]
	if !ok {
		b = &Bucket{Key: key}
		m[key] = b
	}
	b.Count++
	b.Amount += amount
}

func ordered(m map[string]*Bucket) []Bucket {
	out := make([]Bucket, 0, len(m))
	for _, b := range m {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func keyOf(v any) string {
	if s := strings.TrimSpace(catalog.Text(v)); s != "" {
		return s
	}
	return "Uncategorized"
}

// statusKey treats a missing status as Pending, the column default.
func statusKey(v any) string {
	s := strings.TrimSpace(catalog.Text(v))
	if s == "" {
		return "Pending"
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func amountOf(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}
