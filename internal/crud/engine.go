// Package crud is the table driven CRUD engine. One Engine serves one tab:
// it lists the resource, keeps the search, sort and page state, drives the
// create, edit and delete flows and exports CSV. Every mutation is followed
// by a full refetch.
package crud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/hrmspro/hrms/internal/apiclient"
	"github.com/hrmspro/hrms/internal/catalog"
	"github.com/hrmspro/hrms/internal/notify"
	"github.com/hrmspro/hrms/pkg/logger"
)

// API is the slice of the REST client the engine uses.
type API interface {
	List(ctx context.Context, resource string, filters url.Values) ([]apiclient.Record, error)
	Create(ctx context.Context, resource string, values apiclient.Record) (apiclient.Record, error)
	Update(ctx context.Context, resource string, id any, values apiclient.Record) (apiclient.Record, error)
	Delete(ctx context.Context, resource string, id any) error
}

var (
	ErrMissingRequired = errors.New("required field missing")
	ErrNoPrimaryKey    = errors.New("record has no primary key")
	ErrFormClosed      = errors.New("form is closed")
)

type Engine struct {
	tab      catalog.Tab
	api      API
	notifier notify.Notifier
	logger   *slog.Logger

	mu            sync.Mutex
	records       []apiclient.Record
	loading       bool
	generation    uint64
	filters       url.Values
	view          *TableView
	deleteTarget  apiclient.Record
	deletePending bool
}

func NewEngine(tab catalog.Tab, api API, notifier notify.Notifier, lg *slog.Logger) *Engine {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &Engine{
		tab:      tab,
		api:      api,
		notifier: notifier,
		logger:   lg.With("resource", tab.Resource),
		records:  []apiclient.Record{},
		view:     NewTableView(tab.Columns),
	}
}

func (e *Engine) Tab() catalog.Tab { return e.tab }

// SetFilters sets the equality filters sent with every list request.
func (e *Engine) SetFilters(filters url.Values) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filters = filters
}

// Refresh refetches the list. When refreshes overlap only the latest one
// is applied. On failure the previous rows stay and an error toast is
// shown.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.loading = true
	filters := e.filters
	e.mu.Unlock()

	rows, err := e.api.List(ctx, e.tab.Resource, filters)

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		e.logger.Debug("discarding stale list response", "generation", gen)
		return nil
	}
	e.loading = false
	if err == nil {
		e.records = rows
		e.view.Reset()
	}
	e.mu.Unlock()

	if err != nil {
		e.logger.Warn("failed to load data", "error", err)
		e.notifier.Error("Failed to load data")
		return err
	}
	return nil
}

func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

func (e *Engine) Records() []apiclient.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]apiclient.Record(nil), e.records...)
}

func (e *Engine) Search(q string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.SetSearch(q)
}

func (e *Engine) SortBy(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.SortBy(key)
}

func (e *Engine) SetPage(p int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.SetPage(p)
	e.view.Clamp(len(e.view.Filter(e.records)))
}

func (e *Engine) ViewState() ViewState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view.State()
}

// Filtered is the searched and sorted row set, before pagination.
func (e *Engine) Filtered() []apiclient.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view.Sorted(e.view.Filter(e.records))
}

// PageView is one rendered page of the table.
type PageView struct {
	Rows  []apiclient.Record
	Page  int
	Pages int
	Total int
}

func (e *Engine) Page() PageView {
	e.mu.Lock()
	defer e.mu.Unlock()
	rows := e.view.Sorted(e.view.Filter(e.records))
	return PageView{
		Rows:  e.view.Slice(rows),
		Page:  e.view.Clamp(len(rows)),
		Pages: Pages(len(rows)),
		Total: len(rows),
	}
}

// Submit creates or updates the form's record. On success the form is
// closed, a toast is shown and the list refetched. On failure the form
// stays open.
func (e *Engine) Submit(ctx context.Context, f *Form) error {
	if !f.Open {
		return ErrFormClosed
	}
	if missing := f.Missing(); len(missing) > 0 {
		msgs := make([]string, len(missing))
		for i, label := range missing {
			msgs[i] = label + " is required"
		}
		e.notifier.Error(strings.Join(msgs, "; "))
		return fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}

	payload := f.Payload()
	var err error
	verb := "created"
	if f.Editing != nil {
		verb = "updated"
		id, ok := f.Editing[e.tab.PK]
		if !ok || id == nil {
			e.notifier.Error("Operation failed: " + ErrNoPrimaryKey.Error())
			return ErrNoPrimaryKey
		}
		_, err = e.api.Update(ctx, e.tab.Resource, id, payload)
	} else {
		_, err = e.api.Create(ctx, e.tab.Resource, payload)
	}
	if err != nil {
		e.logger.Warn("operation failed", "action", verb, "error", err)
		e.notifier.Error("Operation failed: " + apiclient.ErrorMessage(err))
		return err
	}

	f.Open = false
	e.notifier.Success(fmt.Sprintf("%s %s successfully", e.tab.Title, verb))
	_ = e.Refresh(ctx)
	return nil
}

// RequestDelete opens the confirmation step for rec.
func (e *Engine) RequestDelete(rec apiclient.Record) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.deleteTarget = rec
	e.deletePending = true
}

// DeletePrompt is the confirmation question for the pending delete.
func (e *Engine) DeletePrompt() string {
	return fmt.Sprintf("Are you sure you want to delete this %s record? This action cannot be undone.",
		strings.ToLower(e.tab.Title))
}

func (e *Engine) CancelDelete() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.deleteTarget = nil
	e.deletePending = false
}

func (e *Engine) DeletePending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deletePending
}

// ConfirmDelete deletes the pending target. Without a target it does
// nothing.
func (e *Engine) ConfirmDelete(ctx context.Context) error {
	e.mu.Lock()
	target := e.deleteTarget
	e.deleteTarget = nil
	e.deletePending = false
	e.mu.Unlock()

	if target == nil {
		return nil
	}
	id, ok := target[e.tab.PK]
	if !ok || id == nil {
		e.notifier.Error("Delete failed: " + ErrNoPrimaryKey.Error())
		return ErrNoPrimaryKey
	}

	if err := e.api.Delete(ctx, e.tab.Resource, id); err != nil {
		e.logger.Warn("delete failed", "id", id, "error", err)
		e.notifier.Error("Delete failed: " + apiclient.ErrorMessage(err))
		return err
	}
	e.notifier.Success(fmt.Sprintf("%s deleted successfully", e.tab.Title))
	_ = e.Refresh(ctx)
	return nil
}
