package crud_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hrmspro/hrms/internal/apiclient"
	"github.com/hrmspro/hrms/internal/catalog"
	"github.com/hrmspro/hrms/internal/crud"
	"github.com/hrmspro/hrms/internal/notify"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCrud(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "CRUD Engine Suite")
}

type request struct {
	Method   string
	Resource string
	ID       any
	Body     apiclient.Record
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []request
	rows     []apiclient.Record
	listErr  error
	writeErr error
	// gate, when set, blocks the next List call until it receives rows.
	gate chan []apiclient.Record
}

func (f *fakeAPI) record(r request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r)
}

func (f *fakeAPI) Requests() []request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]request(nil), f.requests...)
}

func (f *fakeAPI) List(_ context.Context, resource string, _ url.Values) ([]apiclient.Record, error) {
	f.mu.Lock()
	gate := f.gate
	f.gate = nil
	rows, err := f.rows, f.listErr
	f.mu.Unlock()
	f.record(request{Method: "GET", Resource: resource})
	if gate != nil {
		return <-gate, nil
	}
	return rows, err
}

func (f *fakeAPI) Create(_ context.Context, resource string, values apiclient.Record) (apiclient.Record, error) {
	f.record(request{Method: "POST", Resource: resource, Body: values})
	return values, f.writeErr
}

func (f *fakeAPI) Update(_ context.Context, resource string, id any, values apiclient.Record) (apiclient.Record, error) {
	f.record(request{Method: "PUT", Resource: resource, ID: id, Body: values})
	return values, f.writeErr
}

func (f *fakeAPI) Delete(_ context.Context, resource string, id any) error {
	f.record(request{Method: "DELETE", Resource: resource, ID: id})
	return f.writeErr
}

func rowsOf(n int) []apiclient.Record {
	out := make([]apiclient.Record, n)
	for i := range out {
		out[i] = apiclient.Record{"asset_id": float64(i + 1), "name": fmt.Sprintf("Laptop %02d", i+1), "status": "Available"}
	}
	return out
}

var _ = Describe("Engine", func() {
	var (
		api    *fakeAPI
		center *notify.Center
		toasts []notify.Toast
		engine *crud.Engine
		tab    catalog.Tab
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		var ok bool
		tab, ok = catalog.Lookup("companies")
		Expect(ok).To(BeTrue())

		api = &fakeAPI{rows: []apiclient.Record{}}
		center = notify.NewCenter(time.Minute, nil)
		DeferCleanup(center.Close)
		toasts = nil
		center.Subscribe(func(t notify.Toast) { toasts = append(toasts, t) })
		engine = crud.NewEngine(tab, api, center, nil)
	})

	lastToast := func() notify.Toast {
		Expect(toasts).NotTo(BeEmpty())
		return toasts[len(toasts)-1]
	}

	Describe("list", func() {
		It("replaces the record set", func() {
			api.rows = []apiclient.Record{{"company_id": float64(1), "name": "Acme"}}
			Expect(engine.Refresh(ctx)).To(Succeed())
			Expect(engine.Records()).To(Equal(api.rows))
			Expect(engine.Loading()).To(BeFalse())
		})

		It("shows an error toast and stops loading on failure", func() {
			api.listErr = errors.New("connection refused")
			Expect(engine.Refresh(ctx)).NotTo(Succeed())
			Expect(engine.Loading()).To(BeFalse())
			Expect(engine.Records()).To(BeEmpty())
			Expect(lastToast().Kind).To(Equal(notify.KindError))
			Expect(lastToast().Message).To(Equal("Failed to load data"))
		})

		It("applies only the latest of overlapping refreshes", func() {
			gate := make(chan []apiclient.Record)
			api.gate = gate
			api.rows = []apiclient.Record{{"company_id": float64(2), "name": "Fresh"}}

			done := make(chan error)
			go func() { done <- engine.Refresh(ctx) }()
			Eventually(func() int { return len(api.Requests()) }).Should(Equal(1))

			Expect(engine.Refresh(ctx)).To(Succeed())
			gate <- []apiclient.Record{{"company_id": float64(1), "name": "Stale"}}
			Expect(<-done).To(Succeed())

			Expect(engine.Records()).To(HaveLen(1))
			Expect(engine.Records()[0]).To(HaveKeyWithValue("name", "Fresh"))
		})
	})

	Describe("create and update", func() {
		It("posts exactly the form values, refetches and toasts", func() {
			f := engine.OpenCreate()
			Expect(f.Values).To(HaveLen(len(tab.Fields)))
			Expect(f.Set("name", "Acme")).To(Succeed())

			Expect(engine.Submit(ctx, f)).To(Succeed())
			reqs := api.Requests()
			Expect(reqs).To(HaveLen(2))
			Expect(reqs[0].Method).To(Equal("POST"))
			Expect(reqs[0].Resource).To(Equal("companies"))
			Expect(reqs[0].Body).To(Equal(f.Values))
			Expect(reqs[1].Method).To(Equal("GET"))

			Expect(f.Open).To(BeFalse())
			Expect(lastToast().Kind).To(Equal(notify.KindSuccess))
			Expect(lastToast().Message).To(Equal("Companies created successfully"))
		})

		It("updates by primary key", func() {
			row := apiclient.Record{"company_id": float64(7), "name": "Acme"}
			f := engine.OpenEdit(row)
			Expect(f.Values).To(HaveKeyWithValue("name", "Acme"))
			Expect(f.Set("name", "Acme Corp")).To(Succeed())

			Expect(engine.Submit(ctx, f)).To(Succeed())
			Expect(api.Requests()[0]).To(Equal(request{Method: "PUT", Resource: "companies", ID: float64(7), Body: apiclient.Record{"name": "Acme Corp", "registration_no": "", "timezone": ""}}))
			Expect(lastToast().Message).To(Equal("Companies updated successfully"))
		})

		It("keeps the form open and shows the server message on failure", func() {
			api.writeErr = &apiclient.APIError{StatusCode: 409, Message: "Companies record already exists"}
			f := engine.OpenCreate()
			Expect(f.Set("name", "Acme")).To(Succeed())

			Expect(engine.Submit(ctx, f)).NotTo(Succeed())
			Expect(f.Open).To(BeTrue())
			Expect(lastToast().Message).To(Equal("Operation failed: Companies record already exists"))
			Expect(api.Requests()).To(HaveLen(1))
		})

		It("rejects blank required fields before any request", func() {
			f := engine.OpenCreate()
			err := engine.Submit(ctx, f)
			Expect(errors.Is(err, crud.ErrMissingRequired)).To(BeTrue())
			Expect(api.Requests()).To(BeEmpty())
			Expect(lastToast().Message).To(Equal("Company Name is required"))
		})

		It("parses numbers and checks select options", func() {
			expenses, _ := catalog.Lookup("finance/expenses")
			f := crud.NewEngine(expenses, api, center, nil).OpenCreate()
			Expect(f.Set("employee_id", "3")).To(Succeed())
			Expect(f.Values["employee_id"]).To(Equal(int64(3)))
			Expect(f.Set("amount", "12.5")).To(Succeed())
			Expect(f.Values["amount"]).To(Equal(12.5))
			Expect(f.Set("amount", "lots")).NotTo(Succeed())
			Expect(f.Set("category", "Yachts")).NotTo(Succeed())
			Expect(f.Set("nope", "x")).NotTo(Succeed())
		})
	})

	Describe("delete", func() {
		It("deletes only after confirmation", func() {
			engine.RequestDelete(apiclient.Record{"company_id": float64(7)})
			Expect(engine.DeletePending()).To(BeTrue())
			Expect(engine.DeletePrompt()).To(ContainSubstring("delete this companies record"))

			Expect(engine.ConfirmDelete(ctx)).To(Succeed())
			reqs := api.Requests()
			Expect(reqs).To(HaveLen(2))
			Expect(reqs[0]).To(Equal(request{Method: "DELETE", Resource: "companies", ID: float64(7)}))
			Expect(reqs[1].Method).To(Equal("GET"))
			Expect(lastToast().Message).To(Equal("Companies deleted successfully"))
		})

		It("issues nothing when cancelled or confirmed without a target", func() {
			engine.RequestDelete(apiclient.Record{"company_id": float64(7)})
			engine.CancelDelete()
			Expect(engine.ConfirmDelete(ctx)).To(Succeed())
			Expect(api.Requests()).To(BeEmpty())
			Expect(toasts).To(BeEmpty())
		})

		It("reports failures", func() {
			api.writeErr = &apiclient.APIError{StatusCode: 409, Message: "Record is still referenced by other records"}
			engine.RequestDelete(apiclient.Record{"company_id": float64(1)})
			Expect(engine.ConfirmDelete(ctx)).NotTo(Succeed())
			Expect(lastToast().Message).To(Equal("Delete failed: Record is still referenced by other records"))
			Expect(engine.DeletePending()).To(BeFalse())
		})
	})

	Describe("table view", func() {
		BeforeEach(func() {
			assets, _ := catalog.Lookup("assets")
			engine = crud.NewEngine(assets, api, center, nil)
			api.rows = rowsOf(25)
			Expect(engine.Refresh(ctx)).To(Succeed())
		})

		It("paginates by ten", func() {
			pv := engine.Page()
			Expect(pv.Pages).To(Equal(3))
			Expect(pv.Rows).To(HaveLen(10))

			engine.SetPage(2)
			Expect(engine.Page().Rows).To(HaveLen(5))
			engine.SetPage(9)
			Expect(engine.Page().Page).To(Equal(2))
			engine.SetPage(-1)
			Expect(engine.Page().Page).To(Equal(0))
		})

		It("searches case-insensitively and resets the page", func() {
			engine.SetPage(2)
			engine.Search("LAPTOP 1")
			pv := engine.Page()
			Expect(pv.Page).To(Equal(0))
			Expect(pv.Total).To(Equal(10))

			engine.Search("")
			Expect(engine.Page().Total).To(Equal(25))
		})

		It("keeps the page on sort and resets it on reload", func() {
			engine.SetPage(1)
			engine.SortBy("asset_id")
			Expect(engine.Page().Page).To(Equal(1))

			Expect(engine.Refresh(ctx)).To(Succeed())
			Expect(engine.Page().Page).To(Equal(0))
		})

		It("sorts numerically and toggles direction", func() {
			engine.SortBy("asset_id")
			Expect(engine.Filtered()[0]["asset_id"]).To(Equal(float64(1)))
			engine.SortBy("asset_id")
			Expect(engine.Filtered()[0]["asset_id"]).To(Equal(float64(25)))
			engine.SortBy("name")
			Expect(engine.ViewState().SortDesc).To(BeFalse())
		})

		It("orders a mixed column the same way whatever the input order", func() {
			assets, _ := catalog.Lookup("assets")
			for _, names := range [][]string{
				{"1a", "2", "10"},
				{"2", "1a", "10"},
				{"10", "2", "1a"},
				{"1a", "10", "2"},
			} {
				api.rows = nil
				for i, name := range names {
					api.rows = append(api.rows, apiclient.Record{"asset_id": float64(i + 1), "name": name})
				}
				engine = crud.NewEngine(assets, api, center, nil)
				Expect(engine.Refresh(ctx)).To(Succeed())
				engine.SortBy("name")

				var got []any
				for _, row := range engine.Filtered() {
					got = append(got, row["name"])
				}
				Expect(got).To(Equal([]any{"2", "10", "1a"}), "input %v", names)
			}
		})

		It("renders the current page", func() {
			var buf bytes.Buffer
			Expect(engine.Render(&buf)).To(Succeed())
			Expect(buf.String()).To(ContainSubstring("Laptop 01"))
			Expect(buf.String()).NotTo(ContainSubstring("Laptop 11"))
			Expect(buf.String()).To(ContainSubstring("Page 1 of 3 (25 records)"))
		})
	})

	Describe("export", func() {
		It("writes the filtered rows and round trips through a CSV reader", func() {
			assets, _ := catalog.Lookup("assets")
			engine = crud.NewEngine(assets, api, center, nil)
			api.rows = []apiclient.Record{
				{"asset_id": float64(1), "name": `Desk, "standing"`, "status": "Assigned"},
				{"asset_id": float64(2), "name": "Chair", "status": nil},
			}
			Expect(engine.Refresh(ctx)).To(Succeed())
			engine.Search("desk")

			dir := GinkgoT().TempDir()
			path, err := engine.Export(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(Equal(filepath.Join(dir, "assets_export.csv")))

			raw, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(ContainSubstring(`"Desk, ""standing"""`))

			records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[1]).To(ContainElement(`Desk, "standing"`))
			Expect(lastToast().Message).To(Equal("Exported 1 records"))
		})

		It("warns when there is nothing to export", func() {
			_, err := engine.Export(GinkgoT().TempDir())
			Expect(err).To(MatchError(crud.ErrNothingToExport))
			Expect(lastToast().Kind).To(Equal(notify.KindWarning))
			Expect(lastToast().Message).To(Equal("No data to export"))
		})
	})
})
