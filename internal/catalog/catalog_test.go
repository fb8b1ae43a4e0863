package catalog_test

import (
	"strings"
	"testing"

	"github.com/hrmspro/hrms/internal/catalog"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCatalog(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Catalog Suite")
}

var _ = Describe("Catalog", func() {
	Describe("Tabs", func() {
		It("gives every tab a unique resource and a primary key", func() {
			seen := map[string]bool{}
			for _, tab := range catalog.Tabs() {
				Expect(seen[tab.Resource]).To(BeFalse(), tab.Resource)
				seen[tab.Resource] = true
				Expect(tab.PK).NotTo(BeEmpty())
				Expect(tab.Table).NotTo(BeEmpty())
				Expect(tab.Columns).NotTo(BeEmpty())
				Expect(tab.Fields).NotTo(BeEmpty())
			}
			Expect(len(seen)).To(BeNumerically(">=", 50))
		})

		It("only uses known field types", func() {
			known := map[catalog.FieldType]bool{
				catalog.FieldText: true, catalog.FieldNumber: true, catalog.FieldDate: true,
				catalog.FieldTime: true, catalog.FieldDateTime: true, catalog.FieldEmail: true,
				catalog.FieldSelect: true, catalog.FieldPassword: true,
			}
			for _, tab := range catalog.Tabs() {
				for _, f := range tab.Fields {
					Expect(known[f.Type]).To(BeTrue(), tab.Resource+"."+f.Key)
					if f.Type == catalog.FieldSelect {
						Expect(f.Options).NotTo(BeEmpty())
					}
				}
			}
		})
	})

	Describe("Lookup", func() {
		It("finds a tab by resource", func() {
			tab, ok := catalog.Lookup("leave-requests")
			Expect(ok).To(BeTrue())
			Expect(tab.Table).To(Equal("leave_requests"))
			Expect(tab.PK).To(Equal("request_id"))

			f, ok := tab.Field("from_date")
			Expect(ok).To(BeTrue())
			Expect(f.Type).To(Equal(catalog.FieldDate))
		})

		It("reports unknown resources", func() {
			_, ok := catalog.Lookup("nope")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Keys", func() {
		It("lists the primary key, fields and display-only columns once", func() {
			tab, _ := catalog.Lookup("employee-status-history")
			Expect(tab.Keys()).To(Equal([]string{"status_id", "emp_id", "status", "changed_at"}))
			Expect(tab.HasKey("changed_at")).To(BeTrue())
			Expect(tab.HasKey("password")).To(BeFalse())
		})
	})

	Describe("ExportFilename", func() {
		It("flattens nested resources", func() {
			tab, _ := catalog.Lookup("finance/expenses")
			Expect(tab.ExportFilename()).To(Equal("finance_expenses_export.csv"))

			tab, _ = catalog.Lookup("employees")
			Expect(tab.ExportFilename()).To(Equal("employees_export.csv"))
		})
	})

	Describe("Text", func() {
		DescribeTable("stringifies record values",
			func(v any, want string) {
				Expect(catalog.Text(v)).To(Equal(want))
			},
			Entry("nil", nil, ""),
			Entry("integral float", float64(7), "7"),
			Entry("fractional float", 12.5, "12.5"),
			Entry("int64", int64(42), "42"),
			Entry("bool", true, "true"),
			Entry("string", "ACTIVE", "ACTIVE"),
		)

		It("renders badges with a dash for empty values", func() {
			tab, _ := catalog.Lookup("employees")
			c, ok := tab.Column("status")
			Expect(ok).To(BeTrue())
			Expect(c.Format(nil)).To(Equal("—"))
			Expect(c.Format("ACTIVE")).To(Equal("ACTIVE"))
		})
	})

	Describe("Tables", func() {
		It("orders referenced tables first", func() {
			tables, err := catalog.Tables()
			Expect(err).NotTo(HaveOccurred())

			pos := map[string]int{}
			for i, t := range tables {
				pos[t.Name] = i
			}
			Expect(pos["companies"]).To(BeNumerically("<", pos["branches"]))
			Expect(pos["branches"]).To(BeNumerically("<", pos["departments"]))
			Expect(pos["departments"]).To(BeNumerically("<", pos["employees"]))
			Expect(pos["employees"]).To(BeNumerically("<", pos["personal_details"]))
			Expect(pos["payslips"]).To(BeNumerically("<", pos["payroll_details"]))

			for _, t := range tables {
				for _, c := range t.Columns {
					if c.Ref != "" && c.Ref != t.Name {
						Expect(pos[c.Ref]).To(BeNumerically("<", pos[t.Name]), t.Name+"."+c.Name)
					}
				}
			}
		})

		It("fills display-only timestamps in the database", func() {
			tab, _ := catalog.Lookup("payroll-runs")
			col, ok := tab.Storage().Column("processed_at")
			Expect(ok).To(BeTrue())
			Expect(col.Timestamp).To(BeTrue())
			Expect(col.Type).To(Equal(catalog.FieldDateTime))
		})
	})

	Describe("SchemaSQL", func() {
		It("renders SQLite tables with autoincrement keys", func() {
			stmts, err := catalog.SchemaSQL(catalog.SQLite)
			Expect(err).NotTo(HaveOccurred())
			all := strings.Join(stmts, "\n")
			Expect(all).To(ContainSubstring(`"emp_id" INTEGER PRIMARY KEY AUTOINCREMENT`))
			Expect(all).To(ContainSubstring(`"amount" REAL NOT NULL`))
		})

		It("renders Postgres tables with serial keys, defaults and references", func() {
			stmts, err := catalog.SchemaSQL(catalog.Postgres)
			Expect(err).NotTo(HaveOccurred())
			all := strings.Join(stmts, "\n")
			Expect(all).To(ContainSubstring(`"request_id" BIGSERIAL PRIMARY KEY`))
			Expect(all).To(ContainSubstring(`"status" TEXT DEFAULT 'PENDING'`))
			Expect(all).To(ContainSubstring(`"emp_id" BIGINT PRIMARY KEY REFERENCES "employees" ("emp_id")`))
			Expect(all).To(ContainSubstring(`"changed_at" TIMESTAMP DEFAULT CURRENT_TIMESTAMP`))
		})
	})

	Describe("DialectForDriver", func() {
		It("maps drivers", func() {
			d, err := catalog.DialectForDriver("pgx")
			Expect(err).NotTo(HaveOccurred())
			Expect(d).To(Equal(catalog.Postgres))

			_, err = catalog.DialectForDriver("mysql")
			Expect(err).To(HaveOccurred())
		})
	})
})
