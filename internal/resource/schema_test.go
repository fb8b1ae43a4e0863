package resource_test

import (
	"github.com/hrmspro/hrms/internal"
	"github.com/hrmspro/hrms/internal/catalog"
	"github.com/hrmspro/hrms/internal/resource"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Schemas", func() {
	var (
		schemas  *resource.Schemas
		expenses catalog.Tab
	)

	BeforeEach(func() {
		schemas = resource.NewSchemas()
		var ok bool
		expenses, ok = catalog.Lookup("finance/expenses")
		Expect(ok).To(BeTrue())
	})

	It("only requires fields on create", func() {
		create := resource.Document(expenses, resource.ModeCreate)
		Expect(create["required"]).To(ConsistOf("amount", "category", "claim_date", "employee_id"))
		Expect(create["additionalProperties"]).To(BeFalse())

		update := resource.Document(expenses, resource.ModeUpdate)
		Expect(update).NotTo(HaveKey("required"))
	})

	It("returns typed values", func() {
		rec, err := schemas.Validate(expenses, resource.ModeCreate,
			[]byte(`{"employee_id":3,"category":"Meals","amount":12.75,"claim_date":"2024-02-02","description":""}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(rec["employee_id"]).To(Equal(int64(3)))
		Expect(rec["amount"]).To(Equal(12.75))
		Expect(rec["description"]).To(Equal(""))
	})

	It("clears blank optional non text values", func() {
		leave, ok := catalog.Lookup("leave-requests")
		Expect(ok).To(BeTrue())

		rec, err := schemas.Validate(leave, resource.ModeUpdate, []byte(`{"from_date":""}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(rec).To(HaveKeyWithValue("from_date", BeNil()))

		_, err = schemas.Validate(expenses, resource.ModeUpdate, []byte(`{"claim_date":""}`))
		Expect(err).To(MatchError(ContainSubstring("Claim Date is required")))
	})

	It("collects one message per failing field", func() {
		_, err := schemas.Validate(expenses, resource.ModeCreate, []byte(`{"category":"Meals","bogus":1}`))
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())

		details := appErr.Details.(internal.ValidationErrors)
		fields := make([]string, 0, len(details.Errors))
		for _, e := range details.Errors {
			fields = append(fields, e.Field)
		}
		Expect(fields).To(ConsistOf("amount", "claim_date", "employee_id", "bogus"))
	})

	It("checks time shapes", func() {
		shifts, ok := catalog.Lookup("shifts")
		Expect(ok).To(BeTrue())
		_, err := schemas.Validate(shifts, resource.ModeUpdate, []byte(`{"start_time":"9am"}`))
		Expect(err).To(HaveOccurred())
		_, err = schemas.Validate(shifts, resource.ModeUpdate, []byte(`{"start_time":"09:00"}`))
		Expect(err).NotTo(HaveOccurred())
	})
})
