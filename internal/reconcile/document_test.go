package reconcile

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Document decoding", func() {
	var (
		input string
		doc   Document
		err   error
	)

	JustBeforeEach(func() {
		doc = Document{}
		err = json.Unmarshal([]byte(input), &doc)
	})

	When("decoding a complete invoice object", func() {
		BeforeEach(func() {
			input = `{
				"invoice_no": "INV-001",
				"date": "2024-03-20",
				"vendor": "Acme Inc.",
				"items": [{"description": "Widget A", "quantity": 2, "price": 10.00}],
				"total": 20.00
			}`
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should map invoice_no to the identifier", func() {
			Expect(doc.Identifier).To(Equal("INV-001"))
		})

		It("should decode the items", func() {
			Expect(doc.Items).To(HaveLen(1))
			Expect(doc.Items[0]).To(Equal(LineItem{Description: "Widget A", Quantity: 2, Price: 10.00}))
		})

		It("should decode the total", func() {
			Expect(doc.Total).To(Equal(20.00))
		})
	})

	When("decoding a purchase order object", func() {
		BeforeEach(func() {
			input = `{"po_no": "PO-777", "vendor": "Acme Inc.", "items": [], "total": 0}`
		})

		It("should map po_no to the identifier", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Identifier).To(Equal("PO-777"))
		})
	})

	When("optional fields are absent", func() {
		BeforeEach(func() {
			input = `{"invoice_no": "INV-002"}`
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should default vendor to empty string", func() {
			Expect(doc.Vendor).To(Equal(""))
		})

		It("should default total to zero", func() {
			Expect(doc.Total).To(Equal(0.0))
		})

		It("should default items to an empty list", func() {
			Expect(doc.Items).NotTo(BeNil())
			Expect(doc.Items).To(BeEmpty())
		})
	})

	When("quantity arrives as a numeric string", func() {
		BeforeEach(func() {
			input = `{"items": [{"description": "Widget A", "quantity": "2", "price": "10.00"}]}`
		})

		It("should coerce it to a number", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Items[0].Quantity).To(Equal(2.0))
			Expect(doc.Items[0].Price).To(Equal(10.00))
		})
	})

	When("quantity is not coercible to a number", func() {
		BeforeEach(func() {
			input = `{"items": [{"description": "Widget A", "quantity": "two", "price": 10.00}]}`
		})

		It("returns an error naming the item", func() {
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Widget A"))
			Expect(err.Error()).To(ContainSubstring("quantity"))
		})
	})

	When("price is null", func() {
		BeforeEach(func() {
			input = `{"items": [{"description": "Widget A", "quantity": 1, "price": null}]}`
		})

		It("should default it to zero", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Items[0].Price).To(Equal(0.0))
		})
	})
})
