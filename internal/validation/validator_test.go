package validation_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	api "github.com/productimporter/catalogctl/api/v1alpha1"
	"github.com/productimporter/catalogctl/internal/validation"
)

var _ = Describe("validator", func() {
	var v *validation.Validator

	BeforeEach(func() {
		v = validation.NewValidator()
		v.Register(validation.NewProductValidationRules()...)
	})

	DescribeTable("products",
		func(product api.ProductCreate, msg string) {
			err := v.Struct(product)
			if msg == "" {
				Expect(err).To(BeNil())
				return
			}
			Expect(err).To(MatchError(ContainSubstring(msg)))
		},
		Entry("valid", api.ProductCreate{Sku: "AB-1", Name: "Widget"}, ""),
		Entry("missing sku", api.ProductCreate{Name: "Widget"}, "sku is required"),
		Entry("missing name", api.ProductCreate{Sku: "AB-1"}, "name is required"),
		Entry("sku with spaces", api.ProductCreate{Sku: "AB 1", Name: "Widget"}, "sku must not contain whitespace"),
		Entry("long name", api.ProductCreate{Sku: "AB-1", Name: strings.Repeat("x", 256)}, "name must be at most 255 characters"),
	)

	DescribeTable("webhooks",
		func(webhook api.WebhookCreate, msg string) {
			err := v.Struct(webhook)
			if msg == "" {
				Expect(err).To(BeNil())
				return
			}
			Expect(err).To(MatchError(ContainSubstring(msg)))
		},
		Entry("valid", api.WebhookCreate{Url: "https://example.com/hook", EventType: "product.created"}, ""),
		Entry("not a url", api.WebhookCreate{Url: "example", EventType: "product.created"}, "url must be an http or https URL"),
		Entry("missing event type", api.WebhookCreate{Url: "http://example.com"}, "event_type is required"),
	)

	It("joins several field errors", func() {
		err := v.Struct(api.ProductCreate{})
		Expect(err).To(MatchError("sku is required; name is required"))
	})
})
