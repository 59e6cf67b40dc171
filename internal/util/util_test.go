package util_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/productimporter/catalogctl/internal/util"
)

var _ = Describe("Duration", func() {
	It("reads duration strings", func() {
		var d util.Duration
		Expect(json.Unmarshal([]byte(`"1m30s"`), &d)).To(Succeed())
		Expect(d.Duration).To(Equal(90 * time.Second))
	})

	It("reads nanoseconds", func() {
		var d util.Duration
		Expect(json.Unmarshal([]byte(`1000000000`), &d)).To(Succeed())
		Expect(d.Duration).To(Equal(time.Second))
	})

	It("writes a duration string", func() {
		b, err := json.Marshal(util.Duration{Duration: 2 * time.Second})
		Expect(err).To(BeNil())
		Expect(string(b)).To(Equal(`"2s"`))
	})

	It("rejects garbage", func() {
		var d util.Duration
		Expect(json.Unmarshal([]byte(`"later"`), &d)).NotTo(Succeed())
		Expect(json.Unmarshal([]byte(`true`), &d)).NotTo(Succeed())
	})
})
