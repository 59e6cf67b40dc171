package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/productimporter/catalogctl/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var _ = Describe("metrics", func() {
	DescribeTable("PathTemplate",
		func(path, expected string) {
			Expect(metrics.PathTemplate(path)).To(Equal(expected))
		},
		Entry("collection", "/api/products/", "/api/products/"),
		Entry("product", "/api/products/42", "/api/products/{id}"),
		Entry("import status", "/api/tasks/3f2b-8c1e", "/api/tasks/{id}"),
		Entry("bulk delete status", "/api/tasks/bulk-delete/9a7d", "/api/tasks/bulk-delete/{id}"),
	)

	It("counts requests by code, method and path", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		transport := metrics.NewTransport("test", nil)
		client := &http.Client{Transport: transport}
		for i := 0; i < 2; i++ {
			resp, err := client.Get(server.URL + "/api/products/7")
			Expect(err).To(BeNil())
			resp.Body.Close()
		}

		collectors := transport.Collectors()
		Expect(testutil.CollectAndCount(collectors[0])).To(Equal(1))
		Expect(testutil.CollectAndCount(collectors[1])).To(Equal(1))
	})

	It("shares the registered collectors between clients", func() {
		first := metrics.NewTransport("shared", nil)
		second := metrics.NewTransport("shared", nil)
		Expect(first.Register).NotTo(Panic())
		Expect(second.Register).NotTo(Panic())
		Expect(second.Collectors()).To(Equal(first.Collectors()))
	})

	It("writes job metrics to a textfile", func() {
		metrics.IncreaseJobsTotalMetric("import", "success")
		metrics.IncreaseStatusPollsTotalMetric("import", "PROGRESS")
		metrics.ObserveJobDurationMetric("import", 3*time.Second)

		path := filepath.Join(GinkgoT().TempDir(), "catalogctl.prom")
		Expect(metrics.WriteTextfile(path)).To(Succeed())

		content, err := os.ReadFile(path)
		Expect(err).To(BeNil())
		Expect(string(content)).To(ContainSubstring(`catalogctl_jobs_total{kind="import",outcome="success"}`))
		Expect(string(content)).To(ContainSubstring(`catalogctl_status_polls_total{kind="import",state="PROGRESS"}`))
		Expect(string(content)).To(ContainSubstring("catalogctl_job_duration_seconds_bucket"))
	})
})
