package config_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/productimporter/catalogctl/internal/config"
)

var _ = Describe("config", func() {
	AfterEach(func() {
		os.Unsetenv("CATALOGCTL_POLL_INTERVAL")
		os.Unsetenv("CATALOGCTL_PAGE_SIZE")
		os.Unsetenv("CATALOGCTL_SERVER_URL")
	})

	It("uses the dashboard defaults", func() {
		cfg, err := config.New()
		Expect(err).To(BeNil())
		Expect(cfg.LogLevel).To(Equal("info"))
		Expect(cfg.PollInterval).To(Equal(time.Second))
		Expect(cfg.BulkDeleteGrace).To(Equal(2 * time.Second))
		Expect(cfg.ImportGrace).To(BeZero())
		Expect(cfg.AlertTTL).To(Equal(5 * time.Second))
		Expect(cfg.PageSize).To(Equal(10))
	})

	It("matches the defaults without environment", func() {
		cfg, err := config.New()
		Expect(err).To(BeNil())
		Expect(cfg).To(Equal(config.Default()))
	})

	It("reads overrides from the environment", func() {
		os.Setenv("CATALOGCTL_POLL_INTERVAL", "250ms")
		os.Setenv("CATALOGCTL_PAGE_SIZE", "25")
		os.Setenv("CATALOGCTL_SERVER_URL", "http://catalog:8000")

		cfg, err := config.New()
		Expect(err).To(BeNil())
		Expect(cfg.PollInterval).To(Equal(250 * time.Millisecond))
		Expect(cfg.PageSize).To(Equal(25))
		Expect(cfg.ServerUrl).To(Equal("http://catalog:8000"))
	})

	It("fails on malformed durations", func() {
		os.Setenv("CATALOGCTL_POLL_INTERVAL", "soon")
		_, err := config.New()
		Expect(err).NotTo(BeNil())
	})
})
