package metrics

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	bucketsConfig = []float64{50, 100, 300, 500, 1000, 5000}
)

const (
	// EnvLatencyBuckets represents an environment variable, which is formatted like "100,200,300,400" as string
	EnvLatencyBuckets       = "CATALOGCTL_LATENCY_BUCKETS"
	RequestsCollectorName   = "http_client_requests_total"
	LatencyCollectorName    = "http_client_request_duration_milliseconds"
	transportErrorCodeLabel = "error"
)

// Transport is an http.RoundTripper that counts requests to the catalog
// API and observes their latency, partitioned by status code, method and
// path template.
type Transport struct {
	next     http.RoundTripper
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func setBucket() {
	var buckets []float64
	conf, ok := os.LookupEnv(EnvLatencyBuckets)
	if ok {
		for _, v := range strings.Split(conf, ",") {
			f64v, err := strconv.ParseFloat(v, 64)
			if err != nil {
				panic(err)
			}
			buckets = append(buckets, f64v)
		}
		bucketsConfig = buckets
	}
}

// NewTransport returns a metrics transport for the provided client name.
func NewTransport(name string, next http.RoundTripper) *Transport {
	setBucket()
	if next == nil {
		next = http.DefaultTransport
	}

	t := Transport{next: next}
	t.requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        RequestsCollectorName,
			Help:        "Number of HTTP requests partitioned by status code, method and HTTP path.",
			ConstLabels: prometheus.Labels{"client": name},
		}, []string{"code", "method", "path"})

	t.latency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        LatencyCollectorName,
		Help:        "Time spent on the request partitioned by status code, method and HTTP path.",
		ConstLabels: prometheus.Labels{"client": name},
		Buckets:     bucketsConfig,
	}, []string{"code", "method", "path"})

	return &t
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)

	code := transportErrorCodeLabel
	if err == nil {
		code = strconv.Itoa(resp.StatusCode)
	}
	path := PathTemplate(req.URL.Path)
	since := float64(time.Since(start).Milliseconds())
	t.requests.WithLabelValues(code, req.Method, path).Inc()
	t.latency.WithLabelValues(code, req.Method, path).Observe(since)
	return resp, err
}

// Collectors returns collector for your own collector registry.
func (t *Transport) Collectors() []prometheus.Collector {
	return []prometheus.Collector{t.requests, t.latency}
}

// Register registers the collectors to DefaultRegisterer, reusing the
// ones already registered by an earlier client.
func (t *Transport) Register() {
	t.requests = registerOrExisting(t.requests).(*prometheus.CounterVec)
	t.latency = registerOrExisting(t.latency).(*prometheus.HistogramVec)
}

func registerOrExisting(c prometheus.Collector) prometheus.Collector {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

// PathTemplate replaces ids in an API path so that every product or task
// shares one label value, e.g. /api/tasks/bulk-delete/{id}.
func PathTemplate(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if s == "" {
			continue
		}
		if _, err := strconv.Atoi(s); err == nil {
			segments[i] = "{id}"
			continue
		}
		if i > 0 && (segments[i-1] == "tasks" && s != "bulk-delete" || segments[i-1] == "bulk-delete") {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}
