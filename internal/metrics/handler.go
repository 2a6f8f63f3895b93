package metrics

import (
	"encoding/json"
	"math"
	"net/http"
	"sort"
	"time"

	dto "github.com/prometheus/client_model/go"
)

// Summary is the JSON response for /metrics/summary.
type Summary struct {
	Console       requestSummary    `json:"console"`
	Backend       backendSummary    `json:"backend"`
	Lists         listInfo          `json:"lists"`
	Validation    validationInfo    `json:"validation"`
	Confirmations confirmationsInfo `json:"confirmations"`
	Logins        loginInfo         `json:"logins"`
	RateLimit     rateLimitInfo     `json:"rateLimit"`
	Audit         auditInfo         `json:"audit"`
	DB            dbInfo            `json:"db"`
	Server        serverInfo        `json:"server"`
}

type requestSummary struct {
	TotalRequests float64 `json:"totalRequests"`
	ErrorRate     float64 `json:"errorRate"`
	P50Latency    float64 `json:"p50Latency"`
	P95Latency    float64 `json:"p95Latency"`
	P99Latency    float64 `json:"p99Latency"`
}

type backendSummary struct {
	requestSummary
	NetworkErrors float64 `json:"networkErrors"`
}

type listInfo struct {
	StaleResponses float64 `json:"staleResponses"`
}

type validationInfo struct {
	Rejections float64 `json:"rejections"`
}

type confirmationsInfo struct {
	Confirmed float64 `json:"confirmed"`
	Declined  float64 `json:"declined"`
	Failed    float64 `json:"failed"`
}

type loginInfo struct {
	Successes float64 `json:"successes"`
	Failures  float64 `json:"failures"`
}

type rateLimitInfo struct {
	Rejections float64 `json:"rejections"`
}

type auditInfo struct {
	Dropped float64 `json:"dropped"`
}

type dbInfo struct {
	TotalConns    float64 `json:"totalConns"`
	IdleConns     float64 `json:"idleConns"`
	AcquiredConns float64 `json:"acquiredConns"`
}

type serverInfo struct {
	StartTime     float64 `json:"startTime"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

// Handler serves the live summary as JSON.
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := m.Summary()
		if err != nil {
			http.Error(w, "failed to gather metrics", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache, no-store")
		_ = json.NewEncoder(w).Encode(summary)
	}
}

// Summary gathers the registry and folds it into a Summary.
func (m *Metrics) Summary() (Summary, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return Summary{}, err
	}

	fam := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		fam[f.GetName()] = f
	}

	start := gaugeValue(fam["enclave_server_start_time_seconds"], nil)
	pool := fam["enclave_db_pool_conns"]
	apiCalls := fam["enclave_api_requests_total"]
	confirmations := fam["enclave_confirmations_total"]
	logins := fam["enclave_logins_total"]

	return Summary{
		Console: requests(fam["enclave_http_requests_total"], fam["enclave_http_request_duration_seconds"]),
		Backend: backendSummary{
			requestSummary: requests(apiCalls, fam["enclave_api_request_duration_seconds"]),
			NetworkErrors:  sumCounter(apiCalls, withLabel("status_code", "0")),
		},
		Lists: listInfo{
			StaleResponses: sumCounter(fam["enclave_list_stale_responses_total"], nil),
		},
		Validation: validationInfo{
			Rejections: sumCounter(fam["enclave_validation_rejections_total"], nil),
		},
		Confirmations: confirmationsInfo{
			Confirmed: sumCounter(confirmations, withLabel("outcome", "confirmed")),
			Declined:  sumCounter(confirmations, withLabel("outcome", "declined")),
			Failed:    sumCounter(confirmations, withLabel("outcome", "failed")),
		},
		Logins: loginInfo{
			Successes: sumCounter(logins, withLabel("result", "success")),
			Failures:  sumCounter(logins, withLabel("result", "failure")),
		},
		RateLimit: rateLimitInfo{
			Rejections: sumCounter(fam["enclave_ratelimit_rejections_total"], nil),
		},
		Audit: auditInfo{
			Dropped: sumCounter(fam["enclave_audit_events_dropped_total"], nil),
		},
		DB: dbInfo{
			TotalConns:    gaugeValue(pool, withLabel("state", "total")),
			IdleConns:     gaugeValue(pool, withLabel("state", "idle")),
			AcquiredConns: gaugeValue(pool, withLabel("state", "acquired")),
		},
		Server: serverInfo{
			StartTime:     start,
			UptimeSeconds: float64(time.Now().Unix()) - start,
		},
	}, nil
}

func requests(counts, durations *dto.MetricFamily) requestSummary {
	return requestSummary{
		TotalRequests: sumCounter(counts, nil),
		ErrorRate:     errorRate(counts),
		P50Latency:    histogramPercentile(durations, 0.50),
		P95Latency:    histogramPercentile(durations, 0.95),
		P99Latency:    histogramPercentile(durations, 0.99),
	}
}

// --- Prometheus metric helpers ---

type metricFilter func(*dto.Metric) bool

func withLabel(name, value string) metricFilter {
	return func(m *dto.Metric) bool {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == name && lp.GetValue() == value {
				return true
			}
		}
		return false
	}
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func sumCounter(f *dto.MetricFamily, match metricFilter) float64 {
	if f == nil {
		return 0
	}
	var total float64
	for _, m := range f.GetMetric() {
		if m.GetCounter() == nil || (match != nil && !match(m)) {
			continue
		}
		total += m.GetCounter().GetValue()
	}
	return total
}

// gaugeValue returns the first matching gauge.
func gaugeValue(f *dto.MetricFamily, match metricFilter) float64 {
	if f == nil {
		return 0
	}
	for _, m := range f.GetMetric() {
		if m.GetGauge() != nil && (match == nil || match(m)) {
			return m.GetGauge().GetValue()
		}
	}
	return 0
}

// errorRate counts 4xx, 5xx and transport failures (status_code "0").
func errorRate(f *dto.MetricFamily) float64 {
	if f == nil {
		return 0
	}
	var total, failed float64
	for _, m := range f.GetMetric() {
		if m.GetCounter() == nil {
			continue
		}
		v := m.GetCounter().GetValue()
		total += v
		code := labelValue(m, "status_code")
		if code == "0" || (len(code) > 0 && code[0] >= '4') {
			failed += v
		}
	}
	if total == 0 {
		return 0
	}
	return failed / total
}

// histogramPercentile computes a percentile from aggregated histogram buckets
// using linear interpolation.
func histogramPercentile(f *dto.MetricFamily, q float64) float64 {
	if f == nil {
		return 0
	}

	type bucket struct {
		upperBound      float64
		cumulativeCount uint64
	}
	var totalCount uint64
	byBound := make(map[float64]uint64)

	for _, m := range f.GetMetric() {
		h := m.GetHistogram()
		if h == nil {
			continue
		}
		totalCount += h.GetSampleCount()
		for _, b := range h.GetBucket() {
			byBound[b.GetUpperBound()] += b.GetCumulativeCount()
		}
	}
	if totalCount == 0 {
		return 0
	}

	buckets := make([]bucket, 0, len(byBound))
	for ub, count := range byBound {
		if math.IsInf(ub, 1) {
			continue
		}
		buckets = append(buckets, bucket{upperBound: ub, cumulativeCount: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].upperBound < buckets[j].upperBound
	})

	rank := q * float64(totalCount)
	var prevBound float64
	var prevCount uint64
	for _, b := range buckets {
		if float64(b.cumulativeCount) >= rank {
			inBucket := b.cumulativeCount - prevCount
			if inBucket == 0 {
				return b.upperBound
			}
			fraction := (rank - float64(prevCount)) / float64(inBucket)
			return prevBound + fraction*(b.upperBound-prevBound)
		}
		prevBound = b.upperBound
		prevCount = b.cumulativeCount
	}

	// Rank falls in the +Inf bucket.
	if len(buckets) > 0 {
		return buckets[len(buckets)-1].upperBound
	}
	return 0
}
