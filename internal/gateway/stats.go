package gateway

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/campusbot/course-ai-platform/pkg/logging"
)

const (
	exchangesMetric     = "campus_chat_exchanges_total"
	replySegmentsMetric = "campus_chat_reply_segments_total"
	latencyMetric       = "campus_chat_exchange_seconds"
)

// ChatStats is a point-in-time summary of widget traffic, derived from
// the process's own Prometheus registry.
type ChatStats struct {
	GeneratedAt     string          `json:"generated_at"`
	ExchangesTotal  int64           `json:"exchanges_total"`
	ExchangesOK     int64           `json:"exchanges_ok"`
	ExchangesFailed int64           `json:"exchanges_failed"`
	ReplySegments   int64           `json:"reply_segments"`
	Latency         LatencySnapshot `json:"latency"`
}

type LatencySnapshot struct {
	Total   int64           `json:"total"`
	P90Ms   float64         `json:"p90_ms"`
	P95Ms   float64         `json:"p95_ms"`
	Buckets []LatencyBucket `json:"buckets"`
}

type LatencyBucket struct {
	LeSeconds float64 `json:"le_seconds"`
	Label     string  `json:"label,omitempty"`
	Count     int64   `json:"count"`
}

// StatsHandler serves the chat traffic summary.
type StatsHandler struct {
	gatherer prometheus.Gatherer
	logger   *logging.Logger
}

func NewStatsHandler(gatherer prometheus.Gatherer, logger *logging.Logger) *StatsHandler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsHandler{gatherer: gatherer, logger: logger}
}

// GetStats returns the current chat traffic summary.
// GET /chat/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	mfs, err := h.gatherer.Gather()
	if err != nil {
		h.logger.Error("failed to gather chat stats", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	stats := ChatStats{
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
		ExchangesOK:     counterTotal(mfs, exchangesMetric, "outcome", "success"),
		ExchangesFailed: counterTotal(mfs, exchangesMetric, "outcome", "error"),
		ReplySegments:   counterTotal(mfs, replySegmentsMetric, "", ""),
		Latency:         snapshotExchangeLatency(mfs),
	}
	stats.ExchangesTotal = counterTotal(mfs, exchangesMetric, "", "")

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}

// counterTotal sums all counter samples of the named family, optionally
// keeping only those carrying the given label value.
func counterTotal(mfs []*dto.MetricFamily, name, labelName, labelValue string) int64 {
	var total float64
	for _, mf := range mfs {
		if mf == nil || mf.GetName() != name {
			continue
		}
		for _, metric := range mf.Metric {
			if metric == nil {
				continue
			}
			if labelName != "" && !hasLabel(metric, labelName, labelValue) {
				continue
			}
			if c := metric.GetCounter(); c != nil {
				total += c.GetValue()
			}
		}
	}
	return int64(total)
}

// snapshotExchangeLatency aggregates the exchange latency histogram
// across outcomes, keeping only successful exchanges.
func snapshotExchangeLatency(mfs []*dto.MetricFamily) LatencySnapshot {
	var family *dto.MetricFamily
	for _, mf := range mfs {
		if mf != nil && mf.GetName() == latencyMetric {
			family = mf
			break
		}
	}
	if family == nil {
		return LatencySnapshot{}
	}

	cumulativeByUpper := map[float64]uint64{}
	var sampleCount uint64

	for _, metric := range family.Metric {
		if metric == nil {
			continue
		}
		if !hasLabel(metric, "outcome", "success") {
			continue
		}
		hist := metric.GetHistogram()
		if hist == nil {
			continue
		}
		sampleCount += hist.GetSampleCount()
		for _, b := range hist.Bucket {
			if b == nil {
				continue
			}
			cumulativeByUpper[b.GetUpperBound()] += b.GetCumulativeCount()
		}
	}

	if sampleCount == 0 || len(cumulativeByUpper) == 0 {
		return LatencySnapshot{}
	}

	uppers := make([]float64, 0, len(cumulativeByUpper))
	for upper := range cumulativeByUpper {
		uppers = append(uppers, upper)
	}
	sort.Float64s(uppers)

	buckets := make([]LatencyBucket, 0, len(uppers))
	var prev uint64
	var lastFiniteUpper float64
	for _, upper := range uppers {
		cum := cumulativeByUpper[upper]
		if math.IsInf(upper, 1) {
			overflow := int64(0)
			if cum >= prev {
				overflow = int64(cum - prev)
			} else {
				overflow = int64(cum)
			}
			if overflow > 0 {
				buckets = append(buckets, LatencyBucket{
					LeSeconds: lastFiniteUpper,
					Label:     fmt.Sprintf(">%s", formatSeconds(lastFiniteUpper)),
					Count:     overflow,
				})
			}
			prev = cum
			continue
		}

		lastFiniteUpper = upper
		count := int64(0)
		if cum >= prev {
			count = int64(cum - prev)
		} else {
			count = int64(cum)
		}
		buckets = append(buckets, LatencyBucket{
			LeSeconds: upper,
			Count:     count,
		})
		prev = cum
	}

	p90 := histogramQuantile(0.90, sampleCount, uppers, cumulativeByUpper)
	p95 := histogramQuantile(0.95, sampleCount, uppers, cumulativeByUpper)

	return LatencySnapshot{
		Total:   int64(sampleCount),
		P90Ms:   p90 * 1000.0,
		P95Ms:   p95 * 1000.0,
		Buckets: buckets,
	}
}

func hasLabel(metric *dto.Metric, name, value string) bool {
	for _, lp := range metric.Label {
		if lp == nil {
			continue
		}
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}

func histogramQuantile(q float64, total uint64, uppers []float64, cumulativeByUpper map[float64]uint64) float64 {
	if total == 0 || q <= 0 {
		return 0
	}
	if q >= 1 {
		for i := len(uppers) - 1; i >= 0; i-- {
			if !math.IsInf(uppers[i], 1) {
				return uppers[i]
			}
		}
		return 0
	}

	target := q * float64(total)
	var prevUpper float64
	var prevCum float64

	for _, upper := range uppers {
		cum := float64(cumulativeByUpper[upper])
		if cum < target {
			prevUpper = upper
			prevCum = cum
			continue
		}

		// If we can't interpolate, return the bucket upper bound.
		bucketCount := cum - prevCum
		if bucketCount <= 0 || upper == prevUpper {
			return upper
		}
		if math.IsInf(upper, 1) {
			return prevUpper
		}

		fraction := (target - prevCum) / bucketCount
		if fraction < 0 {
			fraction = 0
		}
		if fraction > 1 {
			fraction = 1
		}

		lower := prevUpper
		return lower + fraction*(upper-lower)
	}

	return uppers[len(uppers)-1]
}

func formatSeconds(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	if seconds < 1 {
		return fmt.Sprintf("%.2fs", seconds)
	}
	if seconds < 10 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	return fmt.Sprintf("%.0fs", seconds)
}
