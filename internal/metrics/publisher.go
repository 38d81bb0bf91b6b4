package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"
)

// Publisher renders final run metrics under a namespace to an external
// sink. Publication is fire-and-forget with respect to the run: callers
// log a returned error instead of escalating it.
type Publisher struct {
	out    io.Writer
	format string
}

// NewPublisher creates a publisher writing to out. format is "text" or
// "json"; anything else falls back to text.
func NewPublisher(out io.Writer, format string) *Publisher {
	return &Publisher{out: out, format: format}
}

// Publish renders the totals plus the engine's named counters.
func (p *Publisher) Publish(m AggregateMetrics, namespace string, counters map[string]int64) error {
	if p.format == "json" {
		return publishJSON(p.out, m, namespace, counters)
	}
	return publishText(p.out, m, namespace, counters)
}

func publishText(out io.Writer, m AggregateMetrics, namespace string, counters map[string]int64) error {
	w := &stickyWriter{out: out}

	fmt.Fprintf(w, "\nloadsmith - Synthetic Load Results [%s]\n", namespace)
	fmt.Fprintln(w, "=========================================")
	fmt.Fprintf(w, "Wall time:        %v\n", m.Wall.Round(time.Millisecond))
	fmt.Fprintf(w, "Terminal records: %d\n", m.Records)
	fmt.Fprintf(w, "Bytes observed:   %d\n", m.Bytes)
	fmt.Fprintf(w, "Throughput:       %.1f records/sec\n", m.RecordsPerSec())
	fmt.Fprintf(w, "Avg latency:      %s\n", FormatDuration(m.AvgLatency()))
	fmt.Fprintf(w, "Errors:           %d (%.1f%%)\n", m.Errors, m.ErrorRate())

	if len(counters) > 0 {
		fmt.Fprintln(w, "\nCounters:")
		for _, name := range sortedKeys(counters) {
			fmt.Fprintf(w, "  %-24s %d\n", name, counters[name])
		}
	}
	return w.err
}

func publishJSON(out io.Writer, m AggregateMetrics, namespace string, counters map[string]int64) error {
	payload := struct {
		Namespace     string           `json:"namespace"`
		Wall          string           `json:"wall"`
		Records       int64            `json:"records"`
		Bytes         int64            `json:"bytes"`
		RecordsPerSec float64          `json:"recordsPerSec"`
		AvgLatency    string           `json:"avgLatency"`
		Errors        int64            `json:"errors"`
		ErrorRate     float64          `json:"errorRate"`
		Counters      map[string]int64 `json:"counters,omitempty"`
	}{
		Namespace:     namespace,
		Wall:          m.Wall.Round(time.Millisecond).String(),
		Records:       m.Records,
		Bytes:         m.Bytes,
		RecordsPerSec: m.RecordsPerSec(),
		AvgLatency:    FormatDuration(m.AvgLatency()),
		Errors:        m.Errors,
		ErrorRate:     m.ErrorRate(),
		Counters:      counters,
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

// FormatDuration formats a latency for display.
func FormatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// stickyWriter remembers the first write error so a sequence of prints can
// be checked once at the end.
type stickyWriter struct {
	out io.Writer
	err error
}

func (w *stickyWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return len(p), nil
	}
	n, err := w.out.Write(p)
	if err != nil {
		w.err = err
	}
	return n, err
}
