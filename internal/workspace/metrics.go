package workspace

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/malphas-lang/runefront/internal/parser"
)

// Outcome labels for the files counter.
const (
	OutcomeOK         = "ok"
	OutcomeLexError   = "lex_error"
	OutcomeParseError = "parse_error"
	OutcomeTooDeep    = "too_deep"
	OutcomeUnreadable = "unreadable"
	OutcomeAbandoned  = "abandoned"
)

// Metrics records parse activity for a Prometheus registry. A nil *Metrics
// records nothing.
type Metrics struct {
	Files    *prometheus.CounterVec
	Duration prometheus.Histogram
	Items    prometheus.Counter
	Depth    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "runefront",
			Name:      "files_parsed_total",
			Help:      "Source files processed, by outcome.",
		}, []string{"outcome"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "runefront",
			Name:      "parse_duration_seconds",
			Help:      "Time to read, lex and parse one file.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		Items: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runefront",
			Name:      "items_total",
			Help:      "Items numbered across all parsed files.",
		}),
		Depth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "runefront",
			Name:      "nesting_depth",
			Help:      "Deepest brace nesting per file.",
			Buckets:   prometheus.LinearBuckets(0, 4, 8),
		}),
	}

	for _, c := range []prometheus.Collector{m.Files, m.Duration, m.Items, m.Depth} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "register metrics")
		}
	}
	return m, nil
}

func (m *Metrics) observe(f *File) {
	if m == nil {
		return
	}
	m.Files.WithLabelValues(outcome(f.Err)).Inc()
	m.Duration.Observe(f.Took.Seconds())
	m.Depth.Observe(float64(f.Depth))
	if f.Table != nil {
		m.Items.Add(float64(f.Table.Len()))
	}
}

func outcome(err error) string {
	var (
		lexErrs    parser.LexErrors
		parseErr   *parser.ParseError
		depthErr   *DepthError
		unreadable *UnreadableError
	)
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &lexErrs):
		return OutcomeLexError
	case errors.As(err, &parseErr):
		return OutcomeParseError
	case errors.As(err, &depthErr):
		return OutcomeTooDeep
	case errors.As(err, &unreadable):
		return OutcomeUnreadable
	default:
		return OutcomeAbandoned
	}
}
