package fault

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts classifications by status code and kind
type Metrics struct {
	classified *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them on reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		classified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fault_classifications_total",
			Help: "Number of errors classified, by resulting status code and fault kind.",
		}, []string{"status_code", "kind"}),
	}
	if reg != nil {
		if err := reg.Register(m.classified); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records one classification. A nil Metrics is a no-op.
func (m *Metrics) Observe(res Result, f Fault) {
	if m == nil {
		return
	}
	m.classified.WithLabelValues(strconv.Itoa(res.StatusCode), f.Kind.String()).Inc()
}
