package metrics

import "github.com/prometheus/client_golang/prometheus"

// Report outcomes.
const (
	ReportGenerated = "generated"
	ReportInvalid   = "invalid"
	ReportFailed    = "failed"
)

// Domain holds the application counters. A nil *Domain records nothing.
type Domain struct {
	reports          *prometheus.CounterVec
	imagesOmitted    prometheus.Counter
	archived         prometheus.Counter
	dashboardRefresh *prometheus.CounterVec
	renderDuration   prometheus.Histogram
}

// New registers the domain metrics on reg.
func New(reg prometheus.Registerer) (*Domain, error) {
	m := &Domain{
		reports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mri_reports_total",
				Help: "Report generation requests by outcome.",
			},
			[]string{"outcome"},
		),
		imagesOmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mri_report_images_omitted_total",
			Help: "Reports produced without the scan because the image could not be embedded.",
		}),
		archived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mri_reports_archived_total",
			Help: "Reports stored in object storage.",
		}),
		dashboardRefresh: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_refreshes_total",
				Help: "Dashboard statistics refreshes by outcome.",
			},
			[]string{"outcome"},
		),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mri_report_render_duration_seconds",
			Help:    "Time spent laying out and serialising a report.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	for _, c := range []prometheus.Collector{m.reports, m.imagesOmitted, m.archived, m.dashboardRefresh, m.renderDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Domain) Report(outcome string) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(outcome).Inc()
}

func (m *Domain) ImageOmitted() {
	if m == nil {
		return
	}
	m.imagesOmitted.Inc()
}

func (m *Domain) Archived() {
	if m == nil {
		return
	}
	m.archived.Inc()
}

func (m *Domain) ObserveRender(seconds float64) {
	if m == nil {
		return
	}
	m.renderDuration.Observe(seconds)
}

// DashboardRefresh implements dashboard.RefreshObserver.
func (m *Domain) DashboardRefresh(outcome string) {
	if m == nil {
		return
	}
	m.dashboardRefresh.WithLabelValues(outcome).Inc()
}
