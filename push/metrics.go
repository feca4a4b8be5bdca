package push

import "github.com/prometheus/client_golang/prometheus"

func registerMetrics(reg *prometheus.Registry, p *push) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "push",
		Subsystem: "sender",
		Name:      "send_count",
		Help:      "total count of send operations",
	}, func() float64 {
		return float64(p.metrics.sendCount.Load())
	}))
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "push",
		Subsystem: "sender",
		Name:      "success_count",
		Help:      "total count of messages accepted by fcm",
	}, func() float64 {
		return float64(p.metrics.successCount.Load())
	}))
	p.metrics.failures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "push",
		Subsystem: "sender",
		Name:      "failures_total",
		Help:      "failed send operations by the last stage reached",
	}, []string{"stage"})
	reg.MustRegister(p.metrics.failures)
	p.metrics.sendDuration = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: "push",
		Subsystem: "sender",
		Name:      "duration_seconds",
		Objectives: map[float64]float64{
			0.5:  0.5,
			0.85: 0.01,
			0.95: 0.0005,
			0.99: 0.0001,
		},
	}, []string{"result"})
	reg.MustRegister(p.metrics.sendDuration)
}
