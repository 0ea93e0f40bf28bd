package adoption

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	applicationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adoptipet_adoption_applications_total",
		Help: "Candidaturas creadas.",
	})

	acceptancesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adoptipet_adoption_acceptances_total",
		Help: "Candidaturas aceptadas por el autor (incluye reintentos idempotentes).",
	})

	transfersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adoptipet_adoption_transfers_total",
		Help: "Transferencias de dueño aprobadas por un admin.",
	})

	rejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adoptipet_adoption_rejections_total",
			Help: "Rechazos por objetivo (application o migration).",
		},
		[]string{"target"},
	)
)
