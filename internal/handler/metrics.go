package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drawlab_evaluations_total",
		Help: "Drawing evaluations by outcome.",
	}, []string{"outcome"})

	pointsAwardedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "drawlab_points_awarded_total",
		Help: "Total practice points awarded to students.",
	})

	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drawlab_uploads_total",
		Help: "Object storage uploads by outcome.",
	}, []string{"outcome"})
)
