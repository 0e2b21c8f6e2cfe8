package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VotesCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "askstack_votes_total",
		Help: "Vote operations processed, by resulting action.",
	}, []string{"action"})

	Acceptances = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "askstack_acceptances_total",
		Help: "Answer acceptance state changes.",
	}, []string{"state"})

	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "askstack_notifications_total",
		Help: "Notification rows emitted, by type.",
	}, []string{"type"})
)
