package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	contributionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guest_contributions_total",
			Help: "Guest contribution submissions by outcome",
		},
		[]string{"outcome"},
	)

	mediaStoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guest_media_stored_total",
			Help: "Stored guest media files by kind and approval",
		},
		[]string{"media_type", "approved"},
	)

	moderationActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "host_moderation_actions_total",
			Help: "Host approve/reject actions",
		},
		[]string{"target", "action"},
	)
)

// contribution outcomes
const (
	outcomeAccepted = "accepted"
	outcomeRejected = "rejected"
	outcomeNotFound = "not_found"
	outcomeFailed   = "failed"
)
