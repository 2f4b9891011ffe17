package rbac

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	decisionAllow = "allow"
	decisionDeny  = "deny"
)

var (
	// decisionsTotal counts decisions by outcome; kind is superadmin, permission,
	// role_not_found or missing_capability.
	decisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"decision", "kind"},
	)

	lookupErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "authz_lookup_errors_total",
			Help: "Authorization checks aborted by a permission lookup failure",
		},
	)
)
