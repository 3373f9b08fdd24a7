package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Login metrics
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataloft_auth_login_attempts_total",
			Help: "Total number of login attempts by result",
		},
		[]string{"result"},
	)

	AccountLockoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dataloft_auth_account_lockouts_total",
			Help: "Total number of accounts locked after repeated failures",
		},
	)

	// Token metrics
	TokenRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataloft_auth_token_refreshes_total",
			Help: "Total number of token refresh attempts by result",
		},
		[]string{"result"},
	)

	RevokedTokenRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dataloft_auth_revoked_token_rejections_total",
			Help: "Total number of requests rejected because the token was revoked",
		},
	)

	LogoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dataloft_auth_logouts_total",
			Help: "Total number of completed logouts",
		},
	)
)
