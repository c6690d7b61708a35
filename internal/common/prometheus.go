package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	SpinTotal                  = "spin_total"
	RewardClaimTotal           = "reward_claim_total"
	BalanceMutationTotal       = "balance_mutation_total"
	OnlineUsers                = "online_users"
)

var (
	PromGauges = map[string]*prometheus.GaugeVec{
		OnlineUsers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: OnlineUsers,
			Help: "Number of users who pinged recently",
		}, []string{}),
	}

	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"method", "status_code"}),
		SpinTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: SpinTotal,
			Help: "Count of spins by won value",
		}, []string{"value"}),
		RewardClaimTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RewardClaimTotal,
			Help: "Count of reward claims by outcome",
		}, []string{"outcome"}),
		BalanceMutationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: BalanceMutationTotal,
			Help: "Count of balance mutations by reason",
		}, []string{"reason"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"method", "status_code"}),
	}
)
