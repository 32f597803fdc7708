package ws

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SessionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "game_sessions_active",
			Help: "Rooms currently hosting a running session",
		},
		[]string{"game"},
	)
	SessionsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_sessions_finished_total",
			Help: "Sessions finished, by reason",
		},
		[]string{"game", "reason"},
	)
	ActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_actions_total",
			Help: "Submitted actions by result (ok or error kind)",
		},
		[]string{"game", "result"},
	)
	TimeoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_turn_timeouts_total",
			Help: "Turns forfeited because the mover ran out of time",
		},
		[]string{"game"},
	)
)

func init() {
	prometheus.MustRegister(SessionsActive, SessionsFinished, ActionsTotal, TimeoutsTotal)
}
