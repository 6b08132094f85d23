package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "dropfour",
		Name:      "connected_clients",
		Help:      "Number of open websocket connections.",
	})

	PlayersWaiting = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "dropfour",
		Name:      "players_waiting",
		Help:      "Players currently in the matchmaking queue.",
	})

	ActiveGames = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "dropfour",
		Name:      "active_games",
		Help:      "Games currently held in memory.",
	})

	GamesStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dropfour",
		Name:      "games_started_total",
		Help:      "Games started, by mode.",
	}, []string{"mode"})

	GamesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dropfour",
		Name:      "games_finished_total",
		Help:      "Games finished, by outcome.",
	}, []string{"outcome"})

	MovesPlayed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dropfour",
		Name:      "moves_played_total",
		Help:      "Moves accepted by the rules engine.",
	})
)
