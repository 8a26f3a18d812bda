package service

import "github.com/prometheus/client_golang/prometheus"

var (
	GamesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minesweeper_games_created_total",
			Help: "Sessions created, by difficulty",
		},
		[]string{"difficulty"},
	)
	GamesStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minesweeper_games_started_total",
			Help: "Sessions that received their first reveal, by difficulty",
		},
		[]string{"difficulty"},
	)
	GamesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minesweeper_games_finished_total",
			Help: "Finished sessions, by difficulty and result",
		},
		[]string{"difficulty", "result"},
	)
	GameDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "minesweeper_game_duration_seconds",
			Help:    "Elapsed game clock at the end of a session",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 999},
		},
		[]string{"difficulty"},
	)
	CellsRevealed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "minesweeper_cells_revealed_total",
		Help: "Cells revealed by player actions, flood fill included",
	})
	FlagToggles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "minesweeper_flag_toggles_total",
		Help: "Accepted flag toggles",
	})
)

func init() {
	prometheus.MustRegister(GamesCreated, GamesStarted, GamesFinished, GameDuration, CellsRevealed, FlagToggles)
}
