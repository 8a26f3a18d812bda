package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"minesweeper/internal/game"
	"minesweeper/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *service.GameService) {
	t.Helper()
	return newTestRouterWithClock(t, 0)
}

func newTestRouterWithClock(t *testing.T, tick time.Duration) (*gin.Engine, *service.GameService) {
	t.Helper()
	cat, err := game.NewCatalog(game.Difficulty{Name: game.DifficultyCustom, Rows: 3, Cols: 3, Mines: 1})
	require.NoError(t, err)
	svc, err := service.NewGameService(cat, service.NewTokenIssuer("test-secret"), game.DifficultyCustom,
		service.WithTickInterval(tick),
		service.WithPlacer(func() game.MinePlacer { return game.FixedPlacer(game.Pos{Row: 0, Col: 0}) }),
	)
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(svc)
	r.GET("/difficulties", h.Difficulties)
	r.POST("/game/new", h.NewGame)
	r.POST("/game/restart", h.Restart)
	r.POST("/game/reveal", h.Reveal)
	r.POST("/game/flag", h.Flag)
	r.POST("/game/tick", h.Tick)
	r.GET("/game/state", h.State)
	r.GET("/game/board", h.Board)

	health := NewHealthHandler(svc, nil, "test")
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)
	return r, svc
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestDifficulties(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/difficulties", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		Difficulties []game.Difficulty `json:"difficulties"`
	}](t, w)
	names := make([]string, 0, len(body.Difficulties))
	for _, d := range body.Difficulties {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"easy", "medium", "hard", "custom"}, names)
}

func TestNewGame(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/game/new", NewGameRequest{Difficulty: "hard"})
	require.Equal(t, http.StatusOK, w.Code)
	s := decode[SessionResponse](t, w)
	assert.Equal(t, "hard", s.Difficulty.Name)
	assert.Equal(t, 16, s.Board.Rows)
	assert.Equal(t, 30, s.Board.Cols)
	assert.Equal(t, 99, s.Display.MineCount)
	assert.Equal(t, "000", s.Display.TimerDisplay)
	assert.Equal(t, "Click to start!", s.Display.StatusText)
	assert.NotEmpty(t, s.Token)

	w = do(r, http.MethodPost, "/game/new", NewGameRequest{Difficulty: "nightmare"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// no body keeps the current difficulty
	w = do(r, http.MethodPost, "/game/new", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hard", decode[SessionResponse](t, w).Difficulty.Name)
}

func TestRevealWin(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/game/reveal", map[string]int{"row": 2, "col": 2})
	require.Equal(t, http.StatusOK, w.Code)

	res := decode[RevealResponse](t, w)
	assert.Len(t, res.Revealed, 8)
	assert.True(t, res.Won)
	assert.Equal(t, "Congratulations! You won!", res.Display.StatusText)
	assert.Equal(t, 1, res.Display.FlagsPlaced)
}

func TestRevealLoss(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/game/reveal", map[string]int{"row": 0, "col": 1})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Good luck!", decode[RevealResponse](t, w).Display.StatusText)

	w = do(r, http.MethodPost, "/game/reveal", map[string]int{"row": 0, "col": 0})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[RevealResponse](t, w)
	assert.True(t, res.HitMine)
	assert.Equal(t, "Game Over! Try again?", res.Display.StatusText)

	board := decode[SessionResponse](t, do(r, http.MethodGet, "/game/board", nil))
	assert.Equal(t, game.CellMine, board.Board.Cells[0][0].State)
	assert.Equal(t, game.CellRevealed, board.Board.Cells[0][1].State)
	assert.Equal(t, 1, board.Board.Cells[0][1].Count)
}

func TestRevealBadRequests(t *testing.T) {
	r, svc := newTestRouter(t)

	w := do(r, http.MethodPost, "/game/reveal", map[string]int{"row": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code, "col is required")

	w = do(r, http.MethodPost, "/game/reveal", map[string]int{"row": 3, "col": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/game/flag", map[string]any{"row": 0, "col": 0, "token": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	stale := svc.Snapshot().Token
	_, err := svc.Restart()
	require.NoError(t, err)
	w = do(r, http.MethodPost, "/game/flag", map[string]any{"row": 0, "col": 0, "token": stale})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFlagAndState(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/game/flag", map[string]int{"row": 1, "col": 1})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[FlagResponse](t, w)
	assert.True(t, res.Flagged)
	assert.True(t, res.Changed)

	st := decode[DisplayResponse](t, do(r, http.MethodGet, "/game/state", nil))
	assert.Equal(t, 1, st.FlagsPlaced)
	assert.Equal(t, 1, st.MineCount)
	assert.Equal(t, game.StateReady, st.State)
}

func TestTick(t *testing.T) {
	r, _ := newTestRouter(t)

	st := decode[DisplayResponse](t, do(r, http.MethodPost, "/game/tick", nil))
	assert.Equal(t, 0, st.ElapsedSeconds, "clock idle before the first reveal")

	do(r, http.MethodPost, "/game/reveal", map[string]int{"row": 0, "col": 1})
	for i := 0; i < 7; i++ {
		do(r, http.MethodPost, "/game/tick", nil)
	}
	st = decode[DisplayResponse](t, do(r, http.MethodGet, "/game/state", nil))
	assert.Equal(t, 7, st.ElapsedSeconds)
	assert.Equal(t, "007", st.TimerDisplay)
}

func TestTickRefusedWithServerClock(t *testing.T) {
	r, svc := newTestRouterWithClock(t, time.Hour)

	do(r, http.MethodPost, "/game/reveal", map[string]int{"row": 0, "col": 1})
	w := do(r, http.MethodPost, "/game/tick", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, svc.Display().ElapsedSeconds)
}

func TestNewDisplayCapsTimer(t *testing.T) {
	d := newDisplay(game.DisplayState{ElapsedSeconds: 1500, State: game.StatePlaying})
	assert.Equal(t, "999", d.TimerDisplay)
	assert.Equal(t, 1500, d.ElapsedSeconds)
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/healthz", nil).Code)

	w := do(r, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	h := decode[HealthResponse](t, w)
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, "disabled", h.Checks["redis"])
	assert.Equal(t, "ready", h.Checks["session_state"])
}
