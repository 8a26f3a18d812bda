package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"minesweeper/internal/game"
	"minesweeper/internal/service"

	"github.com/gin-gonic/gin"
)

// NewGameRequest selects a difficulty by name. Empty keeps the current one.
type NewGameRequest struct {
	Difficulty string `json:"difficulty"`
}

// CellRequest addresses one cell. Token binds the action to the session it
// was issued for and may be omitted.
type CellRequest struct {
	Row   *int   `json:"row" binding:"required"`
	Col   *int   `json:"col" binding:"required"`
	Token string `json:"token"`
}

// DisplayResponse is the header above the board, with the strings the page
// shows.
type DisplayResponse struct {
	game.DisplayState
	TimerDisplay string `json:"timer_display"`
	StatusText   string `json:"status_text"`
}

type SessionResponse struct {
	Seq        uint64          `json:"seq"`
	ID         string          `json:"id"`
	Token      string          `json:"token"`
	Difficulty game.Difficulty `json:"difficulty"`
	Display    DisplayResponse `json:"display"`
	Board      game.BoardView  `json:"board"`
}

type RevealResponse struct {
	game.MoveResult
	Display DisplayResponse `json:"display"`
}

type FlagResponse struct {
	game.FlagResult
	Display DisplayResponse `json:"display"`
}

func newDisplay(d game.DisplayState) DisplayResponse {
	return DisplayResponse{
		DisplayState: d,
		TimerDisplay: fmt.Sprintf("%03d", min(d.ElapsedSeconds, 999)),
		StatusText:   statusText(d.State),
	}
}

func statusText(s game.State) string {
	switch s {
	case game.StatePlaying:
		return "Good luck!"
	case game.StateWon:
		return "Congratulations! You won!"
	case game.StateLost:
		return "Game Over! Try again?"
	default:
		return "Click to start!"
	}
}

func newSessionResponse(v service.SessionView) SessionResponse {
	return SessionResponse{
		Seq:        v.Seq,
		ID:         v.ID,
		Token:      v.Token,
		Difficulty: v.Difficulty,
		Display:    newDisplay(v.Display),
		Board:      v.Board,
	}
}

func (h *Handler) Difficulties(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"difficulties": h.Game.Difficulties()})
}

func (h *Handler) NewGame(c *gin.Context) {
	var req NewGameRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	var (
		view service.SessionView
		err  error
	)
	if req.Difficulty == "" {
		view, err = h.Game.Restart()
	} else {
		view, err = h.Game.NewGame(req.Difficulty)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(view))
}

func (h *Handler) Restart(c *gin.Context) {
	view, err := h.Game.Restart()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(view))
}

func (h *Handler) Reveal(c *gin.Context) {
	var req CellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	out, err := h.Game.Reveal(req.Token, *req.Row, *req.Col)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, RevealResponse{MoveResult: out.MoveResult, Display: newDisplay(out.Display)})
}

func (h *Handler) Flag(c *gin.Context) {
	var req CellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	out, err := h.Game.ToggleFlag(req.Token, *req.Row, *req.Col)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, FlagResponse{FlagResult: out.FlagResult, Display: newDisplay(out.Display)})
}

// Tick advances the clock by one second for clients that drive time
// themselves. It is refused while the server clock is running.
func (h *Handler) Tick(c *gin.Context) {
	if _, err := h.Game.Tick(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDisplay(h.Game.Display()))
}

func (h *Handler) State(c *gin.Context) {
	c.JSON(http.StatusOK, newDisplay(h.Game.Display()))
}

func (h *Handler) Board(c *gin.Context) {
	c.JSON(http.StatusOK, newSessionResponse(h.Game.Snapshot()))
}
