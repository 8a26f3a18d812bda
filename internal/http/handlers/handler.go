package handlers

import (
	"errors"
	"net/http"

	"minesweeper/internal/game"
	"minesweeper/internal/logger"
	"minesweeper/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Game *service.GameService
}

func NewHandler(svc *service.GameService) *Handler {
	return &Handler{Game: svc}
}

// writeError maps service errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrUnknownDifficulty), errors.Is(err, service.ErrCellOutOfRange):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrStaleSession), errors.Is(err, service.ErrClockManaged):
		status = http.StatusConflict
	default:
		logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
