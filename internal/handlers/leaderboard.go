package handlers

import (
	"net/http"
	"strconv"

	"github.com/saharsb963/chess/internal/services"

	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	store services.GameStorage
}

func NewLeaderboardHandler(store services.GameStorage) *LeaderboardHandler {
	return &LeaderboardHandler{store: store}
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	limit := 5
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	entries, err := h.store.TopScores(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *LeaderboardHandler) GetPlayerScore(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid telegram id"})
		return
	}

	entry, err := h.store.PlayerScore(telegramID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no score recorded"})
		return
	}
	c.JSON(http.StatusOK, entry)
}
