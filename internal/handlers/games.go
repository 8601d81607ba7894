package handlers

import (
	"net/http"

	"github.com/saharsb963/chess/internal/services"

	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	games *services.GameService
}

func NewGameHandler(games *services.GameService) *GameHandler {
	return &GameHandler{games: games}
}

func (h *GameHandler) ListGames(c *gin.Context) {
	c.JSON(http.StatusOK, h.games.ActiveGames())
}
