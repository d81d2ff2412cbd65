package handlers

import (
	"context"
	"net/http"
	"strconv"

	"matchday/web/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LeagueStore is the read surface the display endpoints need.
type LeagueStore interface {
	ListMatches(ctx context.Context, clubID *uuid.UUID, limit int) ([]types.Match, error)
	GetMatchByID(ctx context.Context, matchID uuid.UUID) (types.Match, error)
	ListClubs(ctx context.Context) ([]types.Club, error)
	GetClubByID(ctx context.Context, clubID uuid.UUID) (types.Club, error)
	ListPlayersByClub(ctx context.Context, clubID uuid.UUID) ([]types.Player, error)
	ListStadiums(ctx context.Context) ([]types.Stadium, error)
	LeagueStandings(ctx context.Context) ([]types.Standing, error)
	ClubForm(ctx context.Context, clubID uuid.UUID) ([]types.FormEntry, error)
}

type LeagueHandler struct {
	store  LeagueStore
	logger *zap.Logger
	debug  bool
}

func NewLeagueHandler(store LeagueStore, logger *zap.Logger, debug bool) *LeagueHandler {
	return &LeagueHandler{
		store:  store,
		logger: logger,
		debug:  debug,
	}
}

func (h *LeagueHandler) Standings(c *gin.Context) {
	standings, err := h.store.LeagueStandings(c.Request.Context())
	if err != nil {
		respondWithPipelineError(c, err, h.debug, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "standings": standings})
}

// Matches handles GET /api/matches with optional club and limit parameters.
func (h *LeagueHandler) Matches(c *gin.Context) {
	var clubID *uuid.UUID
	if raw := c.Query("club"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			respondWithClientError(c, http.StatusBadRequest, "invalid club id")
			return
		}
		clubID = &parsed
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondWithClientError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	matches, err := h.store.ListMatches(c.Request.Context(), clubID, limit)
	if err != nil {
		respondWithPipelineError(c, err, h.debug, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "matches": matches})
}

func (h *LeagueHandler) MatchByID(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondWithClientError(c, http.StatusBadRequest, "invalid match id")
		return
	}

	match, err := h.store.GetMatchByID(c.Request.Context(), matchID)
	if err != nil {
		respondWithPipelineError(c, err, h.debug, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "match": match})
}

func (h *LeagueHandler) Clubs(c *gin.Context) {
	clubs, err := h.store.ListClubs(c.Request.Context())
	if err != nil {
		respondWithPipelineError(c, err, h.debug, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "clubs": clubs})
}

func (h *LeagueHandler) ClubByID(c *gin.Context) {
	clubID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondWithClientError(c, http.StatusBadRequest, "invalid club id")
		return
	}

	club, err := h.store.GetClubByID(c.Request.Context(), clubID)
	if err != nil {
		respondWithPipelineError(c, err, h.debug, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "club": club})
}

func (h *LeagueHandler) ClubPlayers(c *gin.Context) {
	clubID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondWithClientError(c, http.StatusBadRequest, "invalid club id")
		return
	}

	players, err := h.store.ListPlayersByClub(c.Request.Context(), clubID)
	if err != nil {
		respondWithPipelineError(c, err, h.debug, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "players": players})
}

func (h *LeagueHandler) ClubForm(c *gin.Context) {
	clubID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondWithClientError(c, http.StatusBadRequest, "invalid club id")
		return
	}

	form, err := h.store.ClubForm(c.Request.Context(), clubID)
	if err != nil {
		respondWithPipelineError(c, err, h.debug, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "form": form})
}

func (h *LeagueHandler) Stadiums(c *gin.Context) {
	stadiums, err := h.store.ListStadiums(c.Request.Context())
	if err != nil {
		respondWithPipelineError(c, err, h.debug, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stadiums": stadiums})
}

func (h *LeagueHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
