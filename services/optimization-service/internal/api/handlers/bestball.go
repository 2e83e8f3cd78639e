package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/bestball/services/optimization-service/internal/lineup"
	"github.com/stitts-dev/bestball/services/optimization-service/internal/optimizer"
	"github.com/stitts-dev/bestball/shared/pkg/utils"
	"github.com/stitts-dev/bestball/shared/types"
)

// LineupService is the subset of *lineup.Service the handlers call
type LineupService interface {
	Optimize(ctx context.Context, req optimizer.LineupRequest) (*optimizer.LineupAssignment, error)
	OptimizeRoster(ctx context.Context, leagueID, rosterID int64, week int, mode types.ScoringMode) (*lineup.RosterLineup, error)
	OptimizeLeague(ctx context.Context, leagueID int64, week int, mode types.ScoringMode) (*lineup.LeagueResult, error)
	GetLineup(ctx context.Context, leagueID, rosterID int64, week int, mode types.ScoringMode) (*lineup.RosterLineup, error)
}

// SlotDescription is one entry of the slot catalog endpoint
type SlotDescription struct {
	Name              string   `json:"name"`
	Starter           bool     `json:"starter"`
	EligiblePositions []string `json:"eligible_positions"`
}

// BestBallHandler serves lineup optimization endpoints
type BestBallHandler struct {
	service LineupService
	timeout time.Duration
	logger  *logrus.Logger
}

func NewBestBallHandler(service LineupService, timeout time.Duration, logger *logrus.Logger) *BestBallHandler {
	return &BestBallHandler{
		service: service,
		timeout: timeout,
		logger:  logger,
	}
}

// RegisterRoutes mounts the lineup endpoints on an /api/v1 group
func (h *BestBallHandler) RegisterRoutes(v1 *gin.RouterGroup) {
	bestball := v1.Group("/bestball")
	{
		bestball.GET("/slots", h.GetSlots)
		bestball.POST("/optimize", h.OptimizeLineup)
	}

	leagues := v1.Group("/leagues/:league_id")
	{
		leagues.POST("/lineups", h.OptimizeLeagueLineups)
		leagues.POST("/rosters/:roster_id/lineup", h.OptimizeRosterLineup)
		leagues.GET("/rosters/:roster_id/lineup", h.GetRosterLineup)
	}
}

// GetSlots lists every slot type with the positions it accepts
func (h *BestBallHandler) GetSlots(c *gin.Context) {
	slots := optimizer.AllSlotTypes()
	out := make([]SlotDescription, 0, len(slots))
	for _, slot := range slots {
		out = append(out, SlotDescription{
			Name:              slot.String(),
			Starter:           optimizer.IsStarterSlot(slot),
			EligiblePositions: optimizer.EligiblePositions(slot),
		})
	}
	c.JSON(http.StatusOK, gin.H{"slots": out})
}

// OptimizeLineup solves an ad-hoc request carrying its own slots, players and points
func (h *BestBallHandler) OptimizeLineup(c *gin.Context) {
	var body types.OptimizeLineupRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Invalid request format",
			Code:  utils.ErrCodeValidation,
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	slotCounts, err := optimizer.ParseSlotCounts(body.SlotCounts)
	if err != nil {
		h.writeError(c, err)
		return
	}

	req := optimizer.LineupRequest{
		SlotCounts: slotCounts,
		Players:    make([]optimizer.Player, 0, len(body.Players)),
		Points:     make(map[int64]float64, len(body.Players)),
	}
	for _, p := range body.Players {
		req.Players = append(req.Players, optimizer.Player{ID: p.ID, Position: p.Position})
		req.Points[p.ID] = p.Points
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	assignment, err := h.service.Optimize(ctx, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// OptimizeRosterLineup optimizes and stores the lineup of one roster
func (h *BestBallHandler) OptimizeRosterLineup(c *gin.Context) {
	leagueID, rosterID, ok := h.rosterParams(c)
	if !ok {
		return
	}
	week, mode, ok := h.weekAndMode(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	result, err := h.service.OptimizeRoster(ctx, leagueID, rosterID, week, mode)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetRosterLineup returns the last stored lineup of one roster
func (h *BestBallHandler) GetRosterLineup(c *gin.Context) {
	leagueID, rosterID, ok := h.rosterParams(c)
	if !ok {
		return
	}
	week, mode, ok := h.weekAndMode(c)
	if !ok {
		return
	}

	result, err := h.service.GetLineup(c.Request.Context(), leagueID, rosterID, week, mode)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// OptimizeLeagueLineups optimizes every roster of a league
func (h *BestBallHandler) OptimizeLeagueLineups(c *gin.Context) {
	leagueID, ok := h.idParam(c, "league_id")
	if !ok {
		return
	}
	week, mode, ok := h.weekAndMode(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	result, err := h.service.OptimizeLeague(ctx, leagueID, week, mode)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BestBallHandler) rosterParams(c *gin.Context) (int64, int64, bool) {
	leagueID, ok := h.idParam(c, "league_id")
	if !ok {
		return 0, 0, false
	}
	rosterID, ok := h.idParam(c, "roster_id")
	if !ok {
		return 0, 0, false
	}
	return leagueID, rosterID, true
}

func (h *BestBallHandler) idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Invalid " + name,
			Code:  utils.ErrCodeValidation,
			Details: map[string]string{
				name: c.Param(name),
			},
		})
		return 0, false
	}
	return id, true
}

func (h *BestBallHandler) weekAndMode(c *gin.Context) (int, types.ScoringMode, bool) {
	week, err := strconv.Atoi(c.Query("week"))
	if err != nil || week < 1 {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "week must be a positive integer",
			Code:  utils.ErrCodeValidation,
			Details: map[string]string{
				"week": c.Query("week"),
			},
		})
		return 0, "", false
	}

	mode, err := types.ParseScoringMode(c.Query("mode"))
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: err.Error(),
			Code:  utils.ErrCodeInvalidMode,
		})
		return 0, "", false
	}
	return week, mode, true
}

func (h *BestBallHandler) writeError(c *gin.Context, err error) {
	var appErr *utils.AppError
	switch {
	case optimizer.IsInputError(err):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Invalid lineup input",
			Code:  utils.ErrCodeInvalidLineup,
			Details: map[string]string{
				"error": err.Error(),
			},
		})
	case errors.Is(err, utils.ErrNotFound):
		c.JSON(http.StatusNotFound, types.ErrorResponse{
			Error: err.Error(),
			Code:  utils.ErrCodeNotFound,
		})
	case errors.Is(err, context.DeadlineExceeded):
		h.logger.WithError(err).Warn("Lineup optimization timed out")
		c.JSON(http.StatusGatewayTimeout, types.ErrorResponse{
			Error: "Optimization timed out",
			Code:  utils.ErrCodeOptimization,
		})
	case errors.As(err, &appErr):
		h.logger.WithError(err).Error("Lineup optimization failed")
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
			Details: map[string]string{
				"error": appErr.Details,
			},
		})
	default:
		h.logger.WithError(err).Error("Lineup optimization failed")
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error: "Optimization failed",
			Code:  utils.ErrCodeInternal,
			Details: map[string]string{
				"error": err.Error(),
			},
		})
	}
}
