package handler

import (
	"errors"
	"net/http"

	"auction-live/internal/auctionerrors"
	model "auction-live/internal/models"
	"auction-live/internal/repository"
	"auction-live/services/auction/helpers"
	"auction-live/utils"

	"github.com/gin-gonic/gin"
)

// CrudHandler serves the organizer-facing persistence routes: auction,
// team, and player management plus the reporting reads. It sits outside
// the engine's critical sections; the engine re-reads committed state
// under its lock, so changes made here become visible to the next bid.
type CrudHandler struct {
	repo repository.AuctionDB
}

func NewCrudHandler(repo repository.AuctionDB) *CrudHandler {
	return &CrudHandler{repo: repo}
}

// CreateAuctionHandler handles POST /api/auctions
func (h *CrudHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}
	if !req.BidIncrement.IsPositive() {
		helpers.RespondError(c, "CreateAuctionHandler",
			auctionerrors.ErrInvalidRequest, map[string]any{"bid_increment": req.BidIncrement.String()})
		return
	}

	auction := model.Auction{
		AuctionID:    utils.GenerateID(),
		Name:         req.Name,
		Description:  req.Description,
		Status:       model.AuctionDraft,
		BidIncrement: req.BidIncrement,
	}
	if err := h.repo.CreateAuction(c.Request.Context(), auction); err != nil {
		helpers.RespondError(c, "CreateAuctionHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusCreated, auction, "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": auction.AuctionID,
	})
}

// ListAuctionsHandler handles GET /api/auctions
func (h *CrudHandler) ListAuctionsHandler(c *gin.Context) {
	auctions, err := h.repo.ListAuctions(c.Request.Context())
	if err != nil {
		helpers.RespondError(c, "ListAuctionsHandler", err, nil)
		return
	}
	if auctions == nil {
		auctions = []model.Auction{}
	}
	utils.JSONResponse(c, http.StatusOK, auctions, "auctions retrieved successfully")
}

// GetAuctionHandler handles GET /api/auctions/:auction_id
func (h *CrudHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	auction, err := h.repo.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "GetAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, auction, "auction retrieved successfully")
}

// UpdateAuctionHandler handles PUT /api/auctions/:auction_id
func (h *CrudHandler) UpdateAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req helpers.UpdateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateAuctionHandler", err)
		return
	}

	existing, err := h.repo.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "UpdateAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	existing.Name = req.Name
	existing.Description = req.Description
	if req.BidIncrement != nil {
		if !req.BidIncrement.IsPositive() {
			helpers.RespondError(c, "UpdateAuctionHandler",
				auctionerrors.ErrInvalidRequest, map[string]any{"bid_increment": req.BidIncrement.String()})
			return
		}
		existing.BidIncrement = *req.BidIncrement
	}
	if err := h.repo.UpdateAuction(c.Request.Context(), existing); err != nil {
		helpers.RespondError(c, "UpdateAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, existing, "auction updated successfully")
}

// TransitionAuctionHandler handles POST /api/auctions/:auction_id/status.
// Transitions are monotonic: draft -> live -> closed.
func (h *CrudHandler) TransitionAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req helpers.AuctionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "TransitionAuctionHandler", err)
		return
	}

	auction, err := h.repo.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "TransitionAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}
	if !auction.Status.CanTransitionTo(req.Status) {
		helpers.RespondError(c, "TransitionAuctionHandler", auctionerrors.ErrInvalidTransition, map[string]any{
			"auction_id": auctionID,
			"from":       string(auction.Status),
			"to":         string(req.Status),
		})
		return
	}
	if err := h.repo.UpdateAuctionStatus(c.Request.Context(), auctionID, req.Status); err != nil {
		helpers.RespondError(c, "TransitionAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	auction.Status = req.Status
	utils.JSONResponse(c, http.StatusOK, auction, "auction status updated successfully")
	helpers.LogSuccess("TransitionAuctionHandler", "auction status updated successfully", map[string]any{
		"auction_id": auctionID,
		"status":     string(req.Status),
	})
}

// DeleteAuctionHandler handles DELETE /api/auctions/:auction_id
func (h *CrudHandler) DeleteAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	if err := h.repo.DeleteAuction(c.Request.Context(), auctionID); err != nil {
		helpers.RespondError(c, "DeleteAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, nil, "auction deleted successfully")
}

// CreateTeamHandler handles POST /api/auctions/:auction_id/teams
func (h *CrudHandler) CreateTeamHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req helpers.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateTeamHandler", err)
		return
	}
	if req.Budget.IsNegative() {
		helpers.RespondError(c, "CreateTeamHandler",
			auctionerrors.ErrInvalidRequest, map[string]any{"budget": req.Budget.String()})
		return
	}
	if _, err := h.repo.GetAuction(c.Request.Context(), auctionID); err != nil {
		helpers.RespondError(c, "CreateTeamHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	team := model.Team{
		TeamID:    utils.GenerateID(),
		AuctionID: auctionID,
		Name:      req.Name,
		LogoPath:  req.LogoPath,
		Purse:     req.Budget,
	}
	if err := h.repo.CreateTeam(c.Request.Context(), team); err != nil {
		helpers.RespondError(c, "CreateTeamHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusCreated, team, "team created successfully")
	helpers.LogSuccess("CreateTeamHandler", "team created successfully", map[string]any{
		"team_id":    team.TeamID,
		"auction_id": auctionID,
	})
}

// ListTeamsHandler handles GET /api/auctions/:auction_id/teams
func (h *CrudHandler) ListTeamsHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	teams, err := h.repo.GetTeamsByAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "ListTeamsHandler", err, map[string]any{"auction_id": auctionID})
		return
	}
	if teams == nil {
		teams = []model.Team{}
	}
	utils.JSONResponse(c, http.StatusOK, teams, "teams retrieved successfully")
}

// GetTeamHandler handles GET /api/teams/:team_id
func (h *CrudHandler) GetTeamHandler(c *gin.Context) {
	teamID := c.Param("team_id")
	team, err := h.repo.GetTeam(c.Request.Context(), teamID)
	if err != nil {
		helpers.RespondError(c, "GetTeamHandler", err, map[string]any{"team_id": teamID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, team, "team retrieved successfully")
}

// UpdateTeamHandler handles PUT /api/teams/:team_id
func (h *CrudHandler) UpdateTeamHandler(c *gin.Context) {
	teamID := c.Param("team_id")

	var req helpers.UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateTeamHandler", err)
		return
	}
	if req.Budget.IsNegative() {
		helpers.RespondError(c, "UpdateTeamHandler",
			auctionerrors.ErrInvalidRequest, map[string]any{"budget": req.Budget.String()})
		return
	}

	team, err := h.repo.GetTeam(c.Request.Context(), teamID)
	if err != nil {
		helpers.RespondError(c, "UpdateTeamHandler", err, map[string]any{"team_id": teamID})
		return
	}

	team.Name = req.Name
	team.LogoPath = req.LogoPath
	team.Purse = req.Budget
	if err := h.repo.UpdateTeam(c.Request.Context(), team); err != nil {
		helpers.RespondError(c, "UpdateTeamHandler", err, map[string]any{"team_id": teamID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, team, "team updated successfully")
}

// DeleteTeamHandler handles DELETE /api/teams/:team_id
func (h *CrudHandler) DeleteTeamHandler(c *gin.Context) {
	teamID := c.Param("team_id")
	if err := h.repo.DeleteTeam(c.Request.Context(), teamID); err != nil {
		helpers.RespondError(c, "DeleteTeamHandler", err, map[string]any{"team_id": teamID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, nil, "team deleted successfully")
}

// CreatePlayerHandler handles POST /api/auctions/:auction_id/players
func (h *CrudHandler) CreatePlayerHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req helpers.CreatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreatePlayerHandler", err)
		return
	}
	if !req.BasePrice.IsPositive() {
		helpers.RespondError(c, "CreatePlayerHandler",
			auctionerrors.ErrInvalidRequest, map[string]any{"base_price": req.BasePrice.String()})
		return
	}
	if _, err := h.repo.GetAuction(c.Request.Context(), auctionID); err != nil {
		helpers.RespondError(c, "CreatePlayerHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	player := model.Player{
		PlayerID:  utils.GenerateID(),
		AuctionID: auctionID,
		Name:      req.Name,
		Position:  req.Position,
		PhotoPath: req.PhotoPath,
		BasePrice: req.BasePrice,
		Status:    model.PlayerPending,
	}
	if err := h.repo.CreatePlayer(c.Request.Context(), player); err != nil {
		helpers.RespondError(c, "CreatePlayerHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusCreated, player, "player created successfully")
	helpers.LogSuccess("CreatePlayerHandler", "player created successfully", map[string]any{
		"player_id":  player.PlayerID,
		"auction_id": auctionID,
	})
}

// ListPlayersHandler handles GET /api/auctions/:auction_id/players.
// Supports ?status= filtering (sold, unsold, active, pending).
func (h *CrudHandler) ListPlayersHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	players, err := h.repo.GetPlayersByAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "ListPlayersHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	if status := c.Query("status"); status != "" {
		filtered := make([]model.Player, 0, len(players))
		for _, p := range players {
			if p.Status == model.PlayerStatus(status) {
				filtered = append(filtered, p)
			}
		}
		players = filtered
	}
	if players == nil {
		players = []model.Player{}
	}
	utils.JSONResponse(c, http.StatusOK, players, "players retrieved successfully")
}

// SearchPlayersHandler handles GET /api/auctions/:auction_id/search.
// The ?query= value matches player name or id as a substring.
func (h *CrudHandler) SearchPlayersHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	query := c.Query("query")
	if query == "" {
		helpers.RespondError(c, "SearchPlayersHandler",
			auctionerrors.ErrInvalidRequest, map[string]any{"auction_id": auctionID})
		return
	}

	players, err := h.repo.SearchPlayers(c.Request.Context(), auctionID, query)
	if err != nil {
		helpers.RespondError(c, "SearchPlayersHandler", err, map[string]any{"auction_id": auctionID})
		return
	}
	if players == nil {
		players = []model.Player{}
	}
	utils.JSONResponse(c, http.StatusOK, players, "players retrieved successfully")
}

// GetPlayerHandler handles GET /api/players/:player_id
func (h *CrudHandler) GetPlayerHandler(c *gin.Context) {
	playerID := c.Param("player_id")
	player, err := h.repo.GetPlayer(c.Request.Context(), playerID)
	if err != nil {
		helpers.RespondError(c, "GetPlayerHandler", err, map[string]any{"player_id": playerID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, player, "player retrieved successfully")
}

// UpdatePlayerHandler handles PUT /api/players/:player_id. Status here is
// the organizer path for pending -> active; terminal statuses go through
// the finalize endpoint and are rejected here.
func (h *CrudHandler) UpdatePlayerHandler(c *gin.Context) {
	playerID := c.Param("player_id")

	var req helpers.UpdatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdatePlayerHandler", err)
		return
	}

	player, err := h.repo.GetPlayer(c.Request.Context(), playerID)
	if err != nil {
		helpers.RespondError(c, "UpdatePlayerHandler", err, map[string]any{"player_id": playerID})
		return
	}

	if req.Status == model.PlayerSold || req.Status == model.PlayerUnsold {
		helpers.RespondError(c, "UpdatePlayerHandler", auctionerrors.ErrInvalidRequest, map[string]any{
			"player_id": playerID,
			"status":    string(req.Status),
		})
		return
	}

	player.Name = req.Name
	player.Position = req.Position
	player.PhotoPath = req.PhotoPath
	if req.BasePrice.IsPositive() {
		player.BasePrice = req.BasePrice
	}
	if req.Status != "" {
		player.Status = req.Status
	}
	if err := h.repo.UpdatePlayer(c.Request.Context(), player); err != nil {
		helpers.RespondError(c, "UpdatePlayerHandler", err, map[string]any{"player_id": playerID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, player, "player updated successfully")
}

// DeletePlayerHandler handles DELETE /api/players/:player_id
func (h *CrudHandler) DeletePlayerHandler(c *gin.Context) {
	playerID := c.Param("player_id")
	if err := h.repo.DeletePlayer(c.Request.Context(), playerID); err != nil {
		helpers.RespondError(c, "DeletePlayerHandler", err, map[string]any{"player_id": playerID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, nil, "player deleted successfully")
}

func isNoBids(err error) bool {
	return errors.Is(err, auctionerrors.ErrNoBids)
}

// ListBidsHandler handles GET /api/players/:player_id/bids
func (h *CrudHandler) ListBidsHandler(c *gin.Context) {
	playerID := c.Param("player_id")
	bids, err := h.repo.GetBidsByPlayer(c.Request.Context(), playerID)
	if err != nil && !isNoBids(err) {
		helpers.RespondError(c, "ListBidsHandler", err, map[string]any{"player_id": playerID})
		return
	}
	if bids == nil {
		bids = []model.Bid{}
	}
	utils.JSONResponse(c, http.StatusOK, bids, "bids retrieved successfully")
}

// TeamStatHandler handles GET /api/auctions/:auction_id/teamstat
func (h *CrudHandler) TeamStatHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	summaries, err := h.repo.TeamSummaries(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "TeamStatHandler", err, map[string]any{"auction_id": auctionID})
		return
	}
	if summaries == nil {
		summaries = []model.TeamSummary{}
	}
	utils.JSONResponse(c, http.StatusOK, summaries, "team summaries retrieved successfully")
}

// LeaderboardHandler handles GET /api/auctions/:auction_id/leaderboard
func (h *CrudHandler) LeaderboardHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	entries, err := h.repo.Leaderboard(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "LeaderboardHandler", err, map[string]any{"auction_id": auctionID})
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	utils.JSONResponse(c, http.StatusOK, entries, "leaderboard retrieved successfully")
}

// TeamRankingsHandler handles GET /api/auctions/:auction_id/rankings.
// Teams are ordered by their total bid volume across the ledger.
func (h *CrudHandler) TeamRankingsHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	rankings, err := h.repo.TeamRankings(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "TeamRankingsHandler", err, map[string]any{"auction_id": auctionID})
		return
	}
	if rankings == nil {
		rankings = []model.TeamRanking{}
	}
	utils.JSONResponse(c, http.StatusOK, rankings, "team rankings retrieved successfully")
}
