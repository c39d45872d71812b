package handler

import (
	"context"
	"net/http"
	"time"

	auction "auction-live/internal/auctionEngine"
	model "auction-live/internal/models"
	"auction-live/services/auction/helpers"
	"auction-live/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// EngineService is the live-bidding seam consumed by the HTTP handlers.
type EngineService interface {
	SubmitBid(ctx context.Context, auctionID, playerID, teamID string, amount decimal.Decimal) (model.Bid, error)
	FinalizeStatus(ctx context.Context, auctionID, playerID string, decision auction.Decision, teamID string, expectedAmount *decimal.Decimal) (auction.FinalizeResult, error)
	ViewPlayer(ctx context.Context, playerID string) (model.Player, error)
}

type LiveHandler struct {
	engine EngineService
}

func NewLiveHandler(engine EngineService) *LiveHandler {
	return &LiveHandler{engine: engine}
}

// SubmitBidHandler handles POST /api/auctions/:auction_id/bids
func (h *LiveHandler) SubmitBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SubmitBidHandler", err)
		return
	}

	bid, err := h.engine.SubmitBid(c.Request.Context(), auctionID, req.PlayerID, req.TeamID, req.Amount)
	if err != nil {
		helpers.RespondError(c, "SubmitBidHandler", err, map[string]any{
			"auction_id": auctionID,
			"player_id":  req.PlayerID,
			"team_id":    req.TeamID,
		})
		return
	}

	resp := helpers.BidResponse{
		BidID:     bid.BidID,
		AuctionID: bid.AuctionID,
		PlayerID:  bid.PlayerID,
		TeamID:    bid.TeamID,
		Amount:    bid.Amount,
		CreatedAt: bid.CreatedAt.UTC().Format(time.RFC3339),
	}

	utils.JSONResponse(c, http.StatusCreated, resp, "bid recorded successfully")
	helpers.LogSuccess("SubmitBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":    bid.BidID,
		"player_id": bid.PlayerID,
		"team_id":   bid.TeamID,
		"amount":    bid.Amount.String(),
	})
}

// FinalizeHandler handles POST /api/players/:player_id/finalize
func (h *LiveHandler) FinalizeHandler(c *gin.Context) {
	playerID := c.Param("player_id")

	var req helpers.FinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "FinalizeHandler", err)
		return
	}

	result, err := h.engine.FinalizeStatus(c.Request.Context(), req.AuctionID, playerID,
		auction.Decision(req.Decision), req.TeamID, req.Amount)
	if err != nil {
		helpers.RespondError(c, "FinalizeHandler", err, map[string]any{
			"auction_id": req.AuctionID,
			"player_id":  playerID,
			"decision":   req.Decision,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, result, "player finalized successfully")
	helpers.LogSuccess("FinalizeHandler", "player finalized successfully", map[string]any{
		"player_id": result.PlayerID,
		"status":    string(result.Status),
	})
}

// ViewPlayerHandler handles POST /api/players/:player_id/view. It returns
// the player snapshot and pushes the advisory spotlight event to viewers.
func (h *LiveHandler) ViewPlayerHandler(c *gin.Context) {
	playerID := c.Param("player_id")

	player, err := h.engine.ViewPlayer(c.Request.Context(), playerID)
	if err != nil {
		helpers.RespondError(c, "ViewPlayerHandler", err, map[string]any{"player_id": playerID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, player, "player spotlighted successfully")
	helpers.LogSuccess("ViewPlayerHandler", "player spotlighted successfully", map[string]any{
		"player_id": player.PlayerID,
	})
}
