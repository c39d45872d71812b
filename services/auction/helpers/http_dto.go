package helpers

import (
	"github.com/shopspring/decimal"

	model "auction-live/internal/models"
)

// Request/Response DTOs

type PlaceBidRequest struct {
	PlayerID string          `json:"player_id" binding:"required"`
	TeamID   string          `json:"team_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

type FinalizeRequest struct {
	AuctionID string           `json:"auction_id" binding:"required"`
	Decision  string           `json:"status" binding:"required,oneof=sold unsold"`
	TeamID    string           `json:"team_id"`
	Amount    *decimal.Decimal `json:"amount"`
}

type BidResponse struct {
	BidID     string          `json:"bid_id"`
	AuctionID string          `json:"auction_id"`
	PlayerID  string          `json:"player_id"`
	TeamID    string          `json:"team_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt string          `json:"created_at"`
}

type CreateAuctionRequest struct {
	Name         string          `json:"name" binding:"required"`
	Description  string          `json:"description"`
	BidIncrement decimal.Decimal `json:"bid_increment"`
}

type UpdateAuctionRequest struct {
	Name         string           `json:"name" binding:"required"`
	Description  string           `json:"description"`
	BidIncrement *decimal.Decimal `json:"bid_increment"`
}

type AuctionStatusRequest struct {
	Status model.AuctionStatus `json:"status" binding:"required,oneof=draft live closed"`
}

type CreateTeamRequest struct {
	Name     string          `json:"name" binding:"required"`
	Budget   decimal.Decimal `json:"budget"`
	LogoPath string          `json:"logo_path"`
}

type UpdateTeamRequest struct {
	Name     string          `json:"name" binding:"required"`
	Budget   decimal.Decimal `json:"budget"`
	LogoPath string          `json:"logo_path"`
}

type CreatePlayerRequest struct {
	Name      string          `json:"name" binding:"required"`
	Position  string          `json:"position"`
	BasePrice decimal.Decimal `json:"base_price"`
	PhotoPath string          `json:"photo_path"`
}

type UpdatePlayerRequest struct {
	Name      string             `json:"name" binding:"required"`
	Position  string             `json:"position"`
	BasePrice decimal.Decimal    `json:"base_price"`
	PhotoPath string             `json:"photo_path"`
	Status    model.PlayerStatus `json:"status" binding:"omitempty,oneof=pending active sold unsold"`
}
