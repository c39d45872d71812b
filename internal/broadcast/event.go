package broadcast

import (
	model "auction-live/internal/models"

	"github.com/shopspring/decimal"
)

// EventType identifies the kind of state change being fanned out.
type EventType string

const (
	EventView                EventType = "VIEW"
	EventNewBid              EventType = "NEW_BID"
	EventPlayerSold          EventType = "PLAYER_SOLD"
	EventPlayerStatusUpdated EventType = "PLAYER_STATUS_UPDATED"
)

// Event is one state-change notification. Payloads are self-contained
// (player name/image, team name/logo) so live displays can render the
// change without a follow-up fetch.
type Event struct {
	Type        EventType        `json:"type"`
	AuctionID   string           `json:"auction_id,omitempty"`
	PlayerID    string           `json:"player_id"`
	PlayerName  string           `json:"player_name"`
	PlayerImage string           `json:"player_image"`
	TeamID      string           `json:"team_id,omitempty"`
	TeamName    string           `json:"team_name,omitempty"`
	TeamLogo    string           `json:"team_logo,omitempty"`
	BasePrice   *decimal.Decimal `json:"base_price,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Status      string           `json:"status,omitempty"`
}

// ViewEvent builds the advisory spotlight event for a player.
func ViewEvent(player model.Player) Event {
	base := player.BasePrice
	return Event{
		Type:        EventView,
		AuctionID:   player.AuctionID,
		PlayerID:    player.PlayerID,
		PlayerName:  player.Name,
		PlayerImage: player.PhotoPath,
		BasePrice:   &base,
	}
}

// NewBidEvent builds the event for a committed bid.
func NewBidEvent(bid model.Bid, player model.Player, team model.Team) Event {
	amount := bid.Amount
	return Event{
		Type:        EventNewBid,
		AuctionID:   bid.AuctionID,
		PlayerID:    player.PlayerID,
		PlayerName:  player.Name,
		PlayerImage: player.PhotoPath,
		TeamID:      team.TeamID,
		TeamName:    team.Name,
		TeamLogo:    team.LogoPath,
		Amount:      &amount,
	}
}

// SoldEvent builds the event for a player sold to a team.
func SoldEvent(player model.Player, team model.Team, amount decimal.Decimal) Event {
	return Event{
		Type:        EventPlayerSold,
		AuctionID:   player.AuctionID,
		PlayerID:    player.PlayerID,
		PlayerName:  player.Name,
		PlayerImage: player.PhotoPath,
		TeamID:      team.TeamID,
		TeamName:    team.Name,
		TeamLogo:    team.LogoPath,
		Amount:      &amount,
		Status:      string(model.PlayerSold),
	}
}

// UnsoldEvent builds the status-update event for a player going unsold.
func UnsoldEvent(player model.Player) Event {
	return Event{
		Type:        EventPlayerStatusUpdated,
		AuctionID:   player.AuctionID,
		PlayerID:    player.PlayerID,
		PlayerName:  player.Name,
		PlayerImage: player.PhotoPath,
		Status:      string(model.PlayerUnsold),
	}
}
