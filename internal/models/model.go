package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuctionStatus is the organizer-driven lifecycle of an auction.
// Transitions are monotonic: draft -> live -> closed, no reversal.
type AuctionStatus string

const (
	AuctionDraft  AuctionStatus = "draft"
	AuctionLive   AuctionStatus = "live"
	AuctionClosed AuctionStatus = "closed"
)

// CanTransitionTo reports whether next is a legal auction status step.
// The lifecycle only moves forward.
func (s AuctionStatus) CanTransitionTo(next AuctionStatus) bool {
	switch s {
	case AuctionDraft:
		return next == AuctionLive
	case AuctionLive:
		return next == AuctionClosed
	default:
		return false
	}
}

// PlayerStatus is the bidding lifecycle of a player within an auction.
type PlayerStatus string

const (
	PlayerPending PlayerStatus = "pending"
	PlayerActive  PlayerStatus = "active"
	PlayerSold    PlayerStatus = "sold"
	PlayerUnsold  PlayerStatus = "unsold"
)

// Auction represents one auction event
type Auction struct {
	AuctionID    string          `json:"auction_id" gorm:"column:id;primaryKey"`
	Name         string          `json:"name" gorm:"column:name"`
	Description  string          `json:"description" gorm:"column:description"`
	Status       AuctionStatus   `json:"status" gorm:"column:status"`
	BidIncrement decimal.Decimal `json:"bid_increment" gorm:"column:bid_increment;type:numeric(14,2)"`
}

// Team represents a bidding franchise within an auction
type Team struct {
	TeamID    string          `json:"team_id" gorm:"column:id;primaryKey"`
	AuctionID string          `json:"auction_id" gorm:"column:auction_id;index"`
	Name      string          `json:"name" gorm:"column:name"`
	LogoPath  string          `json:"logo_path" gorm:"column:logo_path"`
	Purse     decimal.Decimal `json:"purse" gorm:"column:purse;type:numeric(14,2)"`
}

// Player represents a player put up for bidding in an auction.
// CurrentBid is a derived cache of the latest committed bid; it is nil
// until the first bid commits. TeamID is set iff Status == sold.
type Player struct {
	PlayerID   string           `json:"player_id" gorm:"column:id;primaryKey"`
	AuctionID  string           `json:"auction_id" gorm:"column:auction_id;index"`
	Name       string           `json:"name" gorm:"column:name"`
	Position   string           `json:"position" gorm:"column:position"`
	PhotoPath  string           `json:"photo_path" gorm:"column:photo_path"`
	BasePrice  decimal.Decimal  `json:"base_price" gorm:"column:base_price;type:numeric(14,2)"`
	CurrentBid *decimal.Decimal `json:"current_bid,omitempty" gorm:"column:current_bid;type:numeric(14,2)"`
	Status     PlayerStatus     `json:"status" gorm:"column:status"`
	TeamID     *string          `json:"team_id,omitempty" gorm:"column:team_id"`
}

// Bid is one entry in the append-only bid ledger. Rows are immutable
// once committed; per player the amounts form a strictly increasing
// sequence in commit order.
type Bid struct {
	BidID     string          `json:"bid_id" gorm:"column:id;primaryKey"`
	AuctionID string          `json:"auction_id" gorm:"column:auction_id;index"`
	PlayerID  string          `json:"player_id" gorm:"column:player_id;index"`
	TeamID    string          `json:"team_id" gorm:"column:team_id;index"`
	Amount    decimal.Decimal `json:"amount" gorm:"column:amount;type:numeric(14,2)"`
	CreatedAt time.Time       `json:"created_at" gorm:"column:created_at"`
}

// TeamSummary is the reporting view of a team with its acquired roster.
type TeamSummary struct {
	Team    Team     `json:"team"`
	Players []Player `json:"players"`
}

// LeaderboardEntry is one row of the sold-player leaderboard, ordered
// by winning bid descending.
type LeaderboardEntry struct {
	PlayerName string          `json:"name"`
	PhotoPath  string          `json:"photo_path"`
	TeamName   string          `json:"team"`
	TeamLogo   string          `json:"logo"`
	WinningBid decimal.Decimal `json:"winning_bid"`
}

// TeamRanking is one row of the team rankings, ordered by the team's
// total bid volume descending. Teams that never bid are not ranked.
type TeamRanking struct {
	TeamID   string          `json:"team_id"`
	TeamName string          `json:"name"`
	TotalBid decimal.Decimal `json:"total_bid"`
}
