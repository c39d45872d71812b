package auction

import (
	"fmt"

	"auction-live/internal/auctionerrors"
	model "auction-live/internal/models"

	"github.com/shopspring/decimal"
)

// MinimumNextBid returns the lowest acceptable bid for a player: the
// base price if nothing has been committed yet, otherwise the current
// bid plus the auction increment.
func MinimumNextBid(auction model.Auction, player model.Player) decimal.Decimal {
	if player.CurrentBid == nil {
		return player.BasePrice
	}
	return player.CurrentBid.Add(auction.BidIncrement)
}

// ValidateBid applies the bidding rules to a snapshot of auction, player,
// and team state. It is pure: no I/O, no mutation. The returned error is
// always one of the specific rejection sentinels, with the current
// minimum acceptable amount included in the message so a losing bidder
// sees the updated price.
func ValidateBid(auction model.Auction, player model.Player, team model.Team, amount decimal.Decimal) error {
	if auction.Status != model.AuctionLive {
		return fmt.Errorf("auction %s is %s: %w", auction.AuctionID, auction.Status, auctionerrors.ErrAuctionNotLive)
	}
	if player.Status != model.PlayerActive {
		return fmt.Errorf("player %s is %s: %w", player.PlayerID, player.Status, auctionerrors.ErrPlayerNotBiddable)
	}
	if team.AuctionID != auction.AuctionID {
		return fmt.Errorf("team %s belongs to auction %s: %w", team.TeamID, team.AuctionID, auctionerrors.ErrTeamNotInAuction)
	}
	if minimum := MinimumNextBid(auction, player); amount.LessThan(minimum) {
		return fmt.Errorf("bid %s below minimum %s: %w", amount, minimum, auctionerrors.ErrBidBelowIncrement)
	}
	if team.Purse.LessThan(amount) {
		return fmt.Errorf("team %s purse %s cannot cover %s: %w", team.TeamID, team.Purse, amount, auctionerrors.ErrInsufficientPurse)
	}
	return nil
}
