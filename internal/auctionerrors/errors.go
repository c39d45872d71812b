package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrTeamNotFound    = errors.New("team not found")
	ErrNoBids          = errors.New("no bids found for player")
	ErrStorage         = errors.New("storage failure")
)

// Bid validation rejections. Each one is a distinct, expected outcome
// returned to the caller; none of them mutates state.
var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrAuctionNotLive    = errors.New("auction is not live")
	ErrPlayerNotBiddable = errors.New("player is not open for bidding")
	ErrBidBelowIncrement = errors.New("bid amount below required increment")
	ErrInsufficientPurse = errors.New("team purse cannot cover bid")
	ErrTeamNotInAuction  = errors.New("team does not belong to this auction")
)

// Engine-level errors
var (
	ErrAlreadyFinalized  = errors.New("player already finalized")
	ErrBusy              = errors.New("player is busy, retry")
	ErrInvalidTransition = errors.New("invalid auction status transition")
	ErrAmountMismatch    = errors.New("finalize amount does not match winning bid")
)

// Reason returns the machine-readable reason code for an error, so that
// transport responses carry a stable identifier distinct from the human
// message. Unrecognized errors map to "internal".
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrAuctionNotFound):
		return "auction_not_found"
	case errors.Is(err, ErrPlayerNotFound):
		return "player_not_found"
	case errors.Is(err, ErrTeamNotFound):
		return "team_not_found"
	case errors.Is(err, ErrNoBids):
		return "no_bids"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrAuctionNotLive):
		return "auction_not_live"
	case errors.Is(err, ErrPlayerNotBiddable):
		return "player_not_biddable"
	case errors.Is(err, ErrBidBelowIncrement):
		return "below_increment"
	case errors.Is(err, ErrInsufficientPurse):
		return "insufficient_purse"
	case errors.Is(err, ErrTeamNotInAuction):
		return "team_not_in_auction"
	case errors.Is(err, ErrAlreadyFinalized):
		return "already_finalized"
	case errors.Is(err, ErrBusy):
		return "busy"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrAmountMismatch):
		return "amount_mismatch"
	case errors.Is(err, ErrStorage):
		return "storage_failure"
	default:
		return "internal"
	}
}
