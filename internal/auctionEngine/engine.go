package auction

import (
	"context"
	"fmt"
	"sync"
	"time"

	"auction-live/internal/auctionerrors"
	"auction-live/internal/broadcast"
	model "auction-live/internal/models"
	"auction-live/internal/repository"
	"auction-live/utils"

	"github.com/shopspring/decimal"
)

// DefaultLockWait bounds how long a request waits for a player's lock
// before being rejected with ErrBusy.
const DefaultLockWait = 2 * time.Second

// Decision is the organizer's finalize verdict for a player.
type Decision string

const (
	DecisionSold   Decision = "sold"
	DecisionUnsold Decision = "unsold"
)

// Publisher is the outbound event seam. Satisfied by
// broadcast.Broadcaster; tests substitute a recorder.
type Publisher interface {
	Publish(event broadcast.Event)
}

// FinalizeResult describes the committed outcome of a finalize call.
type FinalizeResult struct {
	PlayerID       string             `json:"player_id"`
	Status         model.PlayerStatus `json:"status"`
	TeamID         *string            `json:"team_id,omitempty"`
	Amount         *decimal.Decimal   `json:"amount,omitempty"`
	RemainingPurse *decimal.Decimal   `json:"remaining_purse,omitempty"`
}

// Engine is the authoritative state machine for live bidding. Every
// state-changing operation on a player runs inside that player's
// exclusive section, so concurrent submissions on the same player are
// totally ordered while bidding on different players proceeds in
// parallel. All durable state lives in the repository; the engine holds
// no state that cannot be reconstructed from it on restart.
type Engine struct {
	repo     repository.AuctionDB
	pub      Publisher
	lockWait time.Duration

	mu    sync.Mutex
	locks map[string]chan struct{} // key: playerID
}

// NewEngine creates an Engine. lockWait <= 0 selects DefaultLockWait.
func NewEngine(repo repository.AuctionDB, pub Publisher, lockWait time.Duration) *Engine {
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	return &Engine{
		repo:     repo,
		pub:      pub,
		lockWait: lockWait,
		locks:    make(map[string]chan struct{}),
	}
}

// lockFor returns the lock channel for a player, creating it on first use.
func (e *Engine) lockFor(playerID string) chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[playerID]
	if !ok {
		l = make(chan struct{}, 1)
		e.locks[playerID] = l
	}
	return l
}

// acquire takes the player's exclusive lock, waiting at most lockWait.
// The returned release must run on every exit path.
func (e *Engine) acquire(ctx context.Context, playerID string) (func(), error) {
	l := e.lockFor(playerID)
	timer := time.NewTimer(e.lockWait)
	defer timer.Stop()

	select {
	case l <- struct{}{}:
		return func() { <-l }, nil
	case <-timer.C:
		return nil, fmt.Errorf("player %s lock wait exceeded %s: %w", playerID, e.lockWait, auctionerrors.ErrBusy)
	case <-ctx.Done():
		return nil, fmt.Errorf("player %s lock wait canceled: %w", playerID, auctionerrors.ErrBusy)
	}
}

// SubmitBid validates and commits one bid under the player's exclusive
// section. On success the bid is appended to the ledger, the player's
// current_bid cache is updated, and a NEW_BID event is published. On
// rejection nothing is mutated and no event is published.
func (e *Engine) SubmitBid(ctx context.Context, auctionID, playerID, teamID string, amount decimal.Decimal) (model.Bid, error) {
	if auctionID == "" || playerID == "" || teamID == "" {
		return model.Bid{}, fmt.Errorf("engine: %w - missing auction, player, or team id", auctionerrors.ErrInvalidRequest)
	}
	if !amount.IsPositive() {
		return model.Bid{}, fmt.Errorf("engine: %w - non-positive bid amount", auctionerrors.ErrInvalidRequest)
	}

	release, err := e.acquire(ctx, playerID)
	if err != nil {
		return model.Bid{}, err
	}
	defer release()

	// Re-read the latest committed state inside the critical section;
	// anything read before the lock may already be stale.
	auctionRec, err := e.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("engine: submit bid: %w", err)
	}
	player, err := e.repo.GetPlayer(ctx, playerID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("engine: submit bid: %w", err)
	}
	if player.AuctionID != auctionID {
		return model.Bid{}, fmt.Errorf("engine: player %s not in auction %s: %w", playerID, auctionID, auctionerrors.ErrPlayerNotFound)
	}
	team, err := e.repo.GetTeam(ctx, teamID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("engine: submit bid: %w", err)
	}

	if err := ValidateBid(auctionRec, player, team, amount); err != nil {
		return model.Bid{}, fmt.Errorf("engine: bid rejected: %w", err)
	}

	bid := model.Bid{
		BidID:     utils.GenerateID(),
		AuctionID: auctionID,
		PlayerID:  playerID,
		TeamID:    teamID,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
	// Ledger append and current_bid cache commit together; a storage
	// failure here leaves no trace and the request can simply be retried.
	if err := e.repo.CommitBid(ctx, bid); err != nil {
		return model.Bid{}, fmt.Errorf("engine: record bid for player %s: %w", playerID, err)
	}

	player.CurrentBid = &amount
	e.pub.Publish(broadcast.NewBidEvent(bid, player, team))

	utils.Info("engine: bid committed", map[string]any{
		"bid_id":    bid.BidID,
		"player_id": playerID,
		"team_id":   teamID,
		"amount":    amount.String(),
	})
	return bid, nil
}

// FinalizeStatus closes bidding on a player exactly once. A sold verdict
// charges the winning amount to the team's purse (rejected if the purse
// cannot cover it) and assigns the player; unsold just records the
// status. A second call on a finalized player returns ErrAlreadyFinalized.
// expectedAmount, when non-nil, must equal the winning bid; this rejects
// stale finalize requests built from an out-of-date price.
func (e *Engine) FinalizeStatus(ctx context.Context, auctionID, playerID string, decision Decision, teamID string, expectedAmount *decimal.Decimal) (FinalizeResult, error) {
	if auctionID == "" || playerID == "" {
		return FinalizeResult{}, fmt.Errorf("engine: %w - missing auction or player id", auctionerrors.ErrInvalidRequest)
	}
	if decision != DecisionSold && decision != DecisionUnsold {
		return FinalizeResult{}, fmt.Errorf("engine: %w - unknown decision %q", auctionerrors.ErrInvalidRequest, decision)
	}
	if decision == DecisionSold && teamID == "" {
		return FinalizeResult{}, fmt.Errorf("engine: %w - sold verdict requires a team", auctionerrors.ErrInvalidRequest)
	}

	release, err := e.acquire(ctx, playerID)
	if err != nil {
		return FinalizeResult{}, err
	}
	defer release()

	player, err := e.repo.GetPlayer(ctx, playerID)
	if err != nil {
		return FinalizeResult{}, fmt.Errorf("engine: finalize: %w", err)
	}
	if player.AuctionID != auctionID {
		return FinalizeResult{}, fmt.Errorf("engine: player %s not in auction %s: %w", playerID, auctionID, auctionerrors.ErrPlayerNotFound)
	}
	switch player.Status {
	case model.PlayerSold, model.PlayerUnsold:
		return FinalizeResult{}, fmt.Errorf("engine: player %s already %s: %w", playerID, player.Status, auctionerrors.ErrAlreadyFinalized)
	case model.PlayerActive:
	default:
		return FinalizeResult{}, fmt.Errorf("engine: player %s is %s: %w", playerID, player.Status, auctionerrors.ErrPlayerNotBiddable)
	}

	if decision == DecisionUnsold {
		if err := e.repo.FinalizePlayer(ctx, playerID, model.PlayerUnsold, nil); err != nil {
			return FinalizeResult{}, fmt.Errorf("engine: finalize unsold player %s: %w", playerID, err)
		}
		player.Status = model.PlayerUnsold
		e.pub.Publish(broadcast.UnsoldEvent(player))

		utils.Info("engine: player unsold", map[string]any{"player_id": playerID})
		return FinalizeResult{PlayerID: playerID, Status: model.PlayerUnsold}, nil
	}

	if player.CurrentBid == nil {
		return FinalizeResult{}, fmt.Errorf("engine: player %s has no committed bid to sell at: %w", playerID, auctionerrors.ErrNoBids)
	}
	winning := *player.CurrentBid
	if expectedAmount != nil && !expectedAmount.Equal(winning) {
		return FinalizeResult{}, fmt.Errorf("engine: finalize amount %s, winning bid %s: %w", expectedAmount, winning, auctionerrors.ErrAmountMismatch)
	}

	team, err := e.repo.GetTeam(ctx, teamID)
	if err != nil {
		return FinalizeResult{}, fmt.Errorf("engine: finalize: %w", err)
	}
	if team.AuctionID != auctionID {
		return FinalizeResult{}, fmt.Errorf("engine: team %s belongs to auction %s: %w", teamID, team.AuctionID, auctionerrors.ErrTeamNotInAuction)
	}

	// Purse charge and sold status commit atomically; a failed sale
	// leaves the purse untouched and the player active, so retrying the
	// request can never double-charge the team.
	if err := e.repo.SellPlayer(ctx, playerID, teamID, winning); err != nil {
		return FinalizeResult{}, fmt.Errorf("engine: sell player %s: %w", playerID, err)
	}

	player.Status = model.PlayerSold
	player.TeamID = &teamID
	team.Purse = team.Purse.Sub(winning)
	e.pub.Publish(broadcast.SoldEvent(player, team, winning))

	utils.Info("engine: player sold", map[string]any{
		"player_id": playerID,
		"team_id":   teamID,
		"amount":    winning.String(),
	})
	remaining := team.Purse
	return FinalizeResult{
		PlayerID:       playerID,
		Status:         model.PlayerSold,
		TeamID:         &teamID,
		Amount:         &winning,
		RemainingPurse: &remaining,
	}, nil
}

// ViewPlayer returns a read-only snapshot of a player and publishes the
// advisory VIEW spotlight event. It takes no lock: the snapshot may be
// stale by an in-flight commit, which is acceptable for display.
func (e *Engine) ViewPlayer(ctx context.Context, playerID string) (model.Player, error) {
	if playerID == "" {
		return model.Player{}, fmt.Errorf("engine: %w - empty player id", auctionerrors.ErrInvalidRequest)
	}
	player, err := e.repo.GetPlayer(ctx, playerID)
	if err != nil {
		return model.Player{}, fmt.Errorf("engine: view player: %w", err)
	}
	e.pub.Publish(broadcast.ViewEvent(player))
	return player, nil
}
