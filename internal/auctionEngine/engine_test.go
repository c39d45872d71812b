package auction

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"auction-live/internal/auctionerrors"
	"auction-live/internal/broadcast"
	model "auction-live/internal/models"
	"auction-live/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []broadcast.Event
}

func (p *recordingPublisher) Publish(event broadcast.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) all() []broadcast.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]broadcast.Event(nil), p.events...)
}

// seedLiveAuction populates the repo with one live auction, one active
// player (base 100), and teams with the given purses.
func seedLiveAuction(t *testing.T, repo *repository.MemoryRepo, purses ...string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, repo.CreateAuction(ctx, model.Auction{
		AuctionID:    "auction1",
		Name:         "Season Auction",
		Status:       model.AuctionLive,
		BidIncrement: dec("50"),
	}))
	require.NoError(t, repo.CreatePlayer(ctx, model.Player{
		PlayerID:  "player1",
		AuctionID: "auction1",
		Name:      "Player One",
		Position:  "forward",
		BasePrice: dec("100"),
		Status:    model.PlayerActive,
	}))
	for i, purse := range purses {
		teamID := []string{"team1", "team2", "team3"}[i]
		require.NoError(t, repo.CreateTeam(ctx, model.Team{
			TeamID:    teamID,
			AuctionID: "auction1",
			Name:      "Team " + teamID,
			Purse:     dec(purse),
		}))
	}
}

// Scenario from the bidding rules: base 100, increment 50. 150 accepted,
// a second 150 rejected below-increment with the updated price, 200 accepted.
func TestEngine_SubmitBid_IncrementScenario(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	pub := &recordingPublisher{}
	engine := NewEngine(repo, pub, 0)
	seedLiveAuction(t, repo, "1000", "1000")
	ctx := context.Background()

	bidA, err := engine.SubmitBid(ctx, "auction1", "player1", "team1", dec("150"))
	require.NoError(t, err)
	require.True(t, bidA.Amount.Equal(dec("150")))

	_, err = engine.SubmitBid(ctx, "auction1", "player1", "team2", dec("150"))
	require.ErrorIs(t, err, auctionerrors.ErrBidBelowIncrement)
	require.Contains(t, err.Error(), "200")

	bidC, err := engine.SubmitBid(ctx, "auction1", "player1", "team2", dec("200"))
	require.NoError(t, err)
	require.True(t, bidC.Amount.Equal(dec("200")))

	player, err := repo.GetPlayer(ctx, "player1")
	require.NoError(t, err)
	require.NotNil(t, player.CurrentBid)
	require.True(t, player.CurrentBid.Equal(dec("200")))

	// Ledger holds only the two accepted bids, strictly increasing.
	bids, err := repo.GetBidsByPlayer(ctx, "player1")
	require.NoError(t, err)
	require.Len(t, bids, 2)
	require.True(t, bids[0].Amount.LessThan(bids[1].Amount))
	require.False(t, bids[1].CreatedAt.Before(bids[0].CreatedAt))

	// One NEW_BID event per committed bid, in commit order.
	events := pub.all()
	require.Len(t, events, 2)
	require.Equal(t, broadcast.EventNewBid, events[0].Type)
	require.True(t, events[0].Amount.Equal(dec("150")))
	require.True(t, events[1].Amount.Equal(dec("200")))
}

// current_bid must equal the maximum committed amount after any sequence.
func TestEngine_SubmitBid_CurrentBidMatchesLedger(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	engine := NewEngine(repo, &recordingPublisher{}, 0)
	seedLiveAuction(t, repo, "100000", "100000")
	ctx := context.Background()

	amounts := []string{"100", "175", "225", "300", "1000"}
	teams := []string{"team1", "team2", "team1", "team2", "team1"}
	for i, amount := range amounts {
		_, err := engine.SubmitBid(ctx, "auction1", "player1", teams[i], dec(amount))
		require.NoError(t, err)
	}

	bids, err := repo.GetBidsByPlayer(ctx, "player1")
	require.NoError(t, err)
	maxAmount := bids[0].Amount
	for _, b := range bids[1:] {
		require.True(t, b.Amount.GreaterThan(maxAmount), "ledger must be strictly increasing")
		maxAmount = b.Amount
	}

	player, err := repo.GetPlayer(ctx, "player1")
	require.NoError(t, err)
	require.True(t, player.CurrentBid.Equal(maxAmount))
}

// Two simultaneous bids over the same threshold on one player: exactly
// one wins, the loser is told the updated price.
func TestEngine_SubmitBid_ConcurrentSamePlayer(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	engine := NewEngine(repo, &recordingPublisher{}, 0)
	seedLiveAuction(t, repo, "1000", "1000")
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, teamID := range []string{"team1", "team2"} {
		wg.Add(1)
		go func(i int, teamID string) {
			defer wg.Done()
			_, results[i] = engine.SubmitBid(ctx, "auction1", "player1", teamID, dec("150"))
		}(i, teamID)
	}
	wg.Wait()

	var accepted, rejected int
	for _, err := range results {
		if err == nil {
			accepted++
		} else {
			require.ErrorIs(t, err, auctionerrors.ErrBidBelowIncrement)
			rejected++
		}
	}
	require.Equal(t, 1, accepted)
	require.Equal(t, 1, rejected)

	player, err := repo.GetPlayer(ctx, "player1")
	require.NoError(t, err)
	require.True(t, player.CurrentBid.Equal(dec("150")))
}

// Bids on different players proceed independently even while one
// player's lock is held.
func TestEngine_SubmitBid_IndependentPlayers(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	engine := NewEngine(repo, &recordingPublisher{}, 200*time.Millisecond)
	seedLiveAuction(t, repo, "1000")
	ctx := context.Background()

	require.NoError(t, repo.CreatePlayer(ctx, model.Player{
		PlayerID:  "player2",
		AuctionID: "auction1",
		Name:      "Player Two",
		BasePrice: dec("100"),
		Status:    model.PlayerActive,
	}))

	release, err := engine.acquire(ctx, "player1")
	require.NoError(t, err)
	defer release()

	// player1 is locked; player2 must still accept a bid promptly.
	done := make(chan error, 1)
	go func() {
		_, err := engine.SubmitBid(ctx, "auction1", "player2", "team1", dec("100"))
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(150 * time.Millisecond):
		t.Fatal("bid on unlocked player blocked behind another player's lock")
	}
}

// A submission that cannot take the lock within the wait budget is
// rejected with ErrBusy instead of queueing forever.
func TestEngine_SubmitBid_BusyTimeout(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	engine := NewEngine(repo, &recordingPublisher{}, 30*time.Millisecond)
	seedLiveAuction(t, repo, "1000")
	ctx := context.Background()

	release, err := engine.acquire(ctx, "player1")
	require.NoError(t, err)
	defer release()

	_, err = engine.SubmitBid(ctx, "auction1", "player1", "team1", dec("150"))
	require.ErrorIs(t, err, auctionerrors.ErrBusy)
}

// A storage failure aborts the operation: typed error out, no event published.
func TestEngine_SubmitBid_StorageFailurePublishesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockAuctionDB(ctrl)
	pub := &recordingPublisher{}
	engine := NewEngine(mockRepo, pub, 0)
	ctx := context.Background()

	mockRepo.EXPECT().GetAuction(gomock.Any(), "auction1").Return(model.Auction{
		AuctionID: "auction1", Status: model.AuctionLive, BidIncrement: dec("50"),
	}, nil)
	mockRepo.EXPECT().GetPlayer(gomock.Any(), "player1").Return(model.Player{
		PlayerID: "player1", AuctionID: "auction1",
		BasePrice: dec("100"), Status: model.PlayerActive,
	}, nil)
	mockRepo.EXPECT().GetTeam(gomock.Any(), "team1").Return(model.Team{
		TeamID: "team1", AuctionID: "auction1", Purse: dec("1000"),
	}, nil)
	mockRepo.EXPECT().CommitBid(gomock.Any(), gomock.Any()).
		Return(errors.New("connection reset"))

	_, err := engine.SubmitBid(ctx, "auction1", "player1", "team1", dec("150"))
	require.Error(t, err)
	require.Empty(t, pub.all())
}

// flakyRepo fails a configured number of commit calls before delegating,
// simulating transient storage outages mid-operation.
type flakyRepo struct {
	*repository.MemoryRepo
	failCommits int
	failSells   int
}

func (r *flakyRepo) CommitBid(ctx context.Context, bid model.Bid) error {
	if r.failCommits > 0 {
		r.failCommits--
		return fmt.Errorf("commit bid for player %s: %w", bid.PlayerID, auctionerrors.ErrStorage)
	}
	return r.MemoryRepo.CommitBid(ctx, bid)
}

func (r *flakyRepo) SellPlayer(ctx context.Context, playerID, teamID string, amount decimal.Decimal) error {
	if r.failSells > 0 {
		r.failSells--
		return fmt.Errorf("sell player %s: %w", playerID, auctionerrors.ErrStorage)
	}
	return r.MemoryRepo.SellPlayer(ctx, playerID, teamID, amount)
}

// A storage failure during a bid commit leaves no trace: no ledger row,
// no current_bid, no event. Retrying the same request then commits it
// exactly once.
func TestEngine_SubmitBid_RetryAfterStorageFailure(t *testing.T) {
	t.Parallel()

	mem := repository.NewMemoryRepo()
	repo := &flakyRepo{MemoryRepo: mem, failCommits: 1}
	pub := &recordingPublisher{}
	engine := NewEngine(repo, pub, 0)
	seedLiveAuction(t, mem, "1000")
	ctx := context.Background()

	_, err := engine.SubmitBid(ctx, "auction1", "player1", "team1", dec("150"))
	require.ErrorIs(t, err, auctionerrors.ErrStorage)

	_, err = mem.GetBidsByPlayer(ctx, "player1")
	require.ErrorIs(t, err, auctionerrors.ErrNoBids, "failed commit must write no ledger row")
	player, err := mem.GetPlayer(ctx, "player1")
	require.NoError(t, err)
	require.Nil(t, player.CurrentBid, "failed commit must not move current_bid")
	require.Empty(t, pub.all())

	_, err = engine.SubmitBid(ctx, "auction1", "player1", "team1", dec("150"))
	require.NoError(t, err)

	bids, err := mem.GetBidsByPlayer(ctx, "player1")
	require.NoError(t, err)
	require.Len(t, bids, 1)
	player, err = mem.GetPlayer(ctx, "player1")
	require.NoError(t, err)
	require.NotNil(t, player.CurrentBid)
	require.True(t, player.CurrentBid.Equal(bids[0].Amount), "current_bid tracks the ledger maximum")
	require.Len(t, pub.all(), 1)
}

// A storage failure during a sale rolls the whole sale back; the retry
// charges the purse exactly once.
func TestEngine_Finalize_RetryAfterStorageFailureChargesOnce(t *testing.T) {
	t.Parallel()

	mem := repository.NewMemoryRepo()
	repo := &flakyRepo{MemoryRepo: mem, failSells: 1}
	pub := &recordingPublisher{}
	engine := NewEngine(repo, pub, 0)
	seedLiveAuction(t, mem, "1000")
	ctx := context.Background()

	_, err := engine.SubmitBid(ctx, "auction1", "player1", "team1", dec("400"))
	require.NoError(t, err)

	_, err = engine.FinalizeStatus(ctx, "auction1", "player1", DecisionSold, "team1", nil)
	require.ErrorIs(t, err, auctionerrors.ErrStorage)

	team, err := mem.GetTeam(ctx, "team1")
	require.NoError(t, err)
	require.True(t, team.Purse.Equal(dec("1000")), "failed sale must not charge the purse")
	player, err := mem.GetPlayer(ctx, "player1")
	require.NoError(t, err)
	require.Equal(t, model.PlayerActive, player.Status, "failed sale must leave the player active")

	result, err := engine.FinalizeStatus(ctx, "auction1", "player1", DecisionSold, "team1", nil)
	require.NoError(t, err)
	require.True(t, result.RemainingPurse.Equal(dec("600")))

	team, err = mem.GetTeam(ctx, "team1")
	require.NoError(t, err)
	require.True(t, team.Purse.Equal(dec("600")), "retried sale charges exactly once")

	events := pub.all()
	require.Len(t, events, 2)
	require.Equal(t, broadcast.EventNewBid, events[0].Type)
	require.Equal(t, broadcast.EventPlayerSold, events[1].Type)
}

// Finalize at the full purse drains it to zero; a second finalize trips
// the idempotency guard instead of double-charging.
func TestEngine_Finalize_SoldExactPurse(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	pub := &recordingPublisher{}
	engine := NewEngine(repo, pub, 0)
	seedLiveAuction(t, repo, "1000")
	ctx := context.Background()

	_, err := engine.SubmitBid(ctx, "auction1", "player1", "team1", dec("1000"))
	require.NoError(t, err)

	result, err := engine.FinalizeStatus(ctx, "auction1", "player1", DecisionSold, "team1", nil)
	require.NoError(t, err)
	require.Equal(t, model.PlayerSold, result.Status)
	require.True(t, result.Amount.Equal(dec("1000")))
	require.True(t, result.RemainingPurse.IsZero())

	team, err := repo.GetTeam(ctx, "team1")
	require.NoError(t, err)
	require.True(t, team.Purse.IsZero())

	player, err := repo.GetPlayer(ctx, "player1")
	require.NoError(t, err)
	require.Equal(t, model.PlayerSold, player.Status)
	require.NotNil(t, player.TeamID)
	require.Equal(t, "team1", *player.TeamID)

	_, err = engine.FinalizeStatus(ctx, "auction1", "player1", DecisionSold, "team1", nil)
	require.ErrorIs(t, err, auctionerrors.ErrAlreadyFinalized)

	// Ledger event sequence: NEW_BID then PLAYER_SOLD, nothing more.
	events := pub.all()
	require.Len(t, events, 2)
	require.Equal(t, broadcast.EventNewBid, events[0].Type)
	require.Equal(t, broadcast.EventPlayerSold, events[1].Type)
	require.Equal(t, "Player One", events[1].PlayerName)
	require.Equal(t, "Team team1", events[1].TeamName)
}

// A purse that cannot cover the winning bid rejects the finalize and
// leaves every record untouched.
func TestEngine_Finalize_InsufficientPurse(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	engine := NewEngine(repo, &recordingPublisher{}, 0)
	seedLiveAuction(t, repo, "1000", "150")
	ctx := context.Background()

	// team2 bids within its purse, then loses it to a team1 bid; the
	// organizer then tries to sell to team2 at a price it cannot pay.
	_, err := engine.SubmitBid(ctx, "auction1", "player1", "team2", dec("100"))
	require.NoError(t, err)
	_, err = engine.SubmitBid(ctx, "auction1", "player1", "team1", dec("200"))
	require.NoError(t, err)

	_, err = engine.FinalizeStatus(ctx, "auction1", "player1", DecisionSold, "team2", nil)
	require.ErrorIs(t, err, auctionerrors.ErrInsufficientPurse)

	team, err := repo.GetTeam(ctx, "team2")
	require.NoError(t, err)
	require.True(t, team.Purse.Equal(dec("150")), "rejected finalize must not touch the purse")

	player, err := repo.GetPlayer(ctx, "player1")
	require.NoError(t, err)
	require.Equal(t, model.PlayerActive, player.Status)
	require.Nil(t, player.TeamID)
}

func TestEngine_Finalize_Unsold(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	pub := &recordingPublisher{}
	engine := NewEngine(repo, pub, 0)
	seedLiveAuction(t, repo, "1000")
	ctx := context.Background()

	result, err := engine.FinalizeStatus(ctx, "auction1", "player1", DecisionUnsold, "", nil)
	require.NoError(t, err)
	require.Equal(t, model.PlayerUnsold, result.Status)
	require.Nil(t, result.TeamID)

	player, err := repo.GetPlayer(ctx, "player1")
	require.NoError(t, err)
	require.Equal(t, model.PlayerUnsold, player.Status)

	_, err = engine.FinalizeStatus(ctx, "auction1", "player1", DecisionUnsold, "", nil)
	require.ErrorIs(t, err, auctionerrors.ErrAlreadyFinalized)

	events := pub.all()
	require.Len(t, events, 1)
	require.Equal(t, broadcast.EventPlayerStatusUpdated, events[0].Type)
	require.Equal(t, string(model.PlayerUnsold), events[0].Status)
}

// A finalize built from a stale price is rejected rather than charging
// an amount the organizer never saw.
func TestEngine_Finalize_StaleAmountRejected(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	engine := NewEngine(repo, &recordingPublisher{}, 0)
	seedLiveAuction(t, repo, "1000")
	ctx := context.Background()

	_, err := engine.SubmitBid(ctx, "auction1", "player1", "team1", dec("300"))
	require.NoError(t, err)

	stale := dec("150")
	_, err = engine.FinalizeStatus(ctx, "auction1", "player1", DecisionSold, "team1", &stale)
	require.ErrorIs(t, err, auctionerrors.ErrAmountMismatch)
}

func TestEngine_Finalize_SoldWithoutBids(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	engine := NewEngine(repo, &recordingPublisher{}, 0)
	seedLiveAuction(t, repo, "1000")
	ctx := context.Background()

	_, err := engine.FinalizeStatus(ctx, "auction1", "player1", DecisionSold, "team1", nil)
	require.ErrorIs(t, err, auctionerrors.ErrNoBids)
}

// ViewPlayer is lock-free: it answers even while the player's lock is held.
func TestEngine_ViewPlayer(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	pub := &recordingPublisher{}
	engine := NewEngine(repo, pub, 30*time.Millisecond)
	seedLiveAuction(t, repo, "1000")
	ctx := context.Background()

	release, err := engine.acquire(ctx, "player1")
	require.NoError(t, err)
	defer release()

	player, err := engine.ViewPlayer(ctx, "player1")
	require.NoError(t, err)
	require.Equal(t, "player1", player.PlayerID)

	events := pub.all()
	require.Len(t, events, 1)
	require.Equal(t, broadcast.EventView, events[0].Type)
	require.True(t, events[0].BasePrice.Equal(dec("100")))
}

func TestEngine_SubmitBid_InvalidInput(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	engine := NewEngine(repo, &recordingPublisher{}, 0)
	ctx := context.Background()

	_, err := engine.SubmitBid(ctx, "", "player1", "team1", dec("150"))
	require.ErrorIs(t, err, auctionerrors.ErrInvalidRequest)

	_, err = engine.SubmitBid(ctx, "auction1", "player1", "team1", dec("0"))
	require.ErrorIs(t, err, auctionerrors.ErrInvalidRequest)

	_, err = engine.SubmitBid(ctx, "auction1", "player1", "team1", dec("-10"))
	require.ErrorIs(t, err, auctionerrors.ErrInvalidRequest)
}
