package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"auction-live/internal/auctionerrors"
	model "auction-live/internal/models"

	"github.com/shopspring/decimal"
)

// AuctionDB defines the persistence interface for the auction system.
// The engine's commit path uses CommitBid, SellPlayer, and FinalizePlayer.
// Each of those is atomic: it either applies all of its writes or none,
// so a storage failure never leaves partial state and the whole request
// can be retried. Everything else serves the CRUD and reporting routes.
type AuctionDB interface {
	CreateAuction(ctx context.Context, auction model.Auction) error
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	ListAuctions(ctx context.Context) ([]model.Auction, error)
	UpdateAuction(ctx context.Context, auction model.Auction) error
	UpdateAuctionStatus(ctx context.Context, auctionID string, status model.AuctionStatus) error
	DeleteAuction(ctx context.Context, auctionID string) error

	CreateTeam(ctx context.Context, team model.Team) error
	GetTeam(ctx context.Context, teamID string) (model.Team, error)
	GetTeamsByAuction(ctx context.Context, auctionID string) ([]model.Team, error)
	UpdateTeam(ctx context.Context, team model.Team) error
	DeleteTeam(ctx context.Context, teamID string) error

	CreatePlayer(ctx context.Context, player model.Player) error
	GetPlayer(ctx context.Context, playerID string) (model.Player, error)
	GetPlayersByAuction(ctx context.Context, auctionID string) ([]model.Player, error)
	SearchPlayers(ctx context.Context, auctionID, query string) ([]model.Player, error)
	UpdatePlayer(ctx context.Context, player model.Player) error
	DeletePlayer(ctx context.Context, playerID string) error
	FinalizePlayer(ctx context.Context, playerID string, status model.PlayerStatus, teamID *string) error

	CommitBid(ctx context.Context, bid model.Bid) error
	SellPlayer(ctx context.Context, playerID, teamID string, amount decimal.Decimal) error
	GetBidsByPlayer(ctx context.Context, playerID string) ([]model.Bid, error)

	TeamSummaries(ctx context.Context, auctionID string) ([]model.TeamSummary, error)
	Leaderboard(ctx context.Context, auctionID string) ([]model.LeaderboardEntry, error)
	TeamRankings(ctx context.Context, auctionID string) ([]model.TeamRanking, error)
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB.
// It backs the "memory" storage driver and all unit/integration tests.
type MemoryRepo struct {
	mu       sync.RWMutex
	auctions map[string]model.Auction
	teams    map[string]model.Team
	players  map[string]model.Player
	bids     map[string][]model.Bid // key: playerID -> bids in commit order
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions: make(map[string]model.Auction),
		teams:    make(map[string]model.Team),
		players:  make(map[string]model.Player),
		bids:     make(map[string][]model.Bid),
	}
}

func (r *MemoryRepo) CreateAuction(_ context.Context, auction model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auctions[auction.AuctionID] = auction
	return nil
}

func (r *MemoryRepo) GetAuction(_ context.Context, auctionID string) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	auction, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return auction, nil
}

func (r *MemoryRepo) ListAuctions(_ context.Context) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	auctions := make([]model.Auction, 0, len(r.auctions))
	for _, a := range r.auctions {
		auctions = append(auctions, a)
	}
	sort.Slice(auctions, func(i, j int) bool { return auctions[i].AuctionID < auctions[j].AuctionID })
	return auctions, nil
}

func (r *MemoryRepo) UpdateAuction(_ context.Context, auction model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.auctions[auction.AuctionID]; !ok {
		return fmt.Errorf("update auction %s: %w", auction.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	r.auctions[auction.AuctionID] = auction
	return nil
}

func (r *MemoryRepo) UpdateAuctionStatus(_ context.Context, auctionID string, status model.AuctionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	auction, ok := r.auctions[auctionID]
	if !ok {
		return fmt.Errorf("update auction status %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	auction.Status = status
	r.auctions[auctionID] = auction
	return nil
}

func (r *MemoryRepo) DeleteAuction(_ context.Context, auctionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.auctions[auctionID]; !ok {
		return fmt.Errorf("delete auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	delete(r.auctions, auctionID)
	return nil
}

func (r *MemoryRepo) CreateTeam(_ context.Context, team model.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teams[team.TeamID] = team
	return nil
}

func (r *MemoryRepo) GetTeam(_ context.Context, teamID string) (model.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	team, ok := r.teams[teamID]
	if !ok {
		return model.Team{}, fmt.Errorf("get team %s: %w", teamID, auctionerrors.ErrTeamNotFound)
	}
	return team, nil
}

func (r *MemoryRepo) GetTeamsByAuction(_ context.Context, auctionID string) ([]model.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var teams []model.Team
	for _, t := range r.teams {
		if t.AuctionID == auctionID {
			teams = append(teams, t)
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].TeamID < teams[j].TeamID })
	return teams, nil
}

func (r *MemoryRepo) UpdateTeam(_ context.Context, team model.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[team.TeamID]; !ok {
		return fmt.Errorf("update team %s: %w", team.TeamID, auctionerrors.ErrTeamNotFound)
	}
	r.teams[team.TeamID] = team
	return nil
}

func (r *MemoryRepo) DeleteTeam(_ context.Context, teamID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[teamID]; !ok {
		return fmt.Errorf("delete team %s: %w", teamID, auctionerrors.ErrTeamNotFound)
	}
	delete(r.teams, teamID)
	return nil
}

func (r *MemoryRepo) CreatePlayer(_ context.Context, player model.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[player.PlayerID] = player
	return nil
}

func (r *MemoryRepo) GetPlayer(_ context.Context, playerID string) (model.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	player, ok := r.players[playerID]
	if !ok {
		return model.Player{}, fmt.Errorf("get player %s: %w", playerID, auctionerrors.ErrPlayerNotFound)
	}
	return player, nil
}

func (r *MemoryRepo) GetPlayersByAuction(_ context.Context, auctionID string) ([]model.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var players []model.Player
	for _, p := range r.players {
		if p.AuctionID == auctionID {
			players = append(players, p)
		}
	}
	sort.Slice(players, func(i, j int) bool { return players[i].PlayerID < players[j].PlayerID })
	return players, nil
}

// SearchPlayers matches the query as a case-insensitive substring of a
// player's name or id within one auction.
func (r *MemoryRepo) SearchPlayers(_ context.Context, auctionID, query string) ([]model.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(query)
	var players []model.Player
	for _, p := range r.players {
		if p.AuctionID != auctionID {
			continue
		}
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.PlayerID), needle) {
			players = append(players, p)
		}
	}
	sort.Slice(players, func(i, j int) bool { return players[i].PlayerID < players[j].PlayerID })
	return players, nil
}

func (r *MemoryRepo) UpdatePlayer(_ context.Context, player model.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[player.PlayerID]; !ok {
		return fmt.Errorf("update player %s: %w", player.PlayerID, auctionerrors.ErrPlayerNotFound)
	}
	r.players[player.PlayerID] = player
	return nil
}

func (r *MemoryRepo) DeletePlayer(_ context.Context, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[playerID]; !ok {
		return fmt.Errorf("delete player %s: %w", playerID, auctionerrors.ErrPlayerNotFound)
	}
	delete(r.players, playerID)
	return nil
}

// FinalizePlayer records the terminal status of a player. TeamID must be
// non-nil iff status is sold.
func (r *MemoryRepo) FinalizePlayer(_ context.Context, playerID string, status model.PlayerStatus, teamID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	player, ok := r.players[playerID]
	if !ok {
		return fmt.Errorf("finalize player %s: %w", playerID, auctionerrors.ErrPlayerNotFound)
	}
	player.Status = status
	player.TeamID = teamID
	r.players[playerID] = player
	return nil
}

// CommitBid appends a bid to the ledger and updates the player's
// current_bid cache in one step, under a single lock section. Existing
// ledger rows are never touched. On error nothing is written, so the
// ledger and the cache can never disagree.
func (r *MemoryRepo) CommitBid(_ context.Context, bid model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	player, ok := r.players[bid.PlayerID]
	if !ok {
		return fmt.Errorf("commit bid for player %s: %w", bid.PlayerID, auctionerrors.ErrPlayerNotFound)
	}
	amount := bid.Amount
	player.CurrentBid = &amount
	r.players[bid.PlayerID] = player
	r.bids[bid.PlayerID] = append(r.bids[bid.PlayerID], bid)
	return nil
}

// SellPlayer charges the winning amount to the team's purse and marks
// the player sold, atomically. The purse invariant (never negative) is
// enforced here, so no caller can drive it below zero; on rejection
// neither the purse nor the player changes.
func (r *MemoryRepo) SellPlayer(_ context.Context, playerID, teamID string, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	player, ok := r.players[playerID]
	if !ok {
		return fmt.Errorf("sell player %s: %w", playerID, auctionerrors.ErrPlayerNotFound)
	}
	team, ok := r.teams[teamID]
	if !ok {
		return fmt.Errorf("sell player %s to team %s: %w", playerID, teamID, auctionerrors.ErrTeamNotFound)
	}
	remaining := team.Purse.Sub(amount)
	if remaining.IsNegative() {
		return fmt.Errorf("sell player %s to team %s: %w", playerID, teamID, auctionerrors.ErrInsufficientPurse)
	}
	team.Purse = remaining
	r.teams[teamID] = team
	player.Status = model.PlayerSold
	player.TeamID = &teamID
	r.players[playerID] = player
	return nil
}

func (r *MemoryRepo) GetBidsByPlayer(_ context.Context, playerID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bids, ok := r.bids[playerID]
	if !ok || len(bids) == 0 {
		return nil, fmt.Errorf("get bids for player %s: %w", playerID, auctionerrors.ErrNoBids)
	}
	return append([]model.Bid(nil), bids...), nil
}

func (r *MemoryRepo) TeamSummaries(_ context.Context, auctionID string) ([]model.TeamSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var summaries []model.TeamSummary
	for _, t := range r.teams {
		if t.AuctionID != auctionID {
			continue
		}
		summary := model.TeamSummary{Team: t, Players: []model.Player{}}
		for _, p := range r.players {
			if p.TeamID != nil && *p.TeamID == t.TeamID {
				summary.Players = append(summary.Players, p)
			}
		}
		sort.Slice(summary.Players, func(i, j int) bool {
			return summary.Players[i].Name < summary.Players[j].Name
		})
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Team.TeamID < summaries[j].Team.TeamID
	})
	return summaries, nil
}

func (r *MemoryRepo) Leaderboard(_ context.Context, auctionID string) ([]model.LeaderboardEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var entries []model.LeaderboardEntry
	for _, p := range r.players {
		if p.AuctionID != auctionID || p.Status != model.PlayerSold || p.TeamID == nil || p.CurrentBid == nil {
			continue
		}
		team, ok := r.teams[*p.TeamID]
		if !ok {
			continue
		}
		entries = append(entries, model.LeaderboardEntry{
			PlayerName: p.Name,
			PhotoPath:  p.PhotoPath,
			TeamName:   team.Name,
			TeamLogo:   team.LogoPath,
			WinningBid: *p.CurrentBid,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].WinningBid.GreaterThan(entries[j].WinningBid)
	})
	return entries, nil
}

// TeamRankings orders an auction's teams by their total bid volume
// across the whole ledger, highest first. Teams without any bid are
// omitted.
func (r *MemoryRepo) TeamRankings(_ context.Context, auctionID string) ([]model.TeamRanking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	totals := make(map[string]decimal.Decimal)
	for _, bids := range r.bids {
		for _, b := range bids {
			if b.AuctionID != auctionID {
				continue
			}
			totals[b.TeamID] = totals[b.TeamID].Add(b.Amount)
		}
	}
	var rankings []model.TeamRanking
	for teamID, total := range totals {
		team, ok := r.teams[teamID]
		if !ok {
			continue
		}
		rankings = append(rankings, model.TeamRanking{
			TeamID:   teamID,
			TeamName: team.Name,
			TotalBid: total,
		})
	}
	sort.Slice(rankings, func(i, j int) bool {
		if !rankings[i].TotalBid.Equal(rankings[j].TotalBid) {
			return rankings[i].TotalBid.GreaterThan(rankings[j].TotalBid)
		}
		return rankings[i].TeamID < rankings[j].TeamID
	})
	return rankings, nil
}
