package repository

import (
	"context"
	"errors"
	"fmt"

	"auction-live/internal/auctionerrors"
	model "auction-live/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormRepo is the Postgres-backed implementation of AuctionDB.
type GormRepo struct {
	db *gorm.DB
}

// NewGormRepo opens a Postgres connection, runs auto-migration for the
// auction tables, and returns the repository.
func NewGormRepo(dsn string) (*GormRepo, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&model.Auction{}, &model.Team{}, &model.Player{}, &model.Bid{}); err != nil {
		return nil, fmt.Errorf("migrate auction schema: %w", err)
	}
	return &GormRepo{db: db}, nil
}

// wrapStorage converts gorm errors to the repository error taxonomy.
func wrapStorage(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, notFound)
	}
	return fmt.Errorf("%s: %v: %w", op, err, auctionerrors.ErrStorage)
}

func (r *GormRepo) CreateAuction(ctx context.Context, auction model.Auction) error {
	err := r.db.WithContext(ctx).Create(&auction).Error
	return wrapStorage("create auction", err, auctionerrors.ErrStorage)
}

func (r *GormRepo) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	var auction model.Auction
	err := r.db.WithContext(ctx).First(&auction, "id = ?", auctionID).Error
	return auction, wrapStorage("get auction "+auctionID, err, auctionerrors.ErrAuctionNotFound)
}

func (r *GormRepo) ListAuctions(ctx context.Context) ([]model.Auction, error) {
	var auctions []model.Auction
	err := r.db.WithContext(ctx).Order("id").Find(&auctions).Error
	return auctions, wrapStorage("list auctions", err, auctionerrors.ErrStorage)
}

func (r *GormRepo) UpdateAuction(ctx context.Context, auction model.Auction) error {
	res := r.db.WithContext(ctx).Model(&model.Auction{}).Where("id = ?", auction.AuctionID).
		Updates(map[string]interface{}{
			"name":          auction.Name,
			"description":   auction.Description,
			"status":        auction.Status,
			"bid_increment": auction.BidIncrement,
		})
	if res.Error == nil && res.RowsAffected == 0 {
		return fmt.Errorf("update auction %s: %w", auction.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	return wrapStorage("update auction "+auction.AuctionID, res.Error, auctionerrors.ErrAuctionNotFound)
}

func (r *GormRepo) UpdateAuctionStatus(ctx context.Context, auctionID string, status model.AuctionStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Auction{}).Where("id = ?", auctionID).
		Update("status", status)
	if res.Error == nil && res.RowsAffected == 0 {
		return fmt.Errorf("update auction status %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return wrapStorage("update auction status "+auctionID, res.Error, auctionerrors.ErrAuctionNotFound)
}

func (r *GormRepo) DeleteAuction(ctx context.Context, auctionID string) error {
	res := r.db.WithContext(ctx).Delete(&model.Auction{}, "id = ?", auctionID)
	if res.Error == nil && res.RowsAffected == 0 {
		return fmt.Errorf("delete auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return wrapStorage("delete auction "+auctionID, res.Error, auctionerrors.ErrAuctionNotFound)
}

func (r *GormRepo) CreateTeam(ctx context.Context, team model.Team) error {
	err := r.db.WithContext(ctx).Create(&team).Error
	return wrapStorage("create team", err, auctionerrors.ErrStorage)
}

func (r *GormRepo) GetTeam(ctx context.Context, teamID string) (model.Team, error) {
	var team model.Team
	err := r.db.WithContext(ctx).First(&team, "id = ?", teamID).Error
	return team, wrapStorage("get team "+teamID, err, auctionerrors.ErrTeamNotFound)
}

func (r *GormRepo) GetTeamsByAuction(ctx context.Context, auctionID string) ([]model.Team, error) {
	var teams []model.Team
	err := r.db.WithContext(ctx).Where("auction_id = ?", auctionID).Order("id").Find(&teams).Error
	return teams, wrapStorage("list teams for auction "+auctionID, err, auctionerrors.ErrStorage)
}

func (r *GormRepo) UpdateTeam(ctx context.Context, team model.Team) error {
	res := r.db.WithContext(ctx).Model(&model.Team{}).Where("id = ?", team.TeamID).
		Updates(map[string]interface{}{
			"name":      team.Name,
			"logo_path": team.LogoPath,
			"purse":     team.Purse,
		})
	if res.Error == nil && res.RowsAffected == 0 {
		return fmt.Errorf("update team %s: %w", team.TeamID, auctionerrors.ErrTeamNotFound)
	}
	return wrapStorage("update team "+team.TeamID, res.Error, auctionerrors.ErrTeamNotFound)
}

func (r *GormRepo) DeleteTeam(ctx context.Context, teamID string) error {
	res := r.db.WithContext(ctx).Delete(&model.Team{}, "id = ?", teamID)
	if res.Error == nil && res.RowsAffected == 0 {
		return fmt.Errorf("delete team %s: %w", teamID, auctionerrors.ErrTeamNotFound)
	}
	return wrapStorage("delete team "+teamID, res.Error, auctionerrors.ErrTeamNotFound)
}

// SellPlayer charges the team's purse and marks the player sold in one
// transaction, so a failure on either write rolls both back. The purse
// update carries a purse >= amount guard, so the invariant holds even
// under concurrent sales to the same team.
func (r *GormRepo) SellPlayer(ctx context.Context, playerID, teamID string, amount decimal.Decimal) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Team{}).
			Where("id = ? AND purse >= ?", teamID, amount).
			Update("purse", gorm.Expr("purse - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Either the team is missing or the purse cannot cover the amount.
			var count int64
			if err := tx.Model(&model.Team{}).Where("id = ?", teamID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return auctionerrors.ErrTeamNotFound
			}
			return auctionerrors.ErrInsufficientPurse
		}

		res = tx.Model(&model.Player{}).Where("id = ?", playerID).
			Updates(map[string]interface{}{
				"status":  model.PlayerSold,
				"team_id": teamID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return auctionerrors.ErrPlayerNotFound
		}
		return nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auctionerrors.ErrTeamNotFound),
		errors.Is(err, auctionerrors.ErrInsufficientPurse),
		errors.Is(err, auctionerrors.ErrPlayerNotFound):
		return fmt.Errorf("sell player %s to team %s: %w", playerID, teamID, err)
	default:
		return fmt.Errorf("sell player %s to team %s: %v: %w", playerID, teamID, err, auctionerrors.ErrStorage)
	}
}

func (r *GormRepo) CreatePlayer(ctx context.Context, player model.Player) error {
	err := r.db.WithContext(ctx).Create(&player).Error
	return wrapStorage("create player", err, auctionerrors.ErrStorage)
}

func (r *GormRepo) GetPlayer(ctx context.Context, playerID string) (model.Player, error) {
	var player model.Player
	err := r.db.WithContext(ctx).First(&player, "id = ?", playerID).Error
	return player, wrapStorage("get player "+playerID, err, auctionerrors.ErrPlayerNotFound)
}

func (r *GormRepo) GetPlayersByAuction(ctx context.Context, auctionID string) ([]model.Player, error) {
	var players []model.Player
	err := r.db.WithContext(ctx).Where("auction_id = ?", auctionID).Order("id").Find(&players).Error
	return players, wrapStorage("list players for auction "+auctionID, err, auctionerrors.ErrStorage)
}

func (r *GormRepo) SearchPlayers(ctx context.Context, auctionID, query string) ([]model.Player, error) {
	var players []model.Player
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("auction_id = ? AND (name ILIKE ? OR id ILIKE ?)", auctionID, pattern, pattern).
		Order("id").Find(&players).Error
	return players, wrapStorage("search players in auction "+auctionID, err, auctionerrors.ErrStorage)
}

func (r *GormRepo) UpdatePlayer(ctx context.Context, player model.Player) error {
	res := r.db.WithContext(ctx).Model(&model.Player{}).Where("id = ?", player.PlayerID).
		Updates(map[string]interface{}{
			"name":       player.Name,
			"position":   player.Position,
			"photo_path": player.PhotoPath,
			"base_price": player.BasePrice,
			"status":     player.Status,
		})
	if res.Error == nil && res.RowsAffected == 0 {
		return fmt.Errorf("update player %s: %w", player.PlayerID, auctionerrors.ErrPlayerNotFound)
	}
	return wrapStorage("update player "+player.PlayerID, res.Error, auctionerrors.ErrPlayerNotFound)
}

func (r *GormRepo) DeletePlayer(ctx context.Context, playerID string) error {
	res := r.db.WithContext(ctx).Delete(&model.Player{}, "id = ?", playerID)
	if res.Error == nil && res.RowsAffected == 0 {
		return fmt.Errorf("delete player %s: %w", playerID, auctionerrors.ErrPlayerNotFound)
	}
	return wrapStorage("delete player "+playerID, res.Error, auctionerrors.ErrPlayerNotFound)
}

func (r *GormRepo) FinalizePlayer(ctx context.Context, playerID string, status model.PlayerStatus, teamID *string) error {
	res := r.db.WithContext(ctx).Model(&model.Player{}).Where("id = ?", playerID).
		Updates(map[string]interface{}{
			"status":  status,
			"team_id": teamID,
		})
	if res.Error == nil && res.RowsAffected == 0 {
		return fmt.Errorf("finalize player %s: %w", playerID, auctionerrors.ErrPlayerNotFound)
	}
	return wrapStorage("finalize player "+playerID, res.Error, auctionerrors.ErrPlayerNotFound)
}

// CommitBid appends the ledger row and refreshes the player's
// current_bid cache in one transaction; the two can never diverge.
func (r *GormRepo) CommitBid(ctx context.Context, bid model.Bid) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&bid).Error; err != nil {
			return err
		}
		res := tx.Model(&model.Player{}).Where("id = ?", bid.PlayerID).
			Update("current_bid", bid.Amount)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return auctionerrors.ErrPlayerNotFound
		}
		return nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auctionerrors.ErrPlayerNotFound):
		return fmt.Errorf("commit bid for player %s: %w", bid.PlayerID, err)
	default:
		return fmt.Errorf("commit bid for player %s: %v: %w", bid.PlayerID, err, auctionerrors.ErrStorage)
	}
}

func (r *GormRepo) GetBidsByPlayer(ctx context.Context, playerID string) ([]model.Bid, error) {
	var bids []model.Bid
	err := r.db.WithContext(ctx).Where("player_id = ?", playerID).Order("created_at").Find(&bids).Error
	if err != nil {
		return nil, wrapStorage("get bids for player "+playerID, err, auctionerrors.ErrStorage)
	}
	if len(bids) == 0 {
		return nil, fmt.Errorf("get bids for player %s: %w", playerID, auctionerrors.ErrNoBids)
	}
	return bids, nil
}

func (r *GormRepo) TeamSummaries(ctx context.Context, auctionID string) ([]model.TeamSummary, error) {
	teams, err := r.GetTeamsByAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	var summaries []model.TeamSummary
	for _, team := range teams {
		var players []model.Player
		err := r.db.WithContext(ctx).Where("team_id = ?", team.TeamID).Order("name").Find(&players).Error
		if err != nil {
			return nil, wrapStorage("list roster for team "+team.TeamID, err, auctionerrors.ErrStorage)
		}
		if players == nil {
			players = []model.Player{}
		}
		summaries = append(summaries, model.TeamSummary{Team: team, Players: players})
	}
	return summaries, nil
}

func (r *GormRepo) Leaderboard(ctx context.Context, auctionID string) ([]model.LeaderboardEntry, error) {
	var entries []model.LeaderboardEntry
	err := r.db.WithContext(ctx).
		Table("players").
		Select("players.name AS player_name, players.photo_path AS photo_path, teams.name AS team_name, teams.logo_path AS team_logo, players.current_bid AS winning_bid").
		Joins("JOIN teams ON teams.id = players.team_id").
		Where("players.auction_id = ? AND players.status = ?", auctionID, model.PlayerSold).
		Order("players.current_bid DESC").
		Scan(&entries).Error
	return entries, wrapStorage("leaderboard for auction "+auctionID, err, auctionerrors.ErrStorage)
}

func (r *GormRepo) TeamRankings(ctx context.Context, auctionID string) ([]model.TeamRanking, error) {
	var rankings []model.TeamRanking
	err := r.db.WithContext(ctx).
		Table("teams").
		Select("teams.id AS team_id, teams.name AS team_name, SUM(bids.amount) AS total_bid").
		Joins("JOIN bids ON bids.team_id = teams.id").
		Where("bids.auction_id = ?", auctionID).
		Group("teams.id, teams.name").
		Order("total_bid DESC, teams.id").
		Scan(&rankings).Error
	return rankings, wrapStorage("team rankings for auction "+auctionID, err, auctionerrors.ErrStorage)
}
