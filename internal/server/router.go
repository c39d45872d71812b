package server

import (
	"auction-live/internal/broadcast"
	"auction-live/internal/repository"
	handler "auction-live/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(engine handler.EngineService, repo repository.AuctionDB, caster *broadcast.Broadcaster) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	liveHandler := handler.NewLiveHandler(engine)
	crudHandler := handler.NewCrudHandler(repo)

	api := router.Group("/api")

	api.GET("/ws", LiveFeedHandler(caster))

	auctions := api.Group("/auctions")
	{
		auctions.GET("", crudHandler.ListAuctionsHandler)
		auctions.POST("", crudHandler.CreateAuctionHandler)
		auctions.GET("/:auction_id", crudHandler.GetAuctionHandler)
		auctions.PUT("/:auction_id", crudHandler.UpdateAuctionHandler)
		auctions.DELETE("/:auction_id", crudHandler.DeleteAuctionHandler)
		auctions.POST("/:auction_id/status", crudHandler.TransitionAuctionHandler)

		auctions.GET("/:auction_id/teams", crudHandler.ListTeamsHandler)
		auctions.POST("/:auction_id/teams", crudHandler.CreateTeamHandler)
		auctions.GET("/:auction_id/players", crudHandler.ListPlayersHandler)
		auctions.POST("/:auction_id/players", crudHandler.CreatePlayerHandler)

		auctions.GET("/:auction_id/search", crudHandler.SearchPlayersHandler)
		auctions.GET("/:auction_id/teamstat", crudHandler.TeamStatHandler)
		auctions.GET("/:auction_id/leaderboard", crudHandler.LeaderboardHandler)
		auctions.GET("/:auction_id/rankings", crudHandler.TeamRankingsHandler)

		auctions.POST("/:auction_id/bids", liveHandler.SubmitBidHandler)
	}

	teams := api.Group("/teams")
	{
		teams.GET("/:team_id", crudHandler.GetTeamHandler)
		teams.PUT("/:team_id", crudHandler.UpdateTeamHandler)
		teams.DELETE("/:team_id", crudHandler.DeleteTeamHandler)
	}

	players := api.Group("/players")
	{
		players.GET("/:player_id", crudHandler.GetPlayerHandler)
		players.PUT("/:player_id", crudHandler.UpdatePlayerHandler)
		players.DELETE("/:player_id", crudHandler.DeletePlayerHandler)
		players.GET("/:player_id/bids", crudHandler.ListBidsHandler)
		players.POST("/:player_id/finalize", liveHandler.FinalizeHandler)
		players.POST("/:player_id/view", liveHandler.ViewPlayerHandler)
	}

	return router
}
