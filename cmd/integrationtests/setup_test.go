package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	engine "auction-live/internal/auctionEngine"
	"auction-live/internal/broadcast"
	"auction-live/internal/repository"
	"auction-live/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// testStack bundles the in-memory application wiring used by the
// integration tests.
type testStack struct {
	Repo   *repository.MemoryRepo
	Caster *broadcast.Broadcaster
	Router *gin.Engine
}

// SetupTestStack initializes the full application against the in-memory
// repository.
func SetupTestStack() *testStack {
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryRepo()
	caster := broadcast.NewBroadcaster(16)
	eng := engine.NewEngine(repo, caster, 2*time.Second)
	router := server.SetupRouter(eng, repo, caster)
	return &testStack{Repo: repo, Caster: caster, Router: router}
}

// ExecuteRequestAndParse executes an HTTP request on the given router and
// parses the JSON envelope. For 2xx responses the "data" payload is
// returned when present.
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error
	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		require.NoError(t, err, "failed to marshal body")
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "failed to unmarshal response")
		if w.Code >= 200 && w.Code < 300 {
			if data, ok := resp["data"].(map[string]any); ok {
				return data, w
			}
		}
	}
	return resp, w
}

// ExecuteRequestAndParseList is ExecuteRequestAndParse for endpoints
// whose data payload is an array.
func ExecuteRequestAndParseList(t *testing.T, router *gin.Engine, method, url string) ([]any, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, nil)
	router.ServeHTTP(w, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	list, _ := resp["data"].([]any)
	return list, w
}

// seedLiveAuction drives the CRUD API to create a live auction with one
// active player and two funded teams, returning their generated IDs.
func seedLiveAuction(t *testing.T, stack *testStack) (auctionID, playerID, team1ID, team2ID string) {
	t.Helper()
	router := stack.Router

	data, w := ExecuteRequestAndParse(t, router, "POST", "/api/auctions", map[string]any{
		"name":          "Season Auction",
		"description":   "integration run",
		"bid_increment": 50,
	})
	require.Equal(t, 201, w.Code)
	auctionID = data["auction_id"].(string)

	data, w = ExecuteRequestAndParse(t, router, "POST", "/api/auctions/"+auctionID+"/teams", map[string]any{
		"name":   "Team One",
		"budget": 1000,
	})
	require.Equal(t, 201, w.Code)
	team1ID = data["team_id"].(string)

	data, w = ExecuteRequestAndParse(t, router, "POST", "/api/auctions/"+auctionID+"/teams", map[string]any{
		"name":   "Team Two",
		"budget": 1000,
	})
	require.Equal(t, 201, w.Code)
	team2ID = data["team_id"].(string)

	data, w = ExecuteRequestAndParse(t, router, "POST", "/api/auctions/"+auctionID+"/players", map[string]any{
		"name":       "Player One",
		"position":   "forward",
		"base_price": 100,
	})
	require.Equal(t, 201, w.Code)
	playerID = data["player_id"].(string)

	_, w = ExecuteRequestAndParse(t, router, "POST", "/api/auctions/"+auctionID+"/status", map[string]any{
		"status": "live",
	})
	require.Equal(t, 200, w.Code)

	_, w = ExecuteRequestAndParse(t, router, "PUT", "/api/players/"+playerID, map[string]any{
		"name":       "Player One",
		"position":   "forward",
		"base_price": 100,
		"status":     "active",
	})
	require.Equal(t, 200, w.Code)

	return auctionID, playerID, team1ID, team2ID
}
