package handlers_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinrao/auction-arena/internal/api/handlers"
	"github.com/ashwinrao/auction-arena/internal/directory"
	"github.com/ashwinrao/auction-arena/internal/domain"
	"github.com/ashwinrao/auction-arena/internal/session"
	"github.com/ashwinrao/auction-arena/internal/testutil"
)

func TestAuthRequired(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing token", token: ""},
		{name: "garbage token", token: "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.DoJSON(t, http.MethodPost, "/rooms", tt.token, nil)
			defer resp.Body.Close()
			testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
		})
	}
}

func TestCreateRoom(t *testing.T) {
	ts := testutil.NewTestServer(t)
	token := testutil.MakeToken(t, ts.Config, uuid.New(), "ashwin")

	resp := ts.DoJSON(t, http.MethodPost, "/rooms", token, nil)
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var created handlers.CreateRoomResponse
	testutil.AssertJSONResponse(t, resp, &created)

	assert.Regexp(t, `^[A-Z0-9]{6}$`, created.Room.Code)
	assert.Equal(t, string(domain.RoomStatusWaiting), created.Room.Status)
	assert.Equal(t, string(domain.RoleAdmin), created.Role)
	require.Len(t, created.Room.Participants, 1)
	assert.Equal(t, "ashwin (Host)", created.Room.Participants[0].DisplayName)
	assert.True(t, created.Room.Participants[0].IsAdmin)
}

func TestGetRoom(t *testing.T) {
	ts := testutil.NewTestServer(t)
	token := testutil.MakeToken(t, ts.Config, uuid.New(), "viewer")
	seeded := testutil.NewRoomBuilder().WithMatchName("Finals").Build(t, ts.Store)

	t.Run("found", func(t *testing.T) {
		resp := ts.DoJSON(t, http.MethodGet, "/rooms/"+seeded.Code, token, nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var room handlers.RoomResponse
		testutil.AssertJSONResponse(t, resp, &room)
		assert.Equal(t, "Finals", room.MatchName)
	})

	t.Run("not found", func(t *testing.T) {
		resp := ts.DoJSON(t, http.MethodGet, "/rooms/NOSUCH", token, nil)
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "not found")
	})
}

func TestListRooms(t *testing.T) {
	ts := testutil.NewTestServer(t)
	token := testutil.MakeToken(t, ts.Config, uuid.New(), "viewer")
	testutil.NewRoomBuilder().WithCode("AAA111").Build(t, ts.Store)
	testutil.NewRoomBuilder().WithCode("BBB222").Build(t, ts.Store)

	t.Run("lists every room", func(t *testing.T) {
		resp := ts.DoJSON(t, http.MethodGet, "/rooms", token, nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var rooms []directory.RoomSummary
		testutil.AssertJSONResponse(t, resp, &rooms)
		assert.Len(t, rooms, 2)
	})

	t.Run("numeric limit applies", func(t *testing.T) {
		resp := ts.DoJSON(t, http.MethodGet, "/rooms?limit=1", token, nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var rooms []directory.RoomSummary
		testutil.AssertJSONResponse(t, resp, &rooms)
		assert.Len(t, rooms, 1)
	})

	t.Run("non-numeric limit falls back to the default", func(t *testing.T) {
		resp := ts.DoJSON(t, http.MethodGet, "/rooms?limit=abc", token, nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var rooms []directory.RoomSummary
		testutil.AssertJSONResponse(t, resp, &rooms)
		assert.Len(t, rooms, 2)
	})
}

// Full REST auction flow: create, join, configure, spin, bid, sell, me.
func TestAuctionFlow(t *testing.T) {
	ts := testutil.NewTestServer(t)

	adminID := uuid.New()
	aliceID := uuid.New()
	adminToken := testutil.MakeToken(t, ts.Config, adminID, "host")
	aliceToken := testutil.MakeToken(t, ts.Config, aliceID, "alice")

	// create
	resp := ts.DoJSON(t, http.MethodPost, "/rooms", adminToken, nil)
	var created handlers.CreateRoomResponse
	testutil.AssertJSONResponse(t, resp, &created)
	resp.Body.Close()
	code := created.Room.Code

	// join
	resp = ts.DoJSON(t, http.MethodPost, "/rooms/"+code+"/join", aliceToken, nil)
	var joined handlers.JoinRoomResponse
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &joined)
	resp.Body.Close()
	assert.Equal(t, string(domain.RoleBidder), joined.Role)

	// configure: only the admin may
	resp = ts.DoJSON(t, http.MethodPost, "/rooms/"+code+"/configure", aliceToken, handlers.ConfigureRequest{
		MatchName: "Finals",
		Lots:      []string{"Kohli"},
	})
	testutil.AssertErrorResponse(t, resp, http.StatusForbidden, "admin")
	resp.Body.Close()

	resp = ts.DoJSON(t, http.MethodPost, "/rooms/"+code+"/configure", adminToken, handlers.ConfigureRequest{
		MatchName:   "Finals",
		PursePoints: 50,
		MaxSquad:    6,
		MinSquad:    1,
		Lots:        []string{"Kohli", "Dhoni"},
	})
	var configured handlers.RoomResponse
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &configured)
	resp.Body.Close()
	assert.Equal(t, string(domain.RoomStatusLive), configured.Status)
	assert.Len(t, configured.Lots, 2)

	// reconfiguring a live room conflicts
	resp = ts.DoJSON(t, http.MethodPost, "/rooms/"+code+"/configure", adminToken, handlers.ConfigureRequest{
		MatchName: "Again",
		Lots:      []string{"Bumrah"},
	})
	testutil.AssertStatusCode(t, resp, http.StatusConflict)
	resp.Body.Close()

	// spin
	resp = ts.DoJSON(t, http.MethodPost, "/rooms/"+code+"/spin", adminToken, handlers.SpinRequest{BasePrice: 2})
	var spun handlers.RoomResponse
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &spun)
	resp.Body.Close()
	require.NotNil(t, spun.CurrentLot)
	assert.Equal(t, 2, spun.CurrentLot.CurrentBid)

	// selling before any bid conflicts
	resp = ts.DoJSON(t, http.MethodPost, "/rooms/"+code+"/sell", adminToken, nil)
	testutil.AssertStatusCode(t, resp, http.StatusConflict)
	resp.Body.Close()

	// bid
	resp = ts.DoJSON(t, http.MethodPost, "/rooms/"+code+"/bid", aliceToken, handlers.BidRequest{Increment: 1})
	var afterBid handlers.RoomResponse
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &afterBid)
	resp.Body.Close()
	assert.Equal(t, 2, afterBid.CurrentLot.CurrentBid)
	assert.Equal(t, "alice", *afterBid.CurrentLot.HighestBidderName)

	// bidding again while highest conflicts
	resp = ts.DoJSON(t, http.MethodPost, "/rooms/"+code+"/bid", aliceToken, handlers.BidRequest{Increment: 1})
	testutil.AssertStatusCode(t, resp, http.StatusConflict)
	resp.Body.Close()

	// sell
	resp = ts.DoJSON(t, http.MethodPost, "/rooms/"+code+"/sell", adminToken, nil)
	var sold handlers.SellResponse
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &sold)
	resp.Body.Close()
	assert.Equal(t, 2, sold.Sale.Price)
	assert.Equal(t, "alice", sold.Sale.WinnerName)
	assert.False(t, sold.Sale.AuctionComplete)
	assert.Nil(t, sold.Room.CurrentLot)

	// me: alice sees her purchase reflected
	resp = ts.DoJSON(t, http.MethodGet, "/rooms/"+code+"/me", aliceToken, nil)
	var view session.View
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &view)
	resp.Body.Close()
	assert.Equal(t, 48, view.Balance)
	assert.Equal(t, 1, view.SquadSize)
	assert.Equal(t, 1, view.RemainingLots)
	assert.False(t, view.CanBid)
}

func TestRestoreSession(t *testing.T) {
	ts := testutil.NewTestServer(t)
	adminID := uuid.New()
	adminToken := testutil.MakeToken(t, ts.Config, adminID, "host")

	resp := ts.DoJSON(t, http.MethodPost, "/rooms", adminToken, nil)
	var created handlers.CreateRoomResponse
	testutil.AssertJSONResponse(t, resp, &created)
	resp.Body.Close()

	t.Run("admin role re-derives after a reload", func(t *testing.T) {
		resp := ts.DoJSON(t, http.MethodPost, "/rooms/"+created.Room.Code+"/restore", adminToken, nil)
		defer resp.Body.Close()
		var restored handlers.JoinRoomResponse
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		testutil.AssertJSONResponse(t, resp, &restored)
		assert.Equal(t, string(domain.RoleAdmin), restored.Role)
	})

	t.Run("strangers cannot restore", func(t *testing.T) {
		strangerToken := testutil.MakeToken(t, ts.Config, uuid.New(), "stranger")
		resp := ts.DoJSON(t, http.MethodPost, "/rooms/"+created.Room.Code+"/restore", strangerToken, nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusNotFound)
	})
}

func TestValidationStatuses(t *testing.T) {
	ts := testutil.NewTestServer(t)
	b := testutil.NewRoomBuilder().WithStatus(domain.RoomStatusWaiting)
	seeded := b.Build(t, ts.Store)
	adminToken := testutil.MakeToken(t, ts.Config, b.AdminID(), "host")

	t.Run("blank match name is a bad request", func(t *testing.T) {
		resp := ts.DoJSON(t, http.MethodPost, "/rooms/"+seeded.Code+"/configure", adminToken, handlers.ConfigureRequest{
			MatchName: "  ",
			Lots:      []string{"Kohli"},
		})
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	})

	t.Run("zero increment is a bad request", func(t *testing.T) {
		resp := ts.DoJSON(t, http.MethodPost, "/rooms/"+seeded.Code+"/bid", adminToken, handlers.BidRequest{Increment: 0})
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		resp := ts.DoJSON(t, http.MethodPost, "/rooms/"+seeded.Code+"/bid", adminToken, "not an object")
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	})

	t.Run("malformed spin body is a bad request", func(t *testing.T) {
		resp := ts.DoJSON(t, http.MethodPost, "/rooms/"+seeded.Code+"/spin", adminToken, "not an object")
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	})

	t.Run("empty spin body is tolerated", func(t *testing.T) {
		// An absent body defaults the base price; the waiting room still
		// rejects the spin, but as a precondition, not a parse failure.
		resp := ts.DoJSON(t, http.MethodPost, "/rooms/"+seeded.Code+"/spin", adminToken, nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusConflict)
	})
}
