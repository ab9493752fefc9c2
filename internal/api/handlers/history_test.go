package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinrao/auction-arena/internal/api"
	"github.com/ashwinrao/auction-arena/internal/archive"
	"github.com/ashwinrao/auction-arena/internal/directory"
	"github.com/ashwinrao/auction-arena/internal/domain"
	"github.com/ashwinrao/auction-arena/internal/engine"
	"github.com/ashwinrao/auction-arena/internal/store/memstore"
	"github.com/ashwinrao/auction-arena/internal/testutil"
	"github.com/ashwinrao/auction-arena/internal/websocket"
)

// fakeArchive keeps records in memory so the history routes can be exercised
// without a database.
type fakeArchive struct {
	recs map[string]*domain.ArchivedAuction
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{recs: make(map[string]*domain.ArchivedAuction)}
}

func (f *fakeArchive) Save(ctx context.Context, rec *domain.ArchivedAuction) error {
	f.recs[rec.Code] = rec
	return nil
}

func (f *fakeArchive) GetByCode(ctx context.Context, code string) (*domain.ArchivedAuction, error) {
	rec, ok := f.recs[code]
	if !ok {
		return nil, archive.ErrNotArchived
	}
	return rec, nil
}

func (f *fakeArchive) List(ctx context.Context, limit, offset int) ([]*domain.ArchivedAuction, error) {
	all := make([]*domain.ArchivedAuction, 0, len(f.recs))
	for _, rec := range f.recs {
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CompletedAt.After(all[j].CompletedAt)
	})
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func newHistoryServer(t *testing.T) (*httptest.Server, *fakeArchive, string) {
	t.Helper()

	cfg := testutil.TestConfig()
	roomStore := memstore.New()
	eng := engine.New(roomStore)
	repo := newFakeArchive()

	router := api.NewRouter(api.Deps{
		Directory: directory.New(roomStore),
		Engine:    eng,
		Store:     roomStore,
		Hub:       websocket.NewHub(roomStore, eng, nil),
		Config:    cfg,
		Archive:   repo,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	token := testutil.MakeToken(t, cfg, uuid.New(), "viewer")
	return server, repo, token
}

func get(t *testing.T, url, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func archivedFixture(t *testing.T, code string, completedAt time.Time) *domain.ArchivedAuction {
	t.Helper()

	b, aliceID := testutil.NewRoomBuilder().WithCode(code).WithBidder("alice")
	room := b.Room()
	room.Participants[aliceID].Squad = []domain.Acquisition{{Name: "Kohli", Price: 9}}

	rec, err := archive.Snapshot(room, completedAt)
	require.NoError(t, err)
	return rec
}

func TestHistoryList(t *testing.T) {
	server, repo, token := newHistoryServer(t)
	ctx := context.Background()

	base := time.Now().UTC()
	require.NoError(t, repo.Save(ctx, archivedFixture(t, "OLD111", base.Add(-time.Hour))))
	require.NoError(t, repo.Save(ctx, archivedFixture(t, "NEW222", base)))

	resp := get(t, server.URL+"/api/v1/history", token)
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var recs []*domain.ArchivedAuction
	testutil.AssertJSONResponse(t, resp, &recs)
	require.Len(t, recs, 2)
	assert.Equal(t, "NEW222", recs[0].Code)
	assert.Equal(t, "OLD111", recs[1].Code)
}

func TestHistoryExportCSV(t *testing.T) {
	server, repo, token := newHistoryServer(t)
	require.NoError(t, repo.Save(context.Background(), archivedFixture(t, "DONE01", time.Now().UTC())))

	t.Run("exports the squads sheet", func(t *testing.T) {
		resp := get(t, server.URL+"/api/v1/history/DONE01/export", token)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "auction_results_DONE01.csv")

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		lines := strings.Split(string(body), "\n")
		assert.Equal(t, "Owner Name,Player Name,Price (Pts)", lines[0])
		assert.Contains(t, string(body), "alice,Kohli,9")
	})

	t.Run("unknown code", func(t *testing.T) {
		resp := get(t, server.URL+"/api/v1/history/NOSUCH/export", token)
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "not archived")
	})
}
