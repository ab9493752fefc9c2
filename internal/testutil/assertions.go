package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinrao/auction-arena/internal/domain"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v and verifies success
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorResponse verifies error response with expected status and message
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	// Error responses are plain text in this API
	assert.Contains(t, string(body), expectedMessage, "error message mismatch")
}

// AssertRoomInvariants checks the properties every committed room state must
// satisfy: no negative balance, no over-full squad, bid at or above base price,
// and a cleared block whenever its lot is marked sold.
func AssertRoomInvariants(t *testing.T, room *domain.Room) {
	t.Helper()

	for id, p := range room.Participants {
		assert.GreaterOrEqual(t, p.Balance, 0, "participant %s has negative balance", id)
		assert.LessOrEqual(t, p.SquadSize(), room.Config.MaxSquad, "participant %s squad over cap", id)
	}

	if lot := room.CurrentLot; lot != nil {
		assert.GreaterOrEqual(t, lot.CurrentBid, lot.BasePrice, "current bid below base price")
		for _, l := range room.Lots {
			if l.Name == lot.Name {
				assert.False(t, l.Sold, "lot %s is sold but still on the block", l.Name)
			}
		}
	}
}
