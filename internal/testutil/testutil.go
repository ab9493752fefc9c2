package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ashwinrao/auction-arena/internal/api"
	"github.com/ashwinrao/auction-arena/internal/config"
	"github.com/ashwinrao/auction-arena/internal/directory"
	"github.com/ashwinrao/auction-arena/internal/engine"
	"github.com/ashwinrao/auction-arena/internal/store/memstore"
	"github.com/ashwinrao/auction-arena/internal/websocket"
)

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:        "0",
		Environment: "test",
		JWTSecret:   "test-jwt-secret-key-for-testing-only",
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server    *httptest.Server
	Store     *memstore.Store
	Engine    *engine.Engine
	Directory *directory.Directory
	Hub       *websocket.Hub
	Config    *config.Config
}

// NewTestServer creates a complete test server over an in-memory room store.
// The archive is disabled; history routes are exercised separately against a
// real database.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	cfg := TestConfig()
	roomStore := memstore.New()
	eng := engine.New(roomStore)
	dir := directory.New(roomStore)
	hub := websocket.NewHub(roomStore, eng, nil)

	router := api.NewRouter(api.Deps{
		Directory: dir,
		Engine:    eng,
		Store:     roomStore,
		Hub:       hub,
		Config:    cfg,
	})

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:    server,
		Store:     roomStore,
		Engine:    eng,
		Directory: dir,
		Hub:       hub,
		Config:    cfg,
	}

	t.Cleanup(func() {
		server.Close()
	})

	return ts
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}

// WebSocketURL returns the WebSocket URL with token
func (ts *TestServer) WebSocketURL(token string) string {
	wsURL := "ws" + ts.Server.URL[4:]
	return fmt.Sprintf("%s/api/v1/ws?token=%s", wsURL, token)
}

// MakeToken signs an identity-provider-style bearer token for tests.
func MakeToken(t *testing.T, cfg *config.Config, identity uuid.UUID, displayName string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  identity.String(),
		"name": displayName,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

// DoJSON issues an authenticated JSON request against the test server.
func (ts *TestServer) DoJSON(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.APIURL(path), reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}
