package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ashwinrao/auction-arena/internal/api/handlers"
	"github.com/ashwinrao/auction-arena/internal/api/middleware"
	"github.com/ashwinrao/auction-arena/internal/archive"
	"github.com/ashwinrao/auction-arena/internal/config"
	"github.com/ashwinrao/auction-arena/internal/directory"
	"github.com/ashwinrao/auction-arena/internal/domain"
	"github.com/ashwinrao/auction-arena/internal/engine"
	"github.com/ashwinrao/auction-arena/internal/store"
	"github.com/ashwinrao/auction-arena/internal/websocket"
)

type Deps struct {
	Directory *directory.Directory
	Engine    *engine.Engine
	Store     store.RoomStore
	Hub       *websocket.Hub
	Config    *config.Config

	// Archive is nil when no database is configured; history routes are
	// disabled in that case.
	Archive archive.Repository

	// OnComplete fires after the sale that ends an auction.
	OnComplete func(*domain.Room)
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	roomHandler := handlers.NewRoomHandler(deps.Directory, deps.Store)
	auctionHandler := handlers.NewAuctionHandler(deps.Engine, deps.Store, deps.OnComplete)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.Config.JWTSecret)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.Config.JWTSecret))

			r.Route("/rooms", func(r chi.Router) {
				r.Post("/", roomHandler.Create)
				r.Get("/", roomHandler.List)
				r.Get("/{code}", roomHandler.Get)
				r.Post("/{code}/join", roomHandler.Join)
				r.Post("/{code}/restore", roomHandler.Restore)
				r.Post("/{code}/configure", auctionHandler.Configure)
				r.Post("/{code}/spin", auctionHandler.Spin)
				r.Post("/{code}/bid", auctionHandler.Bid)
				r.Post("/{code}/sell", auctionHandler.Sell)
				r.Get("/{code}/me", auctionHandler.Me)
			})

			if deps.Archive != nil {
				historyHandler := handlers.NewHistoryHandler(deps.Archive)
				r.Route("/history", func(r chi.Router) {
					r.Get("/", historyHandler.List)
					r.Get("/{code}/export", historyHandler.ExportCSV)
				})
			}
		})

		// WebSocket endpoint (token auth via query param)
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
