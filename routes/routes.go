package routes

import (
	"github.com/Dosada05/silat-bracket/handlers"
	"github.com/Dosada05/silat-bracket/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Bracket    *handlers.BracketHandler
	Match      *handlers.MatchHandler
	Entry      *handlers.EntryHandler
	Competitor *handlers.CompetitorHandler
	Contingent *handlers.ContingentHandler
	Category   *handlers.CategoryHandler
	Official   *handlers.OfficialHandler
	Websocket  *handlers.WebsocketHandler
}

// InitRoutes wires the HTTP surface: reads are public, mutations require an
// authenticated admin token.
func InitRoutes(h Handlers, auth *middleware.Authenticator) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	admin := func(r chi.Router) chi.Router {
		return r.With(auth.Authenticate, middleware.Authorize("admin"))
	}

	router.Route("/brackets", func(r chi.Router) {
		r.Get("/{bracketID}", h.Bracket.GetByIDHandler)

		admin(r).Post("/generate", h.Bracket.GenerateHandler)
		admin(r).Put("/{bracketID}/status", h.Bracket.UpdateStatusHandler)
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", h.Match.GetByIDHandler)

		admin(r).Post("/{matchID}/approve", h.Match.ApproveHandler)
		admin(r).Put("/{matchID}", h.Match.UpdateResultHandler)
		admin(r).Post("/{matchID}/walkover", h.Match.WalkoverHandler)
	})

	router.Route("/entries", func(r chi.Router) {
		r.Get("/", h.Entry.ListHandler)
		r.Get("/{entryID}", h.Entry.GetByIDHandler)
		r.Get("/{entryID}/competitors", h.Entry.RosterHandler)
		r.Get("/{entryID}/bracket", h.Bracket.GetByEntryHandler)

		admin(r).Post("/", h.Entry.CreateHandler)
		admin(r).Delete("/{entryID}", h.Entry.DeleteHandler)
		admin(r).Post("/{entryID}/competitors", h.Entry.RegisterHandler)
		admin(r).Delete("/{entryID}/competitors/{competitorID}", h.Entry.UnregisterHandler)
	})

	router.Route("/competitors", func(r chi.Router) {
		r.Get("/", h.Competitor.ListHandler)
		r.Get("/{competitorID}", h.Competitor.GetByIDHandler)

		admin(r).Post("/", h.Competitor.CreateHandler)
		admin(r).Put("/{competitorID}", h.Competitor.UpdateHandler)
		admin(r).Delete("/{competitorID}", h.Competitor.DeleteHandler)
	})

	router.Route("/contingents", func(r chi.Router) {
		r.Get("/", h.Contingent.ListHandler)
		r.Get("/{contingentID}", h.Contingent.GetByIDHandler)

		admin(r).Post("/", h.Contingent.CreateHandler)
		admin(r).Put("/{contingentID}", h.Contingent.UpdateHandler)
		admin(r).Delete("/{contingentID}", h.Contingent.DeleteHandler)
		admin(r).Post("/{contingentID}/logo", h.Contingent.UploadLogoHandler)
	})

	router.Route("/categories", func(r chi.Router) {
		r.Get("/", h.Category.ListHandler)

		admin(r).Post("/", h.Category.CreateHandler)
		admin(r).Put("/{categoryID}", h.Category.UpdateHandler)
		admin(r).Delete("/{categoryID}", h.Category.DeleteHandler)
	})

	router.Route("/officials", func(r chi.Router) {
		r.Get("/", h.Official.ListHandler)
		r.Get("/{officialID}", h.Official.GetByIDHandler)

		admin(r).Post("/", h.Official.CreateHandler)
		admin(r).Put("/{officialID}", h.Official.UpdateHandler)
		admin(r).Delete("/{officialID}", h.Official.DeleteHandler)
	})

	router.Get("/ws/brackets/{bracketID}", h.Websocket.ServeBracketRoom)

	return router
}
