// Route registration and go-chi router setup.
package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mhsenkow/myfacesnapjournal/internal/api/handlers"
	"github.com/mhsenkow/myfacesnapjournal/internal/domain/insight"
	"github.com/mhsenkow/myfacesnapjournal/internal/domain/journal"
	"github.com/mhsenkow/myfacesnapjournal/internal/infra/eventbus"
	"github.com/mhsenkow/myfacesnapjournal/internal/infra/github"
	"github.com/mhsenkow/myfacesnapjournal/internal/infra/llm"
)

// Deps carries the shared infrastructure the routes are built on.
// The caller owns lifecycle concerns (DB close, worker goroutines).
type Deps struct {
	DB      *sql.DB
	Bus     eventbus.EventBus
	Adapter *llm.Adapter
	GitHub  *github.Client
}

// NewRouter creates and configures a chi router with all routes.
// The backend serves a single local user, so there is no auth layer;
// binding to localhost is the access boundary.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check — used by the desktop shell to detect a live backend
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	entrySvc := journal.NewEntryService(deps.DB, deps.Bus)
	insightSvc := insight.NewService(deps.DB, deps.Adapter, nil)

	entryHandler := handlers.NewEntryHandler(entrySvc)
	aiHandler := handlers.NewAIHandler(deps.Adapter, insightSvc)
	feedbackHandler := handlers.NewFeedbackHandler(deps.GitHub)
	patternHandler := handlers.NewPatternHandler(insightSvc)
	infoHandler := handlers.NewInfoHandler()

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/app", func(r chi.Router) {
			r.Get("/info", infoHandler.AppInfo)     // GET /api/v1/app/info
			r.Get("/system", infoHandler.SystemInfo) // GET /api/v1/app/system
		})

		r.Route("/entries", func(r chi.Router) {
			r.Post("/", entryHandler.CreateEntry)              // POST /api/v1/entries
			r.Get("/", entryHandler.ListEntries)               // GET /api/v1/entries
			r.Get("/search", entryHandler.SearchEntries)       // GET /api/v1/entries/search
			r.Get("/stats", entryHandler.GetStats)             // GET /api/v1/entries/stats
			r.Post("/bulk-delete", entryHandler.DeleteEntries) // POST /api/v1/entries/bulk-delete
			r.Get("/{id}", entryHandler.GetEntry)              // GET /api/v1/entries/{id}
			r.Put("/{id}", entryHandler.UpdateEntry)           // PUT /api/v1/entries/{id}
			r.Delete("/{id}", entryHandler.DeleteEntry)        // DELETE /api/v1/entries/{id}
		})

		r.Route("/ai", func(r chi.Router) {
			r.Post("/embed", aiHandler.Embed)              // POST /api/v1/ai/embed
			r.Post("/chat", aiHandler.Chat)                // POST /api/v1/ai/chat
			r.Post("/themes", aiHandler.Themes)            // POST /api/v1/ai/themes
			r.Get("/models", aiHandler.Models)             // GET /api/v1/ai/models
			r.Get("/availability", aiHandler.Availability) // GET /api/v1/ai/availability
		})

		r.Route("/feedback", func(r chi.Router) {
			r.Post("/issues", feedbackHandler.CreateIssue)        // POST /api/v1/feedback/issues
			r.Get("/issues", feedbackHandler.ListIssues)          // GET /api/v1/feedback/issues
			r.Get("/issues/{number}", feedbackHandler.GetIssue)   // GET /api/v1/feedback/issues/{number}
			r.Get("/repo", feedbackHandler.RepositoryInfo)        // GET /api/v1/feedback/repo
		})

		r.Get("/patterns", patternHandler.ListPatterns) // GET /api/v1/patterns
	})

	return r
}
