package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
)

// RouterOptions configures the middleware stack
type RouterOptions struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter mounts every endpoint. Reads are public; writes require the admin token.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/doc.json", h.SwaggerDoc)

	r.Route("/api/v1", func(r chi.Router) {
		// Public reads
		r.Get("/events", h.ListEvents)
		r.Get("/events/{id}", h.GetEvent)
		r.Get("/events/{id}/fights", h.ListFights)
		r.Get("/events/{id}/consensus", h.GetConsensus)
		r.Get("/events/{id}/inside-distance", h.GetInsideDistance)
		r.Get("/events/{id}/underdogs", h.GetUnderdogs)
		r.Get("/events/{id}/export", h.ExportEvent)
		r.Get("/fights/{id}", h.GetFight)
		r.Get("/fights/{id}/picks", h.ListFightPicks)
		r.Get("/fights/{id}/result", h.GetResult)
		r.Get("/fights/{id}/context", h.GetFightContext)
		r.Get("/picks", h.ListPicks)
		r.Get("/picks/{id}", h.GetPick)
		r.Get("/aliases", h.ListAliases)
		r.Get("/aliases/resolve", h.ResolveAlias)
		r.Get("/scoring/leaderboard", h.GetLeaderboard)
		r.Get("/scoring/analysts/{name}", h.GetAnalystRecord)
		r.Post("/ask", h.Ask)

		// Admin writes
		r.Group(func(r chi.Router) {
			r.Use(h.AdminAuthMiddleware)

			r.Post("/events", h.CreateEvent)
			r.Post("/events/{id}/fights", h.CreateFight)
			r.Post("/events/{id}/results", h.SaveResultsCard)
			r.Post("/fights/{id}/cancel", h.CancelFight)
			r.Post("/fights/{id}/result", h.SaveResult)
			r.Post("/picks", h.CreatePick)
			r.Put("/picks/{id}", h.UpdatePick)
			r.Delete("/picks/{id}", h.DeletePick)
			r.Post("/ingest/extract", h.ExtractArticle)
			r.Post("/ingest/normalize", h.NormalizeExtraction)
			r.Post("/ingest/commit", h.CommitBatch)
			r.Post("/ingest/jobs", h.EnqueueExtraction)
			r.Get("/ingest/jobs/{id}", h.GetExtractionJob)
			r.Post("/system/install", h.InstallDatabase)
		})
	})

	return r
}

// SwaggerDoc serves the generated OpenAPI document
func (h *Handler) SwaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		h.errorResponse(w, http.StatusNotFound, "API documentation not registered")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}
