// Package server exposes the HTTP API: auth, groups, receipts, splits
// and the group summary, plus health and metrics endpoints.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"splitshare/internal/auth"
	"splitshare/internal/extract"
	"splitshare/internal/middleware"
	"splitshare/internal/service"
)

// Server holds the services behind the HTTP API.
type Server struct {
	auths    *service.AuthService
	groups   *service.GroupService
	receipts *service.ReceiptService
	splits   *service.SplitService

	// extractor is nil when no vision API key is configured; the upload
	// endpoint then reports the feature as unavailable.
	extractor *extract.Client

	jwtManager *auth.JWTManager
}

// New creates a Server. extractor may be nil.
func New(
	auths *service.AuthService,
	groups *service.GroupService,
	receipts *service.ReceiptService,
	splits *service.SplitService,
	extractor *extract.Client,
	jwtManager *auth.JWTManager,
) *Server {
	return &Server{
		auths:      auths,
		groups:     groups,
		receipts:   receipts,
		splits:     splits,
		extractor:  extractor,
		jwtManager: jwtManager,
	}
}

// Router builds the full route tree with the middleware stack applied.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestMetrics)
	r.Use(middleware.RequestLogging)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(s.jwtManager))
				r.Get("/me", s.handleCurrentUser)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.jwtManager))

			r.Route("/groups", func(r chi.Router) {
				r.Post("/", s.handleCreateGroup)
				r.Get("/", s.handleListGroups)
				r.Get("/{groupID}", s.handleGetGroup)
				r.Delete("/{groupID}", s.handleDeleteGroup)
				r.Post("/{groupID}/invite", s.handleInviteUser)
				r.Delete("/{groupID}/members/{userID}", s.handleRemoveUser)
				r.Get("/{groupID}/summary", s.handleGroupSummary)
				r.Get("/{groupID}/receipts", s.handleListReceipts)
			})

			r.Route("/receipts", func(r chi.Router) {
				r.Post("/", s.handleSaveReceipt)
				r.Post("/upload", s.handleUploadReceipt)
				r.Get("/{receiptID}", s.handleGetReceipt)
				r.Delete("/{receiptID}", s.handleDeleteReceipt)
				r.Post("/{receiptID}/settle", s.handleSettleReceipt)
				r.Post("/{receiptID}/split/percentage", s.handleSplitByPercentage)
				r.Post("/{receiptID}/split/items", s.handleSplitByItemPercentage)
				r.Post("/{receiptID}/split/assign", s.handleSplitByItemAssignment)
			})
		})
	})

	return r
}
