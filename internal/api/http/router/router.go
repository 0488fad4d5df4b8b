package router

import (
	"net/http"

	"github.com/readsync/kosync-server/internal/api/http/handler"
	"github.com/readsync/kosync-server/internal/api/http/middleware"
	"github.com/readsync/kosync-server/internal/logger"
	"github.com/readsync/kosync-server/internal/model"
)

// Router wires the sync handlers and middleware into an http.Handler.
type Router struct {
	syncService    handler.SyncService
	contextManager model.ClaimManager
	logger         *logger.Logger
}

// New creates new Router instance.
func New(syncService handler.SyncService, contextManager model.ClaimManager, logger *logger.Logger) *Router {
	return &Router{
		syncService:    syncService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register builds the route table. Paths and methods are fixed by the
// sync protocol wire contract.
func (r *Router) Register() http.Handler {
	h := handler.NewSync(r.syncService, r.contextManager, r.logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/create", h.Register)
	mux.HandleFunc("GET /users/auth", h.Authorize)
	mux.HandleFunc("PUT /syncs/progress", h.UpdateProgress)
	mux.HandleFunc("GET /syncs/progress/{document}", h.GetProgress)
	mux.HandleFunc("GET /healthstatus", h.Health)

	claim := middleware.NewClaim(r.contextManager)
	logging := middleware.NewLogging(r.logger)

	return logging.Handle(claim.Handle(mux))
}
