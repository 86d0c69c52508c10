package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/consultboard/internal/board/service"
	"github.com/aussiebroadwan/consultboard/internal/board/store"
	"github.com/aussiebroadwan/consultboard/pkg/boardevents"
	"github.com/aussiebroadwan/consultboard/pkg/httpx"
	"github.com/aussiebroadwan/consultboard/pkg/jwtx"
	"github.com/aussiebroadwan/consultboard/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/aussiebroadwan/consultboard/api/board" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier // nil disables bearer auth
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	gatherer     prometheus.Gatherer

	store             store.Store
	events            boardevents.Publisher
	ClientService     *service.ClientService
	ProjectService    *service.ProjectService
	ConsultantService *service.ConsultantService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	events boardevents.Publisher,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		events:       events,
		gatherer:     gatherer,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerClients()
	r.registerProjects()
	r.registerConsultants()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Consultboard API
//	@version		0.1.0
//	@description	Clients, projects and consultant assignments for the consultboard kanban.
//	@description
//	@description				Every committed mutation is also published on the kanban-updates channel.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/consultboard
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				HS256 access token with board:read or board:write. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured wraps h with bearer auth and the scope check when auth is enabled,
// then rate limits by subject.
func (r *Router) secured(h http.HandlerFunc, scope string, limit httpx.RateLimitConfig) http.Handler {
	if r.verifier == nil {
		return httpx.Chain(h, httpx.RateLimitBySubject(limit))
	}
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope(scope, jwtx.ScopeBoardWrite),
		httpx.RateLimitBySubject(limit),
	)
}

func (r *Router) registerClients() {
	h := &ClientsHandler{ClientService: r.ClientService}

	r.Mux.Handle("GET /v1/clients", r.secured(h.HandleList, jwtx.ScopeBoardRead, httpx.ReadLimit))
	r.Mux.Handle("POST /v1/clients", r.secured(h.HandleCreate, jwtx.ScopeBoardWrite, httpx.WriteLimit))
	r.Mux.Handle("DELETE /v1/clients/{id}", r.secured(h.HandleDelete, jwtx.ScopeBoardWrite, httpx.WriteLimit))
}

func (r *Router) registerProjects() {
	h := &ProjectsHandler{ProjectService: r.ProjectService}

	r.Mux.Handle("GET /v1/projects", r.secured(h.HandleList, jwtx.ScopeBoardRead, httpx.ReadLimit))
	r.Mux.Handle("POST /v1/projects", r.secured(h.HandleCreate, jwtx.ScopeBoardWrite, httpx.WriteLimit))
	r.Mux.Handle("PUT /v1/projects/{id}", r.secured(h.HandleRename, jwtx.ScopeBoardWrite, httpx.WriteLimit))
	r.Mux.Handle("DELETE /v1/projects/{id}", r.secured(h.HandleDelete, jwtx.ScopeBoardWrite, httpx.WriteLimit))
}

func (r *Router) registerConsultants() {
	h := &ConsultantsHandler{ConsultantService: r.ConsultantService}

	r.Mux.Handle("GET /v1/consultants", r.secured(h.HandleList, jwtx.ScopeBoardRead, httpx.ReadLimit))
	r.Mux.Handle("POST /v1/consultants", r.secured(h.HandleCreate, jwtx.ScopeBoardWrite, httpx.WriteLimit))
	r.Mux.Handle("PUT /v1/consultants/{id}", r.secured(h.HandleReassign, jwtx.ScopeBoardWrite, httpx.WriteLimit))
	r.Mux.Handle("DELETE /v1/consultants/{id}", r.secured(h.HandleDelete, jwtx.ScopeBoardWrite, httpx.WriteLimit))
}

func (r *Router) registerSystem() {
	// Health check endpoints - monitoring systems may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.ReadLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.events),
			httpx.RateLimitByIP(httpx.ReadLimit),
		),
	)

	if r.gatherer != nil {
		r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
	}
}
