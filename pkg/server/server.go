package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/ezra-in-go/pkg/config"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/logging"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/metrics"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/model"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/resource"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/server/middleware"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/server/store"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/storage"
)

// Version is reported by GET / and the API document. Release builds set it
// with -ldflags "-X github.com/doodlesbykumbi/ezra-in-go/pkg/server.Version=..."
var Version = "0.1.0"

type Server struct {
	Router *mux.Router
	API    *mux.Router

	Organizations *resource.Service[model.Organization, *model.Organization]
	Locations     *resource.Service[model.Location, *model.Location]
	Groups        *resource.Service[model.Group, *model.Group]
	Members       *resource.Service[model.Member, *model.Member]

	HealthStore store.HealthStore
	Config      *config.EzraConfig

	srv *http.Server
}

func NewServer(cfg *config.EzraConfig, collections *storage.Collections, opts ...resource.Option) *Server {
	router := mux.NewRouter()
	router.Use(metrics.Middleware)

	api := router.PathPrefix("/api").Subrouter()
	if cfg.AuthEnabled() {
		api.Use(middleware.NewJWTAuthenticator(cfg.JWTSecret).Middleware)
	}

	s := &Server{
		Router:        router,
		API:           api,
		Organizations: resource.NewService[model.Organization](collections.Organizations, opts...),
		Locations:     resource.NewService[model.Location](collections.Locations, opts...),
		Groups:        resource.NewService[model.Group](collections.Groups, opts...),
		Members:       resource.NewService[model.Member](collections.Members, opts...),
		HealthStore:   collections.Health,
		Config:        cfg,
	}

	s.srv = &http.Server{
		Handler: s.Handler(),
		Addr:    cfg.ListenAddress(),
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	return s
}

// Handler returns the router wrapped in the shared middleware chain
func (s *Server) Handler() http.Handler {
	origins := s.Config.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", logging.RequestIDHeader}),
		handlers.ExposedHeaders([]string{logging.RequestIDHeader}),
	)
	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(logging.RecoveryLogger()))

	return logging.RequestID(logging.AccessLog(recovery(cors(s.Router))))
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Start serves until Shutdown is called. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	logging.Info().Str("addr", s.srv.Addr).Msg("server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartWithListener serves on an existing listener, for callers that need
// the port before the server starts
func (s *Server) StartWithListener(l net.Listener) error {
	logging.Info().Str("addr", l.Addr().String()).Msg("server listening")
	if err := s.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
