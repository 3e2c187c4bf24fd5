// Package server provides the HTTP server for the Ezra API.
//
// # Server Setup
//
//	collections, err := storage.Open(cfg)
//	srv := server.NewServer(cfg, collections)
//	endpoints.RegisterAll(srv)
//	err = srv.Start()
//
// # Components
//
// The Server struct holds:
//
//   - Router: the root gorilla/mux router
//   - API: the /api subrouter, behind bearer auth when jwt_secret is set
//   - Organizations, Locations, Groups, Members: one resource.Service each
//   - HealthStore: storage connectivity check for /status
//   - Config: the resolved configuration
//
// Every request passes through request-id, access-log, panic-recovery and
// CORS middleware before reaching the router.
package server
