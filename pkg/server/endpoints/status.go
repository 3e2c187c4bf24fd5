package endpoints

import (
	"bytes"
	_ "embed"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/doodlesbykumbi/ezra-in-go/pkg/logging"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/server"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/server/openapi"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/server/store"
)

//go:embed status.md
var statusMarkdown string

// StatusResponse is the JSON form of GET / and GET /status
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RegisterStatusEndpoints registers the status page, the storage health
// check, Prometheus metrics and the Swagger UI.
func RegisterStatusEndpoints(s *server.Server) {
	page, err := renderStatusPage(server.Version, s.Config.StorageDriver)
	if err != nil {
		logging.Error().Err(err).Msg("failed to render status page")
	}

	if err := openapi.Register(server.Version); err != nil {
		logging.Error().Err(err).Msg("failed to build API document")
	}

	// GET / - Status page (no auth required)
	s.Router.HandleFunc("/", handleStatus(page)).Methods(http.MethodGet)
	s.Router.HandleFunc("/status", handleHealth(s.HealthStore)).Methods(http.MethodGet)
	s.Router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.Router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
	))
	s.Router.Handle("/swagger", http.RedirectHandler("/swagger/index.html", http.StatusMovedPermanently))
}

// renderStatusPage converts the embedded markdown to a full HTML page
func renderStatusPage(version, driver string) ([]byte, error) {
	md := strings.NewReplacer("{{version}}", version, "{{driver}}", driver).Replace(statusMarkdown)

	var body bytes.Buffer
	converter := goldmark.New(goldmark.WithExtensions(extension.Table))
	if err := converter.Convert([]byte(md), &body); err != nil {
		return nil, err
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Ezra Status</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

func handleStatus(page []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accept := r.Header.Get("Accept")
		format := r.URL.Query().Get("format")
		if format == "json" || strings.Contains(accept, "application/json") || page == nil {
			respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok", Version: server.Version})
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}
}

func handleHealth(healthStore store.HealthStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := healthStore.CheckConnectivity(r.Context()); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("storage health check failed")
			respondWithJSON(w, http.StatusServiceUnavailable, StatusResponse{
				Status: "error",
				Error:  "storage connectivity check failed",
			})
			return
		}
		respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
	}
}
