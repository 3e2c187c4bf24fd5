package endpoints

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/ezra-in-go/pkg/audit"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/config"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/logging"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/resource"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/server"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/storage"
)

var testEpoch = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

// testServer is a server on a temporary file store with a fake clock and
// predictable ids
type testServer struct {
	*server.Server
	DataDir string
	Audit   *bytes.Buffer

	clock time.Time
}

func newTestServer(t *testing.T, mutate ...func(*config.EzraConfig)) *testServer {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.EzraConfig{
		BindAddress:   "127.0.0.1",
		Port:          3001,
		StorageDriver: config.DriverFile,
		DataDir:       dir,
		LogLevel:      "info",
		LogFormat:     "json",
		AuditEnabled:  true,
	}
	for _, m := range mutate {
		m(cfg)
	}

	logging.SetLogger(zerolog.Nop())

	auditBuf := &bytes.Buffer{}
	audit.DefaultLogger.SetWriter(auditBuf)
	t.Cleanup(func() { audit.DefaultLogger.SetWriter(io.Discard) })

	collections, err := storage.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, collections.Ensure(context.Background()))
	t.Cleanup(func() { _ = collections.Close() })

	ts := &testServer{DataDir: dir, Audit: auditBuf, clock: testEpoch}
	seq := 0
	ts.Server = server.NewServer(cfg, collections,
		resource.WithClock(func() time.Time { return ts.clock }),
		resource.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	)
	RegisterAll(ts.Server)
	return ts
}

// advance moves the fake clock forward
func (ts *testServer) advance(d time.Duration) {
	ts.clock = ts.clock.Add(d)
}

// do sends a request through the full middleware chain
func (ts *testServer) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody[V any](t *testing.T, w *httptest.ResponseRecorder) V {
	t.Helper()
	var v V
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody[map[string]string](t, w)
	return body["error"]
}
