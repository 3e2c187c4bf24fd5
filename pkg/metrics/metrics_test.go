package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/ezra-in-go/pkg/model"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/server/store"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/server/store/file"
)

func TestInstrumentCollection(t *testing.T) {
	ctx := context.Background()
	raw := file.NewCollection[model.Group](t.TempDir(), "metrics_groups")
	require.NoError(t, raw.Ensure(ctx))
	c := InstrumentCollection[model.Group](raw)

	assert.Equal(t, "metrics_groups", c.Name())

	require.NoError(t, c.SaveAll(ctx, []model.Group{{ID: "a"}, {ID: "b"}}))
	assert.Equal(t, float64(2), testutil.ToFloat64(CollectionRecords.WithLabelValues("metrics_groups")))

	records, err := c.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, float64(0), testutil.ToFloat64(StoreOperationErrors.WithLabelValues("metrics_groups", "load")))
}

func TestInstrumentCollection_CountsErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metrics_broken.json"), []byte("{"), 0o644))
	c := InstrumentCollection[model.Member](file.NewCollection[model.Member](dir, "metrics_broken"))

	_, err := c.LoadAll(context.Background())
	assert.ErrorIs(t, err, store.ErrStorageRead)
	assert.Equal(t, float64(1), testutil.ToFloat64(StoreOperationErrors.WithLabelValues("metrics_broken", "load")))
}

func TestMiddleware_UsesRouteTemplate(t *testing.T) {
	router := mux.NewRouter()
	router.Use(Middleware)
	router.HandleFunc("/api/metrics-test/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	for _, id := range []string{"a", "b", "c"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/metrics-test/"+id, nil))
	}

	got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(http.MethodGet, "/api/metrics-test/{id}", "404"))
	assert.Equal(t, float64(3), got)
}
