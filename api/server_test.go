package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrifind/go-food-search/config"
	"github.com/nutrifind/go-food-search/internal/kb"
	"github.com/nutrifind/go-food-search/internal/search"
	"github.com/nutrifind/go-food-search/model"
	"github.com/nutrifind/go-food-search/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, records ...model.FullRecord) *gin.Engine {
	t.Helper()

	cfg := config.DefaultServerConfig()
	cfg.DataDir = t.TempDir()
	cfg.Engine.DebounceInterval = time.Millisecond

	st := store.New()
	if len(records) > 0 {
		st.Put(records...)
	}

	engine := search.NewEngine(&cfg.Engine, kb.New(), st)
	engine.Rebuild(st.All())

	return NewServer(cfg, engine, st).Router()
}

func sampleRecords() []model.FullRecord {
	return []model.FullRecord{
		{ID: 1, Name: "Whole Milk", PH: 6.7,
			Nutrients: map[model.Nutrient]float64{model.NutrientProtein: 3.4}},
		{ID: 2, Name: "Almond Milk"},
		{ID: 3, Name: "Apple Juice", PH: 3.5, Diets: []string{"vegan"}},
	}
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestPutAndGetRecords(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPut, "/records", sampleRecords())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.EqualValues(t, 3, body["stored"])
	assert.EqualValues(t, 3, body["total"])

	w = doJSON(router, http.MethodGet, "/records/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Whole Milk", decode(t, w)["name"])

	w = doJSON(router, http.MethodGet, "/records/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodGet, "/records/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPutRecordsRejectsBadPayload(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPut, "/records", []model.FullRecord{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPut, "/records", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteRecord(t *testing.T) {
	router := newTestRouter(t, sampleRecords()...)

	w := doJSON(router, http.MethodDelete, "/records/2", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, http.MethodGet, "/records/2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitSearchAndPollResult(t *testing.T) {
	router := newTestRouter(t, sampleRecords()...)

	w := doJSON(router, http.MethodPost, "/search", map[string]any{"query": "milk"})
	require.Equal(t, http.StatusAccepted, w.Code)

	deadline := time.Now().Add(2 * time.Second)
	var result map[string]any
	for time.Now().Before(deadline) {
		w = doJSON(router, http.MethodGet, "/search/result", nil)
		if w.Code == http.StatusOK {
			body := decode(t, w)
			if body["state"] == string(search.StateComplete) {
				result = body["result"].(map[string]any)
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
	}
	require.NotNil(t, result, "search never completed")
	assert.EqualValues(t, 2, result["total"])
}

func TestSearchResultBeforeAnySearch(t *testing.T) {
	router := newTestRouter(t, sampleRecords()...)
	w := doJSON(router, http.MethodGet, "/search/result", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoadPage(t *testing.T) {
	router := newTestRouter(t, sampleRecords()...)

	w := doJSON(router, http.MethodGet, "/search/pages/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// An empty search completes synchronously with the default listing.
	w = doJSON(router, http.MethodPost, "/search", map[string]any{})
	require.Equal(t, http.StatusAccepted, w.Code)

	w = doJSON(router, http.MethodGet, "/search/pages/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode(t, w)["total"])

	w = doJSON(router, http.MethodGet, "/search/pages/0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodGet, "/search/pages/x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListDietsEndpoint(t *testing.T) {
	router := newTestRouter(t, sampleRecords()...)

	w := doJSON(router, http.MethodGet, "/diets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Contains(t, body["diets"], "vegan")
	assert.Contains(t, body["diets"], "gluten-free")
	assert.Equal(t, []any{"vegan"}, body["indexed"])
}

func TestSearchCompactEndpoint(t *testing.T) {
	router := newTestRouter(t, sampleRecords()...)

	w := doJSON(router, http.MethodPost, "/search/compact", map[string]any{"query": "milk"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["total"])
}

func TestSearchWithKeywordsEndpoint(t *testing.T) {
	router := newTestRouter(t, sampleRecords()...)

	w := doJSON(router, http.MethodPost, "/search/keywords", map[string]any{
		"query":              "milk",
		"required_headwords": []string{"almond"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])
}
