package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/whiskerbook/internal/handler"
	"github.com/sakif/whiskerbook/internal/repository/sqlite"
	"github.com/sakif/whiskerbook/internal/server"
)

// =========================================================================
// TEST HELPERS
// =========================================================================

// newTestAPI builds the real router on an in-memory store, so every request
// goes through routing, middleware, services and the store constraints.
func newTestAPI(t *testing.T) http.Handler {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Migrate(context.Background())
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	cfg := server.Config{ServiceName: "whiskerbook-test", CORSAllowedOrigins: []string{"*"}}
	return server.NewRouter(db, cfg, logger, prometheus.NewRegistry())
}

// do sends one request and decodes the JSON response body into a map.
func do(t *testing.T, api http.Handler, method, target, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	api.ServeHTTP(rr, req)

	var out map[string]any
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "body: %s", rr.Body.String())
	}
	return rr.Code, out
}

func create(t *testing.T, api http.Handler, target, body string) map[string]any {
	t.Helper()
	code, out := do(t, api, http.MethodPost, target, body)
	require.Equal(t, http.StatusCreated, code, "POST %s: %v", target, out)
	return out
}

func items(t *testing.T, body map[string]any) []any {
	t.Helper()
	list, ok := body["items"].([]any)
	require.True(t, ok, "items is not a list: %v", body["items"])
	return list
}

// =========================================================================
// END-TO-END SCENARIO
// =========================================================================

func TestScenario_CatMeowPurrSearch(t *testing.T) {
	api := newTestAPI(t)

	tom := create(t, api, "/cats", `{"name":"Tom"}`)
	assert.Equal(t, "Unknown", tom["breed"])
	assert.Equal(t, "Unknown", tom["color"])
	assert.Equal(t, 0.0, tom["age"])

	meow := create(t, api, "/meows", `{"catId":"`+tom["id"].(string)+`","text":"hi"}`)
	assert.Equal(t, "happy", meow["mood"])
	assert.Equal(t, map[string]any{"id": tom["id"], "name": "Tom"}, meow["catId"])

	purr := create(t, api, "/purrs", `{"meowId":"`+meow["id"].(string)+`"}`)
	assert.Equal(t, 5.0, purr["intensity"])
	assert.Equal(t, 10.0, purr["durationSeconds"])
	populated, ok := purr["meowId"].(map[string]any)
	require.True(t, ok, "purr.meowId not populated: %v", purr)
	assert.Equal(t, meow["id"], populated["id"])
	assert.Equal(t, "hi", populated["text"])
	assert.Equal(t, "Tom", populated["catId"].(map[string]any)["name"])

	code, found := do(t, api, http.MethodGet, "/meows/search/by-cat-name?name=tom", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1.0, found["total"])
	list := items(t, found)
	require.Len(t, list, 1)
	first := list[0].(map[string]any)
	assert.Equal(t, "hi", first["text"])
	assert.Equal(t, "Tom", first["catId"].(map[string]any)["name"])

	code, purrs := do(t, api, http.MethodGet, "/purrs/by-meow/"+meow["id"].(string), "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1.0, purrs["total"])
	assert.Equal(t, purr["id"], items(t, purrs)[0].(map[string]any)["id"])
}

// =========================================================================
// ERROR TAXONOMY
// =========================================================================

func TestErrors(t *testing.T) {
	api := newTestAPI(t)
	tom := create(t, api, "/cats", `{"name":"Tom"}`)
	tomID := tom["id"].(string)
	missing := xid.New().String()

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantError  string
	}{
		{"malformed id on get", http.MethodGet, "/cats/123", "", 400, handler.ErrorInvalidID},
		{"malformed id on patch", http.MethodPatch, "/meows/not-an-id", `{"text":"x"}`, 400, handler.ErrorInvalidID},
		{"malformed id on delete", http.MethodDelete, "/purrs/zzz", "", 400, handler.ErrorInvalidID},
		{"malformed id wins over broken JSON on cat patch", http.MethodPatch, "/cats/bad", `{"name":`, 400, handler.ErrorInvalidID},
		{"malformed id wins over broken JSON on meow patch", http.MethodPatch, "/meows/bad", `{`, 400, handler.ErrorInvalidID},
		{"malformed id wins over broken JSON on purr patch", http.MethodPatch, "/purrs/bad", `[`, 400, handler.ErrorInvalidID},
		{"broken JSON on patch", http.MethodPatch, "/cats/" + tomID, `{"name":`, 400, handler.ErrorValidation},
		{"unknown cat", http.MethodGet, "/cats/" + missing, "", 404, handler.ErrorNotFound},
		{"unknown meow on delete", http.MethodDelete, "/meows/" + missing, "", 404, handler.ErrorNotFound},
		{"cat without name", http.MethodPost, "/cats", `{"breed":"Tabby"}`, 400, handler.ErrorValidation},
		{"negative age on patch", http.MethodPatch, "/cats/" + tomID, `{"age":-2}`, 400, handler.ErrorValidation},
		{"broken JSON", http.MethodPost, "/cats", `{"name":`, 400, handler.ErrorValidation},
		{"meow for unknown cat", http.MethodPost, "/meows", `{"catId":"` + missing + `","text":"hi"}`, 400, handler.ErrorInvalidReference},
		{"meow with malformed cat", http.MethodPost, "/meows", `{"catId":"abc","text":"hi"}`, 400, handler.ErrorInvalidReference},
		{"meow without cat", http.MethodPost, "/meows", `{"text":"hi"}`, 400, handler.ErrorInvalidReference},
		{"meow text too long", http.MethodPost, "/meows", `{"catId":"` + tomID + `","text":"` + strings.Repeat("a", 281) + `"}`, 400, handler.ErrorValidation},
		{"purr for unknown meow", http.MethodPost, "/purrs", `{"meowId":"` + missing + `"}`, 400, handler.ErrorInvalidReference},
		{"blank search", http.MethodGet, "/meows/search/by-cat-name?name=%20", "", 400, handler.ErrorValidation},
		{"purrs of malformed meow", http.MethodGet, "/purrs/by-meow/nope", "", 400, handler.ErrorInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, api, tt.method, tt.target, tt.body)

			assert.Equal(t, tt.wantStatus, code)
			assert.Equal(t, tt.wantError, body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestMeowText_280CharactersAccepted(t *testing.T) {
	api := newTestAPI(t)
	tom := create(t, api, "/cats", `{"name":"Tom"}`)

	meow := create(t, api, "/meows", `{"catId":"`+tom["id"].(string)+`","text":"`+strings.Repeat("a", 280)+`"}`)
	assert.Len(t, meow["text"], 280)
}

// =========================================================================
// LISTS
// =========================================================================

func TestList_PaginationEnvelope(t *testing.T) {
	api := newTestAPI(t)
	for _, name := range []string{"a", "b", "c"} {
		create(t, api, "/cats", `{"name":"`+name+`"}`)
	}

	code, body := do(t, api, http.MethodGet, "/cats?page=2&limit=2&sort=oldest", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2.0, body["page"])
	assert.Equal(t, 2.0, body["limit"])
	assert.Equal(t, 3.0, body["total"])
	list := items(t, body)
	require.Len(t, list, 1)
	assert.Equal(t, "c", list[0].(map[string]any)["name"])

	// Out-of-range values are clamped, never rejected.
	code, body = do(t, api, http.MethodGet, "/cats?page=-4&limit=1000&sort=sideways", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1.0, body["page"])
	assert.Equal(t, 100.0, body["limit"])
}

func TestList_Filters(t *testing.T) {
	api := newTestAPI(t)
	tom := create(t, api, "/cats", `{"name":"Tom"}`)
	felix := create(t, api, "/cats", `{"name":"Felix"}`)
	create(t, api, "/meows", `{"catId":"`+tom["id"].(string)+`","text":"one"}`)
	create(t, api, "/meows", `{"catId":"`+felix["id"].(string)+`","text":"two"}`)

	_, body := do(t, api, http.MethodGet, "/meows?catId="+tom["id"].(string), "")
	assert.Equal(t, 1.0, body["total"])

	// A malformed filter is ignored, not rejected.
	code, body := do(t, api, http.MethodGet, "/meows?catId=garbage", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2.0, body["total"])
}

// =========================================================================
// UPDATE AND DELETE
// =========================================================================

func TestPatch_PartialUpdate(t *testing.T) {
	api := newTestAPI(t)
	tom := create(t, api, "/cats", `{"name":"Tom","breed":"Tabby"}`)

	code, body := do(t, api, http.MethodPatch, "/cats/"+tom["id"].(string), `{"age":4}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Tom", body["name"])
	assert.Equal(t, "Tabby", body["breed"])
	assert.Equal(t, 4.0, body["age"])
}

func TestDelete_NoCascade(t *testing.T) {
	api := newTestAPI(t)
	tom := create(t, api, "/cats", `{"name":"Tom"}`)
	meow := create(t, api, "/meows", `{"catId":"`+tom["id"].(string)+`","text":"orphan soon"}`)

	code, body := do(t, api, http.MethodDelete, "/cats/"+tom["id"].(string), "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Cat removed", body["message"])

	code, body = do(t, api, http.MethodGet, "/meows/"+meow["id"].(string), "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, tom["id"], body["catId"], "a deleted author leaves the raw id")
	purr := create(t, api, "/purrs", `{"meowId":"`+meow["id"].(string)+`"}`)

	code, body = do(t, api, http.MethodDelete, "/meows/"+meow["id"].(string), "")
	require.Equal(t, http.StatusOK, code)

	code, body = do(t, api, http.MethodGet, "/purrs/"+purr["id"].(string), "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, meow["id"], body["meowId"], "a deleted meow leaves the raw id")
}

// =========================================================================
// OPERATIONAL ROUTES
// =========================================================================

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	code, body := do(t, api, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "whiskerbook-test", body["service"])
}

// The store rejects a meow the service layer never saw.
func TestDebugInvalidMeow(t *testing.T) {
	api := newTestAPI(t)

	code, body := do(t, api, http.MethodPost, "/debug/invalid-meow", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, handler.ErrorValidation, body["error"])

	_, list := do(t, api, http.MethodGet, "/meows", "")
	assert.Equal(t, 0.0, list["total"])
}

func TestUnknownRoutes(t *testing.T) {
	api := newTestAPI(t)

	code, body := do(t, api, http.MethodGet, "/dogs", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, handler.ErrorNotFound, body["error"])

	code, body = do(t, api, http.MethodPut, "/cats", "")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
	assert.Equal(t, handler.ErrorMethodNotAllowed, body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t)
	do(t, api, http.MethodGet, "/health", "")

	rr := httptest.NewRecorder()
	api.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `whiskerbook_http_requests_total{method="GET",route="/health",status="200"} 1`)
}
