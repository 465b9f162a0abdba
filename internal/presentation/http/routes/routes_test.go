package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AtRiskMedia/pagegrid-go/internal/application/container"
	"github.com/AtRiskMedia/pagegrid-go/internal/application/services"
	"github.com/AtRiskMedia/pagegrid-go/internal/domain/entities/contenttypes"
	"github.com/AtRiskMedia/pagegrid-go/internal/domain/repositories"
	schema "github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/database"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/security"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/messaging"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, auth services.AuthConfig) *gin.Engine {
	t.Helper()
	return SetupRoutes(newTestContainer(t, auth))
}

func newTestContainer(t *testing.T, auth services.AuthConfig) *container.Container {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logging.NewDiscardLogger()

	db, err := database.NewConnectionWithLogger(database.Options{
		Driver:       database.DriverSQLite,
		Path:         ":memory:",
		MaxOpenConns: 1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, schema.NewTableCreator().CreateSchema(db.DB))

	c := container.NewContainer(db, logger, auth)
	_, err = c.ContentTypeService.SyncRegistry(contenttypes.Defaults())
	require.NoError(t, err)
	return c
}

func do(t *testing.T, r http.Handler, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestEditorFlowOverHTTP(t *testing.T) {
	r := newTestRouter(t, services.AuthConfig{})

	w := do(t, r, http.MethodPost, "/api/v1/pages", gin.H{"key": "home", "name": "Home", "route": "/"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[repositories.PageRecord](t, w)
	require.Len(t, created.Document.Layout.Rows, 1)
	firstCell := created.Document.Layout.Rows[0].Cells[0].ID

	w = do(t, r, http.MethodPost, "/api/v1/pages/home/rows", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	added := decode[services.MutationResult](t, w)
	assert.NotEmpty(t, added.RowID)
	assert.Len(t, added.Page.Document.Layout.Rows, 2)

	heading := gin.H{"key": "hero", "type": "heading", "name": "Hero", "properties": gin.H{"text": "Welcome", "level": 1}}
	w = do(t, r, http.MethodPut, "/api/v1/pages/home/cells/"+firstCell+"/content", heading)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/v1/pages/home", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[repositories.PageRecord](t, w)
	require.Len(t, page.Document.Components, 1)
	assert.Equal(t, "hero", *page.Document.Layout.Rows[0].Cells[0].ContentItemKey)

	// Schema failure leaves the stored page untouched.
	bad := gin.H{"key": "hero", "type": "heading", "name": "Hero", "properties": gin.H{"text": "Welcome", "level": 9}}
	w = do(t, r, http.MethodPut, "/api/v1/pages/home/components/hero", bad)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Equal(t, "validation", decode[map[string]any](t, w)["kind"])

	unknown := gin.H{"key": "x", "type": "carousel", "properties": gin.H{}}
	w = do(t, r, http.MethodPut, "/api/v1/pages/home/cells/"+firstCell+"/content", unknown)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = do(t, r, http.MethodPut, "/api/v1/pages/home/components/other", heading)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/pages/home/move", gin.H{
		"sourceRowId": "ghost", "sourceCellId": firstCell,
		"targetRowId": added.RowID, "targetCellId": "ghost", "contentItemKey": "hero",
	})
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())

	w = do(t, r, http.MethodPatch, "/api/v1/pages/home/rows/"+added.RowID+"/cells/"+added.Page.Document.Layout.Rows[1].Cells[0].ID, gin.H{"colSpan": -2})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/v1/published/home", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/pages/home/publish", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/v1/published/home", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "home", decode[map[string]any](t, w)["key"])

	w = do(t, r, http.MethodPost, "/api/v1/pages", gin.H{"key": "home", "route": "/"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/pages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"home"}, decode[map[string]any](t, w)["pageKeys"])

	w = do(t, r, http.MethodDelete, "/api/v1/pages/home", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, "/api/v1/pages/home", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBadBodies(t *testing.T) {
	r := newTestRouter(t, services.AuthConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pages", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/pages", gin.H{"key": "p"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/pages", gin.H{"key": "p", "route": "no-slash"})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestEditorRoutesRequireToken(t *testing.T) {
	hash, err := security.HashPassword("correct horse")
	require.NoError(t, err)
	r := newTestRouter(t, services.AuthConfig{PasswordHash: hash, JWTSecret: "test-secret"})

	w := do(t, r, http.MethodGet, "/api/v1/pages", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/auth/login", gin.H{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/auth/login", gin.H{"password": "correct horse"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[services.AuthResult](t, w)
	require.NotEmpty(t, login.Token)
	assert.NotEmpty(t, w.Result().Cookies())

	w = do(t, r, http.MethodGet, "/api/v1/pages", nil, "Authorization", "Bearer "+login.Token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/pages?token="+login.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/pages", nil, "Authorization", "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/auth/status", nil, "Authorization", "Bearer "+login.Token)
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[map[string]any](t, w)
	assert.Equal(t, true, status["authenticated"])
	assert.Equal(t, "bearer", status["method"])

	// Health stays public.
	w = do(t, r, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginWithoutConfiguredAuth(t *testing.T) {
	r := newTestRouter(t, services.AuthConfig{})
	w := do(t, r, http.MethodPost, "/api/v1/auth/login", gin.H{"password": "anything"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthAndStats(t *testing.T) {
	r := newTestRouter(t, services.AuthConfig{})

	w := do(t, r, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[map[string]any](t, w)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "ok", health["database"])

	do(t, r, http.MethodPost, "/api/v1/pages", gin.H{"key": "home", "route": "/"})
	do(t, r, http.MethodGet, "/api/v1/pages/missing", nil)

	w = do(t, r, http.MethodGet, "/api/v1/health/stats?pageKey=home", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[map[string]any](t, w)
	assert.NotEmpty(t, stats["operations"])
	assert.NotEmpty(t, stats["recent"])
	assert.Contains(t, stats, "cache")
}

func TestRequestIDAndCORS(t *testing.T) {
	r := newTestRouter(t, services.AuthConfig{})

	w := do(t, r, http.MethodGet, "/api/v1/health", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = do(t, r, http.MethodGet, "/api/v1/health", nil, "Origin", "http://localhost:3000")
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPageEventsWebsocket(t *testing.T) {
	c := newTestContainer(t, services.AuthConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go c.Broadcaster.Run(ctx)

	srv := httptest.NewServer(SetupRoutes(c))
	t.Cleanup(srv.Close)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/pages/home/events"

	// Unknown pages are refused before the upgrade.
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	r := SetupRoutes(c)
	w := do(t, r, http.MethodPost, "/api/v1/pages", gin.H{"key": "home", "route": "/"})
	require.Equal(t, http.StatusCreated, w.Code)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return c.Broadcaster.ClientCount("home") == 1 }, 2*time.Second, 10*time.Millisecond)

	w = do(t, r, http.MethodPost, "/api/v1/pages/home/rows", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event messaging.PageEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, messaging.EventPageChanged, event.Type)
	assert.Equal(t, "home", event.PageKey)
	assert.Equal(t, "addRow", event.Operation)
	assert.Equal(t, "draft", event.Variant)
}
