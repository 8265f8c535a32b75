package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := NewStore("admin", "hunter2", 7*24*time.Hour)
	router := gin.New()
	NewHandler(store).RegisterRoutes(&router.RouterGroup)

	protected := router.Group("/admin")
	protected.Use(RequireSession(store))
	protected.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "pong"})
	})

	return router, store
}

func doJSON(router *gin.Engine, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLoginEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/login", `{"username":"admin","password":"hunter2"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestLoginEndpointRejections(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/login", `{"username":"admin"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/login", `{"username":"admin","password":"nope"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestValidateAndLogoutEndpoints(t *testing.T) {
	router, store := newTestRouter(t)

	token, err := store.Login("admin", "hunter2")
	require.NoError(t, err)

	w := doJSON(router, http.MethodPost, "/validate", `{"token":"`+token+`"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/validate", `{"token":"bogus"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodPost, "/logout", `{"token":"`+token+`"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// token is dead immediately after logout
	w = doJSON(router, http.MethodPost, "/validate", `{"token":"`+token+`"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireSessionMiddleware(t *testing.T) {
	router, store := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/admin/ping", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := store.Login("admin", "hunter2")
	require.NoError(t, err)

	w = doJSON(router, http.MethodGet, "/admin/ping", "", map[string]string{"Token": token})
	assert.Equal(t, http.StatusOK, w.Code)
}
