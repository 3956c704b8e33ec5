package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pokerjest/trackAutoTool/internal/batch"
	"github.com/pokerjest/trackAutoTool/internal/config"
	"github.com/pokerjest/trackAutoTool/internal/db"
	"github.com/pokerjest/trackAutoTool/internal/model"
	"github.com/pokerjest/trackAutoTool/internal/plex"
	"github.com/pokerjest/trackAutoTool/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	if err := config.LoadConfig(""); err != nil {
		panic(err)
	}

	// In-memory DB so tests never touch a real database file.
	db.InitDB(":memory:")

	code := m.Run()

	db.CloseDB()
	os.Exit(code)
}

// setupRouter wires the full route table against a plex.tv stub that accepts
// any token as the user "tester".
func setupRouter() (*gin.Engine, *httptest.Server) {
	gin.SetMode(gin.TestMode)

	plexTV := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user":
			w.Write([]byte(`{"id": 1, "uuid": "u-1", "username": "tester", "title": "Tester"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	client := plex.NewClient("test-client", 5*time.Second, 2*time.Second)
	client.TVURL = plexTV.URL

	sessions := service.NewSessionStore()
	authSvc := service.NewAuthService(client, sessions, "test-secret", "test-client")

	batches := batch.NewStore()
	batchSvc := batch.NewService(batches, client)

	r := gin.New()
	InitRoutes(r, client, authSvc, batchSvc)
	return r, plexTV
}

func doRequest(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Plex-Token", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndRoot(t *testing.T) {
	r, plexTV := setupRouter()
	defer plexTV.Close()

	w := doRequest(r, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, "GET", "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "TrackAutoTool")
}

func TestRequireToken(t *testing.T) {
	r, plexTV := setupRouter()
	defer plexTV.Close()

	w := doRequest(r, "GET", "/api/libraries", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Not authenticated")
}

func TestNoServerSelected(t *testing.T) {
	r, plexTV := setupRouter()
	defer plexTV.Close()

	// Valid token but no server chosen yet.
	w := doRequest(r, "GET", "/api/libraries", "some-token", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No server selected")
}

func TestBearerTokenAccepted(t *testing.T) {
	r, plexTV := setupRouter()
	defer plexTV.Close()

	req, _ := http.NewRequest("GET", "/api/auth/user", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tester")
}

func TestBatchProgressNotFound(t *testing.T) {
	r, plexTV := setupRouter()
	defer plexTV.Close()

	w := doRequest(r, "GET", "/api/tracks/batch/nope1234", "some-token", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not found")
}

func TestStartBatch_Validation(t *testing.T) {
	r, plexTV := setupRouter()
	defer plexTV.Close()

	// set_none only makes sense for subtitles.
	w := doRequest(r, "POST", "/api/tracks/batch", "some-token", gin.H{
		"scope":             "show",
		"stream_type":       "audio",
		"target_rating_key": "123",
		"set_none":          true,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "set_none is only valid for subtitle updates")

	w = doRequest(r, "POST", "/api/tracks/batch", "some-token", gin.H{
		"scope":             "galaxy",
		"stream_type":       "audio",
		"target_rating_key": "123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid scope")

	w = doRequest(r, "POST", "/api/tracks/batch", "some-token", gin.H{
		"scope":             "show",
		"stream_type":       "video",
		"target_rating_key": "123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid stream_type")
}

func TestSingleUpdate_StreamTypeValidation(t *testing.T) {
	r, plexTV := setupRouter()
	defer plexTV.Close()

	w := doRequest(r, "PUT", "/api/tracks/audio", "some-token", gin.H{
		"rating_key":  "1",
		"part_id":     10,
		"stream_id":   100,
		"stream_type": "subtitle",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "stream_type must be 'audio'")

	w = doRequest(r, "PUT", "/api/tracks/subtitle", "some-token", gin.H{
		"rating_key":  "1",
		"part_id":     10,
		"stream_id":   100,
		"stream_type": "audio",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "stream_type must be 'subtitle'")
}

func TestPresetsCRUD(t *testing.T) {
	r, plexTV := setupRouter()
	defer plexTV.Close()

	// Create
	w := doRequest(r, "POST", "/api/presets", "", gin.H{
		"name":           "Japanese Audio",
		"stream_type":    "audio",
		"scope":          "show",
		"keyword_filter": "",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var created model.BatchPreset
	err := json.Unmarshal(w.Body.Bytes(), &created)
	assert.NoError(t, err)
	assert.NotZero(t, created.ID)

	// Missing name
	w = doRequest(r, "POST", "/api/presets", "", gin.H{"stream_type": "audio"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// List
	w = doRequest(r, "GET", "/api/presets", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Japanese Audio")

	// Delete
	path := fmt.Sprintf("/api/presets/%d", created.ID)
	w = doRequest(r, "DELETE", path, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, "DELETE", path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
