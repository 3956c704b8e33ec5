package plex

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient() *Client {
	return NewClient("test-client-id", 5*time.Second, 2*time.Second)
}

func TestCreatePin(t *testing.T) {
	var gotClientID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/pins" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("strong") != "true" {
			t.Error("expected strong=true query param")
		}
		gotClientID = r.Header.Get("X-Plex-Client-Identifier")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 12345, "code": "ABCD", "expiresIn": 900}`))
	}))
	defer srv.Close()

	c := testClient()
	c.TVURL = srv.URL

	pin, err := c.CreatePin()
	if err != nil {
		t.Fatalf("CreatePin failed: %v", err)
	}
	if pin.ID != 12345 || pin.Code != "ABCD" || pin.ExpiresIn != 900 {
		t.Errorf("unexpected pin: %+v", pin)
	}
	if gotClientID != "test-client-id" {
		t.Errorf("client identifier header not sent, got %q", gotClientID)
	}
}

func TestCheckPin_Authorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pins/12345" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"id": 12345, "code": "ABCD", "authToken": "the-token"}`))
	}))
	defer srv.Close()

	c := testClient()
	c.TVURL = srv.URL

	pin, err := c.CheckPin(12345, "ABCD")
	if err != nil {
		t.Fatalf("CheckPin failed: %v", err)
	}
	if pin.AuthToken != "the-token" {
		t.Errorf("expected auth token, got %q", pin.AuthToken)
	}
}

func TestGetUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Plex-Token") != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"id": 7, "uuid": "u-7", "username": "alice", "title": "Alice"}`))
	}))
	defer srv.Close()

	c := testClient()
	c.TVURL = srv.URL

	user, err := c.GetUser("tok")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if user.ID != 7 || user.Username != "alice" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestGetUser_InvalidToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient()
	c.TVURL = srv.URL

	_, err := c.GetUser("bad")
	if err == nil {
		t.Fatal("expected an error for a rejected token")
	}
	if !IsAuthError(err) {
		t.Errorf("expected AuthError, got %T: %v", err, err)
	}
}

func TestGetMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/library/metadata/42" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("checkFiles") != "1" || q.Get("includeElements") != "Stream" {
			t.Errorf("missing stream query params: %v", q)
		}
		w.Write([]byte(`{
			"MediaContainer": {
				"size": 1,
				"Metadata": [{
					"ratingKey": "42",
					"type": "episode",
					"title": "Pilot",
					"index": 1,
					"parentIndex": 1,
					"Media": [{
						"id": 1,
						"Part": [{
							"id": 10,
							"Stream": [
								{"id": 100, "streamType": 2, "language": "Japanese", "languageCode": "jpn", "selected": true},
								{"id": 101, "streamType": 3, "language": "English", "languageCode": "eng"}
							]
						}]
					}]
				}]
			}
		}`))
	}))
	defer srv.Close()

	c := testClient()
	item, err := c.GetMetadata(srv.URL, "tok", "42")
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if item == nil {
		t.Fatal("expected an item")
	}
	if item.DisplayName() != "S01E01 - Pilot" {
		t.Errorf("unexpected display name: %s", item.DisplayName())
	}

	part := item.FirstPart()
	if part == nil || part.ID != 10 {
		t.Fatalf("unexpected part: %+v", part)
	}
	if n := len(part.AudioStreams()); n != 1 {
		t.Errorf("expected 1 audio stream, got %d", n)
	}
	if n := len(part.SubtitleStreams()); n != 1 {
		t.Errorf("expected 1 subtitle stream, got %d", n)
	}
	if !part.AudioStreams()[0].Selected {
		t.Error("selected flag lost in decoding")
	}
}

func TestGetMetadata_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient()
	item, err := c.GetMetadata(srv.URL, "tok", "999")
	if err != nil {
		t.Fatalf("404 should not be an error, got: %v", err)
	}
	if item != nil {
		t.Errorf("expected nil item for 404, got %+v", item)
	}
}

func TestGetMetadata_EmptyContainer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"MediaContainer": {"size": 0}}`))
	}))
	defer srv.Close()

	c := testClient()
	item, err := c.GetMetadata(srv.URL, "tok", "999")
	if err != nil || item != nil {
		t.Errorf("expected (nil, nil) for an empty container, got (%v, %v)", item, err)
	}
}

func TestSetSubtitleStream_Params(t *testing.T) {
	var gotQuery map[string][]string
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
	}))
	defer srv.Close()

	c := testClient()
	if err := c.SetSubtitleStream(srv.URL, "tok", 10, 0); err != nil {
		t.Fatalf("SetSubtitleStream failed: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/library/parts/10" {
		t.Errorf("unexpected request: %s %s", gotMethod, gotPath)
	}
	if got := gotQuery["subtitleStreamID"]; len(got) != 1 || got[0] != "0" {
		t.Errorf("expected subtitleStreamID=0, got %v", gotQuery)
	}
	if got := gotQuery["allParts"]; len(got) != 1 || got[0] != "1" {
		t.Errorf("expected allParts=1, got %v", gotQuery)
	}
}

func TestSetAudioStream_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient()
	err := c.SetAudioStream(srv.URL, "tok", 10, 100)
	if err == nil {
		t.Fatal("expected an error for HTTP 500")
	}
	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("expected ClientError, got %T", err)
	}
	if clientErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", clientErr.StatusCode)
	}
}

func TestConnectionErrorOnUnreachableServer(t *testing.T) {
	c := NewClient("test", 200*time.Millisecond, 100*time.Millisecond)

	// Port 1 is essentially guaranteed to refuse connections.
	_, err := c.GetLibraries("http://127.0.0.1:1", "tok")
	if err == nil {
		t.Fatal("expected a connection error")
	}
	if !IsConnectionError(err) {
		t.Errorf("expected ConnectionError, got %T: %v", err, err)
	}
}
