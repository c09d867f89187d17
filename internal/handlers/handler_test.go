package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"

	"github.com/jesusq18/DroneShow-Demo/internal/gemini"
	"github.com/jesusq18/DroneShow-Demo/internal/project"
	"github.com/jesusq18/DroneShow-Demo/internal/session"
)

type fakeUpstream struct {
	server *httptest.Server
	calls  atomic.Int64
}

// newFakeUpstream stands in for the generative API: describe and edit via
// generateContent, stills via predict, video via predictLongRunning plus an
// operation poll that reports done immediately.
func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.Contains(r.URL.Path, "gemini-2.5-flash-image:generateContent"):
			w.Write([]byte(`{"candidates":[{"content":{"parts":[{"inlineData":{"data":"b64-edited","mimeType":"image/png"}}]}}]}`))
		case strings.Contains(r.URL.Path, ":generateContent"):
			w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"a crescent beach at dusk"}]}}]}`))
		case strings.Contains(r.URL.Path, ":predictLongRunning"):
			w.Write([]byte(`{"name":"operations/vid-123"}`))
		case strings.Contains(r.URL.Path, ":predict"):
			w.Write([]byte(`{"predictions":[{"bytesBase64Encoded":"b64-show","mimeType":"image/jpeg"}]}`))
		case strings.Contains(r.URL.Path, "operations/"):
			w.Write([]byte(`{"name":"operations/vid-123","done":true,"response":{"generateVideoResponse":{"generatedSamples":[{"video":{"uri":"` + f.server.URL + `/files/vid-123"}}]}}}`))
		case strings.Contains(r.URL.Path, "/files/"):
			w.Header().Set("Content-Type", "video/mp4")
			w.Write([]byte("mp4-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.server.Close)
	return f
}

func newTestRouter(t *testing.T, upstream *fakeUpstream) (*gin.Engine, *session.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gem := gemini.New(gemini.Options{
		APIKey:          "test-key",
		BaseURL:         upstream.server.URL,
		HTTPClient:      upstream.server.Client(),
		PollInterval:    time.Millisecond,
		MaxPollAttempts: 5,
	})

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	sessions := session.NewStore(session.Options{TTL: time.Hour})
	handler := New(Options{
		Gemini:   gem,
		Sessions: sessions,
		Projects: project.NewStore(project.Options{Client: rdb}),
		BaseCtx:  context.Background(),
		VideoSem: semaphore.NewWeighted(1),
	})

	router := gin.New()
	handler.Register(router)
	return router, sessions
}

func createShow(t *testing.T, router *gin.Engine) session.Session {
	t.Helper()
	form := url.Values{}
	form.Set("client_name", "Rivera Wedding")
	form.Set("event_type", "wedding")
	form.Set("location", "Beach Resort")
	form.Set("drone_count", "150")
	form.Set("elements", "a heart and two interlocking rings")

	req := httptest.NewRequest(http.MethodPost, "/api/shows", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sess session.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	return sess
}

func TestOptionsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, newFakeUpstream(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/options", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body["event_types"], 6)
	require.NotEmpty(t, body["video_styles"])
	require.NotEmpty(t, body["camera_movements"])
}

func TestCreateShowWithoutReferenceImage(t *testing.T) {
	upstream := newFakeUpstream(t)
	router, _ := newTestRouter(t, upstream)

	sess := createShow(t, router)

	require.NotEmpty(t, sess.ID)
	require.Len(t, sess.Versions, 1)
	require.True(t, sess.Versions[0].Original)
	require.Equal(t, "b64-show", sess.Versions[0].Data)
	require.Equal(t, session.VideoIdle, sess.Video.State)

	// Only the still generation hit the upstream.
	require.EqualValues(t, 1, upstream.calls.Load())
}

func TestCreateShowWithReferenceImage(t *testing.T) {
	upstream := newFakeUpstream(t)
	router, _ := newTestRouter(t, upstream)

	jpeg := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x00}, 64)...)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("client_name", "Rivera Wedding"))
	require.NoError(t, mw.WriteField("event_type", "wedding"))
	require.NoError(t, mw.WriteField("elements", "a heart and two interlocking rings"))
	fw, err := mw.CreateFormFile("image", "venue.jpg")
	require.NoError(t, err)
	_, err = fw.Write(jpeg)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/shows", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	// Describe plus generate.
	require.EqualValues(t, 2, upstream.calls.Load())
}

func TestCreateShowRejectsOversizedUpload(t *testing.T) {
	upstream := newFakeUpstream(t)
	router, _ := newTestRouter(t, upstream)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "venue.jpg")
	require.NoError(t, err)
	_, err = fw.Write(bytes.Repeat([]byte{0xAB}, maxUploadBytes+1))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/shows", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "4MB")
	// The upload never reached the remote API.
	require.EqualValues(t, 0, upstream.calls.Load())
}

func TestEditAppendsVersion(t *testing.T) {
	router, _ := newTestRouter(t, newFakeUpstream(t))
	sess := createShow(t, router)

	body := strings.NewReader(`{"instruction":"make the rings golden"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/shows/"+sess.ID+"/edits", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated session.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Len(t, updated.Versions, 2)
	require.Equal(t, 1, updated.Cursor)
	require.Equal(t, "make the rings golden", updated.Versions[1].Instruction)
}

func TestHistoryNavigation(t *testing.T) {
	router, _ := newTestRouter(t, newFakeUpstream(t))
	sess := createShow(t, router)

	edit := httptest.NewRequest(http.MethodPost, "/api/shows/"+sess.ID+"/edits",
		strings.NewReader(`{"instruction":"add a moon"}`))
	edit.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, edit)
	require.Equal(t, http.StatusOK, rec.Code)

	nav := httptest.NewRequest(http.MethodPost, "/api/shows/"+sess.ID+"/history",
		strings.NewReader(`{"action":"prev"}`))
	nav.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, nav)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated session.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, 0, updated.Cursor)

	bad := httptest.NewRequest(http.MethodPost, "/api/shows/"+sess.ID+"/history",
		strings.NewReader(`{"action":"sideways"}`))
	bad.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, bad)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVideoLifecycleOverHTTP(t *testing.T) {
	router, sessions := newTestRouter(t, newFakeUpstream(t))
	sess := createShow(t, router)

	req := httptest.NewRequest(http.MethodPost, "/api/shows/"+sess.ID+"/video", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	require.Eventually(t, func() bool {
		got, ok := sessions.Get(sess.ID)
		return ok && got.Video.State == session.VideoDone
	}, 2*time.Second, 5*time.Millisecond)

	got, _ := sessions.Get(sess.ID)
	require.Contains(t, got.Video.URI, "/files/vid-123")
	require.Equal(t, "16:9", got.Video.Config.AspectRatio)
}

func TestCancelVideoWithoutJob(t *testing.T) {
	router, _ := newTestRouter(t, newFakeUpstream(t))
	sess := createShow(t, router)

	req := httptest.NewRequest(http.MethodDelete, "/api/shows/"+sess.ID+"/video", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestDownloadImage(t *testing.T) {
	router, _ := newTestRouter(t, newFakeUpstream(t))
	sess := createShow(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/shows/"+sess.ID+"/image", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "rivera-wedding-drone-show.jpg")
}

func TestSaveAndListProjects(t *testing.T) {
	router, _ := newTestRouter(t, newFakeUpstream(t))
	sess := createShow(t, router)

	save := httptest.NewRequest(http.MethodPost, "/api/shows/"+sess.ID+"/save", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, save)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	list := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, list)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Projects []project.Record `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Projects, 1)
	require.Equal(t, "Rivera Wedding", body.Projects[0].Request.ClientName)
	require.Equal(t, "b64-show", body.Projects[0].ImageData)
}

func TestShowNotFound(t *testing.T) {
	router, _ := newTestRouter(t, newFakeUpstream(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/shows/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
