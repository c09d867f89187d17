package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/jesusq18/DroneShow-Demo/internal/gemini"
	"github.com/jesusq18/DroneShow-Demo/internal/project"
	"github.com/jesusq18/DroneShow-Demo/internal/session"
	"github.com/jesusq18/DroneShow-Demo/internal/show"
)

// Reference uploads above this size are rejected before any remote call.
const maxUploadBytes = 4 << 20

type Options struct {
	Gemini   *gemini.Client
	Sessions *session.Store
	Projects *project.Store
	Logger   *slog.Logger

	// BaseCtx owns background video jobs so they outlive the HTTP request
	// but stop on shutdown.
	BaseCtx  context.Context
	VideoSem *semaphore.Weighted
}

type Handler struct {
	gem      *gemini.Client
	sessions *session.Store
	projects *project.Store
	logger   *slog.Logger
	baseCtx  context.Context
	videoSem *semaphore.Weighted
}

type apiError struct {
	Error string `json:"error"`
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	baseCtx := opts.BaseCtx
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	videoSem := opts.VideoSem
	if videoSem == nil {
		videoSem = semaphore.NewWeighted(1)
	}

	return &Handler{
		gem:      opts.Gemini,
		sessions: opts.Sessions,
		projects: opts.Projects,
		logger:   logger,
		baseCtx:  baseCtx,
		videoSem: videoSem,
	}
}

func (h *Handler) Register(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/options", h.handleOptions)
	api.POST("/shows", h.handleCreateShow)
	api.GET("/shows/:id", h.handleGetShow)
	api.DELETE("/shows/:id", h.handleDeleteShow)
	api.POST("/shows/:id/edits", h.handleEdit)
	api.POST("/shows/:id/history", h.handleHistory)
	api.POST("/shows/:id/video", h.handleStartVideo)
	api.DELETE("/shows/:id/video", h.handleCancelVideo)
	api.GET("/shows/:id/image", h.handleDownloadImage)
	api.POST("/shows/:id/save", h.handleSave)
	api.GET("/projects", h.handleListProjects)
}

func (h *Handler) handleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"event_types":      show.EventTypes(),
		"music_styles":     show.MusicStyles(),
		"video_styles":     show.VideoStyles(),
		"speeds":           show.Speeds(),
		"effects_levels":   show.EffectsLevels(),
		"camera_movements": show.CameraMovements(),
	})
}

func (h *Handler) handleCreateShow(c *gin.Context) {
	req := show.Request{
		ClientName:            strings.TrimSpace(c.PostForm("client_name")),
		EventType:             show.ParseEventType(c.PostForm("event_type")),
		Location:              strings.TrimSpace(c.PostForm("location")),
		CountryCity:           strings.TrimSpace(c.PostForm("country_city")),
		DroneCount:            strings.TrimSpace(c.PostForm("drone_count")),
		Elements:              strings.TrimSpace(c.PostForm("elements")),
		Notes:                 strings.TrimSpace(c.PostForm("notes")),
		MusicStyle:            show.ParseMusicStyle(c.PostForm("music_style")),
		HasTransition:         parseBool(c.PostForm("has_transition")),
		TransitionElements:    strings.TrimSpace(c.PostForm("transition_elements")),
		TransitionDescription: strings.TrimSpace(c.PostForm("transition_description")),
	}

	var imageDescription string
	if file, header, err := c.Request.FormFile("image"); err == nil {
		defer file.Close()

		if header.Size > maxUploadBytes {
			c.JSON(http.StatusBadRequest, apiError{Error: "the file is too large, the limit is 4MB"})
			return
		}

		imgBytes, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, apiError{Error: "failed to read the uploaded image"})
			return
		}
		if int64(len(imgBytes)) > maxUploadBytes {
			c.JSON(http.StatusBadRequest, apiError{Error: "the file is too large, the limit is 4MB"})
			return
		}

		mimeType := detectImageMime(imgBytes, header.Header.Get("Content-Type"))
		if mimeType != "image/jpeg" && mimeType != "image/png" {
			c.JSON(http.StatusBadRequest, apiError{Error: "only jpeg and png reference images are supported"})
			return
		}

		imageDescription, err = h.gem.DescribeImage(c.Request.Context(), base64.StdEncoding.EncodeToString(imgBytes), mimeType)
		if err != nil {
			c.JSON(http.StatusBadGateway, apiError{Error: err.Error()})
			return
		}
	}

	prompt := show.ComposeImagePrompt(req, imageDescription)
	img, err := h.gem.GenerateImage(c.Request.Context(), prompt)
	if err != nil {
		c.JSON(http.StatusBadGateway, apiError{Error: err.Error()})
		return
	}

	sess := h.sessions.Create(req, imageDescription, img.Data, img.MimeType)
	c.JSON(http.StatusCreated, sess)
}

func (h *Handler) handleGetShow(c *gin.Context) {
	sess, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, apiError{Error: "session not found"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) handleDeleteShow(c *gin.Context) {
	h.sessions.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *Handler) handleEdit(c *gin.Context) {
	var body struct {
		Instruction string `json:"instruction"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, apiError{Error: "invalid request body"})
		return
	}

	instruction := show.ComposeEditPrompt(body.Instruction)
	if instruction == "" {
		c.JSON(http.StatusBadRequest, apiError{Error: "edit instruction is empty"})
		return
	}

	sess, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, apiError{Error: "session not found"})
		return
	}

	current := sess.Current()
	edited, err := h.gem.EditImage(c.Request.Context(), current.Data, current.MimeType, instruction)
	if err != nil {
		c.JSON(http.StatusBadGateway, apiError{Error: err.Error()})
		return
	}

	updated, err := h.sessions.AppendVersion(sess.ID, edited.Data, edited.MimeType, instruction)
	if err != nil {
		c.JSON(http.StatusNotFound, apiError{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) handleHistory(c *gin.Context) {
	var body struct {
		Action string `json:"action"`
		Index  int    `json:"index"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, apiError{Error: "invalid request body"})
		return
	}

	sess, err := h.sessions.Navigate(c.Param("id"), body.Action, body.Index)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			c.JSON(http.StatusNotFound, apiError{Error: err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) handleStartVideo(c *gin.Context) {
	var override show.ConfigOverride
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&override); err != nil {
			c.JSON(http.StatusBadRequest, apiError{Error: "invalid request body"})
			return
		}
	}

	sess, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, apiError{Error: "session not found"})
		return
	}

	cfg := show.ResolveVideoConfig(sess.Request.EventType, override)

	var transition *show.Transition
	if sess.Request.HasTransition {
		transition = &show.Transition{
			SecondScene: sess.Request.TransitionElements,
			Description: sess.Request.TransitionDescription,
		}
	}
	prompt := show.ComposeVideoPrompt(sess.Request, cfg, transition)

	jobCtx, cancel := context.WithCancel(h.baseCtx)
	gen, err := h.sessions.StartVideo(sess.ID, cfg, cancel)
	if err != nil {
		cancel()
		if errors.Is(err, session.ErrVideoRunning) {
			c.JSON(http.StatusConflict, apiError{Error: err.Error()})
			return
		}
		c.JSON(http.StatusNotFound, apiError{Error: err.Error()})
		return
	}

	current := sess.Current()
	go h.runVideoJob(jobCtx, cancel, sess.ID, gen, gemini.Image{Data: current.Data, MimeType: current.MimeType}, prompt, cfg)

	c.JSON(http.StatusAccepted, gin.H{"state": session.VideoSubmitted, "config": cfg})
}

func (h *Handler) runVideoJob(ctx context.Context, cancel context.CancelFunc, sessionID string, gen uint64, img gemini.Image, prompt string, cfg show.VideoConfig) {
	defer cancel()

	if err := h.videoSem.Acquire(ctx, 1); err != nil {
		h.sessions.FailVideo(sessionID, gen, session.VideoCanceled, "")
		return
	}
	defer h.videoSem.Release(1)

	operation, err := h.gem.SubmitVideo(ctx, img, prompt, show.NegativePrompt(), gemini.VideoConfig{
		AspectRatio:     cfg.AspectRatio,
		Resolution:      cfg.Resolution,
		DurationSeconds: cfg.DurationSeconds,
	})
	if err != nil {
		if ctx.Err() != nil {
			h.sessions.FailVideo(sessionID, gen, session.VideoCanceled, "")
			return
		}
		h.logger.Error("video submission failed", "session", sessionID, "err", err)
		h.sessions.FailVideo(sessionID, gen, session.VideoFailed, err.Error())
		return
	}

	h.sessions.MarkPolling(sessionID, gen)

	uri, err := h.gem.WaitVideo(ctx, operation)
	switch {
	case err == nil:
		h.sessions.CompleteVideo(sessionID, gen, uri)
	case ctx.Err() != nil:
		h.sessions.FailVideo(sessionID, gen, session.VideoCanceled, "")
	case errors.Is(err, gemini.ErrVideoTimeout):
		h.sessions.FailVideo(sessionID, gen, session.VideoTimedOut, err.Error())
	default:
		h.logger.Error("video generation failed", "session", sessionID, "err", err)
		h.sessions.FailVideo(sessionID, gen, session.VideoFailed, err.Error())
	}
}

func (h *Handler) handleCancelVideo(c *gin.Context) {
	err := h.sessions.CancelVideo(c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"state": session.VideoCanceled})
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, apiError{Error: err.Error()})
	default:
		c.JSON(http.StatusConflict, apiError{Error: err.Error()})
	}
}

func (h *Handler) handleDownloadImage(c *gin.Context) {
	sess, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, apiError{Error: "session not found"})
		return
	}

	current := sess.Current()
	raw, err := base64.StdEncoding.DecodeString(current.Data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apiError{Error: "stored image is not valid base64"})
		return
	}

	filename := downloadName(sess.Request.ClientName, current.MimeType)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, current.MimeType, raw)
}

func (h *Handler) handleSave(c *gin.Context) {
	sess, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, apiError{Error: "session not found"})
		return
	}

	current := sess.Current()
	rec := project.Record{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Request:   sess.Request,
		ImageData: current.Data,
		ImageMime: current.MimeType,
	}

	if sess.Video.State == session.VideoDone && sess.Video.URI != "" {
		rec.VideoURI = sess.Video.URI
		if data, mimeType, err := h.gem.DownloadVideo(c.Request.Context(), sess.Video.URI); err == nil {
			rec.VideoData = base64.StdEncoding.EncodeToString(data)
			rec.VideoMime = mimeType
		} else {
			h.logger.Warn("video download failed, saving locator only", "session", sess.ID, "err", err)
		}
	}

	persisted, err := h.projects.Save(c.Request.Context(), rec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apiError{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, persisted)
}

func (h *Handler) handleListProjects(c *gin.Context) {
	records, err := h.projects.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apiError{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": records})
}

func detectImageMime(data []byte, declared string) string {
	mimeType := strings.TrimSpace(declared)
	if strings.Contains(mimeType, ";") {
		mimeType = strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
		if strings.Contains(mimeType, ";") {
			mimeType = strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
		}
	}
	return mimeType
}

func parseBool(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func downloadName(clientName, mimeType string) string {
	slug := slugify(clientName)
	if slug == "" {
		slug = "drone-show"
	} else {
		slug += "-drone-show"
	}

	ext := ".jpg"
	switch mimeType {
	case "image/png":
		ext = ".png"
	case "video/mp4":
		ext = ".mp4"
	}
	return slug + ext
}

func slugify(value string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
