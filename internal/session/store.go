package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jesusq18/DroneShow-Demo/internal/show"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrVideoRunning = errors.New("a video generation is already running for this session")
	ErrNoVideo      = errors.New("no video generation is running for this session")
)

type VideoState string

const (
	VideoIdle      VideoState = "idle"
	VideoSubmitted VideoState = "submitted"
	VideoPolling   VideoState = "polling"
	VideoDone      VideoState = "done"
	VideoFailed    VideoState = "failed"
	VideoTimedOut  VideoState = "timed_out"
	VideoCanceled  VideoState = "canceled"
)

// Version is one entry in a session's append-only image history. Index 0 is
// always the unedited original.
type Version struct {
	ID          string    `json:"id"`
	Data        string    `json:"data"`
	MimeType    string    `json:"mime_type"`
	Instruction string    `json:"instruction,omitempty"`
	Original    bool      `json:"original"`
	CreatedAt   time.Time `json:"created_at"`
}

type VideoJob struct {
	State  VideoState       `json:"state"`
	Config show.VideoConfig `json:"config,omitempty"`
	URI    string           `json:"uri,omitempty"`
	Error  string           `json:"error,omitempty"`
}

type Session struct {
	ID               string       `json:"id"`
	Request          show.Request `json:"request"`
	ImageDescription string       `json:"-"`
	Versions         []Version    `json:"versions"`
	Cursor           int          `json:"cursor"`
	Video            VideoJob     `json:"video"`
	CreatedAt        time.Time    `json:"created_at"`
	LastActivity     time.Time    `json:"-"`
}

// Current returns the version the cursor points at.
func (s Session) Current() Version {
	return s.Versions[s.Cursor]
}

type stored struct {
	session Session
	// generation fences async video results: a poll that finishes after a
	// cancel or reset carries a stale generation and is dropped.
	generation  uint64
	cancelVideo context.CancelFunc
}

type Options struct {
	TTL time.Duration
}

type Store struct {
	mu  sync.Mutex
	m   map[string]*stored
	ttl time.Duration
}

func NewStore(opts Options) *Store {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Store{
		m:   make(map[string]*stored),
		ttl: ttl,
	}
}

// Create opens a session around a submitted request and its freshly
// generated original image.
func (s *Store) Create(req show.Request, imageDescription, data, mimeType string) Session {
	now := time.Now()
	sess := Session{
		ID:               uuid.NewString(),
		Request:          req,
		ImageDescription: imageDescription,
		Versions: []Version{{
			ID:        uuid.NewString(),
			Data:      data,
			MimeType:  mimeType,
			Original:  true,
			CreatedAt: now,
		}},
		Cursor:       0,
		Video:        VideoJob{State: VideoIdle},
		CreatedAt:    now,
		LastActivity: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sess.ID] = &stored{session: sess}
	return snapshot(sess)
}

func (s *Store) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.m[id]
	if !ok {
		return Session{}, false
	}
	st.session.LastActivity = time.Now()
	return snapshot(st.session), true
}

// AppendVersion records an edited image and moves the cursor onto it.
func (s *Store) AppendVersion(id, data, mimeType, instruction string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.m[id]
	if !ok {
		return Session{}, ErrNotFound
	}

	st.session.Versions = append(st.session.Versions, Version{
		ID:          uuid.NewString(),
		Data:        data,
		MimeType:    mimeType,
		Instruction: instruction,
		Original:    false,
		CreatedAt:   time.Now(),
	})
	st.session.Cursor = len(st.session.Versions) - 1
	st.session.LastActivity = time.Now()
	return snapshot(st.session), nil
}

// Navigate moves the history cursor; out-of-range moves clamp at both ends
// rather than wrapping.
func (s *Store) Navigate(id, action string, index int) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.m[id]
	if !ok {
		return Session{}, ErrNotFound
	}

	cursor := st.session.Cursor
	switch action {
	case "prev":
		cursor--
	case "next":
		cursor++
	case "jump":
		cursor = index
	default:
		return Session{}, errors.New("unknown history action: " + action)
	}

	if cursor < 0 {
		cursor = 0
	}
	if last := len(st.session.Versions) - 1; cursor > last {
		cursor = last
	}

	st.session.Cursor = cursor
	st.session.LastActivity = time.Now()
	return snapshot(st.session), nil
}

// StartVideo transitions the session into a submitted video job and returns
// the generation token the async worker must present to report its outcome.
func (s *Store) StartVideo(id string, cfg show.VideoConfig, cancel context.CancelFunc) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.m[id]
	if !ok {
		return 0, ErrNotFound
	}
	if st.session.Video.State == VideoSubmitted || st.session.Video.State == VideoPolling {
		return 0, ErrVideoRunning
	}

	st.generation++
	st.cancelVideo = cancel
	st.session.Video = VideoJob{State: VideoSubmitted, Config: cfg}
	st.session.LastActivity = time.Now()
	return st.generation, nil
}

func (s *Store) MarkPolling(id string, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.m[id]
	if !ok || st.generation != gen {
		return
	}
	if st.session.Video.State == VideoSubmitted {
		st.session.Video.State = VideoPolling
	}
}

func (s *Store) CompleteVideo(id string, gen uint64, uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.m[id]
	if !ok || st.generation != gen {
		return
	}
	st.cancelVideo = nil
	st.session.Video.State = VideoDone
	st.session.Video.URI = uri
	st.session.Video.Error = ""
	st.session.LastActivity = time.Now()
}

func (s *Store) FailVideo(id string, gen uint64, state VideoState, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.m[id]
	if !ok || st.generation != gen {
		return
	}
	st.cancelVideo = nil
	st.session.Video.State = state
	st.session.Video.Error = message
	st.session.LastActivity = time.Now()
}

// CancelVideo stops a running job. Bumping the generation fences out the
// worker's eventual failure report.
func (s *Store) CancelVideo(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.m[id]
	if !ok {
		return ErrNotFound
	}
	if st.session.Video.State != VideoSubmitted && st.session.Video.State != VideoPolling {
		return ErrNoVideo
	}

	if st.cancelVideo != nil {
		st.cancelVideo()
		st.cancelVideo = nil
	}
	st.generation++
	st.session.Video.State = VideoCanceled
	st.session.Video.Error = ""
	st.session.LastActivity = time.Now()
	return nil
}

// Delete resets the session: any outstanding poll is canceled and can never
// mutate state again.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.m[id]
	if !ok {
		return
	}
	if st.cancelVideo != nil {
		st.cancelVideo()
	}
	st.generation++
	delete(s.m, id)
}

// CleanupExpired drops sessions idle longer than the TTL and returns how
// many were removed.
func (s *Store) CleanupExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, st := range s.m {
		if now.Sub(st.session.LastActivity) < s.ttl {
			continue
		}
		if st.cancelVideo != nil {
			st.cancelVideo()
		}
		st.generation++
		delete(s.m, id)
		removed++
	}
	return removed
}

func snapshot(sess Session) Session {
	out := sess
	out.Versions = make([]Version, len(sess.Versions))
	copy(out.Versions, sess.Versions)
	return out
}
