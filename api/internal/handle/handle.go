package handle

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"study-buddy/api/internal/llm"
	"study-buddy/api/internal/ocr"
	"study-buddy/api/internal/store"
	"study-buddy/api/internal/tutor"
)

const (
	maxBodyBytes   = 4 << 20 // 4 MiB
	defaultTimeout = 70 * time.Second
)

type ScanStore interface {
	Save(ctx context.Context, s *store.Scan) error
	Get(ctx context.Context, id uuid.UUID) (*store.Scan, error)
	ListRecent(ctx context.Context, email string, limit int) ([]store.Scan, error)
}

type ProfileStore interface {
	Create(ctx context.Context, p *store.Profile, password string) error
	Authenticate(ctx context.Context, email, password string) (*store.Profile, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handle struct {
	engs     *llm.Engines
	selector *tutor.Selector
	fallback *tutor.Responder
	ocr      ocr.Recognizer
	ocrLangs []string
	scans    ScanStore
	profiles ProfileStore
	db       Pinger
	timeout  time.Duration
}

type Option func(*Handle)

func WithSelector(s *tutor.Selector) Option { return func(h *Handle) { h.selector = s } }
func WithResponder(r *tutor.Responder) Option { return func(h *Handle) { h.fallback = r } }
func WithTimeout(d time.Duration) Option {
	return func(h *Handle) {
		if d > 0 {
			h.timeout = d
		}
	}
}

func WithOCR(r ocr.Recognizer, langs []string) Option {
	return func(h *Handle) {
		h.ocr = r
		h.ocrLangs = langs
	}
}

// WithStorage enables the scan, profile and health endpoints that need the database.
func WithStorage(scans ScanStore, profiles ProfileStore, db Pinger) Option {
	return func(h *Handle) {
		h.scans = scans
		h.profiles = profiles
		h.db = db
	}
}

func New(engs *llm.Engines, opts ...Option) *Handle {
	h := &Handle{
		engs:     engs,
		selector: tutor.NewSelector(),
		fallback: tutor.NewResponder(),
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes registers every endpoint and wraps them with CORS and request logging.
func (h *Handle) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat/message", h.ChatMessage)
	mux.HandleFunc("POST /api/chat/fallback", h.ChatFallback)
	mux.HandleFunc("GET /api/test", h.Test)
	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("POST /api/ocr", h.OCR)
	mux.HandleFunc("GET /api/scans", h.ListScans)
	mux.HandleFunc("GET /api/scans/{id}", h.GetScan)
	mux.HandleFunc("POST /api/users/register", h.Register)
	mux.HandleFunc("POST /api/users/login", h.Login)
	return withRequestLog(withCORS(mux))
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Success: false, Error: msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}
