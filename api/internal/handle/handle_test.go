package handle

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"study-buddy/api/internal/llm"
	"study-buddy/api/internal/ocr"
	"study-buddy/api/internal/store"
	"study-buddy/api/internal/tutor"
)

type stubEngine struct {
	reply string
	err   error
	got   tutor.ChatInput
}

func (s *stubEngine) Name() string     { return "stub" }
func (s *stubEngine) GetModel() string { return "stub-1" }
func (s *stubEngine) Chat(_ context.Context, in tutor.ChatInput) (string, error) {
	s.got = in
	return s.reply, s.err
}

type stubOCR struct {
	text string
	opts ocr.Options
}

func (s *stubOCR) Name() string { return "stub-ocr" }
func (s *stubOCR) Recognize(_ context.Context, _ []byte, opts ocr.Options) (string, error) {
	s.opts = opts
	return s.text, nil
}

type memScans struct {
	mu    sync.Mutex
	items []store.Scan
}

func (m *memScans) Save(_ context.Context, s *store.Scan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, *s)
	return nil
}

func (m *memScans) Get(_ context.Context, id uuid.UUID) (*store.Scan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.items {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memScans) ListRecent(_ context.Context, email string, limit int) ([]store.Scan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Scan
	for i := len(m.items) - 1; i >= 0 && len(out) < store.ClampLimit(limit); i-- {
		if m.items[i].UserEmail == email {
			out = append(out, m.items[i])
		}
	}
	return out, nil
}

type memProfiles struct {
	byEmail map[string]string
}

func (m *memProfiles) Create(_ context.Context, p *store.Profile, password string) error {
	if len(password) > 72 {
		return store.ErrPasswordTooLong
	}
	if _, ok := m.byEmail[p.Email]; ok {
		return store.ErrDuplicate
	}
	m.byEmail[p.Email] = password
	return nil
}

func (m *memProfiles) Authenticate(_ context.Context, email, password string) (*store.Profile, error) {
	if pw, ok := m.byEmail[email]; !ok || pw != password {
		return nil, store.ErrInvalidCredentials
	}
	return &store.Profile{Email: email}, nil
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return errors.New("connection refused") }

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestChatMessage_Success(t *testing.T) {
	eng := &stubEngine{reply: "Photosynthesis makes food from light."}
	h := New(&llm.Engines{OpenAI: eng, Preferred: "gpt"}).Routes()

	rec := do(t, h, http.MethodPost, "/api/chat/message", ChatRequest{
		Message:  "What is photosynthesis?",
		Mode:     "exam",
		Language: "English",
		Context:  "Chapter 6",
		Class:    "10",
		Subject:  "Biology",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[ChatResponse](t, rec)
	if !resp.Success || resp.Response != eng.reply {
		t.Errorf("got %+v", resp)
	}
	if eng.got.Temperature != tutor.TemperatureExam || eng.got.MaxTokens != tutor.MaxTokens {
		t.Errorf("got input %+v", eng.got)
	}
	if eng.got.User != tutor.UserMessage("Chapter 6", "What is photosynthesis?") {
		t.Errorf("got user message %q", eng.got.User)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestChatMessage_Failures(t *testing.T) {
	failing := New(&llm.Engines{OpenAI: &stubEngine{err: errors.New("401")}}).Routes()
	cases := []struct {
		name string
		h    http.Handler
		body any
		code int
		err  string
	}{
		{"bad json", failing, "{", http.StatusBadRequest, "bad json"},
		{"empty message", failing, ChatRequest{Message: "  "}, http.StatusBadRequest, "message is required"},
		{"model error", failing, ChatRequest{Message: "hi"}, http.StatusInternalServerError, errAIFailure},
		{"no engine", New(nil).Routes(), ChatRequest{Message: "hi"}, http.StatusInternalServerError, errAIFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, tc.h, http.MethodPost, "/api/chat/message", tc.body)
			if rec.Code != tc.code {
				t.Fatalf("got status %d, want %d", rec.Code, tc.code)
			}
			resp := decode[ChatResponse](t, rec)
			if resp.Success || !strings.Contains(resp.Error, tc.err) {
				t.Errorf("got %+v, want error containing %q", resp, tc.err)
			}
		})
	}
}

func TestChatFallback(t *testing.T) {
	h := New(nil).Routes()
	rec := do(t, h, http.MethodPost, "/api/chat/fallback", ChatRequest{Message: "tell me about gravity"})
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	resp := decode[ChatResponse](t, rec)
	if !resp.Success || !strings.Contains(strings.ToLower(resp.Response), "gravity") {
		t.Errorf("got %+v", resp)
	}
}

func TestHealthEndpoints(t *testing.T) {
	h := New(nil).Routes()

	rec := do(t, h, http.MethodGet, "/api/test", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "running") {
		t.Errorf("got %d %s", rec.Code, rec.Body.String())
	}

	root := decode[map[string]string](t, do(t, h, http.MethodGet, "/", nil))
	if root["status"] != "OK" {
		t.Errorf("got %v", root)
	}
	if _, err := time.Parse(time.RFC3339, root["timestamp"]); err != nil {
		t.Errorf("bad timestamp: %v", err)
	}

	if rec := do(t, h, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("got %d", rec.Code)
	}
	down := New(nil, WithStorage(nil, nil, failingPinger{})).Routes()
	if rec := do(t, down, http.MethodGet, "/healthz", nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("got %d, want 503", rec.Code)
	}

	if rec := do(t, h, http.MethodGet, "/nope", nil); rec.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	rec := do(t, New(nil).Routes(), http.MethodOptions, "/api/chat/message", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("got %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing allow-origin header")
	}
}

func TestOCRAndScans(t *testing.T) {
	scans := &memScans{}
	recognizer := &stubOCR{text: "The water cycle has four stages."}
	h := New(nil,
		WithOCR(recognizer, []string{"en"}),
		WithStorage(scans, nil, nil),
	).Routes()

	img := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8, 0xFF})
	rec := do(t, h, http.MethodPost, "/api/ocr", OCRRequest{Image: img, UserEmail: "Asha@Example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[OCRResponse](t, rec)
	if !resp.Success || !resp.Saved || resp.Scan == nil || resp.Scan.Engine != "stub-ocr" {
		t.Fatalf("got %+v", resp)
	}
	if resp.Message != ocr.Summary("The water cycle has four stages.") {
		t.Errorf("got message %q", resp.Message)
	}
	if recognizer.opts.MIME != "image/jpeg" || len(recognizer.opts.Langs) != 1 || recognizer.opts.Langs[0] != "en" {
		t.Errorf("recognizer got %+v", recognizer.opts)
	}

	list := decode[scansResponse](t, do(t, h, http.MethodGet, "/api/scans?email=asha@example.com", nil))
	if len(list.Scans) != 1 || list.Scans[0].ID != resp.Scan.ID {
		t.Errorf("got %+v", list)
	}

	if rec := do(t, h, http.MethodGet, "/api/scans/"+resp.Scan.ID.String(), nil); rec.Code != http.StatusOK {
		t.Errorf("get scan: got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/scans/"+uuid.NewString(), nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing scan: got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/scans/not-a-uuid", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/scans?limit=x", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit: got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/ocr", OCRRequest{Image: "%%%"}); rec.Code != http.StatusBadRequest {
		t.Errorf("bad image: got %d", rec.Code)
	}
}

func TestStorageEndpointsWithoutStorage(t *testing.T) {
	h := New(nil).Routes()
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/scans"},
		{http.MethodGet, "/api/scans/" + uuid.NewString()},
		{http.MethodPost, "/api/users/register"},
		{http.MethodPost, "/api/users/login"},
		{http.MethodPost, "/api/ocr"},
	} {
		if rec := do(t, h, tc.method, tc.path, "{}"); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s: got %d, want 503", tc.method, tc.path, rec.Code)
		}
	}
}

func TestOCR_ImageType(t *testing.T) {
	recognizer := &stubOCR{text: "x"}
	h := New(nil, WithOCR(recognizer, nil)).Routes()
	raw := base64.StdEncoding.EncodeToString([]byte("not really an image"))

	cases := []struct {
		req  OCRRequest
		want string
	}{
		{OCRRequest{Image: "data:image/webp;base64," + raw}, "image/webp"},
		{OCRRequest{Image: "data:image/webp;base64," + raw, MIME: "image/png"}, "image/png"},
		{OCRRequest{Image: base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\n...."))}, "image/png"},
	}
	for _, c := range cases {
		if rec := do(t, h, http.MethodPost, "/api/ocr", c.req); rec.Code != http.StatusOK {
			t.Fatalf("got status %d: %s", rec.Code, rec.Body.String())
		}
		if recognizer.opts.MIME != c.want {
			t.Errorf("got %q, want %q", recognizer.opts.MIME, c.want)
		}
	}
}

func TestUsers(t *testing.T) {
	h := New(nil, WithStorage(nil, &memProfiles{byEmail: map[string]string{}}, nil)).Routes()
	reg := RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "pw", Class: "10", Board: "CBSE", Subject: "Maths"}

	if rec := do(t, h, http.MethodPost, "/api/users/register", reg); rec.Code != http.StatusCreated {
		t.Fatalf("register: got %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodPost, "/api/users/register", reg); rec.Code != http.StatusConflict {
		t.Errorf("duplicate: got %d, want 409", rec.Code)
	}

	long := reg
	long.Email, long.Password = "long@example.com", strings.Repeat("p", 73)
	tooLong := do(t, h, http.MethodPost, "/api/users/register", long)
	if tooLong.Code != http.StatusBadRequest {
		t.Fatalf("long password: got %d, want 400", tooLong.Code)
	}
	if e := decode[errorResponse](t, tooLong); e.Error != store.ErrPasswordTooLong.Error() {
		t.Errorf("got %q", e.Error)
	}

	rec := do(t, h, http.MethodPost, "/api/users/register", RegisterRequest{Name: "X", Email: "x@example.com"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing fields: got %d", rec.Code)
	}
	if e := decode[errorResponse](t, rec); e.Error != "missing fields: password, class, board, subject" {
		t.Errorf("got %q", e.Error)
	}

	if rec := do(t, h, http.MethodPost, "/api/users/login", LoginRequest{Email: reg.Email, Password: "pw"}); rec.Code != http.StatusOK {
		t.Errorf("login: got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/users/login", LoginRequest{Email: reg.Email, Password: "nope"}); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password: got %d, want 401", rec.Code)
	}
}
