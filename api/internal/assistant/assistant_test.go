package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"study-buddy/api/internal/tutor"
)

type askerFunc func(ctx context.Context, q Question) (string, error)

func (f askerFunc) Ask(ctx context.Context, q Question) (string, error) { return f(ctx, q) }

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

func TestRemote_Success(t *testing.T) {
	var got remoteRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/message" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"success":true,"response":"Namaste!"}`))
	}))
	defer server.Close()

	reply, err := NewRemote(server.URL+"/api/", time.Second).Ask(context.Background(), Question{
		Message: "hello", Mode: tutor.ModeStudy, Class: "8",
	})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if reply != "Namaste!" {
		t.Errorf("got %q", reply)
	}
	if got.Mode != "study" || got.Class != "8" {
		t.Errorf("got request %+v", got)
	}
}

func TestRemote_Failures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"success false": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"success":false,"error":"Failed to get AI response."}`))
		},
		"not json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>bad gateway</html>`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(h)
			defer server.Close()
			_, err := NewRemote(server.URL, time.Second).Ask(context.Background(), Question{Message: "x"})
			if !errors.Is(err, ErrUnavailable) {
				t.Fatalf("got %v, want ErrUnavailable", err)
			}
		})
	}

	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	if _, err := NewRemote(server.URL, time.Second).Ask(context.Background(), Question{}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("transport failure: got %v, want ErrUnavailable", err)
	}
}

func TestDirect(t *testing.T) {
	eng := &stubEngine{reply: "Sure!"}
	reply, err := NewDirect(eng, nil).Ask(context.Background(), Question{Message: "hi", Mode: tutor.ModeExam, Context: "ctx"})
	if err != nil || reply != "Sure!" {
		t.Fatalf("got %q, %v", reply, err)
	}
	if eng.got.Temperature != tutor.TemperatureExam || eng.got.User != tutor.UserMessage("ctx", "hi") {
		t.Errorf("got input %+v", eng.got)
	}

	if _, err := NewDirect(&stubEngine{err: errors.New("quota")}, nil).Ask(context.Background(), Question{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
	if _, err := NewDirect(nil, nil).Ask(context.Background(), Question{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}

func TestReply_UsesPrimary(t *testing.T) {
	a := New(askerFunc(func(context.Context, Question) (string, error) { return "from model", nil }))
	if got := a.Reply(context.Background(), Question{Message: "hi"}); got != "from model" {
		t.Errorf("got %q", got)
	}
}

func TestReply_FallsBack(t *testing.T) {
	failing := askerFunc(func(context.Context, Question) (string, error) { return "", ErrUnavailable })
	empty := askerFunc(func(context.Context, Question) (string, error) { return "  ", nil })
	q := Question{Message: "explain photosynthesis", Mode: tutor.ModeStudy}
	want := tutor.Respond(tutor.ResponseQuery{Message: q.Message, Mode: q.Mode})

	for name, primary := range map[string]Asker{"error": failing, "empty": empty, "none": nil} {
		t.Run(name, func(t *testing.T) {
			got := New(primary, WithDelay(0)).Reply(context.Background(), q)
			if got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		})
	}
}

func TestReply_DelayHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	got := New(nil, WithDelay(time.Hour)).Reply(ctx, Question{Message: "hello"})
	if time.Since(start) > time.Second {
		t.Fatal("Reply waited despite a cancelled context")
	}
	if !strings.Contains(got, "Hello") {
		t.Errorf("got %q", got)
	}
}

func TestChain(t *testing.T) {
	var calls []string
	asker := func(name, reply string, err error) Asker {
		return askerFunc(func(context.Context, Question) (string, error) {
			calls = append(calls, name)
			return reply, err
		})
	}

	got, err := Chain{asker("remote", "", ErrUnavailable), nil, asker("engine", "from engine", nil), asker("never", "x", nil)}.
		Ask(context.Background(), Question{Message: "hi"})
	if err != nil || got != "from engine" {
		t.Fatalf("got %q, %v", got, err)
	}
	if strings.Join(calls, ",") != "remote,engine" {
		t.Errorf("got calls %v", calls)
	}

	_, err = Chain{asker("a", "", errors.New("down")), asker("b", " ", nil)}.Ask(context.Background(), Question{})
	if !errors.Is(err, ErrUnavailable) || !strings.Contains(err.Error(), "down") {
		t.Errorf("got %v", err)
	}
	if _, err := (Chain{}).Ask(context.Background(), Question{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("empty chain: got %v", err)
	}
}
