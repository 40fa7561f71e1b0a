package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"study-buddy/api/internal/tutor"
)

func TestFirstText(t *testing.T) {
	if got := FirstText(nil); got != "" {
		t.Fatalf("nil response: got %q", got)
	}
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: nil},
			{Content: &genai.Content{Parts: []genai.Part{
				genai.Blob{MIMEType: "image/png"},
				genai.Text("Gravity pulls things down."),
			}}},
		},
	}
	if got := FirstText(resp); got != "Gravity pulls things down." {
		t.Fatalf("got %q", got)
	}
}

func TestEngine_Defaults(t *testing.T) {
	e := New(" key ", "")
	if e.Name() != "gemini" || e.GetModel() != "gemini-2.5-flash" || e.APIKey != "key" {
		t.Fatalf("unexpected engine %+v", e)
	}
}

func TestEngine_EmptyKey(t *testing.T) {
	if _, err := New("", "").Chat(context.Background(), tutor.ChatInput{User: "hi"}); err == nil {
		t.Fatal("expected an error without API key")
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"network", errors.New("connection reset by peer"), true},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), false},
		{"http 400", &googleapi.Error{Code: 400}, false},
		{"http 403", fmt.Errorf("wrapped: %w", &googleapi.Error{Code: 403}), false},
		{"http 404", &googleapi.Error{Code: 404}, false},
		{"http 429", &googleapi.Error{Code: 429}, true},
		{"http 503", &googleapi.Error{Code: 503}, true},
		{"grpc invalid argument", status.Error(codes.InvalidArgument, "API key not valid"), false},
		{"grpc unauthenticated", status.Error(codes.Unauthenticated, "no key"), false},
		{"grpc unavailable", status.Error(codes.Unavailable, "try later"), true},
		{"grpc exhausted", status.Error(codes.ResourceExhausted, "quota"), true},
	}
	for _, c := range cases {
		if got := retryable(c.err); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}
