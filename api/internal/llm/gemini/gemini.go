package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"study-buddy/api/internal/tutor"
)

const maxAttempts = 3

var ErrEmptyResponse = errors.New("gemini: empty response")

type Engine struct {
	APIKey string
	Model  string
}

func New(apiKey, model string) *Engine {
	if strings.TrimSpace(model) == "" {
		model = "gemini-2.5-flash"
	}
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

// Chat sends the tutor persona as system instruction and the student's message as the only turn.
func (e *Engine) Chat(ctx context.Context, in tutor.ChatInput) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	m.SetTemperature(in.Temperature)
	if in.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(in.MaxTokens))
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(in.System)},
	}

	return Generate(ctx, m, genai.Text(in.User))
}

// Generate calls the model with retries on transient failures and returns the first text part.
func Generate(ctx context.Context, m *genai.GenerativeModel, parts ...genai.Part) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err == nil {
			txt := strings.TrimSpace(FirstText(resp))
			if txt == "" {
				return "", ErrEmptyResponse
			}
			return txt, nil
		}
		if !retryable(err) {
			return "", fmt.Errorf("gemini: %w", err)
		}
		lastErr = err
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * 300 * time.Millisecond):
		}
	}
	return "", fmt.Errorf("gemini: %d attempts failed: %w", maxAttempts, lastErr)
}

// retryable reports whether another attempt could succeed.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return false
		}
		return true
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.InvalidArgument, codes.Unauthenticated, codes.PermissionDenied, codes.NotFound, codes.Canceled:
			return false
		}
	}
	return true
}

func FirstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
