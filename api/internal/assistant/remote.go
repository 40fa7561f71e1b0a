package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"study-buddy/api/internal/util"
)

// Remote asks a running chat endpoint over HTTP.
type Remote struct {
	Endpoint string // base URL ending in /api
	httpc    *http.Client
}

func NewRemote(endpoint string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = 70 * time.Second
	}
	return &Remote{
		Endpoint: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		httpc:    &http.Client{Timeout: timeout},
	}
}

func (r *Remote) WithHTTPClient(c *http.Client) *Remote {
	if c != nil {
		r.httpc = c
	}
	return r
}

type remoteRequest struct {
	Message  string `json:"message"`
	Mode     string `json:"mode"`
	Language string `json:"language,omitempty"`
	Context  string `json:"context"`
	Class    string `json:"userClass,omitempty"`
	Subject  string `json:"subject,omitempty"`
}

type remoteResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	Error    string `json:"error"`
}

// Ask reports every failure as ErrUnavailable.
func (r *Remote) Ask(ctx context.Context, q Question) (string, error) {
	payload, err := json.Marshal(remoteRequest{
		Message:  q.Message,
		Mode:     string(q.Mode),
		Language: q.Language,
		Context:  q.Context,
		Class:    q.Class,
		Subject:  q.Subject,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint+"/chat/message", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	var out remoteResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, util.TruncateBytes(raw, 256))
	}
	if !out.Success || strings.TrimSpace(out.Response) == "" {
		return "", fmt.Errorf("%w: %s", ErrUnavailable, out.Error)
	}
	return out.Response, nil
}
