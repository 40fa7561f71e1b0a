package yandex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	DefaultIAMURL = "https://iam.api.cloud.yandex.net/iam/v1/tokens"
	iamTTL        = 11 * time.Hour
)

// IamClient exchanges the OAuth token for an IAM token and caches it until shortly before expiry.
type IamClient struct {
	httpc *http.Client
	oauth string
	url   string

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func NewIamClient(oauth string) *IamClient {
	return &IamClient{
		httpc: &http.Client{Timeout: 20 * time.Second},
		oauth: oauth,
		url:   DefaultIAMURL,
	}
}

func (c *IamClient) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.expiry.Add(-time.Minute)) {
		return c.token, nil
	}
	if c.oauth == "" {
		return "", errors.New("YC_OAUTH_TOKEN is empty")
	}

	b, _ := json.Marshal(map[string]string{"yandexPassportOauthToken": c.oauth})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("iam %d", resp.StatusCode)
	}

	var out struct {
		IamToken string `json:"iamToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.IamToken == "" {
		return "", errors.New("iam: empty token")
	}
	c.token = out.IamToken
	c.expiry = time.Now().Add(iamTTL)
	return c.token, nil
}

// Invalidate drops the cached token so the next Token call fetches a fresh one.
func (c *IamClient) Invalidate() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}
