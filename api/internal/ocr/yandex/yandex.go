package yandex

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"study-buddy/api/internal/ocr"
	"study-buddy/api/internal/util"
)

const (
	DefaultOCRURL = "https://ocr.api.cloud.yandex.net/ocr/v1/recognizeText"
	defaultModel  = "page"
)

type Engine struct {
	iamc     *IamClient
	folderID string
	ocrURL   string
	httpc    *http.Client
}

func New(oauth2Token, folderID string) *Engine {
	return &Engine{
		iamc:     NewIamClient(oauth2Token),
		folderID: folderID,
		ocrURL:   DefaultOCRURL,
		httpc:    &http.Client{Timeout: 60 * time.Second},
	}
}

// WithEndpoints points the engine at other IAM and OCR URLs; empty values keep the current ones.
func (e *Engine) WithEndpoints(iamURL, ocrURL string) *Engine {
	if iamURL != "" {
		e.iamc.url = iamURL
	}
	if ocrURL != "" {
		e.ocrURL = ocrURL
	}
	return e
}

func (e *Engine) Name() string { return "yandex" }

type request struct {
	Content       string   `json:"content"`
	MimeType      string   `json:"mimeType,omitempty"`      // "JPEG" | "PNG" | "PDF"
	LanguageCodes []string `json:"languageCodes,omitempty"` // ["en","hi"]
	Model         string   `json:"model,omitempty"`         // "page" | "handwritten"
}

type textAnnotation struct {
	FullText string `json:"fullText,omitempty"`
	Blocks   []struct {
		Lines []struct {
			Text string `json:"text,omitempty"`
		} `json:"lines,omitempty"`
	} `json:"blocks,omitempty"`
}

type response struct {
	Result *struct {
		TextAnnotation *textAnnotation `json:"textAnnotation,omitempty"`
	} `json:"result,omitempty"`
}

func (r *response) annotation() *textAnnotation {
	if r == nil || r.Result == nil {
		return nil
	}
	return r.Result.TextAnnotation
}

func (e *Engine) Recognize(ctx context.Context, image []byte, opt ocr.Options) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("yandex ocr: empty image")
	}
	body := request{
		Content:       base64.StdEncoding.EncodeToString(image),
		MimeType:      util.SniffMimeForOCR(image),
		LanguageCodes: opt.LangsOrDefault(),
		Model:         defaultModel,
	}
	if opt.Model != "" {
		body.Model = opt.Model
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	status, raw, err := e.post(ctx, payload)
	if err != nil {
		return "", err
	}
	if status == http.StatusUnauthorized {
		// one retry with a fresh IAM token
		e.iamc.Invalidate()
		if status, raw, err = e.post(ctx, payload); err != nil {
			return "", err
		}
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("yandex ocr %d: %s", status, util.TruncateBytes(raw, 512))
	}

	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("yandex ocr: bad JSON: %w", err)
	}
	ta := out.annotation()
	if ta == nil {
		return "", nil
	}
	if t := strings.TrimSpace(ta.FullText); t != "" {
		return t, nil
	}
	var lines []string
	for _, b := range ta.Blocks {
		for _, l := range b.Lines {
			if s := strings.TrimSpace(l.Text); s != "" {
				lines = append(lines, s)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (e *Engine) post(ctx context.Context, payload []byte) (int, []byte, error) {
	iamToken, err := e.iamc.Token(ctx)
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.ocrURL, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+iamToken)
	req.Header.Set("x-folder-id", e.folderID)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, raw, nil
}
