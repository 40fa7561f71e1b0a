package ocr

import (
	"context"
	"strings"

	"study-buddy/api/internal/util"
)

// DefaultLangs covers English and Hindi textbook pages.
var DefaultLangs = []string{"en", "hi"}

type Options struct {
	Langs []string
	Model string
	MIME  string // image type when the caller knows it, e.g. from a data URL
}

type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, image []byte, opt Options) (string, error)
}

const (
	noTextMessage = "❌ No text detected. Please try with a clearer image or different page."
	summaryLen    = 100
)

// Summary turns recognized text into the message shown to the student after a scan.
func Summary(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return noTextMessage
	}
	return `✅ Text extracted successfully! Found: "` + util.Truncate(text, summaryLen, "") +
		`..." How can I help you understand this?`
}

// LangsOrDefault returns o.Langs, or DefaultLangs when none were given.
func (o Options) LangsOrDefault() []string {
	if len(o.Langs) == 0 {
		return DefaultLangs
	}
	return o.Langs
}
