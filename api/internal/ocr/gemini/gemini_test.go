package gemini

import (
	"context"
	"strings"
	"testing"

	"study-buddy/api/internal/ocr"
)

func TestInstruction(t *testing.T) {
	got := Instruction([]string{"en", "hi"})
	if !strings.Contains(got, "Expected languages: en, hi.") {
		t.Errorf("got %q", got)
	}
}

func TestImageBlob(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n....")
	cases := []struct {
		mime string
		data []byte
		want string
	}{
		{"", png, "image/png"},
		{"image/webp", []byte("RIFF....WEBP"), "image/webp"},
		{"image/jpeg", png, "image/jpeg"},
	}
	for _, c := range cases {
		b := imageBlob(c.data, ocr.Options{MIME: c.mime})
		if b.MIMEType != c.want || len(b.Data) != len(c.data) {
			t.Errorf("mime %q: got %q, want %q", c.mime, b.MIMEType, c.want)
		}
	}
}

func TestRecognize_Errors(t *testing.T) {
	if _, err := New("", "").Recognize(context.Background(), []byte{1}, ocr.Options{}); err == nil {
		t.Error("expected error without API key")
	}
	if _, err := New("k", "").Recognize(context.Background(), nil, ocr.Options{}); err == nil {
		t.Error("expected error for empty image")
	}
}
