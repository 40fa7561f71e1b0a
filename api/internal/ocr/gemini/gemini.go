package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	llmgemini "study-buddy/api/internal/llm/gemini"
	"study-buddy/api/internal/ocr"
	"study-buddy/api/internal/util"
)

// Engine transcribes textbook photos with a Gemini vision model.
type Engine struct {
	APIKey string
	Model  string
}

func New(key, model string) *Engine {
	if strings.TrimSpace(model) == "" {
		model = "gemini-2.5-flash"
	}
	return &Engine{APIKey: strings.TrimSpace(key), Model: strings.TrimSpace(model)}
}

func (e *Engine) Name() string { return "gemini" }

// Instruction is the transcription prompt sent along with the image.
func Instruction(langs []string) string {
	return fmt.Sprintf(`Transcribe ALL text from this photo of a textbook or notebook page exactly as written.
Expected languages: %s.
Keep the original language and line breaks, do not translate, summarize or explain.
If there is no readable text, return an empty string.
Return plain text only, without markdown.`, strings.Join(langs, ", "))
}

func imageBlob(image []byte, opt ocr.Options) genai.Blob {
	return genai.Blob{MIMEType: util.PickMIME(opt.MIME, "", image), Data: image}
}

func (e *Engine) Recognize(ctx context.Context, image []byte, opt ocr.Options) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	if len(image) == 0 {
		return "", errors.New("gemini ocr: empty image")
	}
	model := e.Model
	if opt.Model != "" {
		model = opt.Model
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(model)
	m.SetTemperature(0)

	txt, err := llmgemini.Generate(ctx, m,
		genai.Text(Instruction(opt.LangsOrDefault())),
		imageBlob(image, opt),
	)
	if errors.Is(err, llmgemini.ErrEmptyResponse) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("gemini ocr: %w", err)
	}
	return util.StripCodeFences(txt), nil
}
