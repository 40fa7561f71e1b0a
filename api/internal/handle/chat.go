package handle

import (
	"context"
	"log"
	"net/http"
	"strings"

	"study-buddy/api/internal/llm"
	"study-buddy/api/internal/tutor"
)

const errAIFailure = "Failed to get AI response. Please check your API key."

type ChatRequest struct {
	Message  string `json:"message"`
	Mode     string `json:"mode"`
	Language string `json:"language"`
	Context  string `json:"context"`
	Class    string `json:"userClass"`
	Subject  string `json:"subject"`

	// LLMName picks "gpt" or "gemini"; empty uses the configured default.
	LLMName string `json:"llm_name,omitempty"`
}

func (r ChatRequest) PromptRequest() tutor.PromptRequest {
	return tutor.PromptRequest{
		Mode:     tutor.ParseMode(r.Mode),
		Language: r.Language,
		Class:    r.Class,
		Subject:  r.Subject,
	}
}

type ChatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (h *Handle) engine(name string) (llm.Engine, error) {
	if h.engs == nil {
		return nil, llm.ErrNoEngine
	}
	if strings.TrimSpace(name) == "" {
		return h.engs.Default()
	}
	return h.engs.GetEngine(name)
}

// ChatMessage relays the student's message to the language model with the persona for the chosen mode.
func (h *Handle) ChatMessage(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ChatResponse{Error: "bad json: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, ChatResponse{Error: "message is required"})
		return
	}

	eng, err := h.engine(req.LLMName)
	if err != nil {
		log.Printf("chat: engine %q: %v", req.LLMName, err)
		writeJSON(w, http.StatusInternalServerError, ChatResponse{Error: errAIFailure})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	in := h.selector.Build(req.PromptRequest(), req.Context, req.Message)
	reply, err := eng.Chat(ctx, in)
	if err != nil {
		log.Printf("chat: %s/%s: %v", eng.Name(), eng.GetModel(), err)
		writeJSON(w, http.StatusInternalServerError, ChatResponse{Error: errAIFailure})
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Success: true, Response: reply})
}

// ChatFallback answers from the offline rule set; it never reaches a model.
func (h *Handle) ChatFallback(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ChatResponse{Error: "bad json: " + err.Error()})
		return
	}
	reply := h.fallback.Respond(tutor.ResponseQuery{
		Message: req.Message,
		Context: req.Context,
		Mode:    tutor.ParseMode(req.Mode),
	})
	writeJSON(w, http.StatusOK, ChatResponse{Success: true, Response: reply})
}
