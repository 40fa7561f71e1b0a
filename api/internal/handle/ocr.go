package handle

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"study-buddy/api/internal/ocr"
	"study-buddy/api/internal/store"
	"study-buddy/api/internal/util"
)

type OCRRequest struct {
	Image     string   `json:"image"` // base64 or data URL
	Langs     []string `json:"langs,omitempty"`
	Model     string   `json:"model,omitempty"`
	MIME      string   `json:"mime,omitempty"`
	UserEmail string   `json:"user_email,omitempty"`
}

type OCRResponse struct {
	Success bool        `json:"success"`
	Scan    *store.Scan `json:"scan"`
	Saved   bool        `json:"saved"`
	Message string      `json:"message"`
}

// OCR recognizes the text on an uploaded page and keeps it as a scan when storage is available.
func (h *Handle) OCR(w http.ResponseWriter, r *http.Request) {
	if h.ocr == nil {
		writeError(w, http.StatusServiceUnavailable, "ocr is not configured")
		return
	}
	var req OCRRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	img, hint, err := util.DecodeBase64MaybeDataURL(req.Image)
	if err != nil || len(img) == 0 {
		writeError(w, http.StatusBadRequest, "bad image")
		return
	}

	langs := req.Langs
	if len(langs) == 0 {
		langs = h.ocrLangs
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	text, err := h.ocr.Recognize(ctx, img, ocr.Options{
		Langs: langs,
		Model: req.Model,
		MIME:  util.PickMIME(req.MIME, hint, img),
	})
	if err != nil {
		log.Printf("ocr: %s: %v", h.ocr.Name(), err)
		writeError(w, http.StatusBadGateway, "ocr failed: "+err.Error())
		return
	}

	scan := &store.Scan{
		ID:        uuid.New(),
		UserEmail: strings.ToLower(strings.TrimSpace(req.UserEmail)),
		Text:      text,
		Engine:    h.ocr.Name(),
		CreatedAt: time.Now().UTC(),
	}
	saved := false
	if h.scans != nil && text != "" {
		if err := h.scans.Save(ctx, scan); err != nil {
			log.Printf("ocr: save scan %s: %v", scan.ID, err)
		} else {
			saved = true
		}
	}
	writeJSON(w, http.StatusOK, OCRResponse{Success: true, Scan: scan, Saved: saved, Message: ocr.Summary(text)})
}
