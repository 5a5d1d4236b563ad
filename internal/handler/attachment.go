package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dukerupert/dutyroster/internal/attachment"
	"github.com/dukerupert/dutyroster/internal/model"
)

type AttachmentHandler struct {
	service  *attachment.Service
	maxBytes int64
	logger   *slog.Logger
}

func NewAttachmentHandler(service *attachment.Service, maxBytes int64, logger *slog.Logger) *AttachmentHandler {
	return &AttachmentHandler{service: service, maxBytes: maxBytes, logger: logger}
}

func parseSlot(r *http.Request) (int, bool) {
	slot, err := strconv.Atoi(r.PathValue("slot"))
	if err != nil || !model.ValidSlot(slot) {
		return 0, false
	}
	return slot, true
}

// readImage returns the uploaded image bytes. The body is either the raw
// image or JSON of the form {"data_url": "data:image/...;base64,..."}.
func readImage(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return body, nil
	}
	var req struct {
		DataURL string `json:"data_url"`
	}
	if err := json.Unmarshal(body, &req); err != nil || req.DataURL == "" {
		return nil, attachment.ErrInvalidImage
	}
	return attachment.DecodeDataURL(req.DataURL)
}

// Upload stores an image in a slot of a completion record.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	slot, ok := parseSlot(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "slot must be 1 or 2")
		return
	}

	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}
	data, err := readImage(r)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "image too large")
		return
	case errors.Is(err, attachment.ErrInvalidImage):
		writeError(w, http.StatusBadRequest, "invalid image")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	size, err := h.service.Upload(r.Context(), id, slot, bytes.NewReader(data))
	switch {
	case errors.Is(err, attachment.ErrNotFound):
		writeError(w, http.StatusNotFound, "completion not found")
		return
	case errors.Is(err, attachment.ErrInvalidImage):
		writeError(w, http.StatusBadRequest, "invalid image")
		return
	case err != nil:
		h.logger.Error("upload attachment", "completion_id", id, "slot", slot, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store attachment")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"completion_id": id, "slot": slot, "bytes": size})
}

// Download streams a stored attachment as JPEG.
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	slot, ok := parseSlot(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "slot must be 1 or 2")
		return
	}

	rc, err := h.service.Open(r.Context(), id, slot)
	if errors.Is(err, attachment.ErrNotFound) {
		writeError(w, http.StatusNotFound, "attachment not found")
		return
	}
	if err != nil {
		h.logger.Error("open attachment", "completion_id", id, "slot", slot, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load attachment")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("write attachment", "completion_id", id, "slot", slot, "error", err)
	}
}
