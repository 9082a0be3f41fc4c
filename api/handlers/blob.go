package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"visionRelay/api/dto"
	"visionRelay/api/middleware"
	"visionRelay/api/repository"
	"visionRelay/api/validation"
)

type BlobService interface {
	CreateBlob(ctx context.Context, req *dto.CreateBlobRequest) (*dto.CreateBlobResponse, error)
	GetBlob(ctx context.Context, blobID string) (*dto.BlobResponse, error)
}

type BlobHandler struct {
	service BlobService
	logger  *zap.Logger
}

func NewBlobHandler(service BlobService, logger *zap.Logger) *BlobHandler {
	return &BlobHandler{
		service: service,
		logger:  logger,
	}
}

// Create handles POST /blobs.
func (h *BlobHandler) Create(w http.ResponseWriter, r *http.Request) {
	traceID := middleware.GetTraceID(r.Context())

	req, err := validation.ParseCreateRequest(r)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.service.CreateBlob(r.Context(), req)
	if err != nil {
		h.handleError(w, "Failed to create blob", err, traceID)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// Get handles GET /blobs/{id}.
func (h *BlobHandler) Get(w http.ResponseWriter, r *http.Request) {
	traceID := middleware.GetTraceID(r.Context())

	blobID := strings.TrimPrefix(r.URL.Path, "/blobs/")
	if blobID == "" || strings.Contains(blobID, "/") {
		h.respondJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "not found"})
		return
	}

	resp, err := h.service.GetBlob(r.Context(), blobID)
	if err != nil {
		if errors.Is(err, repository.ErrBlobNotFound) {
			h.respondJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "not found"})
			return
		}
		h.handleError(w, "Failed to fetch blob", err, traceID)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *BlobHandler) handleError(w http.ResponseWriter, message string, err error, traceID string) {
	h.logger.Error(message,
		zap.String("trace_id", traceID),
		zap.Error(err),
	)

	h.respondJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
}

func (h *BlobHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
