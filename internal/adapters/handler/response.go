package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type DataResponse struct {
	Data interface{} `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to write response", zap.Error(err))
	}
}

func respondData(w http.ResponseWriter, status int, data interface{}, logger *zap.Logger) {
	writeJSON(w, status, DataResponse{Data: data}, logger)
}

func respondError(w http.ResponseWriter, status int, code, message string, logger *zap.Logger) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message}, logger)
}

// HandleServiceError maps domain errors to HTTP responses.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}
	status, code := StatusFor(err)

	resp := ErrorResponse{Error: code, Message: PublicMessage(err)}
	var domainErr *domain.Error
	if errors.As(err, &domainErr) && domainErr.Field != "" {
		resp.Details = map[string]string{domainErr.Field: domainErr.Message}
	}

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("service error", zap.Error(err))
		if status == http.StatusServiceUnavailable {
			w.Header().Set("Retry-After", "5")
		}
	default:
		logger.Debug("request rejected", zap.String("kind", code), zap.Error(err))
	}
	writeJSON(w, status, resp, logger)
}

// StatusFor returns the HTTP status and error code of err.
func StatusFor(err error) (int, string) {
	switch domain.KindOf(err) {
	case domain.KindInvalidCredentials:
		return http.StatusUnauthorized, string(domain.KindInvalidCredentials)
	case domain.KindPermissionDenied:
		return http.StatusForbidden, string(domain.KindPermissionDenied)
	case domain.KindNotFound:
		return http.StatusNotFound, string(domain.KindNotFound)
	case domain.KindMissingField, domain.KindInvalidRange:
		return http.StatusBadRequest, string(domain.KindOf(err))
	case domain.KindAuthUnavailable, domain.KindDataUnavailable:
		return http.StatusServiceUnavailable, string(domain.KindOf(err))
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// PublicMessage is safe to show to a user: the wrapped cause is dropped.
func PublicMessage(err error) string {
	var domainErr *domain.Error
	if !errors.As(err, &domainErr) {
		return "An unexpected error occurred"
	}
	switch domainErr.Kind {
	case domain.KindInvalidCredentials:
		return "Invalid email or password"
	case domain.KindAuthUnavailable:
		return "Sign-in is temporarily unavailable, please try again"
	case domain.KindDataUnavailable:
		return "The data store is temporarily unavailable, please try again"
	case domain.KindPermissionDenied:
		return "You do not have permission to do that"
	}
	if domainErr.Field != "" {
		return domainErr.Field + ": " + domainErr.Message
	}
	return domainErr.Message
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewValidationError(domain.KindMissingField, "body", "request body is empty")
		}
		return domain.NewValidationError(domain.KindInvalidRange, "body", "request body is not valid JSON")
	}
	return nil
}

// filterFromQuery reads status, exclude_status, upcoming and limit.
func filterFromQuery(r *http.Request) (ports.RequestFilter, error) {
	q := r.URL.Query()
	filter := ports.RequestFilter{
		Status:        domain.Status(q.Get("status")),
		ExcludeStatus: domain.Status(q.Get("exclude_status")),
		ByDate:        q.Get("upcoming") == "true",
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return filter, domain.NewValidationError(domain.KindInvalidRange, "status", "unknown status")
	}
	if filter.ExcludeStatus != "" && !filter.ExcludeStatus.Valid() {
		return filter, domain.NewValidationError(domain.KindInvalidRange, "exclude_status", "unknown status")
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, domain.NewValidationError(domain.KindInvalidRange, "limit", "must be a non-negative integer")
		}
		filter.Limit = n
	}
	return filter, nil
}

type statusRequest struct {
	Status domain.Status `json:"status"`
}
