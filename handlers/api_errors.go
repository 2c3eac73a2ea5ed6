package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/camden-git/seeds/services"
	"go.uber.org/zap"
)

// APIErrorDetail represents a single error in the standardized error response.
type APIErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
	Field  string `json:"field,omitempty"`
}

// APIErrorResponse represents the standardized error response body.
type APIErrorResponse struct {
	Errors []APIErrorDetail `json:"errors"`
}

// WriteAPIError writes a standardized error response with the given HTTP status, code, and detail.
func WriteAPIError(w http.ResponseWriter, httpStatus int, code string, detail string) {
	writeAPIErrors(w, httpStatus, []APIErrorDetail{{Code: code, Detail: detail}})
}

func writeAPIErrors(w http.ResponseWriter, httpStatus int, details []APIErrorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	for i := range details {
		details[i].Status = strconv.Itoa(httpStatus)
	}
	_ = json.NewEncoder(w).Encode(APIErrorResponse{Errors: details})
}

// statusFor maps a service error type onto an HTTP status.
func statusFor(se *services.Error) int {
	switch se.Type {
	case services.ErrTypeValidation:
		if len(se.Fields) > 0 {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	case services.ErrTypeNotFound:
		return http.StatusNotFound
	case services.ErrTypeConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeServiceError renders err in the error envelope, one entry per invalid field.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var se *services.Error
	if !errors.As(err, &se) || se.Type == services.ErrTypeInternal {
		logger.Error("request failed", zap.Error(err))
		WriteAPIError(w, http.StatusInternalServerError, string(services.ErrTypeInternal), "internal server error")
		return
	}

	status := statusFor(se)
	if len(se.Fields) == 0 {
		WriteAPIError(w, status, string(se.Type), se.Message)
		return
	}
	names := make([]string, 0, len(se.Fields))
	for name := range se.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	details := make([]APIErrorDetail, 0, len(names))
	for _, name := range names {
		details = append(details, APIErrorDetail{Code: string(se.Type), Detail: se.Fields[name], Field: name})
	}
	writeAPIErrors(w, status, details)
}
