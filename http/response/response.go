package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "risehub/errors"
	"risehub/logger"
	"risehub/utils"
)

// StandardResponse represents the standard API response structure
type StandardResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SuccessResponse sends a success response with given status code, message, and data
func SuccessResponse(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	response := StandardResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	}
	SendJSON(w, statusCode, response)
}

// ErrorResponse sends an error response with given status code and error message
func ErrorResponse(w http.ResponseWriter, statusCode int, errorMsg string) {
	response := StandardResponse{
		Status: "error",
		Error:  errorMsg,
	}
	SendJSON(w, statusCode, response)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.Invalid:
		return http.StatusBadRequest
	case apperrors.Unauthorized:
		return http.StatusUnauthorized
	case apperrors.Forbidden:
		return http.StatusForbidden
	case apperrors.NotFound:
		return http.StatusNotFound
	case apperrors.Conflict:
		return http.StatusConflict
	case apperrors.PreconditionFailed:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as an error envelope. Field validation failures are
// returned under data keyed by field name. Internal errors are logged and
// their details withheld.
func Error(w http.ResponseWriter, err error) {
	status := StatusFor(apperrors.KindOf(err))
	msg := apperrors.MessageOf(err)

	if status == http.StatusInternalServerError {
		logger.Error("Request failed: %v", err)
		ErrorResponse(w, status, "Internal server error")
		return
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	resp := StandardResponse{Status: "error", Error: msg}
	var fields utils.FieldErrors
	if apperrors.As(err, &fields) {
		resp.Data = fields
	}
	SendJSON(w, status, resp)
}

// SendJSON encodes and sends a JSON response
func SendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}

// Attachment sends data as a file download.
func Attachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Warn("Error writing %s: %v", filename, err)
	}
}
