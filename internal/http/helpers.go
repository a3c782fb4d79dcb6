package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edoomio/studio/internal/auth"
	"github.com/edoomio/studio/internal/database"
	"github.com/edoomio/studio/internal/docsettings"
	"github.com/edoomio/studio/internal/documents"
	"github.com/edoomio/studio/internal/logger"
)

// notFoundMessage is the single body returned for missing, private,
// unpublished and foreign documents.
const notFoundMessage = "Not found"

// GetUserID extracts the acting user's ID from the Gin context.
// Anonymous requests to public routes get "".
func GetUserID(c *gin.Context) string {
	return auth.GetUserID(c)
}

// viewer returns the request identity used by the documents access checks.
func viewer(c *gin.Context) documents.Viewer {
	return documents.Viewer{UserID: GetUserID(c)}
}

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// FieldError describes one rejected field of a request payload.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends the uniform 404 response.
func respondNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: notFoundMessage})
}

// respondValidationError sends a 422 with per-field details.
func respondValidationError(c *gin.Context, fields ...FieldError) {
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Code:    "validation_error",
		Details: fields,
	})
}

// respondBadGateway reports a failing external dependency.
func respondBadGateway(c *gin.Context, message string) {
	c.JSON(http.StatusBadGateway, ErrorResponse{Error: message, Code: "upstream_unavailable"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, log *logger.Logger, err error, context string) {
	log.Error("Internal error", "context", context, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondError sends an error response with the given status code.
// Use the specific helpers (respondBadRequest, respondNotFound, etc.) when possible.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// respondDocumentError maps the errors of document lookups, normalization and
// writes onto responses. Anything unrecognised becomes a 500.
func respondDocumentError(c *gin.Context, log *logger.Logger, err error, context string) {
	var verr *docsettings.ValidationError
	switch {
	case errors.Is(err, documents.ErrNotFound), errors.Is(err, database.ErrNotFound):
		respondNotFound(c)
	case errors.As(err, &verr):
		respondValidationError(c, FieldError{Field: verr.Field, Reason: verr.Reason})
	case errors.Is(err, docsettings.ErrMalformedSettings):
		respondValidationError(c, FieldError{Field: "settings", Reason: malformedReason(err)})
	default:
		respondInternalError(c, log, err, context)
	}
}

func malformedReason(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// queryFlag reports whether a boolean query parameter is switched on.
func queryFlag(c *gin.Context, name string) bool {
	switch strings.ToLower(c.Query(name)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// folderFilter returns the folder query parameter, or "" when the listing
// spans all folders.
func folderFilter(c *gin.Context, name string) string {
	return strings.TrimSpace(c.Query(name))
}
