// internal/app/features/errors/errors.go

// Package errors writes JSON responses and maps service errors onto HTTP
// status codes in one place.
//
// Every error body has the shape
//
//	{ "error": { "code": "team_full", "message": "this quest's team is full" } }
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	"github.com/dalemusser/sidequest/internal/domain/questerr"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Error codes.
const (
	CodeNotFound           = "not_found"
	CodePreconditionFailed = "precondition_failed"
	CodeInvalid            = "invalid"
	CodeUnauthorized       = "unauthorized"
	CodeStoreUnavailable   = "store_unavailable"
	CodeInternal           = "internal"
)

type body struct {
	Error detail `json:"error"`
}

type detail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Write sends an error body.
func Write(w http.ResponseWriter, status int, code, msg string) {
	JSON(w, status, body{Error: detail{Code: code, Message: msg}})
}

// Classify maps err to a status, a code and the message to show.
// Unknown errors are hidden behind a generic message.
func Classify(err error) (int, string, string) {
	switch questerr.ClassOf(err) {
	case questerr.ClassNotFound:
		return http.StatusNotFound, CodeNotFound, err.Error()
	case questerr.ClassPrecondition:
		return http.StatusConflict, CodePreconditionFailed, userMessage(err)
	case questerr.ClassInvalid:
		return http.StatusBadRequest, CodeInvalid, err.Error()
	}
	if stderrors.Is(err, docstore.ErrConflict) {
		return http.StatusConflict, CodePreconditionFailed, questerr.ErrConflict.Error()
	}
	if stderrors.Is(err, docstore.ErrNotFound) {
		return http.StatusNotFound, CodeNotFound, "not found"
	}
	if stderrors.Is(err, docstore.ErrUnavailable) {
		return http.StatusServiceUnavailable, CodeStoreUnavailable, "the quest store is unavailable; please try again shortly"
	}
	return http.StatusInternalServerError, CodeInternal, "something went wrong"
}

// userMessage unwraps retry annotations so ErrConflict reads cleanly.
func userMessage(err error) string {
	if stderrors.Is(err, questerr.ErrConflict) {
		return questerr.ErrConflict.Error()
	}
	return err.Error()
}

// ErrorLogger renders service errors and logs the ones that are not the
// client's fault.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// Render writes err as JSON. 5xx responses are logged with request context.
func (e *ErrorLogger) Render(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := Classify(err)
	if status >= http.StatusInternalServerError {
		e.Log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Int("status", status),
			zap.Error(err))
	}
	Write(w, status, code, msg)
}
