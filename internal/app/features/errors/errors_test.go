package errors_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	apierrors "github.com/dalemusser/sidequest/internal/app/features/errors"
	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	"github.com/dalemusser/sidequest/internal/domain/questerr"
	"go.uber.org/zap"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"quest not found", questerr.ErrQuestNotFound, http.StatusNotFound, apierrors.CodeNotFound, "quest not found"},
		{"team full", fmt.Errorf("join: %w", questerr.ErrTeamFull), http.StatusConflict, apierrors.CodePreconditionFailed, "join: this quest's team is full"},
		{"conflict after retries", fmt.Errorf("join after 3 attempts: %w", questerr.ErrConflict), http.StatusConflict, apierrors.CodePreconditionFailed, questerr.ErrConflict.Error()},
		{"invalid", questerr.Invalid("Title is required."), http.StatusBadRequest, apierrors.CodeInvalid, "Title is required."},
		{"store down", fmt.Errorf("get: %w", docstore.ErrUnavailable), http.StatusServiceUnavailable, apierrors.CodeStoreUnavailable, ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, apierrors.CodeInternal, "something went wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, msg := apierrors.Classify(tt.err)
			if status != tt.wantStatus || code != tt.wantCode {
				t.Errorf("Classify = %d %s, want %d %s", status, code, tt.wantStatus, tt.wantCode)
			}
			if tt.wantMsg != "" && msg != tt.wantMsg {
				t.Errorf("message = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestErrorLogger_Render(t *testing.T) {
	el := apierrors.NewErrorLogger(zap.NewNop())
	rec := httptest.NewRecorder()
	el.Render(rec, httptest.NewRequest("POST", "/quests/q1/join", nil), questerr.ErrAlreadyActive)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	var got struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.Error.Code != apierrors.CodePreconditionFailed || got.Error.Message != questerr.ErrAlreadyActive.Error() {
		t.Errorf("unexpected body %+v", got)
	}
}
