package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fitcoach-api/internal/domain/user"
	"github.com/riskibarqy/fitcoach-api/internal/usecase"
)

func TestWriteJSON_SetsHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(context.Background(), rec, http.StatusCreated, map[string]string{"status": "ok"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "application/json") {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := rec.Header().Get("Content-Length"); got != fmt.Sprint(rec.Body.Len()) {
		t.Fatalf("content length %s does not match body %d", got, rec.Body.Len())
	}
}

func TestWriteFailure_ValidationDetail(t *testing.T) {
	verr := &user.ValidationError{}
	verr.Add(user.FieldEmail, user.ReasonRequired)

	rec := httptest.NewRecorder()
	writeFailure(context.Background(), rec, msgCreateUserFailed, fmt.Errorf("%w: %w", usecase.ErrInvalidInput, verr))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}

	var body failureResponse
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if body.Message != msgCreateUserFailed {
		t.Fatalf("unexpected message %q", body.Message)
	}
	if body.Error.Name != "ValidationError" {
		t.Fatalf("unexpected error name %q", body.Error.Name)
	}
	if body.Error.Fields["email"] != "required" {
		t.Fatalf("expected email field detail, got %v", body.Error.Fields)
	}
}

func TestDescribeError(t *testing.T) {
	driverErr := crerr.Wrap(errors.New("connection reset by peer 10.0.0.7:27017"), "find users")

	tests := []struct {
		name     string
		err      error
		wantName string
		wantMsg  string
	}{
		{name: "body", err: &bodyError{reason: "invalid JSON payload: expected an object"}, wantName: "BadRequestBody", wantMsg: "invalid JSON payload: expected an object"},
		{name: "unavailable", err: fmt.Errorf("list users: %w", fmt.Errorf("%w: %w", usecase.ErrDependencyUnavailable, driverErr)), wantName: "StoreError", wantMsg: "store unavailable"},
		{name: "store", err: fmt.Errorf("list users: %w", driverErr), wantName: "StoreError", wantMsg: "store operation failed"},
		{name: "panic", err: errPanicRecovered, wantName: "InternalError", wantMsg: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := describeError(tt.err)
			if got.Name != tt.wantName || got.Message != tt.wantMsg {
				t.Fatalf("describeError()=%+v want name=%s message=%s", got, tt.wantName, tt.wantMsg)
			}
			if strings.Contains(got.Message, "10.0.0.7") {
				t.Fatalf("driver detail leaked into response: %q", got.Message)
			}
		})
	}
}

func TestFailureMessageFor(t *testing.T) {
	if got := failureMessageFor(httptest.NewRequest(http.MethodPost, "/api/users/add", nil)); got != msgCreateUserFailed {
		t.Fatalf("unexpected create message %q", got)
	}
	if got := failureMessageFor(httptest.NewRequest(http.MethodGet, "/api/users", nil)); got != msgListUsersFailed {
		t.Fatalf("unexpected list message %q", got)
	}
	if got := failureMessageFor(httptest.NewRequest(http.MethodGet, "/", nil)); got != msgInternalFailure {
		t.Fatalf("unexpected fallback message %q", got)
	}
}
