package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fitcoach-api/internal/domain/user"
	"github.com/riskibarqy/fitcoach-api/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const (
	msgUserAdded        = "User added successfully"
	msgCreateUserFailed = "Error adding user"
	msgListUsersFailed  = "Error fetching users"
	msgInternalFailure  = "Internal server error"
)

const (
	errNameValidation  = "ValidationError"
	errNameRequestBody = "BadRequestBody"
	errNameStore       = "StoreError"
	errNameInternal    = "InternalError"
)

var errPanicRecovered = errors.New("internal server error")

type failureResponse struct {
	Message string      `json:"message"`
	Error   errorDetail `json:"error"`
}

type errorDetail struct {
	Name    string            `json:"name"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err != nil {
		span.RecordError(err)
		http.Error(w, msgInternalFailure, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(status)
	_, _ = w.Write(buf.B)
}

func writeText(ctx context.Context, w http.ResponseWriter, status int, body string) {
	_, span := startSpan(ctx, "httpapi.writeText")
	defer span.End()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// writeFailure always answers 500; the error kind is only visible in
// error.name.
func writeFailure(ctx context.Context, w http.ResponseWriter, message string, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeFailure")
	defer span.End()

	writeJSON(ctx, w, http.StatusInternalServerError, failureResponse{
		Message: message,
		Error:   describeError(err),
	})
}

func describeError(err error) errorDetail {
	var verr *user.ValidationError
	var berr *bodyError
	switch {
	case errors.As(err, &verr):
		return errorDetail{Name: errNameValidation, Message: verr.Error(), Fields: verr.Fields}
	case errors.As(err, &berr):
		return errorDetail{Name: errNameRequestBody, Message: berr.Error()}
	case errors.Is(err, errPanicRecovered):
		return errorDetail{Name: errNameInternal, Message: errPanicRecovered.Error()}
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return errorDetail{Name: errNameStore, Message: "store unavailable"}
	default:
		return errorDetail{Name: errNameStore, Message: "store operation failed"}
	}
}

func failureMessageFor(r *http.Request) string {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/users/add":
		return msgCreateUserFailed
	case strings.HasPrefix(r.URL.Path, "/api/users"):
		return msgListUsersFailed
	default:
		return msgInternalFailure
	}
}
