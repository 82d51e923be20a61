package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fitcoach-api/internal/domain/user"
	"github.com/valyala/bytebufferpool"
)

// bodyError reports a request body that could not be read or parsed as JSON.
type bodyError struct {
	reason string
	err    error
}

func (e *bodyError) Error() string {
	return e.reason
}

func (e *bodyError) Unwrap() error {
	return e.err
}

type createUserRequest struct {
	Name   *string  `json:"name" validate:"required"`
	Email  *string  `json:"email" validate:"required"`
	Age    *float64 `json:"age" validate:"required"`
	Height *float64 `json:"height" validate:"required"`
	Weight *float64 `json:"weight" validate:"required"`
	Goal   *string  `json:"goal" validate:"required"`
}

// readJSONObject buffers the body and decodes it as a JSON object. Non-JSON
// content types and empty bodies yield an empty object.
func readJSONObject(r *http.Request) (map[string]any, error) {
	payload := map[string]any{}
	if r.Body == nil || !isJSONContentType(r.Header.Get("Content-Type")) {
		return payload, nil
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := buf.ReadFrom(r.Body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &bodyError{reason: fmt.Sprintf("request entity too large: limit is %d bytes", tooLarge.Limit), err: err}
		}
		return nil, &bodyError{reason: "read request body: " + err.Error(), err: err}
	}

	raw := bytes.TrimSpace(buf.B)
	if len(raw) == 0 {
		return payload, nil
	}
	if raw[0] != '{' {
		return nil, &bodyError{reason: "invalid JSON payload: expected an object"}
	}
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, &bodyError{reason: "invalid JSON payload: " + err.Error(), err: err}
	}
	if payload == nil {
		payload = map[string]any{}
	}

	return payload, nil
}

func isJSONContentType(v string) bool {
	if strings.TrimSpace(v) == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(v)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// newCreateUserRequest casts loosely typed JSON values into the request:
// numbers and booleans become text, numeric strings become numbers. Values
// that cannot be cast are reported in the returned error.
func newCreateUserRequest(payload map[string]any) (createUserRequest, *user.ValidationError) {
	casts := &user.ValidationError{}
	req := createUserRequest{
		Name:   castText(casts, payload, user.FieldName),
		Email:  castText(casts, payload, user.FieldEmail),
		Age:    castNumber(casts, payload, user.FieldAge),
		Height: castNumber(casts, payload, user.FieldHeight),
		Weight: castNumber(casts, payload, user.FieldWeight),
		Goal:   castText(casts, payload, user.FieldGoal),
	}
	return req, casts
}

func castText(casts *user.ValidationError, payload map[string]any, field string) *string {
	switch v := payload[field].(type) {
	case nil:
		return nil
	case string:
		return &v
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		return &s
	case bool:
		s := strconv.FormatBool(v)
		return &s
	default:
		casts.Add(field, user.ReasonWrongType)
		return nil
	}
}

func castNumber(casts *user.ValidationError, payload map[string]any, field string) *float64 {
	switch v := payload[field].(type) {
	case nil:
		return nil
	case float64:
		return &v
	case string:
		if v == "" {
			return nil
		}
		s := strings.TrimSpace(v)
		if s == "" {
			var zero float64
			return &zero
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			casts.Add(field, user.ReasonNotNumber)
			return nil
		}
		return &n
	case bool:
		var n float64
		if v {
			n = 1
		}
		return &n
	default:
		casts.Add(field, user.ReasonWrongType)
		return nil
	}
}
