package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/fitcoach-api/internal/domain/user"
	"github.com/riskibarqy/fitcoach-api/internal/usecase"
)

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateUser")
	defer span.End()

	payload, err := readJSONObject(r)
	if err != nil {
		h.logger.WarnContext(ctx, "decode create user payload failed", "error", err)
		writeFailure(ctx, w, msgCreateUserFailed, err)
		return
	}

	req, casts := newCreateUserRequest(payload)
	if err := h.validateCreateUser(ctx, req, casts); err != nil {
		h.logger.WarnContext(ctx, "create user rejected", "error", err)
		writeFailure(ctx, w, msgCreateUserFailed, err)
		return
	}

	created, err := h.userService.Create(ctx, usecase.CreateUserInput{
		Name:   req.Name,
		Email:  req.Email,
		Age:    req.Age,
		Height: req.Height,
		Weight: req.Weight,
		Goal:   req.Goal,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidInput) {
			h.logger.WarnContext(ctx, "create user rejected", "error", err)
		} else {
			h.logger.ErrorContext(ctx, "create user failed", "error", err)
		}
		writeFailure(ctx, w, msgCreateUserFailed, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, createUserResponse{
		Message: msgUserAdded,
		User:    toUserDTO(created),
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUsers")
	defer span.End()

	items, err := h.userService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list users failed", "error", err)
		writeFailure(ctx, w, msgListUsersFailed, err)
		return
	}

	out := make([]userDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toUserDTO(item))
	}

	writeJSON(ctx, w, http.StatusOK, out)
}

// validateCreateUser merges presence failures from the validator with cast
// failures; a cast failure overrides "required" for the same field.
func (h *Handler) validateCreateUser(ctx context.Context, req createUserRequest, casts *user.ValidationError) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateCreateUser")
	defer span.End()

	verr := &user.ValidationError{}
	if err := h.validator.StructCtx(ctx, req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
		}
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), fe.Tag())
		}
	}
	if casts != nil {
		for field, reason := range casts.Fields {
			verr.Add(field, reason)
		}
	}

	if len(verr.Fields) > 0 {
		return fmt.Errorf("%w: %w", usecase.ErrInvalidInput, verr)
	}
	return nil
}

type createUserResponse struct {
	Message string  `json:"message"`
	User    userDTO `json:"user"`
}

type userDTO struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       float64   `json:"age"`
	Height    float64   `json:"height"`
	Weight    float64   `json:"weight"`
	Goal      string    `json:"goal"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserDTO(p user.Profile) userDTO {
	return userDTO{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Age:       p.Age,
		Height:    p.Height,
		Weight:    p.Weight,
		Goal:      p.Goal,
		CreatedAt: p.CreatedAt,
	}
}
