package httpapi

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/fitcoach-api/internal/platform/logging"
	"github.com/riskibarqy/fitcoach-api/internal/usecase"
)

const rootBanner = "API is running..."

// StoreStatus reports which user store is wired and whether it is reachable.
type StoreStatus interface {
	Driver() string
	Connected() bool
}

type Handler struct {
	userService *usecase.UserService
	store       StoreStatus
	logger      *logging.Logger
	validator   *validator.Validate
}

func NewHandler(userService *usecase.UserService, store StoreStatus, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	return &Handler{
		userService: userService,
		store:       store,
		logger:      logger,
		validator:   v,
	}
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Root")
	defer span.End()

	writeText(ctx, w, http.StatusOK, rootBanner)
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	resp := healthDTO{Status: "ok", Store: "unknown"}
	if h.store != nil {
		resp.Store = h.store.Driver()
		resp.Connected = h.store.Connected()
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

type healthDTO struct {
	Status    string `json:"status"`
	Store     string `json:"store"`
	Connected bool   `json:"connected"`
}
