package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"shopfront/internal/apis/shop"
	"shopfront/internal/domain/models"
	"shopfront/internal/http-server/handlers"
	"shopfront/internal/http-server/respond"
)

type Mutator interface {
	Mutate(ctx context.Context, m shop.Mutation) (json.RawMessage, error)
}

type Options struct {
	Log     *slog.Logger
	Mutator Mutator
	Timeout time.Duration
}

// Handler forwards admin form submissions upstream after validating them
// locally. An invalid form never reaches the network.
type Handler struct {
	log      *slog.Logger
	mutator  Mutator
	timeout  time.Duration
	validate *validator.Validate
}

func New(opts Options) *Handler {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{log: opts.Log, mutator: opts.Mutator, timeout: opts.Timeout, validate: v}
}

// form returns an empty typed form for the resource.
func form(res shop.Resource) any {
	switch res {
	case shop.Staff:
		return &models.StaffMember{}
	case shop.Products:
		return &models.ProductInput{}
	case shop.Customers:
		return &models.Customer{}
	}
	return nil
}

func (h *Handler) Create(res shop.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.submit(w, r, res, http.MethodPost, "")
	}
}

func (h *Handler) Update(res shop.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.submit(w, r, res, http.MethodPut, chi.URLParam(r, "id"))
	}
}

func (h *Handler) Delete(res shop.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			respond.WriteError(w, http.StatusBadRequest, "bad_request", "id is required")
			return
		}
		h.forward(w, r, shop.Mutation{Resource: res, Method: http.MethodDelete, ID: id}, http.StatusOK)
	}
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, res shop.Resource, method, id string) {
	if method == http.MethodPut && id == "" {
		respond.WriteError(w, http.StatusBadRequest, "bad_request", "id is required")
		return
	}

	body := form(res)
	if body == nil {
		respond.WriteError(w, http.StatusNotFound, "not_found", "unknown resource")
		return
	}
	if err := handlers.DecodeJSON(w, r, body); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if fields := h.check(body); len(fields) > 0 {
		respond.WriteValidation(w, fmt.Sprintf("invalid %s form", res), fields)
		return
	}

	status := http.StatusOK
	if method == http.MethodPost {
		status = http.StatusCreated
	}
	h.forward(w, r, shop.Mutation{Resource: res, Method: method, ID: id, Body: body}, status)
}

// check returns a message per failing field, keyed by its JSON name.
func (h *Handler) check(v any) map[string]string {
	err := h.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + unit(fe)
	case "max":
		return "must be at most " + fe.Param() + unit(fe)
	case "gte":
		return "must be >= " + fe.Param()
	}
	return fmt.Sprintf("failed %q", fe.Tag())
}

// unit names what min and max count for the field: characters for strings,
// items for lists, nothing for numbers.
func unit(fe validator.FieldError) string {
	switch fe.Kind() {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return " items"
	}
	return ""
}

func (h *Handler) forward(w http.ResponseWriter, r *http.Request, m shop.Mutation, status int) {
	if h.mutator == nil {
		h.log.Error("admin handler misconfigured: Mutator is nil")
		respond.WriteInternalError(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	out, err := h.mutator.Mutate(ctx, m)
	if err != nil {
		if respond.WriteUpstreamError(w, err) {
			return
		}
		h.log.Error("admin mutation failed", "resource", m.Resource, "method", m.Method, "id", m.ID, "err", err)
		respond.WriteError(w, http.StatusBadGateway, "upstream_error", "failed to reach shop api")
		return
	}
	respond.WriteRaw(w, status, out)
}
