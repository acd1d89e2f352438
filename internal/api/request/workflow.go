package request

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/edvin/flowgate/internal/model"
)

var validate = validator.New()

// TriggerKeyRoute is the validated shape of the trigger URL parameters.
type TriggerKeyRoute struct {
	Workspace string `validate:"required,slug"`
	Segment   string `validate:"required,slug"`
}

func init() {
	validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRegex.MatchString(fl.Field().String())
	})
}

// TriggerKey extracts and validates the (workspace, segment) routing
// key from the request URL.
func TriggerKey(r *http.Request) (model.TriggerKey, error) {
	route := TriggerKeyRoute{
		Workspace: chi.URLParam(r, "workspace"),
		Segment:   chi.URLParam(r, "segment"),
	}
	if err := validate.Struct(route); err != nil {
		return model.TriggerKey{}, fmt.Errorf("invalid trigger key: %w", err)
	}
	return model.TriggerKey{Workspace: route.Workspace, Segment: route.Segment}, nil
}

// Payload reads the request body as raw JSON to pass through to the
// backend webhook. An empty body becomes an empty object.
func Payload(r *http.Request) (json.RawMessage, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if len(body) == 0 {
		return json.RawMessage(`{}`), nil
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("request body is not valid JSON")
	}
	return body, nil
}

// BearerToken extracts an optional bearer token from the Authorization
// header. Returns the empty string when no bearer token is present.
func BearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}
