package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-webform/pkg/contactdefaults"
	"github.com/goliatone/go-webform/pkg/fields"
	"github.com/goliatone/go-webform/pkg/model"
)

const (
	CodeSiteCheck       = "site_check_error"
	CodeMalformed       = "malformed_request"
	CodeNotFound        = "not_found"
	CodeUnavailable     = "not_configured"
	CodeThemeError      = "theme_error"
	CodeFieldsError     = "fields_error"
	CodeContactDefaults = "contact_defaults_error"

	MessageMalformed = "Malformed request"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// ErrorPayload is the JSON body of every error response.
type ErrorPayload struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Data      ErrorData `json:"data"`
	RequestID string    `json:"request_id,omitempty"`
}

type ErrorData struct {
	Status int `json:"status"`
}

type fieldsResponse struct {
	Token string        `json:"token"`
	Data  []model.Field `json:"data"`
}

type handlers struct {
	opts Options
}

func (h handlers) siteLinkCheck(w http.ResponseWriter, r *http.Request) {
	params, err := parseParams(r, h.opts.MaxBodyBytes)
	if err != nil || !params.Has("id") || !params.Has("token") {
		h.writeError(w, http.StatusBadRequest, CodeSiteCheck, MessageMalformed)
		return
	}
	if h.opts.Checker == nil {
		h.writeError(w, http.StatusServiceUnavailable, CodeUnavailable, "Site keys are not configured")
		return
	}

	ok, err := h.opts.Checker.CheckAPIKey(r.Context(), params.String("id"), params.String("token"), h.opts.KeyPrefix)
	if err != nil {
		h.opts.Logger.Error("site link check failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, CodeSiteCheck, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ok)
}

func (h handlers) formSubmit(w http.ResponseWriter, r *http.Request) {
	params, err := parseParams(r, h.opts.MaxBodyBytes)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, CodeMalformed, MessageMalformed)
		return
	}
	writeJSON(w, http.StatusOK, params)
}

func (h handlers) theme(w http.ResponseWriter, r *http.Request) {
	if h.opts.Themes == nil {
		h.writeError(w, http.StatusServiceUnavailable, CodeUnavailable, "Themes are not configured")
		return
	}
	name := h.opts.DefaultTheme
	if values, ok := r.URL.Query()["theme"]; ok && len(values) > 0 {
		name = values[0]
	}

	css, err := h.opts.Themes.Resolve(r.Context(), name, chi.URLParam(r, "token"))
	if err != nil {
		h.opts.Logger.Error("theme resolve failed", zap.String("theme", name), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, CodeThemeError, "Unable to load form")
		return
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(css)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write([]byte(css))
}

func (h handlers) fields(w http.ResponseWriter, r *http.Request) {
	if h.opts.Meta == nil {
		h.writeError(w, http.StatusServiceUnavailable, CodeUnavailable, "Forms are not configured")
		return
	}
	token := chi.URLParam(r, "token")
	meta, ok, err := h.opts.Meta.Meta(r.Context(), token)
	if err != nil {
		h.opts.Logger.Error("form meta lookup failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, CodeFieldsError, "Unable to load form")
		return
	}
	if !ok {
		h.writeError(w, http.StatusNotFound, CodeNotFound, "Form not found")
		return
	}

	ordered := fields.OrderMeta(meta)
	if ordered == nil {
		ordered = []model.Field{}
	}
	writeJSON(w, http.StatusOK, fieldsResponse{Token: token, Data: ordered})
}

func (h handlers) contactDefaults(w http.ResponseWriter, r *http.Request) {
	if h.opts.Contacts == nil {
		h.writeError(w, http.StatusServiceUnavailable, CodeUnavailable, "Contact defaults are not configured")
		return
	}
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	defaults, err := h.opts.Contacts.Fetch(r.Context(), force)
	if err != nil {
		status := http.StatusInternalServerError
		var remote *contactdefaults.RemoteFetchFailedError
		switch {
		case errors.Is(err, contactdefaults.ErrMissingConfiguration):
			status = http.StatusServiceUnavailable
		case errors.As(err, &remote), errors.Is(err, contactdefaults.ErrMalformedRemoteResponse):
			status = http.StatusBadGateway
		}
		h.opts.Logger.Warn("contact defaults unavailable", zap.Error(err))
		h.writeError(w, status, CodeContactDefaults, contactdefaults.Message(err))
		return
	}
	writeJSON(w, http.StatusOK, defaults)
}

func (h handlers) document(w http.ResponseWriter, r *http.Request) {
	if len(h.opts.Document) == 0 {
		h.writeError(w, http.StatusNotFound, CodeNotFound, "No API document")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.opts.Document)
}

func (h handlers) guard(next http.Handler) http.Handler {
	if h.opts.Guard == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.opts.Guard(r); err != nil {
			code := http.StatusForbidden
			var httpErr HTTPError
			if errors.As(err, &httpErr) && httpErr != nil {
				code = httpErr.StatusCode()
			}
			h.writeError(w, code, strings.ToLower(strings.ReplaceAll(http.StatusText(code), " ", "_")), http.StatusText(code))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h handlers) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorPayload{
		Code:      code,
		Message:   message,
		Data:      ErrorData{Status: status},
		RequestID: newRequestID(),
	})
}

func newRequestID() string { return "req_" + uuid.NewString() }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}
