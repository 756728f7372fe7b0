package web

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"fitcoach/internal/adapters/http/middleware"
	"fitcoach/internal/application/orchestrators"
	accountDomain "fitcoach/internal/domain/account"
	measurementDomain "fitcoach/internal/domain/measurement"
	planDomain "fitcoach/internal/domain/plan"
	progressDomain "fitcoach/internal/domain/progress"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

const maxBodyBytes = 1 << 20

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// readForm parses the request body into r.Form. A JSON object body is
// flattened into form values so handlers read both encodings the same way.
func readForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if !isJSONBody(r) {
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("%w: %v", errBadRequest, err)
		}
		return nil
	}
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: invalid JSON body", errBadRequest)
	}
	values := url.Values{}
	for k, v := range body {
		switch v := v.(type) {
		case string:
			values.Set(k, v)
		case float64:
			values.Set(k, strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			values.Set(k, strconv.FormatBool(v))
		case nil:
			values.Set(k, "")
		default:
			return fmt.Errorf("%w: field %q must be a string or number", errBadRequest, k)
		}
	}
	r.Form = values
	r.PostForm = values
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("internal_error", "error", err.Error(), "where", "write_json")
	}
}

// respondOK finishes a successful mutation: HTML callers get a flash and a
// 303 to next, other callers get status and payload as JSON.
func respondOK(w http.ResponseWriter, r *http.Request, next, message string, status int, payload any) {
	if isHTMLRequest(r) {
		setFlash(w, flashSuccess, message)
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, payload)
}

// isValidation reports whether err is a user-correctable input error.
func isValidation(err error) bool {
	for _, target := range []error{
		measurementDomain.ErrInvalidMeasurement,
		planDomain.ErrEmptyContent,
		planDomain.ErrInvalidKind,
		planDomain.ErrContentTooLong,
		progressDomain.ErrEmptyNote,
		progressDomain.ErrNoteTooLong,
		accountDomain.ErrEmptyName,
		accountDomain.ErrEmptyEmail,
		accountDomain.ErrInvalidEmail,
		accountDomain.ErrEmptyPassword,
		accountDomain.ErrPasswordTooLong,
		accountDomain.ErrNameTooLong,
		accountDomain.ErrEmailTooLong,
		errBadRequest,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// errBadRequest marks malformed request bodies.
var errBadRequest = errors.New("malformed request")

// userMessages translates recoverable errors for flash messages. Order
// matters: ErrNoReadings wraps ErrInvalidMeasurement.
var userMessages = []struct {
	err error
	msg string
}{
	{orchestrators.ErrInvalidCredentials, "Email o contraseña incorrectos."},
	{accountDomain.ErrDuplicateEmail, "Ya existe una cuenta con ese email."},
	{accountDomain.ErrNotActive, "Tu cuenta aún no está activa. Completa el pago para registrar tu progreso."},
	{accountDomain.ErrEmptyName, "El nombre es obligatorio."},
	{accountDomain.ErrNameTooLong, fmt.Sprintf("El nombre no puede superar %d caracteres.", accountDomain.MaxNameLength)},
	{accountDomain.ErrEmptyEmail, "El email es obligatorio."},
	{accountDomain.ErrEmailTooLong, fmt.Sprintf("El email no puede superar %d caracteres.", accountDomain.MaxEmailLength)},
	{accountDomain.ErrInvalidEmail, "El email no es válido."},
	{accountDomain.ErrEmptyPassword, "La contraseña es obligatoria."},
	{accountDomain.ErrPasswordTooLong, fmt.Sprintf("La contraseña no puede superar %d bytes.", accountDomain.MaxPasswordBytes)},
	{measurementDomain.ErrNoReadings, "Introduce al menos una medida o una nota."},
	{measurementDomain.ErrInvalidMeasurement, "Las medidas deben ser números positivos."},
	{planDomain.ErrEmptyContent, "El plan no puede estar vacío."},
	{planDomain.ErrContentTooLong, fmt.Sprintf("El plan no puede superar %d caracteres.", planDomain.MaxContentLength)},
	{planDomain.ErrInvalidKind, "Tipo de plan no válido."},
	{progressDomain.ErrEmptyNote, "La nota no puede estar vacía."},
	{progressDomain.ErrNoteTooLong, fmt.Sprintf("La nota no puede superar %d caracteres.", progressDomain.MaxNoteLength)},
	{errBadRequest, "La solicitud no es válida."},
}

// userMessage returns the Spanish text shown to the user for err.
func userMessage(err error) string {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return "No se pudo completar la operación."
}

// respondError maps a domain or access error onto the response. Recoverable
// errors on HTML requests flash a message and redirect to back.
func respondError(w http.ResponseWriter, r *http.Request, err error, back string) {
	html := isHTMLRequest(r)
	var status int
	switch {
	case errors.Is(err, middleware.ErrUnauthenticated):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	case errors.Is(err, middleware.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	case errors.Is(err, orchestrators.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		if html {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	case errors.Is(err, orchestrators.ErrInvalidCredentials):
		status, back = http.StatusUnauthorized, "/login"
	case errors.Is(err, accountDomain.ErrDuplicateEmail):
		status = http.StatusConflict
	case errors.Is(err, accountDomain.ErrNotActive):
		status = http.StatusForbidden
	case isValidation(err):
		status = http.StatusBadRequest
	default:
		internalError(w, err)
		return
	}

	if html {
		setFlash(w, flashError, userMessage(err))
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error(), "mensaje": userMessage(err)})
}

// guard evaluates the role guard before the handler body runs and passes the
// resolved identity explicitly.
func guard(role string, fn func(w http.ResponseWriter, r *http.Request, id accountDomain.Identity)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := middleware.IdentityFromContext(r.Context())
		if err := middleware.RoleRequired(id, role).Err(); err != nil {
			if errors.Is(err, middleware.ErrForbidden) {
				slog.Warn("access_denied", "user_id", id.UserID, "role", id.Role, "required", role, "path", r.URL.Path)
			}
			respondError(w, r, err, "")
			return
		}
		fn(w, r, id)
	}
}

// pageData is the common envelope every template receives.
type pageData struct {
	Identity accountDomain.Identity
	Flash    flash
	Data     any
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	id := middleware.IdentityFromContext(r.Context())

	funcMap := template.FuncMap{
		"csrfToken":  func() string { return csrf.Token(r) },
		"isLoggedIn": func() bool { return !id.IsAnonymous() },
		"isAdmin":    func() bool { return id.Role == accountDomain.RoleAdmin },
		"homePath":   func() string { return orchestrators.HomePath(id.Role) },
		"list":       func(items ...string) []string { return items },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"reading": func(v *float64) string {
			if v == nil {
				return "-"
			}
			return strconv.FormatFloat(*v, 'f', -1, 64)
		},
		"fmtTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Local().Format("2006-01-02 15:04")
		},
		"fmtFloat": func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, fmt.Errorf("parse template %s: %w", templateName, err))
		return
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, pageData{Identity: id, Flash: popFlash(w, r), Data: data}); err != nil {
		internalError(w, fmt.Errorf("render template %s: %w", templateName, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}
