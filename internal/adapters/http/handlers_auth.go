package web

import (
	"net/http"

	"fitcoach/internal/adapters/http/middleware"
	"fitcoach/internal/application/orchestrators"
)

// handleIndex renders the landing page (GET /)
func handleIndex(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromContext(r.Context())
	if !isHTMLRequest(r) {
		body := map[string]any{"authenticated": !id.IsAnonymous()}
		if !id.IsAnonymous() {
			body["role"] = id.Role
			body["estado"] = id.Estado
			body["home"] = orchestrators.HomePath(id.Role)
		}
		writeJSON(w, http.StatusOK, body)
		return
	}
	renderTemplate(w, r, "index.html", nil)
}

// handleRegisterPage renders the self-registration form (GET /register)
func handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "register.html", nil)
}

// handleRegister creates a pendiente cliente (POST /register)
// PRE: none; registration never signs the caller in
// POST: 303 to /login with a flash, or 201 with the new cliente
func handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := readForm(w, r); err != nil {
		respondError(w, r, err, "/register")
		return
	}

	input := orchestrators.RegisterInput{
		Name:     r.FormValue("nombre"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	deps := orchestrators.RegisterDeps{
		AccountStore: stores.Accounts,
		GenerateID:   generateID,
		Now:          timeNow,
	}

	u, err := orchestrators.ExecuteRegister(r.Context(), input, deps)
	if err != nil {
		respondError(w, r, err, "/register")
		return
	}
	respondOK(w, r, "/login", "Cuenta creada. Ya puedes iniciar sesión.", http.StatusCreated, toClientJSON(u))
}

// handleLoginPage renders the login form, or sends signed-in users home (GET /login)
func handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if id := middleware.IdentityFromContext(r.Context()); !id.IsAnonymous() {
		http.Redirect(w, r, orchestrators.HomePath(id.Role), http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "login.html", nil)
}

// handleLogin authenticates and starts a session (POST /login)
// POST: session cookie set and 303 to the role's panel, or ErrInvalidCredentials
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := readForm(w, r); err != nil {
		respondError(w, r, err, "/login")
		return
	}

	input := orchestrators.LoginInput{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	deps := orchestrators.LoginDeps{
		AccountStore: stores.Accounts,
		Audit:        stores.Audit,
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
	if err != nil {
		respondError(w, r, err, "/login")
		return
	}

	token, err := sessions.Issue(result.UserID)
	if err != nil {
		internalError(w, err)
		return
	}
	sessions.SetSessionCookie(w, token)

	if isHTMLRequest(r) {
		http.Redirect(w, r, result.Redirect, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":       result.UserID,
		"role":     result.Role,
		"redirect": result.Redirect,
	})
}

// handleLogout clears the session unconditionally (POST /logout)
func handleLogout(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromContext(r.Context())
	orchestrators.ExecuteLogout(r.Context(), id, stores.Audit)
	middleware.ClearSessionCookie(w)

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
