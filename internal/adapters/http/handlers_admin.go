package web

import (
	"net/http"

	"fitcoach/internal/application/listutil"
	"fitcoach/internal/application/orchestrators"
	"fitcoach/internal/application/projections"
	accountDomain "fitcoach/internal/domain/account"
	planDomain "fitcoach/internal/domain/plan"
)

const adminPanelPath = "/admin/panel"

func clientPath(id string) string {
	return "/admin/clientes/" + id
}

// handleAdminPanel lists clientes (GET /admin/panel?q=&estado=&sort=&dir=&page=&per_page=)
func handleAdminPanel(w http.ResponseWriter, r *http.Request, _ accountDomain.Identity) {
	query := projections.GetClientListQuery{
		Params: listutil.Parse(r.URL.Query(), projections.ClientSortColumns, projections.ClientFilterKeys),
	}
	list, err := projections.QueryGetClientList(r.Context(), query, projections.GetClientListDeps{ClientStore: stores.Accounts})
	if err != nil {
		internalError(w, err)
		return
	}
	if !isHTMLRequest(r) {
		clients := make([]clientJSON, 0, len(list.Clients))
		for _, c := range list.Clients {
			clients = append(clients, toClientJSON(c))
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"clientes":   clients,
			"pendientes": list.PendingCount,
			"activos":    list.ActiveCount,
			"pagina":     list.Page.Page,
			"paginas":    list.Page.TotalPages,
			"total":      list.Page.Total,
		})
		return
	}
	renderTemplate(w, r, "admin_panel.html", list)
}

// handleAdminCreateClient creates a cliente with an admin-chosen estado (POST /admin/clientes/crear)
func handleAdminCreateClient(w http.ResponseWriter, r *http.Request, id accountDomain.Identity) {
	if err := readForm(w, r); err != nil {
		respondError(w, r, err, adminPanelPath)
		return
	}
	input := orchestrators.CreateClientInput{
		Actor:    id,
		Name:     r.FormValue("nombre"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Estado:   r.FormValue("estado"),
	}
	deps := orchestrators.CreateClientDeps{
		AccountStore: stores.Accounts,
		GenerateID:   generateID,
		Now:          timeNow,
		Audit:        stores.Audit,
	}

	u, err := orchestrators.ExecuteCreateClient(r.Context(), input, deps)
	if err != nil {
		respondError(w, r, err, adminPanelPath)
		return
	}
	respondOK(w, r, adminPanelPath, "Cliente creado: "+u.Email, http.StatusCreated, toClientJSON(u))
}

// handleAdminClientDetail shows one cliente with everything stored for them (GET /admin/clientes/{id})
// POST: 404 for unknown ids and for admin accounts
func handleAdminClientDetail(w http.ResponseWriter, r *http.Request, _ accountDomain.Identity) {
	query := projections.GetClientRecordQuery{ClientID: r.PathValue("id")}
	record, err := projections.QueryGetClientRecord(r.Context(), query, clientRecordDeps())
	if err != nil {
		respondError(w, r, err, adminPanelPath)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, toRecordJSON(record))
		return
	}
	renderTemplate(w, r, "admin_cliente.html", record)
}

// handleAdminUpdateClient edits name, email and estado (POST /admin/clientes/{id}/actualizar)
func handleAdminUpdateClient(w http.ResponseWriter, r *http.Request, id accountDomain.Identity) {
	clientID := r.PathValue("id")
	if err := readForm(w, r); err != nil {
		respondError(w, r, err, clientPath(clientID))
		return
	}
	input := orchestrators.UpdateClientInput{
		Actor:    id,
		ClientID: clientID,
		Name:     r.FormValue("nombre"),
		Email:    r.FormValue("email"),
		Estado:   r.FormValue("estado"),
	}
	deps := orchestrators.UpdateClientDeps{
		AccountStore: stores.Accounts,
		Mailer:       emailSender,
		LoginURL:     loginURL,
		Audit:        stores.Audit,
	}

	u, err := orchestrators.ExecuteUpdateClient(r.Context(), input, deps)
	if err != nil {
		respondError(w, r, err, clientPath(clientID))
		return
	}
	respondOK(w, r, clientPath(clientID), "Cliente actualizado.", http.StatusOK, toClientJSON(u))
}

// handleAdminActivate activates a cliente (POST /admin/clientes/{id}/activar)
func handleAdminActivate(w http.ResponseWriter, r *http.Request, id accountDomain.Identity) {
	clientID := r.PathValue("id")
	input := orchestrators.AdminActivateInput{Actor: id, ClientID: clientID}
	changed, err := orchestrators.ExecuteAdminActivate(r.Context(), input, activateDeps())
	if err != nil {
		respondError(w, r, err, clientPath(clientID))
		return
	}
	message := "Cliente activado."
	if !changed {
		message = "El cliente ya estaba activo."
	}
	respondOK(w, r, clientPath(clientID), message, http.StatusOK, map[string]any{
		"estado":  accountDomain.EstadoActivo,
		"changed": changed,
	})
}

// handleAdminDeleteClient deletes a cliente and everything they own (POST /admin/clientes/{id}/eliminar)
func handleAdminDeleteClient(w http.ResponseWriter, r *http.Request, id accountDomain.Identity) {
	input := orchestrators.DeleteClientInput{Actor: id, ClientID: r.PathValue("id")}
	deps := orchestrators.DeleteClientDeps{AccountStore: stores.Accounts, Audit: stores.Audit}
	if err := orchestrators.ExecuteDeleteClient(r.Context(), input, deps); err != nil {
		respondError(w, r, err, adminPanelPath)
		return
	}
	respondOK(w, r, adminPanelPath, "Cliente eliminado.", http.StatusNoContent, nil)
}

// handleAdminSavePlan replaces the cliente's diet or training plan
// (POST /admin/clientes/{id}/dieta, /admin/clientes/{id}/entrenamiento)
func handleAdminSavePlan(kind planDomain.Kind) func(http.ResponseWriter, *http.Request, accountDomain.Identity) {
	message := "Dieta guardada."
	if kind == planDomain.KindTraining {
		message = "Entrenamiento guardado."
	}
	return func(w http.ResponseWriter, r *http.Request, id accountDomain.Identity) {
		clientID := r.PathValue("id")
		if err := readForm(w, r); err != nil {
			respondError(w, r, err, clientPath(clientID))
			return
		}
		input := orchestrators.SavePlanInput{
			Actor:    id,
			ClientID: clientID,
			Kind:     kind,
			Content:  r.FormValue("contenido"),
		}
		deps := orchestrators.SavePlanDeps{
			AccountStore:  stores.Accounts,
			DietStore:     stores.Diets,
			TrainingStore: stores.Trainings,
			Now:           timeNow,
			Audit:         stores.Audit,
		}

		p, err := orchestrators.ExecuteSavePlan(r.Context(), input, deps)
		if err != nil {
			respondError(w, r, err, clientPath(clientID))
			return
		}
		respondOK(w, r, clientPath(clientID), message, http.StatusOK, toPlanJSON(&p))
	}
}

// handleAdminSubmission records a note or measurement on a cliente's behalf (POST /admin/clientes/{id}/medidas)
// INVARIANT: not gated by the cliente's estado
func handleAdminSubmission(w http.ResponseWriter, r *http.Request, id accountDomain.Identity) {
	clientID := r.PathValue("id")
	if err := readForm(w, r); err != nil {
		respondError(w, r, err, clientPath(clientID))
		return
	}
	input := orchestrators.AdminSubmissionInput{Actor: id, ClientID: clientID, Form: submissionForm(r)}
	deps := orchestrators.AdminSubmissionDeps{
		SubmissionDeps: submissionDeps(),
		AccountStore:   stores.Accounts,
		Audit:          stores.Audit,
	}

	result, err := orchestrators.ExecuteAdminSubmission(r.Context(), input, deps)
	if err != nil {
		respondError(w, r, err, clientPath(clientID))
		return
	}
	message := "Medidas guardadas."
	if result.Note != nil {
		message = "Nota de progreso guardada."
	}
	respondOK(w, r, clientPath(clientID), message, http.StatusCreated, toSubmissionJSON(result))
}

// handleAdminProgressNote appends a progress note (POST /admin/clientes/{id}/progreso)
func handleAdminProgressNote(w http.ResponseWriter, r *http.Request, id accountDomain.Identity) {
	clientID := r.PathValue("id")
	if err := readForm(w, r); err != nil {
		respondError(w, r, err, clientPath(clientID))
		return
	}
	input := orchestrators.AddProgressNoteInput{Actor: id, ClientID: clientID, Note: r.FormValue("nota")}
	deps := orchestrators.AddProgressNoteDeps{
		AccountStore:  stores.Accounts,
		ProgressStore: stores.Progress,
		GenerateID:    generateID,
		Now:           timeNow,
		Audit:         stores.Audit,
	}

	n, err := orchestrators.ExecuteAddProgressNote(r.Context(), input, deps)
	if err != nil {
		respondError(w, r, err, clientPath(clientID))
		return
	}
	respondOK(w, r, clientPath(clientID), "Nota de progreso guardada.", http.StatusCreated, toNoteJSON(n))
}
