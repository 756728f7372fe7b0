package web

import (
	"net/http"

	"fitcoach/internal/application/orchestrators"
	"fitcoach/internal/application/projections"
	accountDomain "fitcoach/internal/domain/account"
	measurementDomain "fitcoach/internal/domain/measurement"
)

const clientePanelPath = "/cliente/panel"

func clientRecordDeps() projections.GetClientRecordDeps {
	return projections.GetClientRecordDeps{
		ClientStore:      stores.Accounts,
		DietStore:        stores.Diets,
		TrainingStore:    stores.Trainings,
		MeasurementStore: stores.Measurements,
		ProgressStore:    stores.Progress,
	}
}

func activateDeps() orchestrators.ActivateDeps {
	return orchestrators.ActivateDeps{
		AccountStore: stores.Accounts,
		Mailer:       emailSender,
		LoginURL:     loginURL,
		Audit:        stores.Audit,
	}
}

func submissionDeps() orchestrators.SubmissionDeps {
	return orchestrators.SubmissionDeps{
		MeasurementStore: stores.Measurements,
		ProgressStore:    stores.Progress,
		GenerateID:       generateID,
		Now:              timeNow,
	}
}

// submissionForm reads the shared note/measurement form fields.
func submissionForm(r *http.Request) orchestrators.SubmissionForm {
	return orchestrators.SubmissionForm{
		Note: r.FormValue("nota"),
		Measurement: measurementDomain.Form{
			Weight:  r.FormValue("peso"),
			Height:  r.FormValue("altura"),
			Waist:   r.FormValue("cintura"),
			BodyFat: r.FormValue("grasa"),
		},
	}
}

// handleClientePanel shows the caller's own plans, measurements and notes (GET /cliente/panel)
// PRE: caller is a cliente (any estado)
func handleClientePanel(w http.ResponseWriter, r *http.Request, id accountDomain.Identity) {
	record, err := projections.QueryGetClientRecord(r.Context(), projections.GetClientRecordQuery{ClientID: id.UserID}, clientRecordDeps())
	if err != nil {
		respondError(w, r, err, "/")
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, toRecordJSON(record))
		return
	}
	renderTemplate(w, r, "cliente_panel.html", record)
}

// handleClientePagar activates the caller's own account (POST /cliente/pagar)
// POST: estado is activo; repeating the request is harmless
func handleClientePagar(w http.ResponseWriter, r *http.Request, id accountDomain.Identity) {
	changed, err := orchestrators.ExecuteSelfActivate(r.Context(), id, activateDeps())
	if err != nil {
		respondError(w, r, err, clientePanelPath)
		return
	}
	message := "Pago registrado. Tu cuenta está activa."
	if !changed {
		message = "Tu cuenta ya estaba activa."
	}
	respondOK(w, r, clientePanelPath, message, http.StatusOK, map[string]any{
		"estado":  accountDomain.EstadoActivo,
		"changed": changed,
	})
}

// handleClienteMedidas records a progress note or a measurement (POST /cliente/medidas)
// PRE: caller is an activo cliente, otherwise ErrNotActive
func handleClienteMedidas(w http.ResponseWriter, r *http.Request, id accountDomain.Identity) {
	if err := readForm(w, r); err != nil {
		respondError(w, r, err, clientePanelPath)
		return
	}
	result, err := orchestrators.ExecuteClientSubmission(r.Context(), id, submissionForm(r), submissionDeps())
	if err != nil {
		respondError(w, r, err, clientePanelPath)
		return
	}
	message := "Medidas guardadas."
	if result.Note != nil {
		message = "Nota de progreso guardada."
	}
	respondOK(w, r, clientePanelPath, message, http.StatusCreated, toSubmissionJSON(result))
}
