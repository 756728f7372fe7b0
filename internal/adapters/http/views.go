package web

import (
	"time"

	"fitcoach/internal/application/orchestrators"
	"fitcoach/internal/application/projections"
	accountDomain "fitcoach/internal/domain/account"
	measurementDomain "fitcoach/internal/domain/measurement"
	planDomain "fitcoach/internal/domain/plan"
	progressDomain "fitcoach/internal/domain/progress"
)

// JSON shapes for non-HTML clients. Password hashes never leave the store layer.

type clientJSON struct {
	ID        string    `json:"id"`
	Nombre    string    `json:"nombre"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Estado    string    `json:"estado"`
	CreatedAt time.Time `json:"created_at"`
}

func toClientJSON(u accountDomain.User) clientJSON {
	return clientJSON{
		ID:        u.ID,
		Nombre:    u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Estado:    u.Estado,
		CreatedAt: u.CreatedAt,
	}
}

type planJSON struct {
	Tipo      planDomain.Kind `json:"tipo"`
	Contenido string          `json:"contenido"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func toPlanJSON(p *planDomain.Plan) *planJSON {
	if p == nil {
		return nil
	}
	return &planJSON{Tipo: p.Kind, Contenido: p.Content, UpdatedAt: p.UpdatedAt}
}

type measurementJSON struct {
	ID        string    `json:"id"`
	Peso      *float64  `json:"peso"`
	Altura    *float64  `json:"altura"`
	Cintura   *float64  `json:"cintura"`
	Grasa     *float64  `json:"grasa"`
	Origen    string    `json:"origen"`
	IMC       *float64  `json:"imc,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toMeasurementJSON(m measurementDomain.Measurement) measurementJSON {
	out := measurementJSON{
		ID:        m.ID,
		Peso:      m.Weight,
		Altura:    m.Height,
		Cintura:   m.Waist,
		Grasa:     m.BodyFat,
		Origen:    m.Source,
		CreatedAt: m.CreatedAt,
	}
	if bmi, ok := m.BMI(); ok {
		out.IMC = &bmi
	}
	return out
}

type noteJSON struct {
	ID        string    `json:"id"`
	Nota      string    `json:"nota"`
	CreatedAt time.Time `json:"created_at"`
}

func toNoteJSON(n progressDomain.Note) noteJSON {
	return noteJSON{ID: n.ID, Nota: n.Content, CreatedAt: n.CreatedAt}
}

type recordJSON struct {
	Cliente       clientJSON        `json:"cliente"`
	Dieta         *planJSON         `json:"dieta"`
	Entrenamiento *planJSON         `json:"entrenamiento"`
	Medidas       []measurementJSON `json:"medidas"`
	Progresos     []noteJSON        `json:"progresos"`
}

func toRecordJSON(rec projections.GetClientRecordResult) recordJSON {
	out := recordJSON{
		Cliente:       toClientJSON(rec.Client),
		Dieta:         toPlanJSON(rec.Diet),
		Entrenamiento: toPlanJSON(rec.Training),
		Medidas:       make([]measurementJSON, 0, len(rec.Measurements)),
		Progresos:     make([]noteJSON, 0, len(rec.Notes)),
	}
	for _, m := range rec.Measurements {
		out.Medidas = append(out.Medidas, toMeasurementJSON(m.Measurement))
	}
	for _, n := range rec.Notes {
		out.Progresos = append(out.Progresos, toNoteJSON(n))
	}
	return out
}

type submissionJSON struct {
	Medida   *measurementJSON `json:"medida,omitempty"`
	Progreso *noteJSON        `json:"progreso,omitempty"`
}

func toSubmissionJSON(res orchestrators.SubmissionResult) submissionJSON {
	var out submissionJSON
	if res.Measurement != nil {
		m := toMeasurementJSON(*res.Measurement)
		out.Medida = &m
	}
	if res.Note != nil {
		n := toNoteJSON(*res.Note)
		out.Progreso = &n
	}
	return out
}
