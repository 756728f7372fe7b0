package web

import (
	"net/http"
	"strconv"
	"time"

	"fitcoach/internal/adapters/http/perf"
	auditStore "fitcoach/internal/adapters/storage/audit"
	accountDomain "fitcoach/internal/domain/account"
	auditDomain "fitcoach/internal/domain/audit"
)

// handleAdminAuditTrail renders recent audit events (GET /admin/auditoria)
// PRE: caller is an admin
// POST: Renders events newest first with optional category/actor/resource filters
func handleAdminAuditTrail(w http.ResponseWriter, r *http.Request, _ accountDomain.Identity) {
	q := r.URL.Query()
	filter := auditStore.Filter{
		Category:   auditDomain.Category(q.Get("category")),
		ActorID:    q.Get("actor_id"),
		ResourceID: q.Get("resource_id"),
	}

	// Parse limit, default to 100
	limit := 100
	if limitStr := q.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	events, err := stores.Audit.List(r.Context(), filter, limit)
	if err != nil {
		internalError(w, err)
		return
	}

	if !isHTMLRequest(r) {
		if events == nil {
			events = []auditDomain.Event{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": events, "limit": limit})
		return
	}
	renderTemplate(w, r, "admin_auditoria.html", map[string]any{
		"Events": events,
		"Filter": filter,
		"Limit":  limit,
	})
}

// handleAdminPerformance returns the request/query timing snapshot as JSON (GET /admin/rendimiento)
// The window defaults to 60 minutes; ?minutes= overrides it (1..1440).
func handleAdminPerformance(w http.ResponseWriter, r *http.Request, _ accountDomain.Identity) {
	minutes := 60
	if m, err := strconv.Atoi(r.URL.Query().Get("minutes")); err == nil && m > 0 && m <= 1440 {
		minutes = m
	}
	since := timeNow().Add(-time.Duration(minutes) * time.Minute)

	var snap perf.Snapshot
	if perfCollector != nil {
		snap = perfCollector.Snapshot(since, 10)
	} else {
		snap.Since = since
	}
	writeJSON(w, http.StatusOK, snap)
}
