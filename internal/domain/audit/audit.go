package audit

import (
	"time"

	"github.com/google/uuid"
)

// Category groups audit events by the part of the system they touch.
type Category string

const (
	CategoryAuth        Category = "auth"
	CategoryAccount     Category = "account"
	CategoryPlan        Category = "plan"
	CategoryMeasurement Category = "measurement"
	CategoryProgress    Category = "progress"
)

// Action represents the action that occurred.
type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionActivate Action = "activate"
	ActionLogin    Action = "login"
	ActionLogout   Action = "logout"
)

// Severity represents the severity level of an audit event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Event represents a single audit log entry.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	Severity     Severity  `json:"severity"`
	ActorID      string    `json:"actor_id"`
	ActorEmail   string    `json:"actor_email"`
	ActorRole    string    `json:"actor_role"`
	ResourceID   string    `json:"resource_id"`
	ResourceType string    `json:"resource_type"`
	Description  string    `json:"description"`
}

// NewEvent creates a new audit event stamped with the current time.
// PRE: action is non-empty
// POST: Returns an Event with a fresh ID and SeverityInfo
func NewEvent(actorID, actorEmail, actorRole string, category Category, action Action) Event {
	return Event{
		ID:         uuid.New().String(),
		Timestamp:  time.Now(),
		Category:   category,
		Action:     action,
		Severity:   SeverityInfo,
		ActorID:    actorID,
		ActorEmail: actorEmail,
		ActorRole:  actorRole,
	}
}

// WithSeverity sets the severity level.
func (e Event) WithSeverity(s Severity) Event {
	e.Severity = s
	return e
}

// WithResource sets resource information.
func (e Event) WithResource(resourceType, resourceID string) Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithDescription sets the event description.
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}
