package models

import "time"

// LogStatus is the lifecycle state of a work log. Transitions are
// forward-only: draft -> submitted -> approved.
type LogStatus string

const (
	StatusDraft     LogStatus = "draft"
	StatusSubmitted LogStatus = "submitted"
	StatusApproved  LogStatus = "approved"
)

// Document kinds accepted on a work log.
const (
	DocumentDeliveryNote = "delivery_note"
	DocumentReceipt      = "receipt"
	DocumentInvoice      = "invoice"
	DocumentOther        = "other"
)

// ValidDocumentKind reports whether kind is one of the accepted document kinds.
func ValidDocumentKind(kind string) bool {
	switch kind {
	case DocumentDeliveryNote, DocumentReceipt, DocumentInvoice, DocumentOther:
		return true
	}
	return false
}

// MaterialUsage is one line of the materials table on a work log.
type MaterialUsage struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Notes    string  `json:"notes,omitempty"`
}

// Photo is an uploaded site photo attached to a work log.
type Photo struct {
	Path        string `json:"path"`
	Description string `json:"description,omitempty"`
}

// Document is an uploaded delivery note, receipt or invoice attached to a log.
type Document struct {
	Path         string    `json:"path"`
	OriginalName string    `json:"original_name"`
	Kind         string    `json:"kind"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// WorkLog is one team leader's daily report for one site and date.
type WorkLog struct {
	ID                int             `json:"id"`
	LogDate           time.Time       `json:"log_date"`
	ProjectID         int             `json:"project_id"`
	ProjectName       string          `json:"project_name,omitempty"`
	TeamLeaderID      int             `json:"team_leader_id"`
	TeamLeaderName    string          `json:"team_leader_name,omitempty"`
	StartTime         string          `json:"start_time"` // "HH:MM"
	EndTime           string          `json:"end_time"`   // "HH:MM"
	Weather           string          `json:"weather,omitempty"`
	WorkDescription   string          `json:"work_description"`
	IssuesEncountered string          `json:"issues_encountered,omitempty"`
	NextSteps         string          `json:"next_steps,omitempty"`
	EmployeeIDs       []int           `json:"employee_ids"`
	MaterialsUsed     []MaterialUsage `json:"materials_used"`
	Photos            []Photo         `json:"photos"`
	Documents         []Document      `json:"documents"`
	Status            LogStatus       `json:"status"`
	SubmittedAt       *time.Time      `json:"submitted_at,omitempty"`
	ApprovedAt        *time.Time      `json:"approved_at,omitempty"`
	ApprovedByUserID  *int            `json:"approved_by_user_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// WorkLogInput carries the caller-editable fields of a work log. The same
// shape is used for creation and for draft updates: an update replaces the
// editable fields wholesale.
type WorkLogInput struct {
	Date              string          `json:"date"` // "YYYY-MM-DD"
	ProjectID         int             `json:"project_id"`
	StartTime         string          `json:"start_time"`
	EndTime           string          `json:"end_time"`
	Weather           string          `json:"weather"`
	WorkDescription   string          `json:"work_description"`
	IssuesEncountered string          `json:"issues_encountered"`
	NextSteps         string          `json:"next_steps"`
	EmployeeIDs       []int           `json:"employee_ids"`
	MaterialsUsed     []MaterialUsage `json:"materials_used"`
}

// LogFilter is the query contract for listing work logs. All set fields are
// AND-combined; nil/empty fields leave that dimension unconstrained.
type LogFilter struct {
	StartDate    *time.Time // inclusive, on the log's date
	EndDate      *time.Time // inclusive
	ProjectID    *int
	Status       *LogStatus
	TeamLeaderID *int
	Search       string // case-insensitive substring of work_description
}
