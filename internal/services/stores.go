package services

import (
	"context"

	"worklog-backend/internal/models"
)

// The services depend on narrow store interfaces rather than the concrete
// pgx repositories, so lifecycle and fan-out rules can be tested against
// in-memory implementations. The repositories package satisfies all of them.

type WorkLogStore interface {
	Create(ctx context.Context, wl *models.WorkLog) error
	Get(ctx context.Context, id int) (*models.WorkLog, error)
	UpdateDraft(ctx context.Context, wl *models.WorkLog) error
	DeleteDraft(ctx context.Context, id, teamLeaderID int) error
	AppendPhoto(ctx context.Context, id, teamLeaderID int, photo models.Photo) error
	AppendDocument(ctx context.Context, id, teamLeaderID int, doc models.Document) error
	List(ctx context.Context, filter models.LogFilter) ([]models.WorkLog, error)

	// Transition is the compare-and-swap status change: the status UPDATE
	// guarded by the expected current status and the notification inserts
	// commit as one unit, or not at all.
	Transition(ctx context.Context, id int, from, to models.LogStatus, actorID int, notifications []models.Notification) error
}

type NotificationStore interface {
	Get(ctx context.Context, id int) (*models.Notification, error)
	ListByRecipient(ctx context.Context, recipientID int, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, id int) error
	MarkAllRead(ctx context.Context, recipientID int) (int, error)
	UnreadCount(ctx context.Context, recipientID int) (int, error)
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
}

type ProjectStore interface {
	Create(ctx context.Context, project *models.Project) error
	Get(ctx context.Context, id int) (*models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
}

type EmployeeStore interface {
	Create(ctx context.Context, employee *models.Employee) error
	List(ctx context.Context) ([]models.Employee, error)
}

// Notifier pushes committed notifications to connected clients. Optional;
// the websocket hub implements it.
type Notifier interface {
	Publish(notifications ...models.Notification)
}
