package repositories

import (
	"context"
	"errors"

	"worklog-backend/internal/apperr"
	"worklog-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	DB *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

// Get retrieves a single notification, used for the ownership check on MarkRead.
func (r *NotificationRepository) Get(ctx context.Context, id int) (*models.Notification, error) {
	query := `
		SELECT id, recipient_id, work_log_id, event, message, read, created_at
		FROM notifications
		WHERE id = $1
	`

	n := &models.Notification{}
	err := r.DB.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.RecipientID, &n.WorkLogID, &n.Event, &n.Message, &n.Read, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("notification %d not found", id)
		}
		return nil, apperr.Storage(err, "get notification")
	}
	return n, nil
}

// ListByRecipient retrieves a recipient's notifications, newest first.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID int, unreadOnly bool) ([]models.Notification, error) {
	query := `
		SELECT id, recipient_id, work_log_id, event, message, read, created_at
		FROM notifications
		WHERE recipient_id = $1
	`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.DB.Query(ctx, query, recipientID)
	if err != nil {
		return nil, apperr.Storage(err, "list notifications")
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.ID, &n.RecipientID, &n.WorkLogID, &n.Event, &n.Message, &n.Read, &n.CreatedAt,
		); err != nil {
			return nil, apperr.Storage(err, "scan notification")
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err, "list notifications")
	}
	return notifications, nil
}

// MarkRead flips the read flag. The flag is monotonic, so marking an
// already-read notification affects zero rows and that is fine.
func (r *NotificationRepository) MarkRead(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND read = FALSE`, id)
	if err != nil {
		return apperr.Storage(err, "mark notification read")
	}
	return nil
}

// MarkAllRead marks every unread notification of the recipient and returns
// how many were flipped.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID int) (int, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND read = FALSE`, recipientID)
	if err != nil {
		return 0, apperr.Storage(err, "mark all notifications read")
	}
	return int(tag.RowsAffected()), nil
}

// UnreadCount counts a recipient's unread notifications.
func (r *NotificationRepository) UnreadCount(ctx context.Context, recipientID int) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND read = FALSE`, recipientID).
		Scan(&count)
	if err != nil {
		return 0, apperr.Storage(err, "count unread notifications")
	}
	return count, nil
}
