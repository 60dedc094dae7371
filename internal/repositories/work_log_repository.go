package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"worklog-backend/internal/apperr"
	"worklog-backend/internal/models"
	"worklog-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WorkLogRepository struct {
	DB *pgxpool.Pool
}

func NewWorkLogRepository(db *pgxpool.Pool) *WorkLogRepository {
	return &WorkLogRepository{DB: db}
}

const workLogColumns = `
	wl.id, wl.log_date, wl.project_id, p.name, wl.team_leader_id, u.full_name,
	wl.start_time, wl.end_time, wl.weather, wl.work_description,
	wl.issues_encountered, wl.next_steps, wl.employee_ids,
	wl.materials_used, wl.photos, wl.documents,
	wl.status, wl.submitted_at, wl.approved_at, wl.approved_by_user_id,
	wl.created_at, wl.updated_at`

const workLogFrom = `
	FROM work_logs wl
	JOIN projects p ON wl.project_id = p.id
	JOIN users u ON wl.team_leader_id = u.id`

func scanWorkLog(row pgx.Row) (*models.WorkLog, error) {
	wl := &models.WorkLog{}
	var materials, photos, documents []byte

	err := row.Scan(
		&wl.ID, &wl.LogDate, &wl.ProjectID, &wl.ProjectName, &wl.TeamLeaderID, &wl.TeamLeaderName,
		&wl.StartTime, &wl.EndTime, &wl.Weather, &wl.WorkDescription,
		&wl.IssuesEncountered, &wl.NextSteps, &wl.EmployeeIDs,
		&materials, &photos, &documents,
		&wl.Status, &wl.SubmittedAt, &wl.ApprovedAt, &wl.ApprovedByUserID,
		&wl.CreatedAt, &wl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(materials, &wl.MaterialsUsed); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(photos, &wl.Photos); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(documents, &wl.Documents); err != nil {
		return nil, err
	}
	if wl.EmployeeIDs == nil {
		wl.EmployeeIDs = []int{}
	}
	return wl, nil
}

// Create inserts a new draft work log.
func (r *WorkLogRepository) Create(ctx context.Context, wl *models.WorkLog) error {
	materials, err := json.Marshal(wl.MaterialsUsed)
	if err != nil {
		return apperr.Storage(err, "encode materials")
	}

	query := `
		INSERT INTO work_logs (
			log_date, project_id, team_leader_id, start_time, end_time, weather,
			work_description, issues_encountered, next_steps, employee_ids,
			materials_used, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'draft')
		RETURNING id, status, created_at, updated_at
	`

	err = r.DB.QueryRow(ctx, query,
		wl.LogDate, wl.ProjectID, wl.TeamLeaderID, wl.StartTime, wl.EndTime,
		wl.Weather, wl.WorkDescription, wl.IssuesEncountered, wl.NextSteps,
		wl.EmployeeIDs, materials,
	).Scan(&wl.ID, &wl.Status, &wl.CreatedAt, &wl.UpdatedAt)
	if err != nil {
		return apperr.Storage(err, "create work log")
	}
	if wl.MaterialsUsed == nil {
		wl.MaterialsUsed = []models.MaterialUsage{}
	}
	wl.Photos = []models.Photo{}
	wl.Documents = []models.Document{}
	return nil
}

// Get retrieves a work log with project and team leader names resolved.
func (r *WorkLogRepository) Get(ctx context.Context, id int) (*models.WorkLog, error) {
	query := `SELECT` + workLogColumns + workLogFrom + ` WHERE wl.id = $1`

	wl, err := scanWorkLog(r.DB.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("work log %d not found", id)
		}
		return nil, apperr.Storage(err, "get work log")
	}
	return wl, nil
}

// UpdateDraft replaces the editable fields of a draft. The WHERE clause
// repeats the owner and draft guards so a concurrent submit cannot slip
// content changes into a frozen log.
func (r *WorkLogRepository) UpdateDraft(ctx context.Context, wl *models.WorkLog) error {
	materials, err := json.Marshal(wl.MaterialsUsed)
	if err != nil {
		return apperr.Storage(err, "encode materials")
	}

	query := `
		UPDATE work_logs
		SET log_date = $1, project_id = $2, start_time = $3, end_time = $4,
		    weather = $5, work_description = $6, issues_encountered = $7,
		    next_steps = $8, employee_ids = $9, materials_used = $10,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $11 AND team_leader_id = $12 AND status = 'draft'
	`

	tag, err := r.DB.Exec(ctx, query,
		wl.LogDate, wl.ProjectID, wl.StartTime, wl.EndTime, wl.Weather,
		wl.WorkDescription, wl.IssuesEncountered, wl.NextSteps,
		wl.EmployeeIDs, materials, wl.ID, wl.TeamLeaderID,
	)
	if err != nil {
		return apperr.Storage(err, "update work log")
	}
	if tag.RowsAffected() == 0 {
		return apperr.InvalidState("work log %d is no longer an editable draft", wl.ID)
	}
	return nil
}

// DeleteDraft removes a draft owned by the team leader.
func (r *WorkLogRepository) DeleteDraft(ctx context.Context, id, teamLeaderID int) error {
	query := `DELETE FROM work_logs WHERE id = $1 AND team_leader_id = $2 AND status = 'draft'`

	tag, err := r.DB.Exec(ctx, query, id, teamLeaderID)
	if err != nil {
		return apperr.Storage(err, "delete work log")
	}
	if tag.RowsAffected() == 0 {
		return apperr.InvalidState("work log %d is no longer a deletable draft", id)
	}
	return nil
}

// AppendPhoto appends a photo reference to a draft.
func (r *WorkLogRepository) AppendPhoto(ctx context.Context, id, teamLeaderID int, photo models.Photo) error {
	encoded, err := json.Marshal([]models.Photo{photo})
	if err != nil {
		return apperr.Storage(err, "encode photo")
	}

	query := `
		UPDATE work_logs
		SET photos = photos || $1::jsonb, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND team_leader_id = $3 AND status = 'draft'
	`

	tag, err := r.DB.Exec(ctx, query, encoded, id, teamLeaderID)
	if err != nil {
		return apperr.Storage(err, "append photo")
	}
	if tag.RowsAffected() == 0 {
		return apperr.InvalidState("work log %d is no longer an editable draft", id)
	}
	return nil
}

// AppendDocument appends a document reference to a draft.
func (r *WorkLogRepository) AppendDocument(ctx context.Context, id, teamLeaderID int, doc models.Document) error {
	encoded, err := json.Marshal([]models.Document{doc})
	if err != nil {
		return apperr.Storage(err, "encode document")
	}

	query := `
		UPDATE work_logs
		SET documents = documents || $1::jsonb, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND team_leader_id = $3 AND status = 'draft'
	`

	tag, err := r.DB.Exec(ctx, query, encoded, id, teamLeaderID)
	if err != nil {
		return apperr.Storage(err, "append document")
	}
	if tag.RowsAffected() == 0 {
		return apperr.InvalidState("work log %d is no longer an editable draft", id)
	}
	return nil
}

// List retrieves work logs matching the filter. Ordering is stable:
// newest log date first, creation order within a date.
func (r *WorkLogRepository) List(ctx context.Context, filter models.LogFilter) ([]models.WorkLog, error) {
	var conditions []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.StartDate != nil {
		conditions = append(conditions, "wl.log_date >= "+arg(*filter.StartDate))
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "wl.log_date <= "+arg(*filter.EndDate))
	}
	if filter.ProjectID != nil {
		conditions = append(conditions, "wl.project_id = "+arg(*filter.ProjectID))
	}
	if filter.Status != nil {
		conditions = append(conditions, "wl.status = "+arg(*filter.Status))
	}
	if filter.TeamLeaderID != nil {
		conditions = append(conditions, "wl.team_leader_id = "+arg(*filter.TeamLeaderID))
	}
	if filter.Search != "" {
		conditions = append(conditions, "wl.work_description ILIKE "+arg("%"+filter.Search+"%"))
	}

	query := `SELECT` + workLogColumns + workLogFrom
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY wl.log_date DESC, wl.created_at ASC, wl.id ASC"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage(err, "list work logs")
	}
	defer rows.Close()

	logs := []models.WorkLog{}
	for rows.Next() {
		wl, err := scanWorkLog(rows)
		if err != nil {
			return nil, apperr.Storage(err, "scan work log")
		}
		logs = append(logs, *wl)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err, "list work logs")
	}
	return logs, nil
}

// Transition performs the compare-and-swap status change and inserts the
// fan-out notifications in the same transaction. The UPDATE is guarded by
// the expected current status; zero rows means a concurrent writer won the
// race and nothing (including notifications) is committed.
func (r *WorkLogRepository) Transition(ctx context.Context, id int, from, to models.LogStatus, actorID int, notifications []models.Notification) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return apperr.Storage(err, "begin transition")
	}
	defer tx.Rollback(ctx)

	now := timeutil.Now()
	var tag pgconn.CommandTag
	switch to {
	case models.StatusSubmitted:
		tag, err = tx.Exec(ctx, `
			UPDATE work_logs
			SET status = $1, submitted_at = $2, updated_at = $2
			WHERE id = $3 AND status = $4
		`, to, now, id, from)
	case models.StatusApproved:
		tag, err = tx.Exec(ctx, `
			UPDATE work_logs
			SET status = $1, approved_at = $2, approved_by_user_id = $3, updated_at = $2
			WHERE id = $4 AND status = $5
		`, to, now, actorID, id, from)
	default:
		return apperr.InvalidState("no transition to status %s", to)
	}
	if err != nil {
		return apperr.Storage(err, "transition work log")
	}

	if tag.RowsAffected() == 0 {
		// Distinguish a missing log from a lost race.
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM work_logs WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return apperr.Storage(err, "transition work log")
		}
		if !exists {
			return apperr.NotFound("work log %d not found", id)
		}
		return apperr.InvalidState("work log %d is not in status %s", id, from)
	}

	for i := range notifications {
		n := &notifications[i]
		err := tx.QueryRow(ctx, `
			INSERT INTO notifications (recipient_id, work_log_id, event, message)
			VALUES ($1, $2, $3, $4)
			RETURNING id, read, created_at
		`, n.RecipientID, n.WorkLogID, n.Event, n.Message).
			Scan(&n.ID, &n.Read, &n.CreatedAt)
		if err != nil {
			return apperr.Storage(err, "insert notification")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Storage(err, "commit transition")
	}
	return nil
}
