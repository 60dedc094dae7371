package services

import (
	"context"
	"fmt"
	"time"

	"worklog-backend/internal/apperr"
	"worklog-backend/internal/cache"
	"worklog-backend/internal/metrics"
	"worklog-backend/internal/models"
	"worklog-backend/internal/timeutil"
)

// WorkLogService owns the daily log lifecycle: draft -> submitted ->
// approved, forward-only. Content is editable only by the owning team
// leader while the log is a draft; submit freezes it; approve is terminal.
type WorkLogService struct {
	Logs     WorkLogStore
	Users    UserStore
	Projects ProjectStore
	notifier Notifier
}

func NewWorkLogService(logs WorkLogStore, users UserStore, projects ProjectStore) *WorkLogService {
	return &WorkLogService{
		Logs:     logs,
		Users:    users,
		Projects: projects,
	}
}

// SetNotifier wires optional push delivery for committed notifications.
func (s *WorkLogService) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *WorkLogService) validate(ctx context.Context, input *models.WorkLogInput) (time.Time, error) {
	if input.Date == "" {
		return time.Time{}, apperr.Validation("date is required")
	}
	logDate, err := timeutil.ParseDate(input.Date)
	if err != nil {
		return time.Time{}, apperr.Validation("date must be YYYY-MM-DD")
	}
	if input.ProjectID == 0 {
		return time.Time{}, apperr.Validation("project is required")
	}
	if input.WorkDescription == "" {
		return time.Time{}, apperr.Validation("work description is required")
	}

	start, err := time.Parse(timeutil.ClockLayout, input.StartTime)
	if err != nil {
		return time.Time{}, apperr.Validation("start time must be HH:MM")
	}
	end, err := time.Parse(timeutil.ClockLayout, input.EndTime)
	if err != nil {
		return time.Time{}, apperr.Validation("end time must be HH:MM")
	}
	if !end.After(start) {
		return time.Time{}, apperr.Validation("end time must be after start time")
	}

	for _, m := range input.MaterialsUsed {
		if m.Name == "" {
			return time.Time{}, apperr.Validation("material name is required")
		}
		if m.Quantity <= 0 {
			return time.Time{}, apperr.Validation("material quantity must be positive")
		}
	}

	// Reject unknown projects up front for a clear error
	if _, err := s.Projects.Get(ctx, input.ProjectID); err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return time.Time{}, apperr.Validation("project %d does not exist", input.ProjectID)
		}
		return time.Time{}, err
	}

	return logDate, nil
}

// Create starts a new draft owned by the acting team leader.
func (s *WorkLogService) Create(ctx context.Context, actor models.Actor, input *models.WorkLogInput) (*models.WorkLog, error) {
	logDate, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}

	wl := &models.WorkLog{
		LogDate:           logDate,
		ProjectID:         input.ProjectID,
		TeamLeaderID:      actor.ID,
		StartTime:         input.StartTime,
		EndTime:           input.EndTime,
		Weather:           input.Weather,
		WorkDescription:   input.WorkDescription,
		IssuesEncountered: input.IssuesEncountered,
		NextSteps:         input.NextSteps,
		EmployeeIDs:       input.EmployeeIDs,
		MaterialsUsed:     input.MaterialsUsed,
	}
	if wl.EmployeeIDs == nil {
		wl.EmployeeIDs = []int{}
	}
	if wl.MaterialsUsed == nil {
		wl.MaterialsUsed = []models.MaterialUsage{}
	}

	if err := s.Logs.Create(ctx, wl); err != nil {
		return nil, err
	}

	cache.InvalidateWorkLogCaches(ctx)
	return wl, nil
}

// Get retrieves one log, scoped: team leaders see only their own.
func (s *WorkLogService) Get(ctx context.Context, actor models.Actor, id int) (*models.WorkLog, error) {
	wl, err := s.Logs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsManager() && wl.TeamLeaderID != actor.ID {
		return nil, apperr.Authorization("work log %d belongs to another team leader", id)
	}
	return wl, nil
}

// Update replaces the editable fields of a draft. Only the owner may edit,
// and only while the log is a draft.
func (s *WorkLogService) Update(ctx context.Context, actor models.Actor, id int, input *models.WorkLogInput) (*models.WorkLog, error) {
	current, err := s.Logs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.TeamLeaderID != actor.ID {
		return nil, apperr.Authorization("only the owning team leader can edit a work log")
	}
	if current.Status != models.StatusDraft {
		return nil, apperr.InvalidState("work log %d is %s and can no longer be edited", id, current.Status)
	}

	logDate, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}

	wl := &models.WorkLog{
		ID:                id,
		LogDate:           logDate,
		ProjectID:         input.ProjectID,
		TeamLeaderID:      actor.ID,
		StartTime:         input.StartTime,
		EndTime:           input.EndTime,
		Weather:           input.Weather,
		WorkDescription:   input.WorkDescription,
		IssuesEncountered: input.IssuesEncountered,
		NextSteps:         input.NextSteps,
		EmployeeIDs:       input.EmployeeIDs,
		MaterialsUsed:     input.MaterialsUsed,
	}
	if wl.EmployeeIDs == nil {
		wl.EmployeeIDs = []int{}
	}
	if wl.MaterialsUsed == nil {
		wl.MaterialsUsed = []models.MaterialUsage{}
	}

	if err := s.Logs.UpdateDraft(ctx, wl); err != nil {
		return nil, err
	}

	cache.InvalidateWorkLogCaches(ctx)
	return s.Logs.Get(ctx, id)
}

// Delete removes a draft. Submitted and approved logs are permanent records.
func (s *WorkLogService) Delete(ctx context.Context, actor models.Actor, id int) error {
	current, err := s.Logs.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.TeamLeaderID != actor.ID {
		return apperr.Authorization("only the owning team leader can delete a work log")
	}
	if current.Status != models.StatusDraft {
		return apperr.InvalidState("work log %d is %s and can no longer be deleted", id, current.Status)
	}

	if err := s.Logs.DeleteDraft(ctx, id, actor.ID); err != nil {
		return err
	}

	cache.InvalidateWorkLogCaches(ctx)
	return nil
}

// Submit moves a draft to submitted and fans one notification out to every
// manager. The notifications commit atomically with the status change, so
// a lost submit race emits nothing.
func (s *WorkLogService) Submit(ctx context.Context, actor models.Actor, id int) (*models.WorkLog, error) {
	current, err := s.Logs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.TeamLeaderID != actor.ID {
		return nil, apperr.Authorization("only the owning team leader can submit a work log")
	}
	if current.Status != models.StatusDraft {
		return nil, apperr.InvalidState("work log %d is already %s", id, current.Status)
	}

	managers, err := s.Users.ListByRole(ctx, models.RoleManager)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("%s submitted the work log for %s (%s)",
		current.TeamLeaderName, current.LogDate.Format(timeutil.DisplayLayout), current.ProjectName)

	notifications := make([]models.Notification, 0, len(managers))
	for _, m := range managers {
		notifications = append(notifications, models.Notification{
			RecipientID: m.ID,
			WorkLogID:   id,
			Event:       models.EventLogSubmitted,
			Message:     message,
		})
	}

	if err := s.Logs.Transition(ctx, id, models.StatusDraft, models.StatusSubmitted, actor.ID, notifications); err != nil {
		return nil, err
	}

	s.afterTransition(ctx, models.StatusDraft, models.StatusSubmitted, notifications)
	return s.Logs.Get(ctx, id)
}

// Approve moves a submitted log to approved and notifies the owner.
// Managers only; approved is terminal. The status precondition is checked
// before the role: approving a draft or approved log is a state conflict
// no matter who asks.
func (s *WorkLogService) Approve(ctx context.Context, actor models.Actor, id int) (*models.WorkLog, error) {
	current, err := s.Logs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.StatusSubmitted {
		return nil, apperr.InvalidState("work log %d is %s, only submitted logs can be approved", id, current.Status)
	}
	if !actor.IsManager() {
		return nil, apperr.Authorization("only managers can approve work logs")
	}

	message := fmt.Sprintf("Your work log for %s (%s) was approved",
		current.LogDate.Format(timeutil.DisplayLayout), current.ProjectName)

	notifications := []models.Notification{{
		RecipientID: current.TeamLeaderID,
		WorkLogID:   id,
		Event:       models.EventLogApproved,
		Message:     message,
	}}

	if err := s.Logs.Transition(ctx, id, models.StatusSubmitted, models.StatusApproved, actor.ID, notifications); err != nil {
		return nil, err
	}

	s.afterTransition(ctx, models.StatusSubmitted, models.StatusApproved, notifications)
	return s.Logs.Get(ctx, id)
}

// EnsureAttachable verifies the actor may attach files to the log: owner
// only, draft only. The upload handler calls this before streaming bytes
// to object storage so a doomed attach does not leave an orphaned object.
func (s *WorkLogService) EnsureAttachable(ctx context.Context, actor models.Actor, id int) error {
	current, err := s.Logs.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.TeamLeaderID != actor.ID {
		return apperr.Authorization("only the owning team leader can attach files")
	}
	if current.Status != models.StatusDraft {
		return apperr.InvalidState("work log %d is %s and can no longer be changed", id, current.Status)
	}
	return nil
}

// AttachPhoto appends an uploaded photo reference to a draft.
func (s *WorkLogService) AttachPhoto(ctx context.Context, actor models.Actor, id int, photo models.Photo) error {
	if photo.Path == "" {
		return apperr.Validation("photo path is required")
	}
	if err := s.EnsureAttachable(ctx, actor, id); err != nil {
		return err
	}
	return s.Logs.AppendPhoto(ctx, id, actor.ID, photo)
}

// AttachDocument appends an uploaded document reference to a draft.
func (s *WorkLogService) AttachDocument(ctx context.Context, actor models.Actor, id int, doc models.Document) error {
	if doc.Path == "" {
		return apperr.Validation("document path is required")
	}
	if !models.ValidDocumentKind(doc.Kind) {
		return apperr.Validation("invalid document kind %q", doc.Kind)
	}
	if err := s.EnsureAttachable(ctx, actor, id); err != nil {
		return err
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = timeutil.Now()
	}
	return s.Logs.AppendDocument(ctx, id, actor.ID, doc)
}

// List applies the visibility scope and then the caller's filter. Team
// leaders are pinned to their own logs regardless of the filter; managers
// see everything.
func (s *WorkLogService) List(ctx context.Context, actor models.Actor, filter models.LogFilter) ([]models.WorkLog, error) {
	if !actor.IsManager() {
		own := actor.ID
		filter.TeamLeaderID = &own
	}
	return s.Logs.List(ctx, filter)
}

func (s *WorkLogService) afterTransition(ctx context.Context, from, to models.LogStatus, notifications []models.Notification) {
	metrics.LogTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
	for _, n := range notifications {
		metrics.NotificationsCreatedTotal.WithLabelValues(n.Event).Inc()
		cache.InvalidateNotificationCaches(ctx, n.RecipientID)
	}
	cache.InvalidateWorkLogCaches(ctx)
	if s.notifier != nil {
		s.notifier.Publish(notifications...)
	}
}
