package services_test

import (
	"context"
	"testing"
	"time"

	"worklog-backend/internal/apperr"
	"worklog-backend/internal/models"
	"worklog-backend/internal/services"
	"worklog-backend/internal/services/servicetest"
	"worklog-backend/internal/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := timeutil.ParseDate(value)
	require.NoError(t, err)
	return d
}

type fixture struct {
	stores   *servicetest.Stores
	svc      *services.WorkLogService
	notifier *servicetest.RecordingNotifier

	leader      models.Actor
	otherLeader models.Actor
	manager     models.Actor
	manager2    models.Actor
	projectID   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	stores := servicetest.New()

	seedUser := func(name, email string, role models.Role) models.Actor {
		u := &models.User{FullName: name, Email: email, Role: role}
		require.NoError(t, stores.Users.Create(ctx, u))
		return models.Actor{ID: u.ID, Role: role}
	}

	f := &fixture{
		stores:      stores,
		notifier:    &servicetest.RecordingNotifier{},
		leader:      seedUser("Tom Mason", "tom@site.test", models.RoleTeamLeader),
		otherLeader: seedUser("Ana Ruiz", "ana@site.test", models.RoleTeamLeader),
		manager:     seedUser("Dana Webb", "dana@site.test", models.RoleManager),
		manager2:    seedUser("Eli Ford", "eli@site.test", models.RoleManager),
	}

	project := &models.Project{Name: "Riverside Towers", Address: "12 Quay Street"}
	require.NoError(t, stores.Projects.Create(ctx, project))
	f.projectID = project.ID

	f.svc = services.NewWorkLogService(stores.Logs, stores.Users, stores.Projects)
	f.svc.SetNotifier(f.notifier)
	return f
}

func (f *fixture) validInput() *models.WorkLogInput {
	return &models.WorkLogInput{
		Date:            "2026-03-02",
		ProjectID:       f.projectID,
		StartTime:       "07:30",
		EndTime:         "16:00",
		Weather:         "overcast, light rain after lunch",
		WorkDescription: "Poured the slab for level 2 and stripped formwork on level 1",
		MaterialsUsed: []models.MaterialUsage{
			{Name: "Concrete C30/37", Quantity: 14, Unit: "m3"},
		},
		EmployeeIDs: []int{},
	}
}

func (f *fixture) createDraft(t *testing.T) *models.WorkLog {
	t.Helper()
	wl, err := f.svc.Create(context.Background(), f.leader, f.validInput())
	require.NoError(t, err)
	return wl
}

func TestCreateWorkLog(t *testing.T) {
	f := newFixture(t)
	input := f.validInput()
	input.EmployeeIDs = nil
	input.MaterialsUsed = nil

	wl, err := f.svc.Create(context.Background(), f.leader, input)
	require.NoError(t, err)

	assert.Equal(t, models.StatusDraft, wl.Status)
	assert.Equal(t, f.leader.ID, wl.TeamLeaderID)
	assert.Equal(t, "Riverside Towers", wl.ProjectName)
	assert.Equal(t, "Tom Mason", wl.TeamLeaderName)
	assert.Equal(t, "2026-03-02", wl.LogDate.Format("2006-01-02"))
	assert.NotNil(t, wl.EmployeeIDs)
	assert.NotNil(t, wl.MaterialsUsed)
	assert.Nil(t, wl.SubmittedAt)
}

func TestCreateWorkLogValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name   string
		mutate func(*models.WorkLogInput)
	}{
		{"missing date", func(in *models.WorkLogInput) { in.Date = "" }},
		{"malformed date", func(in *models.WorkLogInput) { in.Date = "02/03/2026" }},
		{"missing project", func(in *models.WorkLogInput) { in.ProjectID = 0 }},
		{"unknown project", func(in *models.WorkLogInput) { in.ProjectID = 9999 }},
		{"missing description", func(in *models.WorkLogInput) { in.WorkDescription = "" }},
		{"malformed start time", func(in *models.WorkLogInput) { in.StartTime = "7am" }},
		{"malformed end time", func(in *models.WorkLogInput) { in.EndTime = "25:00" }},
		{"end before start", func(in *models.WorkLogInput) { in.StartTime = "16:00"; in.EndTime = "07:30" }},
		{"end equals start", func(in *models.WorkLogInput) { in.EndTime = in.StartTime }},
		{"material without name", func(in *models.WorkLogInput) {
			in.MaterialsUsed = []models.MaterialUsage{{Quantity: 2, Unit: "t"}}
		}},
		{"material with zero quantity", func(in *models.WorkLogInput) {
			in.MaterialsUsed = []models.MaterialUsage{{Name: "Rebar", Quantity: 0, Unit: "t"}}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := f.validInput()
			tc.mutate(input)
			_, err := f.svc.Create(context.Background(), f.leader, input)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation), "got kind %s", apperr.KindOf(err))
		})
	}
}

func TestSubmitNotifiesEveryManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wl := f.createDraft(t)

	submitted, err := f.svc.Submit(ctx, f.leader, wl.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusSubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)

	for _, manager := range []models.Actor{f.manager, f.manager2} {
		list, err := f.stores.Notifications.ListByRecipient(ctx, manager.ID, false)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, models.EventLogSubmitted, list[0].Event)
		assert.Equal(t, wl.ID, list[0].WorkLogID)
		assert.False(t, list[0].Read)
		assert.Contains(t, list[0].Message, "Tom Mason")
		assert.Contains(t, list[0].Message, "Riverside Towers")
	}

	// Push delivery happens once, after commit, carrying the stored IDs.
	assert.Equal(t, 1, f.notifier.Calls)
	require.Len(t, f.notifier.Published, 2)
	for _, n := range f.notifier.Published {
		assert.NotZero(t, n.ID)
	}
}

func TestSubmitTwiceFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wl := f.createDraft(t)

	_, err := f.svc.Submit(ctx, f.leader, wl.ID)
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, f.leader, wl.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))

	// The lost second submit must not duplicate the fan-out.
	count, err := f.stores.Notifications.UnreadCount(ctx, f.manager.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSubmitRequiresOwner(t *testing.T) {
	f := newFixture(t)
	wl := f.createDraft(t)

	_, err := f.svc.Submit(context.Background(), f.otherLeader, wl.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))
}

func TestSubmitMissingLog(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Submit(context.Background(), f.leader, 4242)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestApprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wl := f.createDraft(t)
	_, err := f.svc.Submit(ctx, f.leader, wl.ID)
	require.NoError(t, err)

	approved, err := f.svc.Approve(ctx, f.manager, wl.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)
	require.NotNil(t, approved.ApprovedByUserID)
	assert.Equal(t, f.manager.ID, *approved.ApprovedByUserID)

	list, err := f.stores.Notifications.ListByRecipient(ctx, f.leader.ID, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.EventLogApproved, list[0].Event)
	assert.Contains(t, list[0].Message, "approved")
}

func TestApproveRequiresManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wl := f.createDraft(t)
	_, err := f.svc.Submit(ctx, f.leader, wl.ID)
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, f.leader, wl.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))
}

func TestApproveDraftFails(t *testing.T) {
	f := newFixture(t)
	wl := f.createDraft(t)

	_, err := f.svc.Approve(context.Background(), f.manager, wl.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestApproveStateConflictBeforeRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A team leader approving a draft is a state conflict, not a role
	// failure: the log is not approvable by anyone yet.
	draft := f.createDraft(t)
	_, err := f.svc.Approve(ctx, f.leader, draft.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState), "got kind %s", apperr.KindOf(err))

	// Same once the log is terminally approved.
	_, err = f.svc.Submit(ctx, f.leader, draft.ID)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, f.manager, draft.ID)
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, f.leader, draft.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState), "got kind %s", apperr.KindOf(err))
}

func TestApproveTwiceFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wl := f.createDraft(t)
	_, err := f.svc.Submit(ctx, f.leader, wl.ID)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, f.manager, wl.ID)
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, f.manager2, wl.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestUpdateDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wl := f.createDraft(t)

	input := f.validInput()
	input.WorkDescription = "Backfilled the east trench and compacted in layers"
	input.Weather = "clear"

	updated, err := f.svc.Update(ctx, f.leader, wl.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "Backfilled the east trench and compacted in layers", updated.WorkDescription)
	assert.Equal(t, models.StatusDraft, updated.Status)
}

func TestUpdateAfterSubmitFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wl := f.createDraft(t)
	_, err := f.svc.Submit(ctx, f.leader, wl.ID)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.leader, wl.ID, f.validInput())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestUpdateRequiresOwner(t *testing.T) {
	f := newFixture(t)
	wl := f.createDraft(t)

	_, err := f.svc.Update(context.Background(), f.otherLeader, wl.ID, f.validInput())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))
}

func TestDeleteDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wl := f.createDraft(t)

	require.NoError(t, f.svc.Delete(ctx, f.leader, wl.ID))

	_, err := f.svc.Get(ctx, f.leader, wl.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestDeleteAfterSubmitFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wl := f.createDraft(t)
	_, err := f.svc.Submit(ctx, f.leader, wl.ID)
	require.NoError(t, err)

	err = f.svc.Delete(ctx, f.leader, wl.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestGetScopesTeamLeaders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wl := f.createDraft(t)

	_, err := f.svc.Get(ctx, f.otherLeader, wl.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))

	got, err := f.svc.Get(ctx, f.manager, wl.ID)
	require.NoError(t, err)
	assert.Equal(t, wl.ID, got.ID)
}

func TestListScopeAndFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mkLog := func(actor models.Actor, date string) *models.WorkLog {
		input := f.validInput()
		input.Date = date
		wl, err := f.svc.Create(ctx, actor, input)
		require.NoError(t, err)
		return wl
	}

	older := mkLog(f.leader, "2026-03-01")
	newer := mkLog(f.leader, "2026-03-03")
	other := mkLog(f.otherLeader, "2026-03-02")

	// Team leaders only see their own, newest date first.
	mine, err := f.svc.List(ctx, f.leader, models.LogFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].ID)
	assert.Equal(t, older.ID, mine[1].ID)

	// A team leader cannot widen the scope with the filter.
	otherID := f.otherLeader.ID
	mine, err = f.svc.List(ctx, f.leader, models.LogFilter{TeamLeaderID: &otherID})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, wl := range mine {
		assert.Equal(t, f.leader.ID, wl.TeamLeaderID)
	}

	// Managers see everything and can filter by team leader.
	all, err := f.svc.List(ctx, f.manager, models.LogFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	theirs, err := f.svc.List(ctx, f.manager, models.LogFilter{TeamLeaderID: &otherID})
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, other.ID, theirs[0].ID)
}

func TestListFiltersByStatusAndDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := f.validInput()
	input.Date = "2026-03-01"
	first, err := f.svc.Create(ctx, f.leader, input)
	require.NoError(t, err)

	input = f.validInput()
	input.Date = "2026-03-05"
	second, err := f.svc.Create(ctx, f.leader, input)
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, f.leader, second.ID)
	require.NoError(t, err)

	submitted := models.StatusSubmitted
	logs, err := f.svc.List(ctx, f.manager, models.LogFilter{Status: &submitted})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, second.ID, logs[0].ID)

	start := mustDate(t, "2026-02-28")
	end := mustDate(t, "2026-03-02")
	logs, err = f.svc.List(ctx, f.manager, models.LogFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, first.ID, logs[0].ID)
}

func TestListSearchesDescription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := f.validInput()
	input.WorkDescription = "Installed scaffolding on the north face"
	_, err := f.svc.Create(ctx, f.leader, input)
	require.NoError(t, err)

	f.createDraft(t)

	logs, err := f.svc.List(ctx, f.manager, models.LogFilter{Search: "SCAFFOLD"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].WorkDescription, "scaffolding")
}

func TestAttachmentsOnlyOnDrafts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wl := f.createDraft(t)

	photo := models.Photo{Path: "work-logs/1/photos/slab.jpg", Description: "level 2 slab"}
	require.NoError(t, f.svc.AttachPhoto(ctx, f.leader, wl.ID, photo))

	doc := models.Document{
		Path:         "work-logs/1/documents/dn-118.pdf",
		OriginalName: "dn-118.pdf",
		Kind:         models.DocumentDeliveryNote,
	}
	require.NoError(t, f.svc.AttachDocument(ctx, f.leader, wl.ID, doc))

	got, err := f.svc.Get(ctx, f.leader, wl.ID)
	require.NoError(t, err)
	require.Len(t, got.Photos, 1)
	require.Len(t, got.Documents, 1)
	assert.False(t, got.Documents[0].UploadedAt.IsZero())

	_, err = f.svc.Submit(ctx, f.leader, wl.ID)
	require.NoError(t, err)

	err = f.svc.AttachPhoto(ctx, f.leader, wl.ID, photo)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestAttachDocumentRejectsUnknownKind(t *testing.T) {
	f := newFixture(t)
	wl := f.createDraft(t)

	err := f.svc.AttachDocument(context.Background(), f.leader, wl.ID, models.Document{
		Path:         "work-logs/1/documents/x.pdf",
		OriginalName: "x.pdf",
		Kind:         "warranty",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}
