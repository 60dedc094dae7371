// Package servicetest provides in-memory implementations of the store
// interfaces in the services package. They mirror the guard semantics of the
// SQL repositories (owner+draft guarded writes, compare-and-swap transitions)
// so lifecycle rules can be tested without a database.
package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"worklog-backend/internal/apperr"
	"worklog-backend/internal/models"
)

// Stores bundles one in-memory instance of every store.
type Stores struct {
	Users         *UserStore
	Projects      *ProjectStore
	Employees     *EmployeeStore
	Notifications *NotificationStore
	Logs          *WorkLogStore
}

func New() *Stores {
	users := &UserStore{users: map[int]*models.User{}}
	projects := &ProjectStore{projects: map[int]*models.Project{}}
	employees := &EmployeeStore{employees: map[int]*models.Employee{}}
	notifications := &NotificationStore{items: map[int]models.Notification{}}
	logs := &WorkLogStore{
		logs:          map[int]*models.WorkLog{},
		users:         users,
		projects:      projects,
		notifications: notifications,
	}
	return &Stores{
		Users:         users,
		Projects:      projects,
		Employees:     employees,
		Notifications: notifications,
		Logs:          logs,
	}
}

type UserStore struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*models.User
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	user.ID = s.nextID
	user.IsActive = true
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *UserStore) Get(ctx context.Context, id int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("user %d not found", id)
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user with email %s not found", email)
}

func (s *UserStore) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.User{}
	for _, u := range s.users {
		if u.Role == role && u.IsActive {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

// Suspend flips a user inactive, for testing suspension behavior.
func (s *UserStore) Suspend(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.IsActive = false
	}
}

type ProjectStore struct {
	mu       sync.Mutex
	nextID   int
	projects map[int]*models.Project
}

func (s *ProjectStore) Create(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	project.ID = s.nextID
	project.CreatedAt = time.Now()
	cp := *project
	s.projects[project.ID] = &cp
	return nil
}

func (s *ProjectStore) Get(ctx context.Context, id int) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, apperr.NotFound("project %d not found", id)
	}
	cp := *p
	return &cp, nil
}

func (s *ProjectStore) List(ctx context.Context) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Project{}
	for _, p := range s.projects {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type EmployeeStore struct {
	mu        sync.Mutex
	nextID    int
	employees map[int]*models.Employee
}

func (s *EmployeeStore) Create(ctx context.Context, employee *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	employee.ID = s.nextID
	employee.IsActive = true
	employee.CreatedAt = time.Now()
	cp := *employee
	s.employees[employee.ID] = &cp
	return nil
}

func (s *EmployeeStore) List(ctx context.Context) ([]models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Employee{}
	for _, e := range s.employees {
		if e.IsActive {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

type NotificationStore struct {
	mu     sync.Mutex
	nextID int
	items  map[int]models.Notification
}

// insert assigns identity the way the SQL INSERT ... RETURNING does,
// mutating the caller's notification in place.
func (s *NotificationStore) insert(n *models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	n.ID = s.nextID
	n.CreatedAt = time.Now()
	n.Read = false
	s.items[n.ID] = *n
}

func (s *NotificationStore) Get(ctx context.Context, id int) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok {
		return nil, apperr.NotFound("notification %d not found", id)
	}
	return &n, nil
}

func (s *NotificationStore) ListByRecipient(ctx context.Context, recipientID int, unreadOnly bool) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Notification{}
	for _, n := range s.items {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.items[id]; ok && !n.Read {
		n.Read = true
		s.items[id] = n
	}
	return nil
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, recipientID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	affected := 0
	for id, n := range s.items {
		if n.RecipientID == recipientID && !n.Read {
			n.Read = true
			s.items[id] = n
			affected++
		}
	}
	return affected, nil
}

func (s *NotificationStore) UnreadCount(ctx context.Context, recipientID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.items {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

type WorkLogStore struct {
	mu     sync.Mutex
	nextID int
	logs   map[int]*models.WorkLog

	users         *UserStore
	projects      *ProjectStore
	notifications *NotificationStore
}

func (s *WorkLogStore) fillNames(wl *models.WorkLog) {
	if p, err := s.projects.Get(context.Background(), wl.ProjectID); err == nil {
		wl.ProjectName = p.Name
	}
	if u, err := s.users.Get(context.Background(), wl.TeamLeaderID); err == nil {
		wl.TeamLeaderName = u.FullName
	}
}

func copyLog(wl *models.WorkLog) *models.WorkLog {
	cp := *wl
	cp.EmployeeIDs = append([]int{}, wl.EmployeeIDs...)
	cp.MaterialsUsed = append([]models.MaterialUsage{}, wl.MaterialsUsed...)
	cp.Photos = append([]models.Photo{}, wl.Photos...)
	cp.Documents = append([]models.Document{}, wl.Documents...)
	return &cp
}

func (s *WorkLogStore) Create(ctx context.Context, wl *models.WorkLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	wl.ID = s.nextID
	wl.Status = models.StatusDraft
	wl.Photos = []models.Photo{}
	wl.Documents = []models.Document{}
	wl.CreatedAt = time.Now()
	wl.UpdatedAt = wl.CreatedAt
	s.fillNames(wl)
	s.logs[wl.ID] = copyLog(wl)
	return nil
}

func (s *WorkLogStore) Get(ctx context.Context, id int) (*models.WorkLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wl, ok := s.logs[id]
	if !ok {
		return nil, apperr.NotFound("work log %d not found", id)
	}
	return copyLog(wl), nil
}

// editableDraft is the guard shared by every draft-only write, matching the
// WHERE clause the repository uses.
func (s *WorkLogStore) editableDraft(id, teamLeaderID int) (*models.WorkLog, error) {
	wl, ok := s.logs[id]
	if !ok || wl.TeamLeaderID != teamLeaderID || wl.Status != models.StatusDraft {
		return nil, apperr.InvalidState("work log %d is not an editable draft", id)
	}
	return wl, nil
}

func (s *WorkLogStore) UpdateDraft(ctx context.Context, wl *models.WorkLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.editableDraft(wl.ID, wl.TeamLeaderID)
	if err != nil {
		return err
	}
	current.LogDate = wl.LogDate
	current.ProjectID = wl.ProjectID
	current.StartTime = wl.StartTime
	current.EndTime = wl.EndTime
	current.Weather = wl.Weather
	current.WorkDescription = wl.WorkDescription
	current.IssuesEncountered = wl.IssuesEncountered
	current.NextSteps = wl.NextSteps
	current.EmployeeIDs = append([]int{}, wl.EmployeeIDs...)
	current.MaterialsUsed = append([]models.MaterialUsage{}, wl.MaterialsUsed...)
	current.UpdatedAt = time.Now()
	s.fillNames(current)
	return nil
}

func (s *WorkLogStore) DeleteDraft(ctx context.Context, id, teamLeaderID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.editableDraft(id, teamLeaderID); err != nil {
		return err
	}
	delete(s.logs, id)
	return nil
}

func (s *WorkLogStore) AppendPhoto(ctx context.Context, id, teamLeaderID int, photo models.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wl, err := s.editableDraft(id, teamLeaderID)
	if err != nil {
		return err
	}
	wl.Photos = append(wl.Photos, photo)
	wl.UpdatedAt = time.Now()
	return nil
}

func (s *WorkLogStore) AppendDocument(ctx context.Context, id, teamLeaderID int, doc models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wl, err := s.editableDraft(id, teamLeaderID)
	if err != nil {
		return err
	}
	wl.Documents = append(wl.Documents, doc)
	wl.UpdatedAt = time.Now()
	return nil
}

func (s *WorkLogStore) List(ctx context.Context, filter models.LogFilter) ([]models.WorkLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.WorkLog{}
	for _, wl := range s.logs {
		if filter.StartDate != nil && wl.LogDate.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && wl.LogDate.After(*filter.EndDate) {
			continue
		}
		if filter.ProjectID != nil && wl.ProjectID != *filter.ProjectID {
			continue
		}
		if filter.Status != nil && wl.Status != *filter.Status {
			continue
		}
		if filter.TeamLeaderID != nil && wl.TeamLeaderID != *filter.TeamLeaderID {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(wl.WorkDescription), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *copyLog(wl))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LogDate.Equal(out[j].LogDate) {
			return out[i].LogDate.After(out[j].LogDate)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *WorkLogStore) Transition(ctx context.Context, id int, from, to models.LogStatus, actorID int, notifications []models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wl, ok := s.logs[id]
	if !ok {
		return apperr.NotFound("work log %d not found", id)
	}
	if wl.Status != from {
		return apperr.InvalidState("work log %d is %s, expected %s", id, wl.Status, from)
	}

	now := time.Now()
	wl.Status = to
	wl.UpdatedAt = now
	switch to {
	case models.StatusSubmitted:
		wl.SubmittedAt = &now
	case models.StatusApproved:
		wl.ApprovedAt = &now
		approver := actorID
		wl.ApprovedByUserID = &approver
	}

	for i := range notifications {
		s.notifications.insert(&notifications[i])
	}
	return nil
}

// RecordingNotifier captures every Publish call for assertions.
type RecordingNotifier struct {
	mu        sync.Mutex
	Published []models.Notification
	Calls     int
}

func (n *RecordingNotifier) Publish(notifications ...models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Calls++
	n.Published = append(n.Published, notifications...)
}
