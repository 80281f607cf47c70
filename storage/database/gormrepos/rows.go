package gormrepos

import (
	"time"

	"github.com/bigplans/backend/core/comment"
	"github.com/bigplans/backend/core/group"
	"github.com/bigplans/backend/core/kiss"
	"github.com/bigplans/backend/core/task"
	"github.com/bigplans/backend/core/user"
)

// Rows mirror storage/database/migrations. The tags feed AutoMigrate in tests.
// Timestamps come from the services (mockable NowFunc), GORM never fills them.

type userRow struct {
	ID           int    `gorm:"primaryKey"`
	Username     string `gorm:"size:30;not null;uniqueIndex"`
	PasswordHash []byte `gorm:"not null"`
	AvatarURL    *string
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (userRow) TableName() string { return "users" }

func newUserRow(u user.User) userRow {
	return userRow{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		AvatarURL:    u.AvatarURL,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r userRow) user() user.User {
	return user.User{
		ID:           r.ID,
		Username:     r.Username,
		AvatarURL:    r.AvatarURL,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type taskRow struct {
	ID                int    `gorm:"primaryKey"`
	UserID            int    `gorm:"not null;index:idx_tasks_user_date;uniqueIndex:idx_tasks_instance"`
	TemplateID        *int   `gorm:"uniqueIndex:idx_tasks_instance"`
	Title             string `gorm:"size:200;not null"`
	Description       *string
	Date              string `gorm:"size:10;not null;index:idx_tasks_user_date;uniqueIndex:idx_tasks_instance"`
	ProgressType      string `gorm:"size:20;not null;default:boolean"`
	ProgressValue     int    `gorm:"not null;default:0"`
	MaxProgress       *int
	IsRecurring       bool `gorm:"not null;default:false"`
	RecurrencePattern *string
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (taskRow) TableName() string { return "tasks" }

func newTaskRow(t task.Task) taskRow {
	r := taskRow{
		ID:            t.ID,
		UserID:        t.UserID,
		TemplateID:    t.TemplateID,
		Title:         t.Title,
		Description:   t.Description,
		Date:          t.Date,
		ProgressType:  string(t.ProgressType),
		ProgressValue: t.ProgressValue,
		MaxProgress:   t.MaxProgress,
		IsRecurring:   t.IsRecurring,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if t.RecurrencePattern != nil {
		raw := t.RecurrencePattern.String()
		r.RecurrencePattern = &raw
	}
	return r
}

// task converts the row. An unparseable pattern leaves RecurrencePattern nil and is kept in RawPattern.
func (r taskRow) task() task.Task {
	t := task.Task{
		ID:            r.ID,
		UserID:        r.UserID,
		TemplateID:    r.TemplateID,
		Title:         r.Title,
		Description:   r.Description,
		Date:          r.Date,
		ProgressType:  task.ProgressType(r.ProgressType),
		ProgressValue: r.ProgressValue,
		MaxProgress:   r.MaxProgress,
		IsRecurring:   r.IsRecurring,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if r.RecurrencePattern != nil {
		t.RawPattern = *r.RecurrencePattern
		if p, err := task.ParsePattern(*r.RecurrencePattern); err == nil {
			t.RecurrencePattern = &p
		}
	}
	return t
}

type occurrenceRow struct {
	ID         int    `gorm:"primaryKey"`
	TemplateID int    `gorm:"not null;uniqueIndex:idx_occurrences_template_date"`
	UserID     int    `gorm:"not null"`
	Date       string `gorm:"size:10;not null;uniqueIndex:idx_occurrences_template_date"`
	TaskID     *int
	CreatedAt  time.Time `gorm:"not null"`
}

func (occurrenceRow) TableName() string { return "task_occurrences" }

type reflectionRow struct {
	ID        int    `gorm:"primaryKey"`
	UserID    int    `gorm:"not null;uniqueIndex:idx_reflections_user_date"`
	Date      string `gorm:"size:10;not null;uniqueIndex:idx_reflections_user_date"`
	Keep      *string
	Improve   *string
	Start     *string
	Stop      *string
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (reflectionRow) TableName() string { return "kiss_reflections" }

func newReflectionRow(r kiss.Reflection) reflectionRow {
	return reflectionRow{
		ID:        r.ID,
		UserID:    r.UserID,
		Date:      r.Date,
		Keep:      r.Keep,
		Improve:   r.Improve,
		Start:     r.Start,
		Stop:      r.Stop,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (r reflectionRow) reflection() kiss.Reflection {
	return kiss.Reflection{
		ID:        r.ID,
		UserID:    r.UserID,
		Date:      r.Date,
		Keep:      r.Keep,
		Improve:   r.Improve,
		Start:     r.Start,
		Stop:      r.Stop,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type groupRow struct {
	ID         int       `gorm:"primaryKey"`
	Name       string    `gorm:"size:100;not null"`
	InviteCode string    `gorm:"size:8;not null;uniqueIndex"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (groupRow) TableName() string { return "groups" }

func (r groupRow) group() group.Group {
	return group.Group{
		ID:         r.ID,
		Name:       r.Name,
		InviteCode: r.InviteCode,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

type memberRow struct {
	ID       int       `gorm:"primaryKey"`
	GroupID  int       `gorm:"not null;uniqueIndex:idx_group_members_group_user"`
	UserID   int       `gorm:"not null;uniqueIndex:idx_group_members_group_user;index"`
	JoinedAt time.Time `gorm:"not null"`
	ShowKiss bool      `gorm:"not null"`
}

func (memberRow) TableName() string { return "group_members" }

func newMemberRow(m group.Membership) memberRow {
	return memberRow{
		ID:       m.ID,
		GroupID:  m.GroupID,
		UserID:   m.UserID,
		JoinedAt: m.JoinedAt,
		ShowKiss: m.ShowKiss,
	}
}

func (r memberRow) membership() group.Membership {
	return group.Membership{
		ID:       r.ID,
		GroupID:  r.GroupID,
		UserID:   r.UserID,
		JoinedAt: r.JoinedAt.UTC(),
		ShowKiss: r.ShowKiss,
	}
}

type commentRow struct {
	ID             int       `gorm:"primaryKey"`
	UserID         int       `gorm:"not null"`
	TargetUserID   int       `gorm:"not null;index:idx_comments_target_date"`
	TaskID         *int      `gorm:"index"`
	Date           string    `gorm:"size:10;not null;index:idx_comments_target_date"`
	Content        string    `gorm:"not null"`
	IsDailyComment bool      `gorm:"not null;default:false"`
	CreatedAt      time.Time `gorm:"not null"`
}

func (commentRow) TableName() string { return "comments" }

func newCommentRow(c comment.Comment) commentRow {
	return commentRow{
		ID:             c.ID,
		UserID:         c.UserID,
		TargetUserID:   c.TargetUserID,
		TaskID:         c.TaskID,
		Date:           c.Date,
		Content:        c.Content,
		IsDailyComment: c.IsDailyComment,
		CreatedAt:      c.CreatedAt,
	}
}

// Models returns the rows of every table, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&userRow{},
		&taskRow{},
		&occurrenceRow{},
		&reflectionRow{},
		&groupRow{},
		&memberRow{},
		&commentRow{},
	}
}
