package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bigplans/backend/core"
	"github.com/bigplans/backend/core/group"
	"github.com/bigplans/backend/core/task"
	"github.com/bigplans/backend/core/user"
	"github.com/bigplans/backend/storage/database/gormrepos"
)

var dbNameReplacer = strings.NewReplacer("/", "_", " ", "_", "#", "_")

// NewConfig returns the config used by tests: no env lookup, TEST mode, UTC days.
func NewConfig() *core.Config {
	return &core.Config{
		AppName:         "BigPlans",
		Env:             "TEST",
		TestMode:        true,
		SecretKey:       "test-secret-key",
		FrontendBaseURL: "http://localhost:5173",
		DefaultFromName: "BigPlans",
		DefaultFromAddr: "noreply@bigplans.test",
		Server: core.ServerConfig{
			Address:            ":0",
			ReadTimeout:        5 * time.Second,
			WriteTimeout:       10 * time.Second,
			ShutdownTimeout:    5 * time.Second,
			JWTExpirationDelta: 7 * 24 * time.Hour,
			JWTRefreshDelta:    30 * 24 * time.Hour,
			AllowedOrigins:     []string{"http://localhost:5173"},
			DisableReqLogs:     true,
		},
		Tasks: core.TasksConfig{InitialBatchDays: 30, Timezone: "UTC"},
		Kiss:  core.KissConfig{EndOfDayHour: 23},
	}
}

// NewValidator returns a validator with every custom validation of the app registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	task.InitValidators(validate, translator)
	return validate, translator
}

// NewTestDB opens a fresh in-memory sqlite database holding every table.
// The database lives as long as the test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + dbNameReplacer.Replace(t.Name()) + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("gorm.Open(): %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	sqlDB.SetMaxOpenConns(1) // sqlite does not like concurrent writers

	if err := db.AutoMigrate(gormrepos.Models()...); err != nil {
		t.Fatalf("AutoMigrate(): %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func CreateUser(t *testing.T, repo user.Repository, uname, pwd string, createdAt ...time.Time) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Username:  uname,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd == "" {
		pwd = "Secret-" + uname
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateTask inserts tsk as is, without materializing anything.
func CreateTask(t *testing.T, repo task.Repository, tsk task.Task) task.Task {
	t.Helper()

	now := time.Now().UTC()
	if tsk.CreatedAt.IsZero() {
		tsk.CreatedAt = now
	}
	if tsk.UpdatedAt.IsZero() {
		tsk.UpdatedAt = tsk.CreatedAt
	}
	if tsk.ProgressType == "" {
		tsk.ProgressType = task.Boolean
	}
	tsk, err := repo.CreateTask(context.Background(), tsk)
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}
	return tsk
}

// CreateGroup inserts a group with creatorID as its first member.
func CreateGroup(t *testing.T, repo group.Repository, name, code string, creatorID int) group.Group {
	t.Helper()

	now := time.Now().UTC()
	g, err := repo.CreateGroup(
		context.Background(),
		group.Group{Name: name, InviteCode: code, CreatedAt: now},
		group.Membership{UserID: creatorID, JoinedAt: now, ShowKiss: true},
	)
	if err != nil {
		t.Fatalf("CreateGroup() failed: %v", err)
	}
	return g
}

func AddMember(t *testing.T, repo group.Repository, groupID, userID int, showKiss bool) group.Membership {
	t.Helper()

	m, err := repo.AddMember(context.Background(), group.Membership{
		GroupID:  groupID,
		UserID:   userID,
		JoinedAt: time.Now().UTC(),
		ShowKiss: showKiss,
	})
	if err != nil {
		t.Fatalf("AddMember() failed: %v", err)
	}
	return m
}
