package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigplans/backend/core"
	"github.com/bigplans/backend/core/task"
	"github.com/bigplans/backend/core/user"
	"github.com/bigplans/backend/storage/database/gormrepos"
	"github.com/bigplans/backend/tests"
)

var (
	usrRepo    user.Repository
	taskRepo   task.Repository
	translator ut.Translator
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	// set up DB & repos
	gdb := testutil.NewTestDB(t)
	db, err := gdb.DB()
	require.NoError(t, err)
	usrRepo = gormrepos.NewUserRepository(gdb)
	taskRepo = gormrepos.NewTaskRepository(gdb)

	var validate *validator.Validate
	validate, translator = testutil.NewValidator()
	out := new(bytes.Buffer)

	// start CLI
	return &commandLine{
		db:       db,
		usrSvc:   user.NewService(usrRepo),
		taskSvc:  task.NewService(taskRepo, core.NopLogger{}, testutil.NewConfig(), nil),
		validate: validate,
		out:      out,
	}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		if errors.Cause(err) != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err == nil || err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
		}
	case err != nil:
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func Test_commandLine_help(t *testing.T) {
	cli, out := setup(t)

	require.NoError(t, cli.run([]string{"admin"}))
	assert.Contains(t, out.String(), "Available Commands")
	assert.Contains(t, out.String(), "resetpassword")

	err := cli.run([]string{"admin", "lol"})
	assert.EqualError(t, err, `unknown command "lol" for "admin"`)
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	var gotCommand string
	var gotArgs []string
	migrateFunc = func(ctx context.Context, db *sql.DB, command string, args ...string) error {
		gotCommand, gotArgs = command, args
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErrStr: "requires at least 1 arg(s), only received 0"},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "0"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}

	require.NoError(t, cli.run([]string{"admin", "migrate", "up-to", "1"}))
	assert.Equal(t, "up-to", gotCommand)
	assert.Equal(t, []string{"1"}, gotArgs)
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli, out := setup(t)
	testutil.CreateUser(t, usrRepo, "taken", "")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no username", args: []string{"adduser"}, extra: extra{pwd: "Sup3r-secret"}, wantErrStr: `required flag(s) "username" not set`},
		{name: "no password", args: []string{"adduser", "--username", "ann"}, wantErr: errEmptyPassword},
		{name: "username taken", args: []string{"adduser", "--username", "Taken"}, extra: extra{pwd: "Sup3r-secret"}, wantErr: user.ErrUsernameExists},
		{name: "created", args: []string{"adduser", "--username", "Ann"}, extra: extra{pwd: "Sup3r-secret"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if extra, ok := tt.extra.(extra); ok {
				mockPassword(extra.pwd)
			} else {
				mockPassword("")
			}
			tt.check(t, cli.run(args))
		})
	}

	t.Run("weak password", func(t *testing.T) {
		mockPassword("abc")
		err := cli.run([]string{"admin", "adduser", "--username", "bob"})
		require.Error(t, err)

		assert.Equal(t, "password: password must be at least 6 characters", describeError(err, translator))
	})

	usr, err := usrRepo.GetUserByUsername(context.Background(), "ann")
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("Sup3r-secret"))
	assert.Contains(t, out.String(), `User "ann" created`)
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, _ := setup(t)
	usr := testutil.CreateUser(t, usrRepo, "awe", "")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no username", args: []string{"resetpassword"}, extra: extra{pwd: "lol"}, wantErrStr: `required flag(s) "username" not set`},
		{name: "username but no password", args: []string{"resetpassword", "--username", "awe"}, wantErr: errEmptyPassword},
		{name: "user not found", args: []string{"resetpassword", "--username", "lol"}, extra: extra{pwd: "N3w-password"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "--username", "AWE"}, extra: extra{pwd: "N3w-password"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if extra, ok := tt.extra.(extra); ok {
				mockPassword(extra.pwd)
			} else {
				mockPassword("")
			}
			tt.check(t, cli.run(args))
		})
	}

	refreshedUsr, err := usrRepo.GetUserByID(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.NotEqual(t, usr.PasswordHash, refreshedUsr.PasswordHash, "failed to update new password")
	assert.NoError(t, refreshedUsr.CheckPassword("N3w-password"))
}

func Test_commandLine_generate(t *testing.T) {
	cli, out := setup(t)
	usr := testutil.CreateUser(t, usrRepo, "ann", "")
	pattern := task.RecurrencePattern{Frequency: task.Weekly, Interval: 1}
	testutil.CreateTask(t, taskRepo, task.Task{
		UserID: usr.ID, Title: "Groceries", Date: "2024-03-01", IsRecurring: true, RecurrencePattern: &pattern,
		CreatedAt: time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC),
	})

	tests := []cliTest{
		{name: "no flags", args: []string{"generate"}, wantErrStr: `required flag(s) "from", "username" not set`},
		{name: "unknown user", args: []string{"generate", "--username", "nobody", "--from", "2024-03-01"}, wantErr: user.ErrNotFound},
		{name: "invalid date", args: []string{"generate", "--username", "ann", "--from", "2024-13-01"}, wantErr: core.ErrInvalidDate},
		{name: "range too wide", args: []string{"generate", "--username", "ann", "--from", "2024-01-01", "--to", "2025-12-31"}, wantErr: task.ErrRangeTooWide},
		{name: "march", args: []string{"generate", "--username", "ann", "--from", "2024-03-01", "--to", "2024-03-31"}},
		{name: "march again", args: []string{"generate", "--username", "ann", "--from", "2024-03-01", "--to", "2024-03-31"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}

	// 03-01, 03-08, 03-15, 03-22, 03-29 then nothing new on the second run
	assert.Contains(t, out.String(), `Generated 5 recurring task(s) for "ann"`)
	assert.Contains(t, out.String(), `Generated 0 recurring task(s) for "ann"`)

	tasks, err := taskRepo.QueryTasksForDate(context.Background(), usr.ID, "2024-03-22")
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}
