package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	. "github.com/bigplans/backend/apps/api/echo"
	"github.com/bigplans/backend/core"
	"github.com/bigplans/backend/core/comment"
	"github.com/bigplans/backend/core/group"
	"github.com/bigplans/backend/core/kiss"
	"github.com/bigplans/backend/core/task"
	"github.com/bigplans/backend/core/user"
	"github.com/bigplans/backend/services/email"
	"github.com/bigplans/backend/storage/database/gormrepos"
	"github.com/bigplans/backend/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

// now is the fixed clock of the API under test. Tests reason in UTC days around it.
var now = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

const (
	today     = "2024-03-15"
	yesterday = "2024-03-14"
	tomorrow  = "2024-03-16"
)

type env struct {
	app     Server
	auth    *Authenticator
	mailSvc *emailsvc.ConsoleServiceMock

	usrRepo     user.Repository
	taskRepo    task.Repository
	groupRepo   group.Repository
	kissRepo    kiss.Repository
	commentRepo comment.Repository
}

type dbPinger struct{ err error }

func (p dbPinger) PingContext(context.Context) error { return p.err }

func setup(t *testing.T, pinger ...core.DBPinger) *env {
	conf := testutil.NewConfig()
	validate, translator := testutil.NewValidator()
	clock := func() time.Time { return now }

	// set up DB & repos
	db := testutil.NewTestDB(t)
	e := &env{
		usrRepo:     gormrepos.NewUserRepository(db),
		taskRepo:    gormrepos.NewTaskRepository(db),
		groupRepo:   gormrepos.NewGroupRepository(db),
		kissRepo:    gormrepos.NewKissRepository(db),
		commentRepo: gormrepos.NewCommentRepository(db),
	}

	// set up services
	e.mailSvc = emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(e.usrRepo)
	taskSvc := task.NewService(e.taskRepo, core.NopLogger{}, conf, nil)
	taskSvc.NowFunc = clock
	groupSvc := group.NewService(e.groupRepo, e.mailSvc, conf)
	kissSvc := kiss.NewService(e.kissRepo, taskSvc, groupSvc, kiss.NewPolicy(conf))
	kissSvc.NowFunc = clock
	commentSvc := comment.NewService(e.commentRepo, usrSvc, taskSvc, groupSvc)

	deps := &Deps{
		UserSvc:    usrSvc,
		TaskSvc:    taskSvc,
		KissSvc:    kissSvc,
		GroupSvc:   groupSvc,
		CommentSvc: commentSvc,
	}
	if len(pinger) > 0 {
		deps.DB = pinger[0]
	} else {
		sqlDB, err := db.DB()
		if err != nil {
			t.Fatalf("db.DB(): %v", err)
		}
		deps.DB = sqlDB
	}

	// set up server
	e.app = NewServer(
		&Options{
			Conf:       conf,
			Logger:     core.NopLogger{},
			Validate:   validate,
			Translator: translator,
		},
		deps,
	)
	e.auth = NewAuthenticator(conf)
	return e
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func (e *env) do(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	t.Helper()
	req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
	e.app.ServeHTTP(rec, req)
	return rec
}

func (e *env) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		if tt.method == "" {
			tt.method = http.MethodGet
		}
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, tt)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func (e *env) token(t *testing.T, usr user.User) string {
	token, err := e.auth.UserToken(usr)
	if err != nil {
		t.Fatalf("UserToken(): %v", err)
	}
	return token
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj(): %v", err)
	}
	return data
}

// decode unmarshals the response body into v.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("json.Unmarshal(%s): %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

// checkCodeAndData compares the JSON body only when the test sets wantData.
func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
