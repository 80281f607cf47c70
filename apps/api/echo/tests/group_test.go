package tests

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigplans/backend/apps/api/echo"
	"github.com/bigplans/backend/core/group"
	"github.com/bigplans/backend/core/task"
	"github.com/bigplans/backend/tests"
)

func Test_groupApi_create(t *testing.T) {
	e := setup(t)
	ann := testutil.CreateUser(t, e.usrRepo, "ann", "")
	annToken := e.token(t, ann)

	e.run(t, []httpTest{
		{name: "Auth required", method: http.MethodPost, path: "/api/groups", wantCode: http.StatusUnauthorized},
		{
			name: "name required", method: http.MethodPost, path: "/api/groups", token: annToken,
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name: "name too long", method: http.MethodPost, path: "/api/groups", token: annToken,
			body:     marshalObj(t, group.NewGroup{Name: strings.Repeat("a", 101)}),
			wantCode: http.StatusBadRequest,
		},
	})

	t.Run("created", func(t *testing.T) {
		rec := e.do(t, httpTest{
			method: http.MethodPost, path: "/api/groups", token: annToken,
			body: marshalObj(t, group.NewGroup{Name: "  Book club "}),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp echoapi.GroupResponse
		decode(t, rec, &resp)
		assert.Equal(t, "Group created successfully", resp.Message)
		assert.Equal(t, "Book club", resp.Group.Name)
		assert.Regexp(t, `^[A-Z0-9]{8}$`, resp.Group.InviteCode)
		assert.Equal(t, resp.Group.ID, resp.Member.GroupID)
		assert.Equal(t, ann.ID, resp.Member.UserID)
		assert.True(t, resp.Member.ShowKiss)
	})
}

func Test_groupApi_join_and_query(t *testing.T) {
	e := setup(t)
	ann := testutil.CreateUser(t, e.usrRepo, "ann", "")
	bob := testutil.CreateUser(t, e.usrRepo, "bob", "")
	g := testutil.CreateGroup(t, e.groupRepo, "Friends", "FRIENDS1", ann.ID)

	e.run(t, []httpTest{
		{
			name: "code required", method: http.MethodPost, path: "/api/groups/join", token: e.token(t, bob),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"inviteCode": "this field is required"}),
		},
		{
			name: "unknown code", method: http.MethodPost, path: "/api/groups/join", token: e.token(t, bob),
			body:     marshalObj(t, group.JoinGroup{InviteCode: "NOPE0000"}),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "Invalid invite code"}),
		},
		{
			name: "already a member", method: http.MethodPost, path: "/api/groups/join", token: e.token(t, ann),
			body:     marshalObj(t, group.JoinGroup{InviteCode: "FRIENDS1"}),
			wantCode: http.StatusConflict, wantData: marshalObj(t, httpErr{Error: "You are already a member of this group"}),
		},
		{name: "no groups yet", path: "/api/groups", token: e.token(t, bob), wantData: []byte(`{"groups":[]}`)},
	})

	t.Run("joined", func(t *testing.T) {
		rec := e.do(t, httpTest{
			method: http.MethodPost, path: "/api/groups/join", token: e.token(t, bob),
			body: marshalObj(t, group.JoinGroup{InviteCode: " friends1 "}),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp echoapi.GroupResponse
		decode(t, rec, &resp)
		assert.Equal(t, "Joined group successfully", resp.Message)
		assert.Equal(t, g.ID, resp.Group.ID)
		assert.Equal(t, bob.ID, resp.Member.UserID)
	})

	t.Run("groups of the user", func(t *testing.T) {
		rec := e.do(t, httpTest{method: http.MethodGet, path: "/api/groups", token: e.token(t, bob)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.GroupsResponse
		decode(t, rec, &resp)
		require.Len(t, resp.Groups, 1)
		assert.Equal(t, g.ID, resp.Groups[0].ID)
		assert.Equal(t, "Friends", resp.Groups[0].Name)
		assert.Equal(t, "FRIENDS1", resp.Groups[0].InviteCode)
		assert.False(t, resp.Groups[0].CreatedAt.IsZero())
		assert.True(t, resp.Groups[0].ShowKiss)
	})
}

func Test_groupApi_members_and_settings(t *testing.T) {
	e := setup(t)
	ann := testutil.CreateUser(t, e.usrRepo, "ann", "")
	bob := testutil.CreateUser(t, e.usrRepo, "bob", "")
	eve := testutil.CreateUser(t, e.usrRepo, "eve", "")
	g := testutil.CreateGroup(t, e.groupRepo, "Friends", "FRIENDS1", ann.ID)
	testutil.AddMember(t, e.groupRepo, g.ID, bob.ID, true)

	base := "/api/groups/" + strconv.Itoa(g.ID)
	notMember := marshalObj(t, httpErr{Error: "You are not a member of this group"})
	e.run(t, []httpTest{
		{name: "invalid id", path: "/api/groups/x/members", token: e.token(t, ann), wantCode: http.StatusBadRequest, wantData: marshalObj(t, httpErr{Error: "Invalid group ID"})},
		{name: "members of another group", path: base + "/members", token: e.token(t, eve), wantCode: http.StatusForbidden, wantData: notMember},
		{
			name: "no settings", method: http.MethodPut, path: base + "/settings", token: e.token(t, bob),
			body: []byte(`{}`), wantCode: http.StatusBadRequest, wantData: marshalObj(t, httpErr{Error: "No settings to update"}),
		},
		{
			name: "settings of another group", method: http.MethodPut, path: base + "/settings", token: e.token(t, eve),
			body: []byte(`{"showKiss":false}`), wantCode: http.StatusForbidden, wantData: notMember,
		},
	})

	t.Run("members", func(t *testing.T) {
		rec := e.do(t, httpTest{method: http.MethodGet, path: base + "/members", token: e.token(t, bob)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.MembersResponse
		decode(t, rec, &resp)
		require.Len(t, resp.Members, 2)
		assert.Equal(t, "ann", resp.Members[0].Username)
		assert.Equal(t, "bob", resp.Members[1].Username)
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("hide kiss", func(t *testing.T) {
		rec := e.do(t, httpTest{method: http.MethodPut, path: base + "/settings", token: e.token(t, bob), body: []byte(`{"showKiss":false}`)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.MemberResponse
		decode(t, rec, &resp)
		assert.False(t, resp.Member.ShowKiss)
		assert.Equal(t, bob.ID, resp.Member.UserID)

		ok, err := e.groupRepo.SharesGroup(context.Background(), ann.ID, bob.ID, true)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func Test_groupApi_memberTasks(t *testing.T) {
	e := setup(t)
	ann := testutil.CreateUser(t, e.usrRepo, "ann", "")
	bob := testutil.CreateUser(t, e.usrRepo, "bob", "")
	eve := testutil.CreateUser(t, e.usrRepo, "eve", "")
	g := testutil.CreateGroup(t, e.groupRepo, "Friends", "FRIENDS1", ann.ID)
	testutil.AddMember(t, e.groupRepo, g.ID, bob.ID, true)
	bobs := testutil.CreateTask(t, e.taskRepo, task.Task{UserID: bob.ID, Title: "Run", Date: today})

	path := func(userID int) string {
		return "/api/groups/" + strconv.Itoa(g.ID) + "/member/" + strconv.Itoa(userID) + "/tasks?date=" + today
	}
	e.run(t, []httpTest{
		{name: "requester not a member", path: path(bob.ID), token: e.token(t, eve), wantCode: http.StatusForbidden},
		{
			name: "target not a member", path: path(eve.ID), token: e.token(t, ann), wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: "Target user is not a member of this group"}),
		},
		{name: "date required", path: "/api/groups/" + strconv.Itoa(g.ID) + "/member/" + strconv.Itoa(bob.ID) + "/tasks", token: e.token(t, ann), wantCode: http.StatusBadRequest},
	})

	t.Run("member tasks", func(t *testing.T) {
		rec := e.do(t, httpTest{method: http.MethodGet, path: path(bob.ID), token: e.token(t, ann)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.TasksResponse
		decode(t, rec, &resp)
		require.Len(t, resp.Tasks, 1)
		assert.Equal(t, bobs.ID, resp.Tasks[0].ID)
	})
}

func Test_groupApi_invite(t *testing.T) {
	e := setup(t)
	ann := testutil.CreateUser(t, e.usrRepo, "ann", "")
	eve := testutil.CreateUser(t, e.usrRepo, "eve", "")
	g := testutil.CreateGroup(t, e.groupRepo, "Friends", "FRIENDS1", ann.ID)
	path := "/api/groups/" + strconv.Itoa(g.ID) + "/invite"

	e.run(t, []httpTest{
		{
			name: "email required", method: http.MethodPost, path: path, token: e.token(t, ann),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"email": "this field is required"}),
		},
		{
			name: "invalid email", method: http.MethodPost, path: path, token: e.token(t, ann),
			body: marshalObj(t, group.Invite{Email: "not-an-email"}), wantCode: http.StatusBadRequest,
		},
		{
			name: "not a member", method: http.MethodPost, path: path, token: e.token(t, eve),
			body: marshalObj(t, group.Invite{Email: "zoe@example.com"}), wantCode: http.StatusForbidden,
		},
	})
	require.Empty(t, e.mailSvc.Sent())

	t.Run("sent", func(t *testing.T) {
		rec := e.do(t, httpTest{
			method: http.MethodPost, path: path, token: e.token(t, ann),
			body: marshalObj(t, group.Invite{Email: " Zoe@Example.com "}),
		})
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marshalObj(t, echoapi.MessageResponse{Message: "Invitation sent to zoe@example.com"}),
		}, rec)

		sent := e.mailSvc.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "zoe@example.com", sent[0].To[0].Address)
		assert.Equal(t, "ann invited you to join Friends on BigPlans", sent[0].Subject)
		assert.Contains(t, sent[0].TextContent, "FRIENDS1")
		assert.Contains(t, sent[0].HTMLContent, "FRIENDS1")
	})
}
