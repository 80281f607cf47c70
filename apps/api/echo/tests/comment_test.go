package tests

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigplans/backend/apps/api/echo"
	"github.com/bigplans/backend/core"
	"github.com/bigplans/backend/core/comment"
	"github.com/bigplans/backend/core/task"
	"github.com/bigplans/backend/tests"
)

func Test_commentApi(t *testing.T) {
	e := setup(t)
	ann := testutil.CreateUser(t, e.usrRepo, "ann", "")
	bob := testutil.CreateUser(t, e.usrRepo, "bob", "")
	eve := testutil.CreateUser(t, e.usrRepo, "eve", "")
	g := testutil.CreateGroup(t, e.groupRepo, "Friends", "FRIENDS1", ann.ID)
	testutil.AddMember(t, e.groupRepo, g.ID, bob.ID, true)

	bobs := testutil.CreateTask(t, e.taskRepo, task.Task{UserID: bob.ID, Title: "Run", Date: today})
	anns := testutil.CreateTask(t, e.taskRepo, task.Task{UserID: ann.ID, Title: "Read", Date: today})
	annToken, bobToken, eveToken := e.token(t, ann), e.token(t, bob), e.token(t, eve)

	newComment := func(taskID *int, date string, daily bool) []byte {
		return marshalObj(t, comment.NewComment{
			TargetUserID: bob.ID, TaskID: taskID, Date: date, Content: "Nice one!", IsDailyComment: daily,
		})
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{
			name: "required fields", token: annToken, wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{
				"targetUserId": "this field is required",
				"date":         "this field is required",
				"content":      "this field is required",
			}),
		},
		{
			name: "blank content", token: annToken, wantCode: http.StatusBadRequest,
			body:     marshalObj(t, comment.NewComment{TargetUserID: bob.ID, Date: today, Content: "   "}),
			wantData: marshalObj(t, map[string]string{"content": "this field is required"}),
		},
		{
			name: "unknown target", token: annToken, wantCode: http.StatusNotFound,
			body:     marshalObj(t, comment.NewComment{TargetUserID: 999, Date: today, Content: "hi"}),
			wantData: marshalObj(t, httpErr{Error: "Target user not found"}),
		},
		{
			name: "not in a common group", token: eveToken, wantCode: http.StatusForbidden,
			body:     newComment(nil, today, true),
			wantData: marshalObj(t, httpErr{Error: "You can only comment on users in your groups"}),
		},
		{
			name: "unknown task", token: annToken, wantCode: http.StatusNotFound,
			body: newComment(core.IntPtr(999), today, false), wantData: marshalObj(t, httpErr{Error: "Task not found"}),
		},
		{
			name: "task of someone else", token: annToken, wantCode: http.StatusBadRequest,
			body: newComment(&anns.ID, today, false), wantData: marshalObj(t, httpErr{Error: "Task does not belong to target user"}),
		},
		{
			name: "task of another day", token: annToken, wantCode: http.StatusBadRequest,
			body: newComment(&bobs.ID, yesterday, false), wantData: marshalObj(t, httpErr{Error: "Task date does not match comment date"}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/api/comments"
	}
	e.run(t, tests)

	create := func(t *testing.T, body []byte) comment.Comment {
		rec := e.do(t, httpTest{method: http.MethodPost, path: "/api/comments", token: annToken, body: body})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp echoapi.CommentResponse
		decode(t, rec, &resp)
		assert.Equal(t, "Comment created successfully", resp.Message)
		return resp.Comment
	}

	var onTask, daily comment.Comment
	t.Run("created", func(t *testing.T) {
		onTask = create(t, newComment(&bobs.ID, today, false))
		assert.Equal(t, ann.ID, onTask.UserID)
		assert.Equal(t, "ann", onTask.User.Username)
		assert.Equal(t, bobs.ID, *onTask.TaskID)

		daily = create(t, newComment(nil, today, true))
		assert.True(t, daily.IsDailyComment)
	})

	t.Run("task comments", func(t *testing.T) {
		rec := e.do(t, httpTest{method: http.MethodGet, path: "/api/comments/task/" + strconv.Itoa(bobs.ID), token: bobToken})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.CommentsResponse
		decode(t, rec, &resp)
		require.Len(t, resp.Comments, 1)
		assert.Equal(t, onTask.ID, resp.Comments[0].ID)
	})

	t.Run("daily comments", func(t *testing.T) {
		rec := e.do(t, httpTest{method: http.MethodGet, path: "/api/comments/daily?userId=" + strconv.Itoa(bob.ID) + "&date=" + today, token: annToken})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.CommentsResponse
		decode(t, rec, &resp)
		require.Len(t, resp.Comments, 1)
		assert.Equal(t, daily.ID, resp.Comments[0].ID)
	})

	cannotView := marshalObj(t, httpErr{Error: "You can only view comments for users in your groups"})
	e.run(t, []httpTest{
		{name: "invalid task id", path: "/api/comments/task/abc", token: annToken, wantCode: http.StatusBadRequest, wantData: marshalObj(t, httpErr{Error: "Invalid task ID"})},
		{name: "task comments of a stranger", path: "/api/comments/task/" + strconv.Itoa(bobs.ID), token: eveToken, wantCode: http.StatusForbidden, wantData: cannotView},
		{name: "no comments", path: "/api/comments/task/" + strconv.Itoa(anns.ID), token: annToken, wantData: []byte(`{"comments":[]}`)},
		{
			name: "userId required", path: "/api/comments/daily?date=" + today, token: annToken,
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, httpErr{Error: "userId parameter is required"}),
		},
		{
			name: "invalid userId", path: "/api/comments/daily?userId=x&date=" + today, token: annToken,
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, httpErr{Error: "Invalid userId"}),
		},
		{
			name: "daily comments of a stranger", path: "/api/comments/daily?userId=" + strconv.Itoa(bob.ID) + "&date=" + today, token: eveToken,
			wantCode: http.StatusForbidden, wantData: cannotView,
		},
	})

	t.Run("delete", func(t *testing.T) {
		path := "/api/comments/" + strconv.Itoa(daily.ID)
		e.run(t, []httpTest{
			{
				name: "not the author", method: http.MethodDelete, path: path, token: bobToken,
				wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "You can only delete your own comments"}),
			},
			{
				name: "deleted", method: http.MethodDelete, path: path, token: annToken,
				wantData: marshalObj(t, echoapi.MessageResponse{Message: "Comment deleted successfully"}),
			},
			{
				name: "already deleted", method: http.MethodDelete, path: path, token: annToken,
				wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "Comment not found"}),
			},
		})
	})
}
