package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskhub/internal/auth"
	dom "taskhub/internal/domain"
	"taskhub/internal/dto"
	"taskhub/internal/repo/repotest"
	"taskhub/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookie = "sid"

type testEnv struct {
	router   *gin.Engine
	store    *repotest.Store
	sessions *auth.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := &testEnv{
		router:   gin.New(),
		store:    repotest.NewStore(),
		sessions: auth.NewStore(rdb, time.Hour),
	}
	st := e.store

	ah := NewAuthHandler(e.sessions, service.NewUserService(st.Users()), CookieConfig{Name: testCookie})
	e.router.POST("/auth/signup", ah.Signup)
	e.router.POST("/auth/login", ah.Login)
	e.router.GET("/auth/me", ah.Me)

	g := e.router.Group("", auth.RequireSession(e.sessions, testCookie))
	g.POST("/auth/logout", ah.Logout)

	ph := NewProjectHandler(service.NewProjectService(st.Projects()))
	g.GET("/projects", ph.List)
	g.POST("/projects", ph.Create)
	g.GET("/projects/:id", ph.Get)
	g.PATCH("/projects/:id", ph.Update)
	g.DELETE("/projects/:id", ph.Delete)

	th := NewTaskHandler(service.NewTaskService(st.Tasks(), st.Projects(), st.Subtasks()), "")
	g.GET("/tasks", th.List)
	g.POST("/tasks", th.Create)
	g.GET("/tasks/:id", th.Get)
	g.PATCH("/tasks/:id", th.Update)
	g.DELETE("/tasks/:id", th.Delete)

	sh := NewSubtaskHandler(service.NewSubtaskService(st.Subtasks(), st.Tasks()))
	g.GET("/subtasks", sh.List)
	g.POST("/subtasks", sh.Create)
	g.PATCH("/subtasks/:id", sh.Update)
	g.DELETE("/subtasks/:id", sh.Delete)
	return e
}

func (e *testEnv) session(t *testing.T, userID int64) *http.Cookie {
	t.Helper()
	id, err := e.sessions.Create(context.Background(), userID)
	require.NoError(t, err)
	return &http.Cookie{Name: testCookie, Value: id}
}

func (e *testEnv) do(method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestTasks_RequireSessionBeforeValidation(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodGet, "/tasks?status=bogus&page=x", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "authorization required")
}

func TestTasksList_InvalidParams(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.session(t, 1)

	cases := []struct {
		query string
		field string
	}{
		{"status=finished", "status"},
		{"project_id=abc", "project_id"},
		{"project_id=-3", "project_id"},
		{"due_before=2025-13-01", "due_before"},
		{"due_before=tomorrow", "due_before"},
		{"q=%FF", "q"},
		{"q=ab%00", "q"},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			w := e.do(http.MethodGet, "/tasks?"+tc.query, "", cookie)
			require.Equal(t, http.StatusBadRequest, w.Code)
			body := decode[dto.ErrorResponse](t, w)
			assert.Equal(t, tc.field, body.Field)
			assert.Equal(t, "invalid_argument", body.Code)
			assert.Contains(t, body.Error, tc.field)
		})
	}
}

func TestTasksList_ForeignProject(t *testing.T) {
	e := newTestEnv(t)
	theirs := e.store.AddProject(2, "theirs")
	e.store.AddTask(theirs.ID, "secret")

	w := e.do(http.MethodGet, fmt.Sprintf("/tasks?project_id=%d", theirs.ID), "", e.session(t, 1))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Nil(t, e.store.LastTaskList)

	w = e.do(http.MethodGet, "/tasks?project_id=999999", "", e.session(t, 1))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTasksList_PageEnvelope(t *testing.T) {
	e := newTestEnv(t)
	p := e.store.AddProject(1, "p")
	for i := 0; i < 13; i++ {
		e.store.AddTask(p.ID, fmt.Sprintf("task %d", i))
	}
	cookie := e.session(t, 1)

	w := e.do(http.MethodGet, "/tasks?per_page=10", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[dto.Page[dto.TaskResponse]](t, w)
	assert.Len(t, first.Data, 10)
	assert.Equal(t, 1, first.Meta.Page)
	assert.Equal(t, 10, first.Meta.PerPage)
	assert.Equal(t, int64(13), first.Meta.Total)
	assert.Equal(t, 2, first.Meta.Pages)

	w = e.do(http.MethodGet, "/tasks?per_page=10&page=2", "", cookie)
	second := decode[dto.Page[dto.TaskResponse]](t, w)
	assert.Len(t, second.Data, 3)
	assert.Equal(t, int64(13), second.Meta.Total)

	w = e.do(http.MethodGet, "/tasks?per_page=10&page=7", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)

	w = e.do(http.MethodGet, "/tasks?per_page=500&page=0", "", cookie)
	clamped := decode[dto.Page[dto.TaskResponse]](t, w)
	assert.Equal(t, 1, clamped.Meta.Page)
	assert.Equal(t, 100, clamped.Meta.PerPage)
}

func TestTasksList_StatusFilter(t *testing.T) {
	e := newTestEnv(t)
	p := e.store.AddProject(1, "p")
	statuses := dom.Statuses
	for i := 0; i < 9; i++ {
		task := e.store.AddTask(p.ID, "t")
		task.Status = statuses[i%len(statuses)]
		_, err := e.store.Tasks().Update(context.Background(), 1, task)
		require.NoError(t, err)
	}

	w := e.do(http.MethodGet, "/tasks?status=done", "", e.session(t, 1))
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[dto.Page[dto.TaskResponse]](t, w)
	assert.Equal(t, int64(3), page.Meta.Total)
	for _, item := range page.Data {
		assert.Equal(t, "done", item.Status)
	}
}

func TestTasks_CreateUpdateDelete(t *testing.T) {
	e := newTestEnv(t)
	p := e.store.AddProject(1, "p")
	cookie := e.session(t, 1)

	w := e.do(http.MethodPost, "/tasks", fmt.Sprintf(`{"title":"write","project_id":%d,"due_date":"2025-04-01","priority":"high"}`, p.ID), cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[dto.TaskResponse](t, w)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, "2025-04-01", *created.DueDate)
	assert.Equal(t, "todo", created.Status)
	assert.Equal(t, "high", created.Priority)

	w = e.do(http.MethodPatch, fmt.Sprintf("/tasks/%d", created.ID), `{"status":"done"}`, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[dto.TaskResponse](t, w)
	assert.Equal(t, "done", updated.Status)
	require.NotNil(t, updated.DueDate, "absent due_date is kept")

	w = e.do(http.MethodPatch, fmt.Sprintf("/tasks/%d", created.ID), `{"due_date":null}`, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"due_date":null`)

	e.store.AddSubtask(created.ID, "step")
	w = e.do(http.MethodGet, fmt.Sprintf("/tasks/%d", created.ID), "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[dto.TaskDetailResponse](t, w)
	assert.Len(t, detail.Subtasks, 1)

	w = e.do(http.MethodDelete, fmt.Sprintf("/tasks/%d", created.ID), "", e.session(t, 2))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodDelete, fmt.Sprintf("/tasks/%d", created.ID), "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"deleted":true,"id":%d}`, created.ID), w.Body.String())
}

func TestTasks_BadBodies(t *testing.T) {
	e := newTestEnv(t)
	p := e.store.AddProject(1, "p")
	cookie := e.session(t, 1)

	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"missing title", fmt.Sprintf(`{"project_id":%d}`, p.ID), "title"},
		{"missing project", `{"title":"x"}`, "project_id"},
		{"project as string", `{"title":"x","project_id":"one"}`, "project_id"},
		{"bad due date", fmt.Sprintf(`{"title":"x","project_id":%d,"due_date":"01/02/2025"}`, p.ID), "due_date"},
		{"bad status", fmt.Sprintf(`{"title":"x","project_id":%d,"status":"blocked"}`, p.ID), "status"},
		{"not json", `{"title":`, ""},
		{"array body", `[]`, ""},
		{"NUL in title", fmt.Sprintf(`{"title":"a\u0000b","project_id":%d}`, p.ID), "title"},
		{"title too long", fmt.Sprintf(`{"title":%q,"project_id":%d}`, strings.Repeat("x", 301), p.ID), "title"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := e.do(http.MethodPost, "/tasks", tc.body, cookie)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tc.field, decode[dto.ErrorResponse](t, w).Field)
		})
	}

	w := e.do(http.MethodGet, "/tasks/abc", "", cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "id", decode[dto.ErrorResponse](t, w).Field)
}

func TestTasks_TypeMismatchMessages(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.session(t, 1)

	w := e.do(http.MethodPost, "/tasks", `{"title":"x","project_id":"one"}`, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "project_id must be an integer", decode[dto.ErrorResponse](t, w).Error)

	w = e.do(http.MethodPost, "/tasks", `{"title":7,"project_id":1}`, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "title must be a string", decode[dto.ErrorResponse](t, w).Error)

	w = e.do(http.MethodPost, "/tasks", `[]`, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[dto.ErrorResponse](t, w)
	assert.Equal(t, "request body must be a JSON object", body.Error)
	assert.Empty(t, body.Field)
}

func TestTasks_LongTitles(t *testing.T) {
	e := newTestEnv(t)
	p := e.store.AddProject(1, "p")
	cookie := e.session(t, 1)
	title := strings.Repeat("é", 300)

	w := e.do(http.MethodPost, "/tasks", fmt.Sprintf(`{"title":%q,"project_id":%d}`, title, p.ID), cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	task := decode[dto.TaskResponse](t, w)
	assert.Equal(t, title, task.Title)

	w = e.do(http.MethodPost, "/subtasks", fmt.Sprintf(`{"title":%q,"task_id":%d}`, title, task.ID), cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(http.MethodPatch, fmt.Sprintf("/tasks/%d", task.ID), fmt.Sprintf(`{"title":%q}`, title+"x"), cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "title", decode[dto.ErrorResponse](t, w).Field)
}

func TestProjects(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.session(t, 1)

	w := e.do(http.MethodPost, "/projects", `{"title":"Home","description":"chores"}`, cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	p := decode[dto.ProjectResponse](t, w)

	w = e.do(http.MethodGet, "/projects", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[dto.Page[dto.ProjectResponse]](t, w)
	require.Len(t, page.Data, 1)
	assert.Equal(t, p.ID, page.Data[0].ID)

	w = e.do(http.MethodGet, "/projects?q=%FF", "", cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "q", decode[dto.ErrorResponse](t, w).Field)

	w = e.do(http.MethodGet, fmt.Sprintf("/projects/%d", p.ID), "", e.session(t, 2))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodPatch, fmt.Sprintf("/projects/%d", p.ID), `{"title":""}`, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodDelete, fmt.Sprintf("/projects/%d", p.ID), "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deleted":true`)
}

func TestProjectsList_Pages(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.session(t, 1)
	var ids []int64
	for i := 0; i < 3; i++ {
		ids = append(ids, e.store.AddProject(1, fmt.Sprintf("p%d", i)).ID)
	}
	e.store.AddProject(2, "theirs")

	w := e.do(http.MethodGet, "/projects?per_page=2&page=2", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[dto.Page[dto.ProjectResponse]](t, w)
	require.Len(t, page.Data, 1)
	assert.Equal(t, ids[0], page.Data[0].ID)
	assert.Equal(t, int64(3), page.Meta.Total)
	assert.Equal(t, 2, page.Meta.Pages)

	w = e.do(http.MethodGet, "/projects?per_page=2&page=5", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestSubtasks(t *testing.T) {
	e := newTestEnv(t)
	task := e.store.AddTask(e.store.AddProject(1, "p").ID, "t")
	theirs := e.store.AddTask(e.store.AddProject(2, "q").ID, "u")
	cookie := e.session(t, 1)

	w := e.do(http.MethodGet, "/subtasks", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = e.do(http.MethodPost, "/subtasks", fmt.Sprintf(`{"title":"step","task_id":%d}`, task.ID), cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	sub := decode[dto.SubtaskResponse](t, w)

	w = e.do(http.MethodPatch, fmt.Sprintf("/subtasks/%d", sub.ID), fmt.Sprintf(`{"task_id":%d}`, theirs.ID), cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodGet, "/subtasks?status=later", "", cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodDelete, fmt.Sprintf("/subtasks/%d", sub.ID), "", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthFlow(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/auth/signup", `{"username":"ann","email":"ann@example.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	w = e.do(http.MethodGet, "/auth/me", "", cookie)
	me := decode[dto.MeResponse](t, w)
	assert.True(t, me.Authenticated)
	require.NotNil(t, me.User)
	assert.Equal(t, "ann", me.User.Username)

	w = e.do(http.MethodPost, "/auth/signup", `{"username":"ann","email":"ann@example.com","password":"secret1"}`, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(http.MethodPost, "/auth/signup", `{"username":"bob","email":"not-an-email","password":"secret1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email", decode[dto.ErrorResponse](t, w).Field)

	long := strings.Repeat("é", 40)
	w = e.do(http.MethodPost, "/auth/signup", fmt.Sprintf(`{"username":"cy","email":"cy@example.com","password":%q}`, long), nil)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "password", decode[dto.ErrorResponse](t, w).Field)

	w = e.do(http.MethodPost, "/auth/login", `{"email":"ann@example.com","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodPost, "/auth/login", `{"email":"ANN@example.com","password":"secret1"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodPost, "/auth/logout", "", cookie)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(http.MethodGet, "/auth/me", "", cookie)
	assert.False(t, decode[dto.MeResponse](t, w).Authenticated)
}
