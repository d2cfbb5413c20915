package handlers

import (
	"net/http"

	"taskhub/internal/auth"
	"taskhub/internal/dto"
	"taskhub/internal/query"
	"taskhub/internal/service"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	svc    *service.TaskService
	sorter query.Sorter
}

// NewTaskHandler returns a TaskHandler whose listing falls back to
// defaultSort when a request has no sort parameter.
func NewTaskHandler(svc *service.TaskService, defaultSort string) *TaskHandler {
	return &TaskHandler{svc: svc, sorter: query.NewTaskSorter(defaultSort)}
}

// List godoc
// @Summary      List own tasks, filtered, sorted and paginated
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        page        query     int     false  "Page number (1-based, default 1)"
// @Param        per_page    query     int     false  "Page size (default 10, max 100)"
// @Param        status      query     string  false  "todo, in_progress or done"
// @Param        project_id  query     int     false  "Only tasks of this project"
// @Param        due_before  query     string  false  "YYYY-MM-DD, inclusive"
// @Param        q           query     string  false  "Case-insensitive title search"
// @Param        sort        query     string  false  "Comma-separated fields, '-' for descending, e.g. due_date,-priority"
// @Success      200         {object}  dto.Page[dto.TaskResponse]
// @Failure      400         {object}  dto.ErrorResponse
// @Failure      401         {object}  dto.ErrorResponse
// @Failure      404         {object}  dto.ErrorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	req, err := query.ParseTaskList(c.Request.URL.Query(), h.sorter)
	if err != nil {
		respondError(c, err)
		return
	}
	list, meta, err := h.svc.List(c.Request.Context(), auth.UserIDFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(dto.TasksFromDomain(list), meta))
}

// Create godoc
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.CreateTaskRequest  true  "Task"
// @Success      201   {object}  dto.TaskResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	t, err := h.svc.Create(c.Request.Context(), auth.UserIDFromContext(c), service.TaskInput{
		Title:     req.Title,
		ProjectID: req.ProjectID,
		Status:    req.Status,
		Priority:  req.Priority,
		DueDate:   req.DueDate.Ptr(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.TaskFromDomain(t))
}

// Get godoc
// @Summary      Get a task with its subtasks
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  dto.TaskDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, subs, err := h.svc.Get(c.Request.Context(), auth.UserIDFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TaskDetailResponse{
		TaskResponse: dto.TaskFromDomain(t),
		Subtasks:     dto.SubtasksFromDomain(subs),
	})
}

// Update godoc
// @Summary      Update a task
// @Description  Absent fields are left unchanged; a null due_date clears the date.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      int                    true  "Task ID"
// @Param        body  body      dto.UpdateTaskRequest  true  "Partial update"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	t, err := h.svc.Update(c.Request.Context(), auth.UserIDFromContext(c), id, service.TaskPatch{
		Title:      req.Title,
		Status:     req.Status,
		Priority:   req.Priority,
		ProjectID:  req.ProjectID,
		SetDueDate: req.DueDate.Set,
		DueDate:    req.DueDate.Ptr(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TaskFromDomain(t))
}

// Delete godoc
// @Summary      Delete a task and its subtasks
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  dto.DeletedResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), auth.UserIDFromContext(c), id); err != nil {
		respondError(c, err)
		return
	}
	deleted(c, id)
}
