package handlers

import (
	"net/http"

	"taskhub/internal/auth"
	"taskhub/internal/dto"
	"taskhub/internal/query"
	"taskhub/internal/service"

	"github.com/gin-gonic/gin"
)

type SubtaskHandler struct {
	svc *service.SubtaskService
}

func NewSubtaskHandler(svc *service.SubtaskService) *SubtaskHandler {
	return &SubtaskHandler{svc: svc}
}

// List godoc
// @Summary      List own subtasks in id order
// @Tags         subtasks
// @Produce      json
// @Security     CookieAuth
// @Param        task_id  query     int     false  "Only subtasks of this task"
// @Param        status   query     string  false  "todo, in_progress or done"
// @Success      200      {array}   dto.SubtaskResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /subtasks [get]
func (h *SubtaskHandler) List(c *gin.Context) {
	f, err := query.ParseSubtaskFilter(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}
	list, err := h.svc.List(c.Request.Context(), auth.UserIDFromContext(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SubtasksFromDomain(list))
}

// Create godoc
// @Summary      Create a subtask
// @Tags         subtasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.CreateSubtaskRequest  true  "Subtask"
// @Success      201   {object}  dto.SubtaskResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /subtasks [post]
func (h *SubtaskHandler) Create(c *gin.Context) {
	var req dto.CreateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	s, err := h.svc.Create(c.Request.Context(), auth.UserIDFromContext(c), req.TaskID, req.Title, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.SubtaskFromDomain(s))
}

// Update godoc
// @Summary      Update a subtask
// @Tags         subtasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      int                       true  "Subtask ID"
// @Param        body  body      dto.UpdateSubtaskRequest  true  "Partial update"
// @Success      200   {object}  dto.SubtaskResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /subtasks/{id} [patch]
func (h *SubtaskHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	s, err := h.svc.Update(c.Request.Context(), auth.UserIDFromContext(c), id, service.SubtaskPatch{
		Title:  req.Title,
		Status: req.Status,
		TaskID: req.TaskID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SubtaskFromDomain(s))
}

// Delete godoc
// @Summary      Delete a subtask
// @Tags         subtasks
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Subtask ID"
// @Success      200  {object}  dto.DeletedResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /subtasks/{id} [delete]
func (h *SubtaskHandler) Delete(c *gin.Context) {
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
