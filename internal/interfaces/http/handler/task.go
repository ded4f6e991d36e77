package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/medrent/backend/internal/application/workflow"
)

// TaskHandler handles staff tasks
type TaskHandler struct {
	BaseHandler
	taskService *workflow.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService *workflow.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Create godoc
// @Summary      Create task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        request body workflow.CreateTaskRequest true "Task"
// @Success      201 {object} APIResponse[workflow.TaskResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req workflow.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	task, err := h.taskService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, task)
}

// GetByID godoc
// @Summary      Get task
// @Tags         tasks
// @Produce      json
// @Param        id path string true "Task ID" format(uuid)
// @Success      200 {object} APIResponse[workflow.TaskResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	task, err := h.taskService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

// List godoc
// @Summary      List tasks
// @Description  Employees only see their own tasks
// @Tags         tasks
// @Produce      json
// @Param        search query string false "Title or code"
// @Param        status query string false "Status" Enums(TODO, IN_PROGRESS, COMPLETED)
// @Param        priority query string false "Priority" Enums(LOW, MEDIUM, HIGH)
// @Param        assigned_to_id query string false "Assignee" format(uuid)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]workflow.TaskResponse]
// @Security     BearerAuth
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var filter workflow.TaskListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	tasks, total, err := h.taskService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, tasks, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update task
// @Description  Completing a task notifies its creator
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id path string true "Task ID" format(uuid)
// @Param        request body workflow.UpdateTaskRequest true "Fields to change"
// @Success      200 {object} APIResponse[workflow.TaskResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req workflow.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	task, err := h.taskService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

// Delete godoc
// @Summary      Delete task
// @Tags         tasks
// @Param        id path string true "Task ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.taskService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
