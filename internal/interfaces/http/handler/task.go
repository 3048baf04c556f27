package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	apptask "github.com/taskboard/taskboard/internal/application/task"
	"github.com/taskboard/taskboard/internal/interfaces/http/middleware"
)

// TaskService is the application surface the handler drives
type TaskService interface {
	List(ctx context.Context) ([]apptask.TaskResponse, error)
	GetByID(ctx context.Context, id int64) (*apptask.TaskResponse, error)
	Create(ctx context.Context, req apptask.CreateTaskRequest) (*apptask.TaskResponse, error)
	Update(ctx context.Context, id int64, req apptask.UpdateTaskRequest) (*apptask.TaskResponse, error)
	Delete(ctx context.Context, id int64) error
	Summary(ctx context.Context) (*apptask.SummaryResponse, error)
}

// TaskHandler handles the /tasks endpoints
type TaskHandler struct {
	BaseHandler
	taskService TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTaskRequest is the POST /tasks body. Title presence and length are
// checked by the service after trimming.
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status" binding:"omitempty,taskstatus"`
	DueDate     *string `json:"dueDate"`
}

// RegisterRoutes mounts the task routes on rg
func (h *TaskHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tasks := rg.Group("/tasks")
	tasks.GET("", h.List)
	tasks.POST("", h.Create)
	tasks.GET("/summary", h.Summary)
	tasks.GET("/:id", h.Get)
	tasks.PUT("/:id", h.Update)
	tasks.PATCH("/:id", h.Update)
	tasks.DELETE("/:id", h.Delete)
}

// List handles GET /tasks
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.taskService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, tasks)
}

// Create handles POST /tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	created, err := h.taskService.Create(c.Request.Context(), apptask.CreateTaskRequest{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, "/tasks/"+strconv.FormatInt(created.ID, 10), created)
}

// Get handles GET /tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := h.taskID(c)
	if !ok {
		return
	}

	t, err := h.taskService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, t)
}

// Update handles PUT and PATCH /tasks/:id. Both apply patch semantics:
// omitted members keep their stored value.
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := h.taskID(c)
	if !ok {
		return
	}

	var req apptask.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	updated, err := h.taskService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, updated)
}

// Delete handles DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := h.taskID(c)
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Summary handles GET /tasks/summary
func (h *TaskHandler) Summary(c *gin.Context) {
	summary, err := h.taskService.Summary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, summary)
}

func (h *TaskHandler) taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.BadRequest(c, "Invalid task id: "+c.Param("id"))
		return 0, false
	}
	return id, true
}
