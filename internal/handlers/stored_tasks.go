package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/dates"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/repositories"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/services"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/worker"
)

// Enqueuer hands extraction requests to the background worker.
type Enqueuer interface {
	Enqueue(ctx context.Context, queue string, jobType worker.JobType, payload any) (string, error)
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// StoredTaskHandler serves the database-backed pipeline.
type StoredTaskHandler struct {
	taskService services.TaskService
	jobs        Enqueuer
}

func NewStoredTaskHandler(taskService services.TaskService, jobs Enqueuer) *StoredTaskHandler {
	return &StoredTaskHandler{taskService: taskService, jobs: jobs}
}

func (h *StoredTaskHandler) GetTasks(c *gin.Context) {
	start, end := c.Query("start"), c.Query("end")
	if start == "" && end == "" {
		skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(repositories.DefaultListLimit)))
		tasks, err := h.taskService.List(c.Request.Context(), skip, limit)
		if err != nil {
			handleTaskError(c, err)
			return
		}
		c.JSON(http.StatusOK, nonNilRows(tasks))
		return
	}

	startDate, err := optionalISO(start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, use ISO YYYY-MM-DD"})
		return
	}
	endDate, err := optionalISO(end)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, use ISO YYYY-MM-DD"})
		return
	}

	tasks, err := h.taskService.ListByRange(c.Request.Context(), startDate, endDate)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNilRows(tasks))
}

func optionalISO(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := dates.ParseISO(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Extract stores the tasks found in the request. With ?async=true the
// request is queued and 202 is returned.
func (h *StoredTaskHandler) Extract(c *gin.Context) {
	var req models.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if async, _ := strconv.ParseBool(c.Query("async")); async {
		if h.jobs == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "background worker is not configured"})
			return
		}
		id, err := h.jobs.Enqueue(c.Request.Context(), worker.QueueExtraction, worker.JobTypeExtractStored, req)
		if err != nil {
			handleTaskError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "queued", "job_id": id})
		return
	}

	added, err := h.taskService.Extract(c.Request.Context(), req)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added_count": len(added), "added": added})
}

func (h *StoredTaskHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.taskService.Chat(c.Request.Context(), req.text())
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (h *StoredTaskHandler) ReloadMock(c *gin.Context) {
	count, err := h.taskService.ReloadMock(c.Request.Context())
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded", "count": count})
}

func (h *StoredTaskHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task status updated", "task": task})
}

func (h *StoredTaskHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.taskService.Delete(c.Request.Context(), id); err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return 0, false
	}
	return uint(id), true
}

func nonNilRows(tasks []models.StoredTask) []models.StoredTask {
	if tasks == nil {
		return []models.StoredTask{}
	}
	return tasks
}

// RegisterRoutes mounts the database API under /api/db.
func (h *StoredTaskHandler) RegisterRoutes(r gin.IRouter, guard gin.HandlerFunc) {
	db := r.Group("/api/db")
	db.GET("/tasks", h.GetTasks)
	db.POST("/chat", h.Chat)

	write := db.Group("", orPass(guard))
	write.POST("/extract", h.Extract)
	write.POST("/reload-mock", h.ReloadMock)
	write.PUT("/tasks/:id/status", h.UpdateStatus)
	write.DELETE("/tasks/:id", h.Delete)
}
