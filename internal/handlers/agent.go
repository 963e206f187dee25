package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/dates"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/query"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/services"
)

const Version = "1.0.0"

// ChatRequest needs the message key. An empty message is a valid query.
type ChatRequest struct {
	Message *string `json:"message" binding:"required"`
}

func (r ChatRequest) text() string {
	if r.Message == nil {
		return ""
	}
	return *r.Message
}

// AgentHandler serves the in-memory pipeline.
type AgentHandler struct {
	agent *services.AgentService
}

func NewAgentHandler(agent *services.AgentService) *AgentHandler {
	return &AgentHandler{agent: agent}
}

func (h *AgentHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Superproductive AI Agent API",
		"version": Version,
		"endpoints": gin.H{
			"tasks":      "/api/tasks",
			"extract":    "/api/tasks/extract",
			"prioritize": "/api/tasks/prioritize",
			"filter":     "/api/tasks/filter",
			"chat":       "/api/chat",
			"insights":   "/api/insights",
			"db":         "/api/db/tasks",
		},
	})
}

func (h *AgentHandler) GetTasks(c *gin.Context) {
	c.JSON(http.StatusOK, h.agent.Tasks())
}

// ExtractTasks rebuilds the collection. A JSON body of sources is used when
// present, otherwise the data directory is read.
func (h *AgentHandler) ExtractTasks(c *gin.Context) {
	var (
		result services.ExtractResult
		err    error
	)
	if c.Request.ContentLength > 0 {
		var src models.Sources
		if bindErr := c.ShouldBindJSON(&src); bindErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": bindErr.Error()})
			return
		}
		result, err = h.agent.Extract(c.Request.Context(), src)
	} else {
		result, err = h.agent.ExtractFromDir(c.Request.Context())
	}
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AgentHandler) PrioritizeTasks(c *gin.Context) {
	result, err := h.agent.Prioritize(c.Request.Context())
	if errors.Is(err, services.ErrNoTasks) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No tasks to prioritize. Please extract tasks first."})
		return
	}
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AgentHandler) FilterTasks(c *gin.Context) {
	criteria, err := parseCriteria(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.agent.Filter(criteria))
}

func parseCriteria(c *gin.Context) (query.Criteria, error) {
	var criteria query.Criteria

	if v := c.Query("start_date"); v != "" {
		t, err := dates.ParseBound(v, false)
		if err != nil {
			return criteria, err
		}
		criteria.Start = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := dates.ParseBound(v, true)
		if err != nil {
			return criteria, err
		}
		criteria.End = &t
	}
	if v := c.Query("source_type"); v != "" {
		s, err := models.ParseSourceType(v)
		if err != nil {
			return criteria, err
		}
		criteria.SourceType = s
	}
	if v := c.Query("priority"); v != "" {
		p, err := models.ParsePriority(v)
		if err != nil {
			return criteria, err
		}
		criteria.Priority = p
	}
	if v := c.Query("status"); v != "" {
		s, err := models.ParseStatus(v)
		if err != nil {
			return criteria, err
		}
		criteria.Status = s
	}
	return criteria, nil
}

func (h *AgentHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.agent.Chat(req.text()))
}

func (h *AgentHandler) GetInsights(c *gin.Context) {
	insights, ok := h.agent.Insights()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"message": "No tasks available. Please extract tasks first."})
		return
	}
	c.JSON(http.StatusOK, insights)
}

func (h *AgentHandler) DeleteTask(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))
	if err := h.agent.Delete(id); err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func (h *AgentHandler) UpdateTaskStatus(c *gin.Context) {
	status, err := models.ParseStatus(c.Query("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := uuid.FromStringOrNil(c.Param("id"))
	task, err := h.agent.UpdateStatus(id, status)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task status updated", "task": task})
}

// RegisterRoutes mounts the in-memory API. Mutating routes go through
// guard.
func (h *AgentHandler) RegisterRoutes(r gin.IRouter, guard gin.HandlerFunc) {
	r.GET("/", h.Index)

	api := r.Group("/api")
	api.GET("/tasks", h.GetTasks)
	api.GET("/tasks/filter", h.FilterTasks)
	api.GET("/insights", h.GetInsights)
	api.POST("/chat", h.Chat)

	write := api.Group("", orPass(guard))
	write.POST("/tasks/extract", h.ExtractTasks)
	write.POST("/tasks/prioritize", h.PrioritizeTasks)
	write.DELETE("/tasks/:id", h.DeleteTask)
	write.PUT("/tasks/:id/status", h.UpdateTaskStatus)
}
