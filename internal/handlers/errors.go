package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/dates"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/repositories"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/store"
)

func handleTaskError(c *gin.Context, err error) {
	var parseErr *dates.ParseError
	switch {
	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, repositories.ErrTaskNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.As(err, &parseErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func orPass(guard gin.HandlerFunc) gin.HandlerFunc {
	if guard == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return guard
}
