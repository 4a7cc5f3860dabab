package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pemapp/internal/history"
)

type HistoryHandler struct {
	log   *zap.Logger
	store history.Store
}

func NewHistoryHandler(log *zap.Logger, store history.Store) *HistoryHandler {
	return &HistoryHandler{log: log, store: store}
}

// List returns the caller's history, newest first, at most five items.
func (h *HistoryHandler) List(c *gin.Context) {
	namespace := history.Namespace(CurrentIdentity(c))
	items, err := h.store.List(c.Request.Context(), namespace)
	if err != nil {
		h.log.Error("Failed to list history", zap.Error(err), zap.String("namespace", namespace))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "历史记录加载失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Get returns one stored analysis for re-display.
func (h *HistoryHandler) Get(c *gin.Context) {
	namespace := history.Namespace(CurrentIdentity(c))
	item, err := h.store.Get(c.Request.Context(), namespace, c.Param("id"))
	if errors.Is(err, history.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "历史记录不存在"})
		return
	}
	if err != nil {
		h.log.Error("Failed to load history item", zap.Error(err), zap.String("namespace", namespace))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "历史记录加载失败"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// Remove deletes one item from the caller's history.
func (h *HistoryHandler) Remove(c *gin.Context) {
	namespace := history.Namespace(CurrentIdentity(c))
	err := h.store.Remove(c.Request.Context(), namespace, c.Param("id"))
	if errors.Is(err, history.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "历史记录不存在"})
		return
	}
	if err != nil {
		h.log.Error("Failed to delete history item", zap.Error(err), zap.String("namespace", namespace))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除失败，请稍后重试"})
		return
	}
	c.Status(http.StatusNoContent)
}
