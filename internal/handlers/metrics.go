package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pemapp/internal/catalog"
)

type MetricsHandler struct {
	catalog *catalog.Catalog
}

func NewMetricsHandler(cat *catalog.Catalog) *MetricsHandler {
	return &MetricsHandler{catalog: cat}
}

// List exposes the fixed metric catalog to the dashboard.
func (h *MetricsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"metrics": h.catalog.Metrics()})
}
