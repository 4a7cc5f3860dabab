package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/zap"

	"pemapp/internal/history"
	"pemapp/internal/models"
)

// Radar returns the echarts option set for the dimension radar of a stored
// analysis, consumed by the dashboard's chart component.
func (h *HistoryHandler) Radar(c *gin.Context) {
	namespace := history.Namespace(CurrentIdentity(c))
	item, err := h.store.Get(c.Request.Context(), namespace, c.Param("id"))
	if errors.Is(err, history.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "历史记录不存在"})
		return
	}
	if err != nil {
		h.log.Error("Failed to load history item for chart", zap.Error(err), zap.String("namespace", namespace))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "历史记录加载失败"})
		return
	}

	c.JSON(http.StatusOK, generateDimensionRadar(item.Result).JSON())
}

func generateDimensionRadar(result models.AnalysisResult) *charts.Radar {
	dims := models.AllDimensions()

	indicators := make([]*opts.Indicator, 0, len(dims))
	values := make([]float64, 0, len(dims))
	for _, d := range dims {
		indicators = append(indicators, &opts.Indicator{Name: string(d), Max: 10})
		values = append(values, result.Dimensions[d])
	}

	radar := charts.NewRadar()
	radar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    result.Title,
			Subtitle: result.RatingLevel,
		}),
		charts.WithRadarComponentOpts(opts.RadarComponent{
			Indicator: indicators,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	radar.AddSeries("dimensions", []opts.RadarData{{Value: values}})
	return radar
}
