package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pemapp/internal/analysis"
	"pemapp/internal/catalog"
	"pemapp/internal/gemini"
	"pemapp/internal/history"
	"pemapp/internal/models"
)

// Analyzer is the model invocation boundary: image in, raw text out.
type Analyzer interface {
	AnalyzeImage(ctx context.Context, imageBase64, mimeType string) (string, error)
}

// maxImageBytes caps uploads; screenshots beyond this are rejected up front.
const maxImageBytes = 10 << 20

// genericFailure is the single user-facing outcome for malformed model
// output and other unclassified pipeline failures.
const genericFailure = "分析失败，请检查网络连接或稍后重试。"

type AnalyzeHandler struct {
	log     *zap.Logger
	ai      Analyzer
	catalog *catalog.Catalog
	store   history.Store
}

func NewAnalyzeHandler(log *zap.Logger, ai Analyzer, cat *catalog.Catalog, store history.Store) *AnalyzeHandler {
	return &AnalyzeHandler{log: log, ai: ai, catalog: cat, store: store}
}

// Analyze runs the full pipeline: upload -> model call -> normalization ->
// history append. Any failure aborts without persisting anything.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请上传图片文件"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		h.log.Error("Failed to read uploaded image", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericFailure})
		return
	}
	if len(data) > maxImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "图片过大，请上传 10MB 以内的截图"})
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请上传图片文件"})
		return
	}

	imageBase64 := base64.StdEncoding.EncodeToString(data)
	previewURL := "data:" + mimeType + ";base64," + imageBase64
	sourceURL := c.PostForm("sourceUrl")

	text, err := h.ai.AnalyzeImage(c.Request.Context(), imageBase64, mimeType)
	if err != nil {
		status, msg := invocationFailure(err)
		h.log.Error("Model invocation failed", zap.Error(err))
		c.JSON(status, gin.H{"error": msg})
		return
	}

	result, err := analysis.Normalize(text, h.catalog, sourceURL)
	if err != nil {
		// The raw text goes to the log for diagnostics, never to the user.
		var parseErr *analysis.ParseError
		if errors.As(err, &parseErr) {
			h.log.Error("Model response is not valid JSON", zap.Error(err), zap.String("raw", parseErr.Raw))
		} else {
			h.log.Error("Model response has unexpected shape", zap.Error(err))
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": genericFailure})
		return
	}

	item := models.NewHistoryItem(*result, previewURL, time.Now())
	namespace := history.Namespace(CurrentIdentity(c))
	if err := h.store.Append(c.Request.Context(), namespace, item); err != nil {
		h.log.Error("Failed to save analysis to history", zap.Error(err), zap.String("namespace", namespace))
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericFailure})
		return
	}

	c.JSON(http.StatusOK, item)
}

// invocationFailure maps the client's failure classes to the distinct
// localized messages the UI shows for each.
func invocationFailure(err error) (int, string) {
	switch {
	case errors.Is(err, gemini.ErrMissingKey):
		return http.StatusInternalServerError, "API Key 缺失，请配置 PEM_GEMINI_API_KEY 后重启服务。"
	case errors.Is(err, gemini.ErrRegionBlocked):
		return http.StatusBadGateway, "当前地区不支持访问 Gemini API (403)。请开启 VPN (推荐美国/新加坡节点) 后重试。"
	case errors.Is(err, gemini.ErrAccessDenied):
		return http.StatusBadGateway, "访问被拒绝 (403)。可能是 API Key 无效或当前地区受限。"
	case errors.Is(err, gemini.ErrUnavailable):
		return http.StatusBadGateway, "服务暂时不可用 (503)。请稍后重试。"
	default:
		return http.StatusBadGateway, genericFailure
	}
}
