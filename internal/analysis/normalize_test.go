package analysis

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pemapp/internal/catalog"
	"pemapp/internal/models"
	"pemapp/internal/scoring"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.MetricDefinition{
		{ID: 1, Dimension: models.DimensionOperability, Question: "容易使用"},
		{ID: 2, Dimension: models.DimensionOperability, Question: "快速完成任务"},
		{ID: 3, Dimension: models.DimensionLearnability, Question: "容易学习"},
		{ID: 4, Dimension: models.DimensionLearnability, Question: "提示易懂"},
		{ID: 5, Dimension: models.DimensionClarity, Question: "布局合理"},
		{ID: 6, Dimension: models.DimensionClarity, Question: "容易找到"},
	})
	require.NoError(t, err)
	return cat
}

func payload(metricScores []float64) string {
	metrics := make([]map[string]any, len(metricScores))
	for i, s := range metricScores {
		metrics[i] = map[string]any{"id": i + 1, "score": s, "comment": fmt.Sprintf("c%d", i+1)}
	}
	body, _ := json.Marshal(map[string]any{
		"title":           "CRM 列表页分析",
		"metrics":         metrics,
		"issues":          []any{},
		"summary":         "整体尚可",
		"recommendations": []string{"建议一", "建议二"},
	})
	return string(body)
}

func TestNormalizeScores(t *testing.T) {
	cat := testCatalog(t)

	result, err := Normalize(payload([]float64{8, 6, 9, 7, 5, 8}), cat, "")
	require.NoError(t, err)

	assert.Equal(t, "CRM 列表页分析", result.Title)
	assert.InDelta(t, 7.2, result.OverallScore, 1e-9)
	assert.Equal(t, scoring.RatingGood, result.RatingLevel)
	assert.InDelta(t, 7.0, result.Dimensions[models.DimensionOperability], 1e-9)
	assert.InDelta(t, 8.0, result.Dimensions[models.DimensionLearnability], 1e-9)
	assert.InDelta(t, 6.5, result.Dimensions[models.DimensionClarity], 1e-9)

	require.Len(t, result.Metrics, 6)
	assert.Equal(t, "容易使用", result.Metrics[0].Question)
	assert.Equal(t, models.DimensionOperability, result.Metrics[0].Dimension)
	assert.Equal(t, "c1", result.Metrics[0].Comment)
	assert.Equal(t, "整体尚可", result.Summary)
	assert.Equal(t, []string{"建议一", "建议二"}, result.Recommendations)
}

func TestNormalizeOverallUsesRawScores(t *testing.T) {
	// With metric ids outside the catalog the dimension partitions become
	// uneven; the overall score must still be the mean of the raw scores.
	cat := testCatalog(t)
	raw := `{
		"metrics": [
			{"id": 1, "score": 10},
			{"id": 3, "score": 4},
			{"id": 4, "score": 4}
		],
		"issues": [], "summary": "s", "recommendations": []
	}`

	result, err := Normalize(raw, cat, "")
	require.NoError(t, err)

	assert.InDelta(t, 6.0, result.OverallScore, 1e-9) // (10+4+4)/3
	assert.InDelta(t, 10.0, result.Dimensions[models.DimensionOperability], 1e-9)
	assert.InDelta(t, 4.0, result.Dimensions[models.DimensionLearnability], 1e-9)
	assert.InDelta(t, 0.0, result.Dimensions[models.DimensionClarity], 1e-9)
}

func TestNormalizeUnknownMetricID(t *testing.T) {
	cat := testCatalog(t)
	raw := `{
		"metrics": [{"id": 99, "score": 7, "comment": "x"}],
		"issues": [], "summary": "s", "recommendations": []
	}`

	result, err := Normalize(raw, cat, "")
	require.NoError(t, err)
	require.Len(t, result.Metrics, 1)
	assert.Equal(t, "未知指标", result.Metrics[0].Question)
	assert.Equal(t, models.DimensionOperability, result.Metrics[0].Dimension)
}

func TestNormalizeIssues(t *testing.T) {
	cat := testCatalog(t)
	raw := `{
		"metrics": [],
		"issues": [
			{"title": "阻碍任务", "description": "d", "severity": 3, "frequency": 3, "fixCost": 1.5, "location": "顶部导航栏"},
			{"title": "小问题", "description": "d", "severity": 1, "frequency": 2, "fixCost": 1, "location": "表格"}
		],
		"summary": "s", "recommendations": []
	}`

	result, err := Normalize(raw, cat, "")
	require.NoError(t, err)
	require.Len(t, result.Issues, 2)

	assert.Equal(t, "issue-0", result.Issues[0].ID)
	assert.InDelta(t, 13.5, result.Issues[0].PriorityScore, 1e-9)
	assert.Equal(t, scoring.PriorityUrgent, result.Issues[0].PriorityLevel)

	assert.Equal(t, "issue-1", result.Issues[1].ID)
	assert.InDelta(t, 2.0, result.Issues[1].PriorityScore, 1e-9)
	assert.Equal(t, scoring.PriorityLow, result.Issues[1].PriorityLevel)
}

func TestNormalizeTitleFallbackAndSourceURL(t *testing.T) {
	cat := testCatalog(t)
	raw := `{"metrics": [], "issues": [], "summary": "s", "recommendations": []}`

	result, err := Normalize(raw, cat, "https://figma.com/file/abc")
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, result.Title)
	assert.Equal(t, "https://figma.com/file/abc", result.SourceURL)
}

func TestNormalizeStripsFences(t *testing.T) {
	cat := testCatalog(t)
	fenced := "```json\n" + payload([]float64{8, 6, 9, 7, 5, 8}) + "\n```"

	result, err := Normalize(fenced, cat, "")
	require.NoError(t, err)
	assert.InDelta(t, 7.2, result.OverallScore, 1e-9)
}

func TestNormalizeParseError(t *testing.T) {
	cat := testCatalog(t)

	_, err := Normalize("抱歉，我无法分析这张图片。", cat, "")
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Raw, "抱歉")
}

func TestNormalizeShapeError(t *testing.T) {
	cat := testCatalog(t)
	tests := []struct {
		name    string
		raw     string
		missing []string
	}{
		{
			"no issues field",
			`{"metrics": [], "summary": "s", "recommendations": []}`,
			[]string{"issues"},
		},
		{
			"no metrics field",
			`{"issues": [], "summary": "s", "recommendations": []}`,
			[]string{"metrics"},
		},
		{
			"empty object",
			`{}`,
			[]string{"metrics", "issues", "summary", "recommendations"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw, cat, "")
			var shapeErr *ShapeError
			require.ErrorAs(t, err, &shapeErr)
			assert.Equal(t, tt.missing, shapeErr.Missing)
		})
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripFences(tt.in))
	}
}
