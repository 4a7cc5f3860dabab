// Package analysis turns the loosely-structured JSON emitted by the model
// into the application's typed AnalysisResult.
package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"pemapp/internal/catalog"
	"pemapp/internal/models"
	"pemapp/internal/scoring"
)

// DefaultTitle is used when the model omits a report title.
const DefaultTitle = "界面分析报告"

// unknownQuestion marks a metric entry whose id is not in the catalog.
const unknownQuestion = "未知指标"

type rawMetric struct {
	ID      int     `json:"id"`
	Score   float64 `json:"score"`
	Comment string  `json:"comment"`
}

type rawIssue struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Severity    int     `json:"severity"`
	Frequency   int     `json:"frequency"`
	FixCost     float64 `json:"fixCost"`
	Location    string  `json:"location"`
}

// Pointer fields distinguish "absent" from "empty" for the shape check.
type rawPayload struct {
	Title           string      `json:"title"`
	Metrics         []rawMetric `json:"metrics"`
	Issues          []rawIssue  `json:"issues"`
	Summary         *string     `json:"summary"`
	Recommendations []string    `json:"recommendations"`
}

var fencePattern = regexp.MustCompile("```(?:json)?\n?|```")

// StripFences removes markdown code-block markers the model sometimes wraps
// around its JSON output.
func StripFences(text string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))
}

// Normalize parses the raw model output and produces the typed result.
// sourceURL comes from the call context, not from the payload. It returns a
// *ParseError for malformed JSON and a *ShapeError for missing fields.
func Normalize(text string, cat *catalog.Catalog, sourceURL string) (*models.AnalysisResult, error) {
	clean := StripFences(text)

	var raw rawPayload
	if err := json.Unmarshal([]byte(clean), &raw); err != nil {
		return nil, &ParseError{Raw: text, Err: err}
	}

	var missing []string
	if raw.Metrics == nil {
		missing = append(missing, "metrics")
	}
	if raw.Issues == nil {
		missing = append(missing, "issues")
	}
	if raw.Summary == nil {
		missing = append(missing, "summary")
	}
	if raw.Recommendations == nil {
		missing = append(missing, "recommendations")
	}
	if len(missing) > 0 {
		return nil, &ShapeError{Missing: missing}
	}

	metrics := make([]models.MetricScore, 0, len(raw.Metrics))
	scores := make([]float64, 0, len(raw.Metrics))
	byDimension := make(map[models.Dimension][]float64)

	for _, m := range raw.Metrics {
		score := models.MetricScore{
			ID:        m.ID,
			Score:     m.Score,
			Comment:   m.Comment,
			Question:  unknownQuestion,
			Dimension: models.DimensionOperability,
		}
		if def, ok := cat.Lookup(m.ID); ok {
			score.Question = def.Question
			score.Dimension = def.Dimension
		}
		metrics = append(metrics, score)
		scores = append(scores, m.Score)
		byDimension[score.Dimension] = append(byDimension[score.Dimension], m.Score)
	}

	dimensions := make(map[models.Dimension]float64, len(models.AllDimensions()))
	for _, d := range models.AllDimensions() {
		dimensions[d] = scoring.Average(byDimension[d])
	}

	// The contract is the mean of the raw metric scores, not the mean of the
	// dimension averages. The two only coincide while every dimension holds
	// the same number of metrics.
	overall := scoring.Average(scores)

	issues := make([]models.UsabilityIssue, 0, len(raw.Issues))
	for i, issue := range raw.Issues {
		priority := float64(issue.Severity) * float64(issue.Frequency) * issue.FixCost
		issues = append(issues, models.UsabilityIssue{
			ID:            fmt.Sprintf("issue-%d", i),
			Title:         issue.Title,
			Description:   issue.Description,
			Severity:      issue.Severity,
			Frequency:     issue.Frequency,
			FixCost:       issue.FixCost,
			PriorityScore: priority,
			PriorityLevel: scoring.PriorityLevel(priority),
			Location:      issue.Location,
		})
	}

	title := raw.Title
	if title == "" {
		title = DefaultTitle
	}

	return &models.AnalysisResult{
		Title:           title,
		OverallScore:    overall,
		RatingLevel:     scoring.RatingLevel(overall),
		Dimensions:      dimensions,
		Metrics:         metrics,
		Issues:          issues,
		Summary:         *raw.Summary,
		Recommendations: raw.Recommendations,
		SourceURL:       sourceURL,
	}, nil
}
