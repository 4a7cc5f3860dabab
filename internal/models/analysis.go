package models

// Dimension is one of the three grouping categories of the ease-of-use
// measurement standard under which the six metrics are organized.
type Dimension string

const (
	DimensionOperability  Dimension = "Operability"
	DimensionLearnability Dimension = "Learnability"
	DimensionClarity      Dimension = "Clarity"
)

// AllDimensions returns the dimensions in their fixed display order.
func AllDimensions() []Dimension {
	return []Dimension{DimensionOperability, DimensionLearnability, DimensionClarity}
}

// MetricScore is one of the six fixed evaluation questions, scored 1-10 by
// the model and joined against the catalog definition by id.
type MetricScore struct {
	ID        int       `json:"id"`
	Question  string    `json:"question"`
	Dimension Dimension `json:"dimension"`
	Score     float64   `json:"score"`
	Comment   string    `json:"comment"`
}

// UsabilityIssue is a discrete friction point identified by the model.
// Severity and Frequency are 1..3, FixCost is 0.5, 1 or 1.5, so
// PriorityScore = Severity * Frequency * FixCost lies in [0.5, 13.5].
type UsabilityIssue struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Severity      int     `json:"severity"`
	Frequency     int     `json:"frequency"`
	FixCost       float64 `json:"fixCost"`
	PriorityScore float64 `json:"priorityScore"`
	PriorityLevel string  `json:"priorityLevel"`
	Location      string  `json:"location"`
}

// AnalysisResult is the normalized outcome of one analysis run. It is
// assembled once by the normalizer and never mutated afterwards.
type AnalysisResult struct {
	Title           string                `json:"title"`
	OverallScore    float64               `json:"overallScore"`
	RatingLevel     string                `json:"ratingLevel"`
	Dimensions      map[Dimension]float64 `json:"dimensions"`
	Metrics         []MetricScore         `json:"metrics"`
	Issues          []UsabilityIssue      `json:"issues"`
	Summary         string                `json:"summary"`
	Recommendations []string              `json:"recommendations"`
	SourceURL       string                `json:"sourceUrl,omitempty"`
}

// Identity is the active user as seen by the rest of the application.
// An empty Email means the guest identity.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// IsGuest reports whether no registered user is logged in.
func (i Identity) IsGuest() bool {
	return i.Email == ""
}
