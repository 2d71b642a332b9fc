package domain

type IssueType string

const (
	IssueResolution  IssueType = "resolution"
	IssueBlur        IssueType = "blur"
	IssueBrightness  IssueType = "brightness"
	IssueContrast    IssueType = "contrast"
	IssueAspectRatio IssueType = "aspect_ratio"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type QualityIssue struct {
	Type         IssueType `json:"type"`
	Severity     Severity  `json:"severity"`
	Description  string    `json:"description"`
	SuggestedFix string    `json:"suggested_fix,omitempty"`
}

// QualityCheckResult is the analyzer verdict for one image.
type QualityCheckResult struct {
	Passed          bool           `json:"passed"`
	Score           int            `json:"score"`
	Issues          []QualityIssue `json:"issues"`
	Recommendations []string       `json:"recommendations"`
}

// ImageStats is the decoded-pixel view the analyzer consumes. Channel values
// are on the 0-255 scale; Gray is the row-major grayscale buffer.
type ImageStats struct {
	Width         int
	Height        int
	ChannelMeans  []float64
	ChannelStdevs []float64
	Gray          []float64
}

// ImageRecord is created at upload time from an analyzer result and stored in
// the images step. Quality fields are immutable afterwards; only tags and
// category may be edited.
type ImageRecord struct {
	ID           string         `json:"id"`
	Category     string         `json:"category"`
	URL          string         `json:"url"`
	QualityScore int            `json:"quality_score"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	Issues       []QualityIssue `json:"issues,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
}

type ComponentScore struct {
	Score   float64  `json:"score"`
	Factors []string `json:"factors,omitempty"`
}

type QualityScoreBreakdown struct {
	ImageQuality        ComponentScore `json:"image_quality"`
	ContentCompleteness ComponentScore `json:"content_completeness"`
	PolicyClarity       ComponentScore `json:"policy_clarity"`
	Overall             float64        `json:"overall"`
}

type RecommendationType string

const (
	RecommendImage   RecommendationType = "image"
	RecommendContent RecommendationType = "content"
	RecommendPolicy  RecommendationType = "policy"
	RecommendAmenity RecommendationType = "amenity"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Recommendation is derived from the current draft and scores; regenerable,
// never persisted as source of truth.
type Recommendation struct {
	Type            RecommendationType `json:"type"`
	Priority        Priority           `json:"priority"`
	EstimatedImpact float64            `json:"estimated_impact"`
	ActionRequired  string             `json:"action_required"`
}

// MissingInfo groups absent required fields by category for UI surfacing,
// independent of the numeric score.
type MissingInfo struct {
	Category string   `json:"category"`
	Fields   []string `json:"fields"`
	Priority Priority `json:"priority"`
}
