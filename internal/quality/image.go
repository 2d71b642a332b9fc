package quality

import (
	"math"

	"hotel_onboarding/internal/domain"
)

// Analyzer scores a single decoded image. Pure: same stats in, same result
// out, no shared state, safe to run across goroutines.
type Analyzer struct {
	cfg Config
}

func NewAnalyzer(cfg Config) *Analyzer { return &Analyzer{cfg: cfg} }

// Analyze runs the resolution, aspect-ratio, brightness, contrast and blur
// checks. The score starts at 100 and is floored at 0; deductions are fixed
// per issue so accumulation order does not matter.
func (a *Analyzer) Analyze(stats domain.ImageStats) domain.QualityCheckResult {
	var issues []domain.QualityIssue
	score := 100

	deduct := func(points int, iss domain.QualityIssue) {
		issues = append(issues, iss)
		score -= points
	}

	// Resolution
	switch {
	case stats.Width <= 0 || stats.Height <= 0:
		deduct(30, domain.QualityIssue{
			Type:         domain.IssueResolution,
			Severity:     domain.SeverityHigh,
			Description:  "image dimensions are missing",
			SuggestedFix: "Re-upload the image; its dimensions could not be read",
		})
	case stats.Width < a.cfg.MinWidth || stats.Height < a.cfg.MinHeight:
		deduct(20, domain.QualityIssue{
			Type:         domain.IssueResolution,
			Severity:     domain.SeverityMedium,
			Description:  "resolution is below the recommended minimum",
			SuggestedFix: "Upload an image of at least 1920x1080",
		})
	}

	// Aspect ratio, only meaningful with real dimensions.
	if stats.Width > 0 && stats.Height > 0 && !a.acceptableAspect(float64(stats.Width)/float64(stats.Height)) {
		deduct(10, domain.QualityIssue{
			Type:         domain.IssueAspectRatio,
			Severity:     domain.SeverityLow,
			Description:  "aspect ratio is non-standard",
			SuggestedFix: "Crop to a standard aspect ratio such as 16:9 or 4:3",
		})
	}

	// Brightness: average of per-channel means, 0-255 scale.
	if len(stats.ChannelMeans) > 0 {
		b := mean(stats.ChannelMeans)
		if b < 50 {
			deduct(15, domain.QualityIssue{
				Type:         domain.IssueBrightness,
				Severity:     domain.SeverityMedium,
				Description:  "image is too dark",
				SuggestedFix: "Increase exposure or retake with more light",
			})
		} else if b > 200 {
			deduct(15, domain.QualityIssue{
				Type:         domain.IssueBrightness,
				Severity:     domain.SeverityMedium,
				Description:  "image is overexposed",
				SuggestedFix: "Reduce exposure or avoid direct light sources",
			})
		}
	}

	// Contrast: average of per-channel standard deviations.
	if len(stats.ChannelStdevs) > 0 && mean(stats.ChannelStdevs) < 30 {
		deduct(15, domain.QualityIssue{
			Type:         domain.IssueContrast,
			Severity:     domain.SeverityMedium,
			Description:  "image has low contrast",
			SuggestedFix: "Increase contrast so details stand out",
		})
	}

	// Blur: mean squared Laplacian over interior pixels.
	if blur, ok := blurScore(stats); ok && blur < a.cfg.BlurThreshold {
		deduct(25, domain.QualityIssue{
			Type:         domain.IssueBlur,
			Severity:     domain.SeverityHigh,
			Description:  "image appears blurry",
			SuggestedFix: "Retake with a steady camera and proper focus",
		})
	}

	if score < 0 {
		score = 0
	}
	return domain.QualityCheckResult{
		Passed:          !hasHighSeverity(issues),
		Score:           score,
		Issues:          issues,
		Recommendations: recommendationsFor(issues),
	}
}

// AnalysisFailure is the degrade path for images whose statistics could not
// be computed (corrupt or unreadable bytes). Never propagated as an error.
func AnalysisFailure() domain.QualityCheckResult {
	iss := domain.QualityIssue{
		Type:         domain.IssueResolution,
		Severity:     domain.SeverityHigh,
		Description:  "failed to analyze image",
		SuggestedFix: "Re-upload the image in JPEG or PNG format",
	}
	return domain.QualityCheckResult{
		Passed:          false,
		Score:           0,
		Issues:          []domain.QualityIssue{iss},
		Recommendations: recommendationsFor([]domain.QualityIssue{iss}),
	}
}

// IsHighQuality reports whether an analyzer score clears the bar the
// aggregator counts as "high quality".
func (a *Analyzer) IsHighQuality(score int) bool { return score >= a.cfg.HighQualityScore }

var standardAspects = []float64{16.0 / 9.0, 4.0 / 3.0, 3.0 / 2.0, 1.0}

func (a *Analyzer) acceptableAspect(ratio float64) bool {
	for _, want := range standardAspects {
		if math.Abs(ratio-want) <= a.cfg.AspectTolerance {
			return true
		}
	}
	return false
}

// blurScore convolves the grayscale buffer with the 3x3 Laplacian kernel and
// returns the mean of squared responses over interior pixels. ok is false
// when the buffer is absent or inconsistent with the dimensions.
func blurScore(stats domain.ImageStats) (float64, bool) {
	w, h := stats.Width, stats.Height
	if w < 3 || h < 3 || len(stats.Gray) != w*h {
		return 0, false
	}
	g := stats.Gray
	var sum float64
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			lap := 8*g[i] -
				g[i-w-1] - g[i-w] - g[i-w+1] -
				g[i-1] - g[i+1] -
				g[i+w-1] - g[i+w] - g[i+w+1]
			sum += lap * lap
		}
	}
	n := float64((w - 2) * (h - 2))
	return sum / n, true
}

func hasHighSeverity(issues []domain.QualityIssue) bool {
	for _, iss := range issues {
		if iss.Severity == domain.SeverityHigh {
			return true
		}
	}
	return false
}

func recommendationsFor(issues []domain.QualityIssue) []string {
	if len(issues) == 0 {
		return []string{"Image meets quality guidelines"}
	}
	out := make([]string, 0, len(issues))
	for _, iss := range issues {
		out = append(out, iss.SuggestedFix)
	}
	return out
}

func mean(vs []float64) float64 {
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
