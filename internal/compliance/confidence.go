package compliance

import "time"

const (
	scoreFresh   = 0.90
	scoreAging   = 0.75
	scoreStale   = 0.60
	scoreBuiltIn = 0.60

	freshWindowDays = 365
	staleAfterDays  = 730
)

// ScoreConfidence derives a confidence signal from record recency. UpdatedAt
// is preferred over PublishedAt; with neither, the record is treated as a
// built-in rule. Pure and total: now is an argument.
func ScoreConfidence(updatedAt, publishedAt *time.Time, now time.Time) Confidence {
	ref := updatedAt
	if ref == nil {
		ref = publishedAt
	}
	if ref == nil {
		return StaticConfidence()
	}

	days := now.Sub(*ref).Hours() / 24
	var score float64
	switch {
	case days > staleAfterDays:
		score = scoreStale
	case days > freshWindowDays:
		score = scoreAging
	default:
		score = scoreFresh
	}
	return Confidence{Score: score, Label: LabelFor(score), FromDataset: true}
}

// StaticConfidence is the confidence of built-in rules not sourced from admin
// data.
func StaticConfidence() Confidence {
	return Confidence{Score: scoreBuiltIn, Label: ConfidenceMedium, FromDataset: false}
}

// LabelFor maps a score to its label.
func LabelFor(score float64) ConfidenceLabel {
	switch {
	case score >= 0.85:
		return ConfidenceHigh
	case score >= 0.60:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
