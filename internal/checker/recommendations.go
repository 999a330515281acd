package checker

import "strings"

type Bucket string

const (
	BucketLow  Bucket = "low"
	BucketMed  Bucket = "med"
	BucketHigh Bucket = "high"
)

var recommendationTable = map[Bucket][]string{
	BucketLow:  {"Increase hydration", "Rest for 24 hours", "Monitor temperature"},
	BucketMed:  {"Consult a pharmacist", "Scheduled rest", "Avoid strenuous activity", "Visit a clinic if no improvement"},
	BucketHigh: {"Visit emergency department", "Immediate bed rest", "Professional medical consultation required"},
}

// BucketFor maps severity to low (<4), med (4-7) or high (>=8).
func BucketFor(severity int) Bucket {
	switch {
	case severity < 4:
		return BucketLow
	case severity < 8:
		return BucketMed
	default:
		return BucketHigh
	}
}

// Recommendations is what the recommendations screen shows.
type Recommendations struct {
	Bucket Bucket   `json:"bucket"`
	Level  string   `json:"level"`
	Advice []string `json:"advice"`
}

// RecommendationsFor looks up the advice list for a severity.
func RecommendationsFor(severity int) Recommendations {
	b := BucketFor(severity)
	return Recommendations{
		Bucket: b,
		Level:  strings.ToUpper(string(b)),
		Advice: append([]string(nil), recommendationTable[b]...),
	}
}
