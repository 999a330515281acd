package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketFor(t *testing.T) {
	cases := map[int]Bucket{
		1: BucketLow, 2: BucketLow, 3: BucketLow,
		4: BucketMed, 5: BucketMed, 7: BucketMed,
		8: BucketHigh, 9: BucketHigh, 10: BucketHigh,
	}
	for severity, want := range cases {
		assert.Equal(t, want, BucketFor(severity), "severity %d", severity)
	}
}

func TestRecommendationsFor(t *testing.T) {
	r := RecommendationsFor(5)
	assert.Equal(t, BucketMed, r.Bucket)
	assert.Equal(t, "MED", r.Level)
	assert.Equal(t, []string{"Consult a pharmacist", "Scheduled rest", "Avoid strenuous activity", "Visit a clinic if no improvement"}, r.Advice)

	r = RecommendationsFor(2)
	assert.Equal(t, BucketLow, r.Bucket)
	assert.Equal(t, []string{"Increase hydration", "Rest for 24 hours", "Monitor temperature"}, r.Advice)

	r = RecommendationsFor(8)
	assert.Equal(t, "HIGH", r.Level)
	assert.Len(t, r.Advice, 3)

	// The table itself is not exposed for mutation.
	r.Advice[0] = "changed"
	assert.Equal(t, "Visit emergency department", RecommendationsFor(10).Advice[0])
}
