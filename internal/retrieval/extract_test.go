package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantscape/knowledge-engine/internal/knowledge"
)

func TestExtractPriceRange(t *testing.T) {
	texts := []string{"Sod installation typically costs $1.50 to $2.00 per sq ft installed."}
	r, ok := extractPriceRange(texts)
	require.True(t, ok)
	assert.InDelta(t, 1.50, r.Low, 1e-9)
	assert.InDelta(t, 2.00, r.High, 1e-9)
	assert.InDelta(t, 1.75, r.Average, 1e-9)
}

func TestExtractPriceRangeCommasAndMultipleTexts(t *testing.T) {
	texts := []string{
		"Full designs start at $1,200 for small yards.",
		"Large properties can reach $4,500 or more.",
	}
	r, ok := extractPriceRange(texts)
	require.True(t, ok)
	assert.InDelta(t, 1200, r.Low, 1e-9)
	assert.InDelta(t, 4500, r.High, 1e-9)
}

func TestExtractPriceRangeNoAmounts(t *testing.T) {
	_, ok := extractPriceRange([]string{"No numbers in this text at all."})
	assert.False(t, ok)
}

func TestExtractHourlyRateRange(t *testing.T) {
	r, ok := extractHourlyRate([]string{"Crews charge $45-$65 per hour depending on experience."})
	require.True(t, ok)
	assert.InDelta(t, 45, r.Low, 1e-9)
	assert.InDelta(t, 65, r.High, 1e-9)
	assert.InDelta(t, 55, r.Average, 1e-9)
}

func TestExtractHourlyRateSingle(t *testing.T) {
	r, ok := extractHourlyRate([]string{"Helpers bill $20 an hour in most markets."})
	require.True(t, ok)
	assert.InDelta(t, 20, r.Low, 1e-9)
	assert.InDelta(t, 20, r.High, 1e-9)
}

func TestExtractHourlyRateDoesNotDoubleCountRanges(t *testing.T) {
	// The $65 inside the range must not also be counted as a single rate;
	// the standalone $10 per hour must still be found.
	r, ok := extractHourlyRate([]string{"Crews charge $45-$65 per hour; equipment adds $10 per hour."})
	require.True(t, ok)
	assert.InDelta(t, 10, r.Low, 1e-9)
	assert.InDelta(t, 65, r.High, 1e-9)
	assert.InDelta(t, 40, r.Average, 1e-9, "amounts should be 45, 65, 10")
}

func TestExtractHourlyRateIgnoresNonHourlyAmounts(t *testing.T) {
	_, ok := extractHourlyRate([]string{"Mulch costs $35 per cubic yard delivered."})
	assert.False(t, ok)
}

func TestExtractUnitLastMatchWins(t *testing.T) {
	unit := extractUnit([]string{
		"Bulk mulch is $35 per cubic yard.",
		"Installed sod runs $1.75 per sq ft.",
	})
	assert.Equal(t, "per sq ft", unit)

	assert.Equal(t, "", extractUnit([]string{"No unit phrases here."}))
}

func TestExtractFactorsCapped(t *testing.T) {
	factors := extractFactors([]string{
		"Price depends on lot size, slope, access, soil type, climate, season, and complexity.",
	})
	assert.Equal(t, []string{"size", "slope", "access", "soil", "climate"}, factors)
}

func TestExtractDuration(t *testing.T) {
	assert.Equal(t, "2-3 days", extractDuration("The project takes 2-3 days overall."))
	assert.Equal(t, "4 hours", extractDuration("Plan for about 4 hours of work."))
	assert.Equal(t, "", extractDuration("No schedule is mentioned."))
}

func TestClassifyIntensity(t *testing.T) {
	assert.Equal(t, "heavy", classifyIntensity("Requires major excavation and regrading."))
	assert.Equal(t, "light", classifyIntensity("A quick touch-up between full visits."))
	assert.Equal(t, "moderate", classifyIntensity("Standard installation with normal prep."))
}

func TestServiceNameForQuery(t *testing.T) {
	name := serviceNameForQuery("how much does sod installation cost", nil)
	assert.Equal(t, "Sod Installation", name)

	// No query keyword: fall back to the top result's service type.
	results := []knowledge.SearchResult{{
		Chunk: &knowledge.DocumentChunk{
			Metadata: knowledge.DocumentMetadata{ServiceType: knowledge.ServiceHardscaping},
		},
	}}
	assert.Equal(t, "Hardscaping", serviceNameForQuery("backyard renovation estimate", results))

	assert.Equal(t, "General Landscaping", serviceNameForQuery("backyard renovation estimate", nil))
}

func TestFirstSentences(t *testing.T) {
	text := "First sentence here. Second one follows. Third is dropped."
	assert.Equal(t, "First sentence here. Second one follows.", firstSentences(text, 2))
	assert.Equal(t, text, firstSentences(text, 10))
}

func TestSentencesContaining(t *testing.T) {
	text := "Crews must clear debris first. The weather looked fine. You need to stake the edges. Always call before digging."
	matched := sentencesContaining(text, []string{"must", "need to", "before"}, 2)
	require.Len(t, matched, 2, "cap applies")
	assert.Equal(t, "Crews must clear debris first.", matched[0])
	assert.Equal(t, "You need to stake the edges.", matched[1])
}

func TestExtractionsAreDeterministic(t *testing.T) {
	texts := []string{"Sod costs $1.50 to $2.00 per sq ft; size and slope matter."}
	a, _ := extractPriceRange(texts)
	b, _ := extractPriceRange(texts)
	assert.Equal(t, a, b)
	assert.Equal(t, extractFactors(texts), extractFactors(texts))
	assert.Equal(t, extractUnit(texts), extractUnit(texts))
}
