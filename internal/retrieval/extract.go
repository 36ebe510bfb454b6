package retrieval

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/verdantscape/knowledge-engine/internal/knowledge"
)

// Extraction heuristics: best-effort regex/keyword parsing that turns
// retrieved natural-language text into structured values. Misses are never
// errors; each function reports whether it found anything and callers apply
// the documented fallback defaults. Kept as pure functions so their
// behavior is testable in isolation from search ranking.

var (
	dollarPattern = regexp.MustCompile(`\$\s?(\d[\d,]*(?:\.\d+)?)`)

	hourlyRangePattern  = regexp.MustCompile(`(?i)\$\s?(\d[\d,]*(?:\.\d+)?)\s*(?:-|–|to)\s*\$?\s?(\d[\d,]*(?:\.\d+)?)\s*(?:per|/|an?)\s*hour`)
	hourlySinglePattern = regexp.MustCompile(`(?i)\$\s?(\d[\d,]*(?:\.\d+)?)\s*(?:per|/|an?)\s*hour`)

	durationRangePattern  = regexp.MustCompile(`(?i)\b(\d+)\s*(?:-|–|to)\s*(\d+)\s*(hours?|days?|weeks?)\b`)
	durationSinglePattern = regexp.MustCompile(`(?i)\b(\d+)\s*(hours?|days?|weeks?)\b`)

	sentenceEnd = regexp.MustCompile(`[^.!?]+[.!?]*`)
)

// unitPatterns are matched in order against result text; the last match
// across all texts wins.
var unitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)per\s+(?:sq\.?\s?ft|square\s+f(?:oo|ee)t)`),
	regexp.MustCompile(`(?i)per\s+linear\s+f(?:oo|ee)t`),
	regexp.MustCompile(`(?i)per\s+cubic\s+yard`),
	regexp.MustCompile(`(?i)per\s+yard`),
	regexp.MustCompile(`(?i)per\s+ton`),
	regexp.MustCompile(`(?i)per\s+hour`),
	regexp.MustCompile(`(?i)per\s+day`),
	regexp.MustCompile(`(?i)per\s+plant`),
	regexp.MustCompile(`(?i)per\s+zone`),
	regexp.MustCompile(`(?i)per\s+project`),
	regexp.MustCompile(`(?i)\beach\b`),
}

// pricingFactors is the fixed vocabulary of cost drivers reported back to
// quote generation.
var pricingFactors = []string{
	"size", "slope", "access", "soil", "climate", "season",
	"complexity", "materials", "permits", "grading", "drainage", "region",
}

// serviceNameKeywords maps query keywords to display service names, checked
// in order. Used by pricing context extraction before falling back to the
// top result's service type.
var serviceNameKeywords = []struct {
	keyword string
	name    string
}{
	{"sod", "Sod Installation"},
	{"mulch", "Mulching"},
	{"patio", "Hardscaping"},
	{"paver", "Hardscaping"},
	{"hardscap", "Hardscaping"},
	{"irrigation", "Irrigation"},
	{"sprinkler", "Irrigation"},
	{"xeriscap", "Xeriscaping"},
	{"drought", "Xeriscaping"},
	{"tree", "Planting"},
	{"plant", "Planting"},
	{"design", "Landscape Design"},
	{"lawn", "Lawn Care"},
	{"mow", "Lawn Care"},
}

var serviceDisplayNames = map[knowledge.ServiceType]string{
	knowledge.ServiceLawnCare:    "Lawn Care",
	knowledge.ServiceHardscaping: "Hardscaping",
	knowledge.ServicePlanting:    "Planting",
	knowledge.ServiceDesign:      "Landscape Design",
	knowledge.ServiceIrrigation:  "Irrigation",
	knowledge.ServiceXeriscaping: "Xeriscaping",
}

// extractPriceRange scans texts for $-prefixed amounts and summarizes them.
// Returns false when no amounts were found.
func extractPriceRange(texts []string) (knowledge.PriceRange, bool) {
	var amounts []float64
	for _, text := range texts {
		for _, match := range dollarPattern.FindAllStringSubmatch(text, -1) {
			if v, err := parseAmount(match[1]); err == nil {
				amounts = append(amounts, v)
			}
		}
	}
	return summarize(amounts)
}

// extractHourlyRate scans texts for "$N per hour" and "$N-$M per hour"
// patterns. Returns false when no rates were found.
func extractHourlyRate(texts []string) (knowledge.PriceRange, bool) {
	var amounts []float64
	for _, text := range texts {
		for _, match := range hourlyRangePattern.FindAllStringSubmatch(text, -1) {
			if lo, err := parseAmount(match[1]); err == nil {
				amounts = append(amounts, lo)
			}
			if hi, err := parseAmount(match[2]); err == nil {
				amounts = append(amounts, hi)
			}
		}
		// Strip range matches before looking for single rates so "$65 per
		// hour" inside "$45-$65 per hour" is not double counted.
		remainder := hourlyRangePattern.ReplaceAllString(text, "")
		for _, match := range hourlySinglePattern.FindAllStringSubmatch(remainder, -1) {
			if v, err := parseAmount(match[1]); err == nil {
				amounts = append(amounts, v)
			}
		}
	}
	return summarize(amounts)
}

// extractUnit returns the last unit phrase matched across all texts, or "".
func extractUnit(texts []string) string {
	unit := ""
	for _, text := range texts {
		for _, pattern := range unitPatterns {
			matches := pattern.FindAllString(text, -1)
			if len(matches) > 0 {
				unit = strings.ToLower(matches[len(matches)-1])
			}
		}
	}
	return unit
}

// extractFactors reports which pricing factors the texts mention, capped at 5.
func extractFactors(texts []string) []string {
	joined := strings.ToLower(strings.Join(texts, " "))
	var factors []string
	for _, factor := range pricingFactors {
		if strings.Contains(joined, factor) {
			factors = append(factors, factor)
			if len(factors) == 5 {
				break
			}
		}
	}
	return factors
}

// extractDuration returns the first "N-M hours/days/weeks" (or single "N
// days") phrase found, or "".
func extractDuration(text string) string {
	if m := durationRangePattern.FindString(text); m != "" {
		return strings.ToLower(m)
	}
	if m := durationSinglePattern.FindString(text); m != "" {
		return strings.ToLower(m)
	}
	return ""
}

// classifyIntensity buckets effort descriptions into light/moderate/heavy,
// defaulting to moderate.
func classifyIntensity(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range []string{"heavy", "excavation", "demolition", "regrading", "major"} {
		if strings.Contains(lower, kw) {
			return "heavy"
		}
	}
	for _, kw := range []string{"light", "simple", "quick", "minor", "touch-up"} {
		if strings.Contains(lower, kw) {
			return "light"
		}
	}
	return "moderate"
}

// serviceNameForQuery resolves a display service name from the query text,
// then the top result's service type, then the generic fallback.
func serviceNameForQuery(query string, results []knowledge.SearchResult) string {
	lower := strings.ToLower(query)
	for _, entry := range serviceNameKeywords {
		if strings.Contains(lower, entry.keyword) {
			return entry.name
		}
	}
	if len(results) > 0 {
		if name, ok := serviceDisplayNames[results[0].Chunk.Metadata.ServiceType]; ok {
			return name
		}
	}
	return "General Landscaping"
}

// firstSentences returns the first n sentences of text joined together.
func firstSentences(text string, n int) string {
	sentences := splitSentences(text)
	if len(sentences) > n {
		sentences = sentences[:n]
	}
	return strings.Join(sentences, " ")
}

// sentencesContaining returns sentences mentioning any trigger keyword,
// capped at max.
func sentencesContaining(text string, triggers []string, max int) []string {
	var matched []string
	for _, sentence := range splitSentences(text) {
		lower := strings.ToLower(sentence)
		for _, trigger := range triggers {
			if strings.Contains(lower, trigger) {
				matched = append(matched, sentence)
				break
			}
		}
		if len(matched) == max {
			break
		}
	}
	return matched
}

func splitSentences(text string) []string {
	var sentences []string
	for _, s := range sentenceEnd.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func summarize(amounts []float64) (knowledge.PriceRange, bool) {
	if len(amounts) == 0 {
		return knowledge.PriceRange{}, false
	}
	r := knowledge.PriceRange{Low: amounts[0], High: amounts[0]}
	sum := 0.0
	for _, v := range amounts {
		if v < r.Low {
			r.Low = v
		}
		if v > r.High {
			r.High = v
		}
		sum += v
	}
	r.Average = sum / float64(len(amounts))
	return r, true
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}
