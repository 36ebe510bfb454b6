// Package metadata classifies document chunks with keyword-driven heuristics.
// There is no NLP model here: every field is populated by case-insensitive
// substring matching against small fixed keyword lists, first match wins.
package metadata

import (
	"strings"

	"github.com/verdantscape/knowledge-engine/internal/knowledge"
)

// categoryKeywords is checked in priority order against both the section
// title and the chunk content. The first category with a matching keyword
// wins; chunks matching nothing default to CategoryGeneral.
var categoryKeywords = []struct {
	category knowledge.Category
	keywords []string
}{
	{knowledge.CategoryPricing, []string{"pricing", "price", "cost", "rate", "fee", "charge", "estimate", "quote", "$"}},
	{knowledge.CategoryLabor, []string{"labor", "labour", "crew", "hourly", "wage", "workforce", "manpower", "technician"}},
	{knowledge.CategoryMaterial, []string{"material", "mulch", "sod", "gravel", "topsoil", "paver", "stone", "lumber", "fertilizer"}},
	{knowledge.CategoryService, []string{"service", "maintenance", "installation", "mowing", "trimming", "cleanup", "aeration"}},
	{knowledge.CategoryMarketAnalysis, []string{"market", "competitor", "trend", "demand", "industry", "growth", "segment"}},
}

var serviceTypeKeywords = []struct {
	service  knowledge.ServiceType
	keywords []string
}{
	{knowledge.ServiceLawnCare, []string{"lawn", "turf", "grass", "mowing", "sod"}},
	{knowledge.ServiceHardscaping, []string{"hardscape", "hardscaping", "patio", "paver", "retaining wall", "walkway", "stonework"}},
	{knowledge.ServicePlanting, []string{"planting", "tree", "shrub", "flower bed", "garden bed", "perennial"}},
	{knowledge.ServiceDesign, []string{"design", "landscape plan", "blueprint", "rendering", "layout"}},
	{knowledge.ServiceIrrigation, []string{"irrigation", "sprinkler", "drip line", "drainage", "watering system"}},
	{knowledge.ServiceXeriscaping, []string{"xeriscap", "drought-tolerant", "drought tolerant", "water-wise", "native plants"}},
}

var pricingTierKeywords = []struct {
	tier     knowledge.PricingTier
	keywords []string
}{
	{knowledge.TierBudget, []string{"budget", "affordable", "economy", "low-cost", "entry-level price"}},
	{knowledge.TierMidRange, []string{"mid-range", "mid range", "standard tier", "typical price", "average price"}},
	{knowledge.TierPremium, []string{"premium", "luxury", "high-end", "top-tier", "upscale"}},
}

// regionKeywords covers the regions and states the pricing documents talk
// about. First match wins and is reported verbatim.
var regionKeywords = []string{
	"pacific northwest", "southwest", "southeast", "northeast", "midwest",
	"mountain west", "gulf coast", "california", "texas", "arizona",
	"colorado", "florida", "oregon", "washington", "nevada", "utah",
	"new mexico", "georgia", "north carolina",
}

var skillLevelKeywords = []struct {
	level    knowledge.SkillLevel
	keywords []string
}{
	{knowledge.SkillBasic, []string{"basic labor", "general labor", "entry-level", "unskilled", "helper"}},
	{knowledge.SkillProfessional, []string{"professional", "licensed", "certified", "experienced crew", "journeyman"}},
	{knowledge.SkillSpecialist, []string{"specialist", "arborist", "master gardener", "horticulturist", "expert"}},
}

var seasonKeywords = []struct {
	season   knowledge.Season
	keywords []string
}{
	{knowledge.SeasonSpring, []string{"spring"}},
	{knowledge.SeasonSummer, []string{"summer"}},
	{knowledge.SeasonFall, []string{"fall", "autumn"}},
	{knowledge.SeasonWinter, []string{"winter"}},
}

// Classify derives a chunk's metadata from its content and section title.
// It is a pure function: identical inputs always yield identical metadata.
func Classify(content, sectionTitle, source string, chunkIndex, totalChunks int) knowledge.DocumentMetadata {
	lowerContent := strings.ToLower(content)
	lowerTitle := strings.ToLower(sectionTitle)

	meta := knowledge.DocumentMetadata{
		Source:      source,
		Section:     sectionTitle,
		Category:    classifyCategory(lowerTitle, lowerContent),
		ChunkIndex:  chunkIndex,
		TotalChunks: totalChunks,
	}

	for _, st := range serviceTypeKeywords {
		if containsAny(lowerContent, st.keywords) {
			meta.ServiceType = st.service
			break
		}
	}
	for _, pt := range pricingTierKeywords {
		if containsAny(lowerContent, pt.keywords) {
			meta.PricingCategory = pt.tier
			break
		}
	}
	for _, region := range regionKeywords {
		if strings.Contains(lowerContent, region) {
			meta.Region = region
			break
		}
	}
	for _, sl := range skillLevelKeywords {
		if containsAny(lowerContent, sl.keywords) {
			meta.SkillLevel = sl.level
			break
		}
	}
	for _, se := range seasonKeywords {
		if containsAny(lowerContent, se.keywords) {
			meta.Season = se.season
			break
		}
	}

	return meta
}

// classifyCategory checks categories in priority order, section title
// before content. The title pass runs first so a "Labor" section full of
// dollar amounts still classifies as labor rather than pricing.
func classifyCategory(lowerTitle, lowerContent string) knowledge.Category {
	for _, c := range categoryKeywords {
		if containsAny(lowerTitle, c.keywords) {
			return c.category
		}
	}
	for _, c := range categoryKeywords {
		if containsAny(lowerContent, c.keywords) {
			return c.category
		}
	}
	return knowledge.CategoryGeneral
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
