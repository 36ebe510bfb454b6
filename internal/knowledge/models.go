// Package knowledge defines the data model for the retrieval engine:
// document chunks, their classification metadata, and the search and
// extraction result types consumed by quote and report generation.
package knowledge

import "time"

// Category classifies what kind of business information a chunk carries.
type Category string

const (
	CategoryPricing        Category = "pricing"
	CategoryLabor          Category = "labor"
	CategoryMaterial       Category = "material"
	CategoryService        Category = "service"
	CategoryMarketAnalysis Category = "market_analysis"
	CategoryGeneral        Category = "general"
)

// ServiceType identifies the landscaping service a chunk is about.
type ServiceType string

const (
	ServiceLawnCare    ServiceType = "lawn_care"
	ServiceHardscaping ServiceType = "hardscaping"
	ServicePlanting    ServiceType = "planting"
	ServiceDesign      ServiceType = "design"
	ServiceIrrigation  ServiceType = "irrigation"
	ServiceXeriscaping ServiceType = "xeriscaping"
)

// PricingTier is the market positioning of a price point.
type PricingTier string

const (
	TierBudget   PricingTier = "budget"
	TierMidRange PricingTier = "mid-range"
	TierPremium  PricingTier = "premium"
)

// SkillLevel is the labor qualification a chunk refers to.
type SkillLevel string

const (
	SkillBasic        SkillLevel = "basic"
	SkillProfessional SkillLevel = "professional"
	SkillSpecialist   SkillLevel = "specialist"
)

// Season is the time of year a chunk's guidance applies to.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
	SeasonWinter Season = "winter"
)

// DocumentMetadata is the classification attached to a chunk. All fields are
// derived once at chunk-creation time; only TotalChunks is back-filled after
// the full corpus size is known.
type DocumentMetadata struct {
	Source          string      // Originating document identifier
	Section         string      // Nearest enclosing heading title
	Category        Category    // Always set; defaults to CategoryGeneral
	ServiceType     ServiceType // Empty when no keyword matched
	PricingCategory PricingTier // Empty when no keyword matched
	Region          string      // First match from the region list, else empty
	SkillLevel      SkillLevel  // Empty when no keyword matched
	Season          Season      // Empty when no keyword matched
	ChunkIndex      int         // Position across the whole corpus (0, 1, 2...)
	TotalChunks     int         // Corpus-wide total, same on every chunk
}

// DocumentChunk is a contiguous, self-contained span of source text. Chunks
// are the atomic retrieval unit; the corpus of chunks is immutable after the
// vector store is built.
type DocumentChunk struct {
	ID        string // "{source}_{global index}"
	Content   string
	Metadata  DocumentMetadata
	WordCount int       // Whitespace-delimited token count of Content
	Embedding []float32 // Nil until the store computes it, immutable after
}

// MatchType records which ranking produced a search result.
type MatchType string

const (
	MatchSemantic MatchType = "semantic"
	MatchKeyword  MatchType = "keyword"
	MatchHybrid   MatchType = "hybrid"
)

// Strategy selects the ranking used by the generic Retrieve operation.
type Strategy string

const (
	StrategySemantic Strategy = "semantic"
	StrategyKeyword  Strategy = "keyword"
	StrategyHybrid   Strategy = "hybrid"
)

// SearchResult is a single ranked hit. Scores are in [0,1], higher is better.
type SearchResult struct {
	Chunk     *DocumentChunk
	Score     float64
	MatchType MatchType
}

// RetrievalContext is the outcome of one query: the ranked results plus
// timing, produced per call and never persisted.
type RetrievalContext struct {
	TraceID       string // uuid, for correlating logs with downstream prompts
	Query         string
	Results       []SearchResult // Highest score first
	TotalResults  int
	RetrievalTime time.Duration
	Strategy      Strategy
	Degraded      bool // True when hybrid fell back to keyword-only scoring
}

// PriceRange is a best-effort numeric summary over dollar amounts found in
// retrieved text. Average is zero when no amounts were found.
type PriceRange struct {
	Low     float64
	High    float64
	Average float64
}

// PricingContext is the structured answer for a pricing query.
type PricingContext struct {
	Service    string
	PriceRange PriceRange
	Unit       string   // e.g. "per sq ft"; empty when no unit phrase matched
	Factors    []string // Pricing factors mentioned in the results, max 5
}

// ServiceDetails summarizes how a service is performed.
type ServiceDetails struct {
	ServiceType   ServiceType
	Description   string // First 1-2 sentences of the top result
	Intensity     string // light, moderate, heavy
	Duration      string // e.g. "2-3 days"; empty when no pattern matched
	Prerequisites []string // Max 3
	BestPractices []string // Max 3
}

// QualityTiers maps a material's price range onto budget/standard/premium.
type QualityTiers struct {
	Budget   float64
	Standard float64
	Premium  float64
}

// MaterialCostInfo is the per-material extraction result. Materials with no
// search hits are omitted from output entirely rather than zero-filled.
type MaterialCostInfo struct {
	MaterialName string
	CostPerUnit  float64
	Unit         string
	QualityTiers QualityTiers
}

// LaborRateInfo reports hourly labor rates. When no rate is found in the
// retrieved text the engine falls back to the {25, 75, 50} business default.
type LaborRateInfo struct {
	HourlyRate PriceRange
	Region     string
	SkillLevel SkillLevel
}
