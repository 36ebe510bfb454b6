// Package mcp exposes the retrieval engine's operations as MCP tools so
// AI-assisted quote and report features can call them over stdio or HTTP.
package mcp

// SearchInput defines the input parameters for the search_knowledge tool.
type SearchInput struct {
	// Query is the free-text search query.
	Query string `json:"query" jsonschema:"Free-text query over the landscaping knowledge base"`
	// Strategy selects the ranking: semantic, keyword, or hybrid.
	Strategy string `json:"strategy,omitempty" jsonschema:"Ranking strategy: semantic keyword or hybrid (default hybrid)"`
	// MaxResults is the maximum number of chunks to return.
	MaxResults int `json:"max_results,omitempty" jsonschema:"Maximum number of chunks to return"`
	// Category optionally restricts results to one category.
	Category string `json:"category,omitempty" jsonschema:"Exact-match category filter: pricing labor material service market_analysis or general"`
	// ServiceType optionally restricts results to one service type.
	ServiceType string `json:"service_type,omitempty" jsonschema:"Exact-match service type filter e.g. lawn_care or hardscaping"`
}

// SearchHit is a single ranked chunk returned by search_knowledge.
type SearchHit struct {
	ChunkID   string  `json:"chunk_id"`
	Source    string  `json:"source"`
	Section   string  `json:"section"`
	Category  string  `json:"category"`
	Score     float64 `json:"score"`
	MatchType string  `json:"match_type"`
	Content   string  `json:"content"`
}

// SearchOutput contains the ranked results of one query.
type SearchOutput struct {
	TraceID string      `json:"trace_id"`
	Results []SearchHit `json:"results"`
	// Degraded is true when hybrid ranking fell back to keyword-only.
	Degraded bool `json:"degraded,omitempty"`
	// Message provides informational context (e.g. "no matching chunks").
	Message string `json:"message,omitempty"`
}

// PricingInput defines the input for the pricing_context tool.
type PricingInput struct {
	Query string `json:"query" jsonschema:"Pricing question e.g. 'sod installation cost'"`
}

// PricingOutput is the structured pricing answer.
type PricingOutput struct {
	Service      string   `json:"service"`
	PriceLow     float64  `json:"price_low"`
	PriceHigh    float64  `json:"price_high"`
	PriceAverage float64  `json:"price_average"`
	Unit         string   `json:"unit,omitempty"`
	Factors      []string `json:"factors"`
}

// ServiceDetailsInput defines the input for the service_details tool.
type ServiceDetailsInput struct {
	ServiceType string `json:"service_type" jsonschema:"Service type: lawn_care hardscaping planting design irrigation or xeriscaping"`
	Intensity   string `json:"intensity,omitempty" jsonschema:"Caller-supplied effort intensity override: light moderate or heavy"`
}

// ServiceDetailsOutput describes how a service is performed.
type ServiceDetailsOutput struct {
	ServiceType   string   `json:"service_type"`
	Description   string   `json:"description"`
	Intensity     string   `json:"intensity"`
	Duration      string   `json:"duration,omitempty"`
	Prerequisites []string `json:"prerequisites"`
	BestPractices []string `json:"best_practices"`
}

// MaterialCostsInput defines the input for the material_costs tool.
type MaterialCostsInput struct {
	Materials []string `json:"materials" jsonschema:"Material names to price e.g. mulch or pavers"`
}

// MaterialCost is the per-material extraction result.
type MaterialCost struct {
	MaterialName string  `json:"material_name"`
	CostPerUnit  float64 `json:"cost_per_unit"`
	Unit         string  `json:"unit,omitempty"`
	Budget       float64 `json:"budget"`
	Standard     float64 `json:"standard"`
	Premium      float64 `json:"premium"`
}

// MaterialCostsOutput lists cost profiles for the materials that had search
// hits; materials with none are omitted.
type MaterialCostsOutput struct {
	Materials []MaterialCost `json:"materials"`
}

// LaborRatesInput defines the input for the labor_rates tool.
type LaborRatesInput struct {
	Region     string `json:"region,omitempty" jsonschema:"Region to include in the query e.g. 'pacific northwest'"`
	SkillLevel string `json:"skill_level,omitempty" jsonschema:"Skill level to include in the query: basic professional or specialist"`
}

// LaborRatesOutput reports hourly labor rates, falling back to the
// documented business default when none are found.
type LaborRatesOutput struct {
	HourlyLow     float64 `json:"hourly_low"`
	HourlyHigh    float64 `json:"hourly_high"`
	HourlyAverage float64 `json:"hourly_average"`
	Region        string  `json:"region,omitempty"`
	SkillLevel    string  `json:"skill_level,omitempty"`
}
