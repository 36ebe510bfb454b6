// Package retrieval is the public query API over the vector store. Its
// specialized methods pair a tailored search with post-hoc text extraction,
// turning ranked natural-language chunks into structured pricing, service,
// material, and labor answers for quote and report generation. Extracted
// numbers are advisory, not a validated pricing database.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verdantscape/knowledge-engine/internal/knowledge"
	"github.com/verdantscape/knowledge-engine/internal/store"
)

// DefaultLaborRate is the business fallback reported when no hourly rate is
// found in the retrieved text. Not an error condition.
var DefaultLaborRate = knowledge.PriceRange{Low: 25, High: 75, Average: 50}

var (
	prerequisiteTriggers = []string{"before", "prior to", "require", "must", "need to", "prepare"}
	bestPracticeTriggers = []string{"recommend", "best", "should", "ideal", "avoid", "tip"}
)

// Options configures the generic Retrieve operation.
type Options struct {
	Strategy knowledge.Strategy // Defaults to hybrid
	TopK     int                // Defaults to store.DefaultTopK
	Filter   *store.Filter
	Weights  *store.HybridWeights // Hybrid only
}

// Service is the retrieval façade handed out by the engine after bootstrap.
// It is safe for unbounded concurrent use: every method is read-only
// against the immutable corpus.
type Service struct {
	store  *store.Store
	logger *slog.Logger
}

// NewService wraps a built vector store.
func NewService(s *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: s, logger: logger}
}

// Store exposes the underlying vector store for callers that need corpus
// statistics.
func (s *Service) Store() *store.Store {
	return s.store
}

// Retrieve is the generic entry point: it runs the selected strategy and
// wraps the ranked results with timing and a trace ID.
func (s *Service) Retrieve(ctx context.Context, query string, opts Options) (*knowledge.RetrievalContext, error) {
	strategy := opts.Strategy
	if strategy == "" {
		strategy = knowledge.StrategyHybrid
	}

	start := time.Now()
	var (
		results  []knowledge.SearchResult
		degraded bool
		err      error
	)
	switch strategy {
	case knowledge.StrategySemantic:
		results, err = s.store.SemanticSearch(ctx, query, opts.TopK, opts.Filter)
	case knowledge.StrategyKeyword:
		results = s.store.KeywordSearch(query, opts.TopK, opts.Filter)
	case knowledge.StrategyHybrid:
		results, degraded, err = s.store.HybridSearch(ctx, query, opts.TopK, opts.Weights, opts.Filter)
	default:
		return nil, fmt.Errorf("unknown retrieval strategy %q", strategy)
	}
	if err != nil {
		return nil, fmt.Errorf("retrieve %q: %w", query, err)
	}

	rc := &knowledge.RetrievalContext{
		TraceID:       uuid.New().String(),
		Query:         query,
		Results:       results,
		TotalResults:  len(results),
		RetrievalTime: time.Since(start),
		Strategy:      strategy,
		Degraded:      degraded,
	}
	s.logger.Debug("retrieval complete",
		"trace_id", rc.TraceID,
		"strategy", strategy,
		"results", rc.TotalResults,
		"duration", rc.RetrievalTime,
	)
	return rc, nil
}

// RetrievePricingContext answers "what does this cost" queries: hybrid
// search over pricing chunks, then price-range, unit, and factor extraction
// over everything retrieved. Missing extractions are zero values, not
// errors.
func (s *Service) RetrievePricingContext(ctx context.Context, query string) (*knowledge.PricingContext, error) {
	rc, err := s.Retrieve(ctx, query, Options{
		Strategy: knowledge.StrategyHybrid,
		Filter:   &store.Filter{Category: knowledge.CategoryPricing},
	})
	if err != nil {
		return nil, err
	}

	texts := resultTexts(rc.Results)
	pc := &knowledge.PricingContext{
		Service: serviceNameForQuery(query, rc.Results),
		Unit:    extractUnit(texts),
		Factors: extractFactors(texts),
	}
	if priceRange, ok := extractPriceRange(texts); ok {
		pc.PriceRange = priceRange
	}
	return pc, nil
}

// RetrieveServiceDetails describes how a service is performed. The caller
// may override the extracted effort intensity.
func (s *Service) RetrieveServiceDetails(ctx context.Context, serviceType knowledge.ServiceType, intensity string) (*knowledge.ServiceDetails, error) {
	query := fmt.Sprintf("%s process steps requirements and best practices", strings.ReplaceAll(string(serviceType), "_", " "))
	rc, err := s.Retrieve(ctx, query, Options{
		Strategy: knowledge.StrategyHybrid,
		Filter: &store.Filter{
			Category:    knowledge.CategoryService,
			ServiceType: serviceType,
		},
	})
	if err != nil {
		return nil, err
	}

	details := &knowledge.ServiceDetails{
		ServiceType: serviceType,
		Intensity:   "moderate",
	}
	if len(rc.Results) > 0 {
		top := rc.Results[0].Chunk.Content
		details.Description = firstSentences(top, 2)
		details.Intensity = classifyIntensity(top)
		details.Duration = extractDuration(top)

		joined := strings.Join(resultTexts(rc.Results), " ")
		details.Prerequisites = sentencesContaining(joined, prerequisiteTriggers, 3)
		details.BestPractices = sentencesContaining(joined, bestPracticeTriggers, 3)
	}
	if intensity != "" {
		details.Intensity = intensity
	}
	return details, nil
}

// RetrieveMaterialCosts extracts a cost profile per material. Materials
// with zero search results are omitted from the output, not zero-filled.
func (s *Service) RetrieveMaterialCosts(ctx context.Context, materials []string) ([]knowledge.MaterialCostInfo, error) {
	var infos []knowledge.MaterialCostInfo
	for _, material := range materials {
		rc, err := s.Retrieve(ctx, fmt.Sprintf("%s cost per unit pricing", material), Options{
			Strategy: knowledge.StrategyHybrid,
			Filter:   &store.Filter{Category: knowledge.CategoryMaterial},
		})
		if err != nil {
			return nil, err
		}
		if len(rc.Results) == 0 {
			continue
		}

		texts := resultTexts(rc.Results)
		priceRange, ok := extractPriceRange(texts)
		if !ok {
			continue
		}
		infos = append(infos, knowledge.MaterialCostInfo{
			MaterialName: material,
			CostPerUnit:  priceRange.Average,
			Unit:         extractUnit(texts),
			QualityTiers: knowledge.QualityTiers{
				Budget:   priceRange.Low,
				Standard: priceRange.Average,
				Premium:  priceRange.High,
			},
		})
	}
	return infos, nil
}

// RetrieveLaborRates reports hourly labor rates. Region and skill level are
// query augmentation rather than strict metadata predicates; only the labor
// category filter is strict. Falls back to DefaultLaborRate when no rate
// pattern is found.
func (s *Service) RetrieveLaborRates(ctx context.Context, region string, skillLevel knowledge.SkillLevel) (*knowledge.LaborRateInfo, error) {
	query := "hourly labor rates for landscaping crews"
	if region != "" {
		query += " in " + region
	}
	if skillLevel != "" {
		query += " " + string(skillLevel)
	}

	rc, err := s.Retrieve(ctx, query, Options{
		Strategy: knowledge.StrategyHybrid,
		Filter:   &store.Filter{Category: knowledge.CategoryLabor},
	})
	if err != nil {
		return nil, err
	}

	info := &knowledge.LaborRateInfo{
		HourlyRate: DefaultLaborRate,
		Region:     region,
		SkillLevel: skillLevel,
	}
	if rate, ok := extractHourlyRate(resultTexts(rc.Results)); ok {
		info.HourlyRate = rate
	}
	return info, nil
}

func resultTexts(results []knowledge.SearchResult) []string {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Chunk.Content
	}
	return texts
}
