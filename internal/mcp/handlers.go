package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/verdantscape/knowledge-engine/internal/engine"
	"github.com/verdantscape/knowledge-engine/internal/knowledge"
	"github.com/verdantscape/knowledge-engine/internal/retrieval"
	"github.com/verdantscape/knowledge-engine/internal/store"
)

// makeSearchHandler creates the search_knowledge tool handler: the generic
// retrieval entry point with strategy selection and metadata filters.
func makeSearchHandler(eng *engine.Engine) func(
	context.Context, *mcp.CallToolRequest, SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (
		*mcp.CallToolResult, SearchOutput, error,
	) {
		svc, err := eng.Service()
		if err != nil {
			return nil, SearchOutput{}, err
		}

		strategy := knowledge.Strategy(input.Strategy)
		if strategy == "" {
			strategy = knowledge.StrategyHybrid
		}
		var filter *store.Filter
		if input.Category != "" || input.ServiceType != "" {
			filter = &store.Filter{
				Category:    knowledge.Category(input.Category),
				ServiceType: knowledge.ServiceType(input.ServiceType),
			}
		}

		rc, err := svc.Retrieve(ctx, input.Query, retrieval.Options{
			Strategy: strategy,
			TopK:     input.MaxResults,
			Filter:   filter,
		})
		if err != nil {
			return nil, SearchOutput{}, fmt.Errorf("search failed: %w", err)
		}

		hits := make([]SearchHit, 0, len(rc.Results))
		for _, r := range rc.Results {
			hits = append(hits, SearchHit{
				ChunkID:   r.Chunk.ID,
				Source:    r.Chunk.Metadata.Source,
				Section:   r.Chunk.Metadata.Section,
				Category:  string(r.Chunk.Metadata.Category),
				Score:     r.Score,
				MatchType: string(r.MatchType),
				Content:   r.Chunk.Content,
			})
		}

		out := SearchOutput{TraceID: rc.TraceID, Results: hits, Degraded: rc.Degraded}
		if len(hits) == 0 {
			out.Message = "No matching chunks found. Try broader search terms."
		}
		return nil, out, nil
	}
}

// makePricingHandler creates the pricing_context tool handler.
func makePricingHandler(eng *engine.Engine) func(
	context.Context, *mcp.CallToolRequest, PricingInput,
) (*mcp.CallToolResult, PricingOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input PricingInput) (
		*mcp.CallToolResult, PricingOutput, error,
	) {
		svc, err := eng.Service()
		if err != nil {
			return nil, PricingOutput{}, err
		}

		pc, err := svc.RetrievePricingContext(ctx, input.Query)
		if err != nil {
			return nil, PricingOutput{}, fmt.Errorf("pricing context failed: %w", err)
		}

		factors := pc.Factors
		if factors == nil {
			factors = []string{} // Ensure non-nil for JSON marshaling
		}
		return nil, PricingOutput{
			Service:      pc.Service,
			PriceLow:     pc.PriceRange.Low,
			PriceHigh:    pc.PriceRange.High,
			PriceAverage: pc.PriceRange.Average,
			Unit:         pc.Unit,
			Factors:      factors,
		}, nil
	}
}

// makeServiceDetailsHandler creates the service_details tool handler.
func makeServiceDetailsHandler(eng *engine.Engine) func(
	context.Context, *mcp.CallToolRequest, ServiceDetailsInput,
) (*mcp.CallToolResult, ServiceDetailsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ServiceDetailsInput) (
		*mcp.CallToolResult, ServiceDetailsOutput, error,
	) {
		svc, err := eng.Service()
		if err != nil {
			return nil, ServiceDetailsOutput{}, err
		}

		details, err := svc.RetrieveServiceDetails(ctx, knowledge.ServiceType(input.ServiceType), input.Intensity)
		if err != nil {
			return nil, ServiceDetailsOutput{}, fmt.Errorf("service details failed: %w", err)
		}

		prerequisites := details.Prerequisites
		if prerequisites == nil {
			prerequisites = []string{}
		}
		bestPractices := details.BestPractices
		if bestPractices == nil {
			bestPractices = []string{}
		}
		return nil, ServiceDetailsOutput{
			ServiceType:   string(details.ServiceType),
			Description:   details.Description,
			Intensity:     details.Intensity,
			Duration:      details.Duration,
			Prerequisites: prerequisites,
			BestPractices: bestPractices,
		}, nil
	}
}

// makeMaterialCostsHandler creates the material_costs tool handler.
func makeMaterialCostsHandler(eng *engine.Engine) func(
	context.Context, *mcp.CallToolRequest, MaterialCostsInput,
) (*mcp.CallToolResult, MaterialCostsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input MaterialCostsInput) (
		*mcp.CallToolResult, MaterialCostsOutput, error,
	) {
		svc, err := eng.Service()
		if err != nil {
			return nil, MaterialCostsOutput{}, err
		}

		infos, err := svc.RetrieveMaterialCosts(ctx, input.Materials)
		if err != nil {
			return nil, MaterialCostsOutput{}, fmt.Errorf("material costs failed: %w", err)
		}

		materials := make([]MaterialCost, 0, len(infos))
		for _, info := range infos {
			materials = append(materials, MaterialCost{
				MaterialName: info.MaterialName,
				CostPerUnit:  info.CostPerUnit,
				Unit:         info.Unit,
				Budget:       info.QualityTiers.Budget,
				Standard:     info.QualityTiers.Standard,
				Premium:      info.QualityTiers.Premium,
			})
		}
		return nil, MaterialCostsOutput{Materials: materials}, nil
	}
}

// makeLaborRatesHandler creates the labor_rates tool handler.
func makeLaborRatesHandler(eng *engine.Engine) func(
	context.Context, *mcp.CallToolRequest, LaborRatesInput,
) (*mcp.CallToolResult, LaborRatesOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input LaborRatesInput) (
		*mcp.CallToolResult, LaborRatesOutput, error,
	) {
		svc, err := eng.Service()
		if err != nil {
			return nil, LaborRatesOutput{}, err
		}

		info, err := svc.RetrieveLaborRates(ctx, input.Region, knowledge.SkillLevel(input.SkillLevel))
		if err != nil {
			return nil, LaborRatesOutput{}, fmt.Errorf("labor rates failed: %w", err)
		}

		return nil, LaborRatesOutput{
			HourlyLow:     info.HourlyRate.Low,
			HourlyHigh:    info.HourlyRate.High,
			HourlyAverage: info.HourlyRate.Average,
			Region:        info.Region,
			SkillLevel:    string(info.SkillLevel),
		}, nil
	}
}
