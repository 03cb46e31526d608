// Package mcp exposes the ranking service as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/okian/gridcast/internal/domain/model"
	"github.com/okian/gridcast/internal/domain/types"
	"github.com/okian/gridcast/pkg/logger"
	"github.com/okian/gridcast/pkg/metrics"
)

// Tool names.
const (
	ToolPredictRanking    = "predict_ranking"
	ToolCompetitorMetrics = "competitor_metrics"
	ToolTeamStrengths     = "team_strengths"
)

// Dependencies are the service reads the tools need.
type Dependencies interface {
	Ranking(ctx context.Context, overrides model.Assignment) ([]model.RankedRow, error)
	Competitor(ctx context.Context, name string) (types.CompetitorEntry, error)
	Teams(ctx context.Context) ([]types.TeamEntry, error)
}

// PredictRankingArgs are the predict_ranking inputs.
type PredictRankingArgs struct {
	Assignment map[string]string `json:"assignment,omitempty" jsonschema:"Optional driver to team reassignments, e.g. {\"lando norris\": \"ferrari\"}"`
	Limit      int               `json:"limit,omitempty" jsonschema:"Return only the top N rows (0 = all)"`
}

// CompetitorMetricsArgs are the competitor_metrics inputs.
type CompetitorMetricsArgs struct {
	Competitor string `json:"competitor" jsonschema:"Driver name, e.g. lando norris (required)"`
}

// TeamStrengthsArgs are the team_strengths inputs.
type TeamStrengthsArgs struct{}

// Tools implements the tool handlers over Dependencies.
type Tools struct {
	deps Dependencies
	log  logger.Logger
}

// NewTools creates the tool handlers.
func NewTools(deps Dependencies, log logger.Logger) *Tools {
	return &Tools{deps: deps, log: log}
}

// NewServer builds an MCP server with every tool registered.
func NewServer(deps Dependencies, version string, log logger.Logger) *sdk.Server {
	server := sdk.NewServer(&sdk.Implementation{Name: "gridcast", Version: version}, nil)
	t := NewTools(deps, log)

	sdk.AddTool(server, &sdk.Tool{
		Name:        ToolPredictRanking,
		Description: "Predicted season ranking of all drivers; optionally move drivers to other current teams first",
	}, t.PredictRanking)
	sdk.AddTool(server, &sdk.Tool{
		Name:        ToolCompetitorMetrics,
		Description: "Average score, trend, current-season bonus, qualifying score and default team of one driver",
	}, t.CompetitorMetrics)
	sdk.AddTool(server, &sdk.Tool{
		Name:        ToolTeamStrengths,
		Description: "Current-season teams with their reference-season strength",
	}, t.TeamStrengths)

	return server
}

// Handler serves server over streamable HTTP with JSON responses.
func Handler(server *sdk.Server) http.Handler {
	return sdk.NewStreamableHTTPHandler(func(*http.Request) *sdk.Server {
		return server
	}, &sdk.StreamableHTTPOptions{JSONResponse: true})
}

// PredictRanking handles predict_ranking.
func (t *Tools) PredictRanking(ctx context.Context, _ *sdk.CallToolRequest, args PredictRankingArgs) (*sdk.CallToolResult, any, error) {
	if args.Limit < 0 {
		return t.toolError(ctx, ToolPredictRanking, fmt.Errorf("limit must not be negative")), nil, nil
	}
	rows, err := t.deps.Ranking(ctx, model.Assignment(args.Assignment))
	if err != nil {
		return t.toolError(ctx, ToolPredictRanking, err), nil, nil
	}
	if args.Limit > 0 && args.Limit < len(rows) {
		rows = rows[:args.Limit]
	}
	return toolMarshal(map[string]any{"ranking": rows})
}

// CompetitorMetrics handles competitor_metrics.
func (t *Tools) CompetitorMetrics(ctx context.Context, _ *sdk.CallToolRequest, args CompetitorMetricsArgs) (*sdk.CallToolResult, any, error) {
	if strings.TrimSpace(args.Competitor) == "" {
		return t.toolError(ctx, ToolCompetitorMetrics, fmt.Errorf("competitor is required")), nil, nil
	}
	entry, err := t.deps.Competitor(ctx, args.Competitor)
	if err != nil {
		return t.toolError(ctx, ToolCompetitorMetrics, err), nil, nil
	}
	return toolMarshal(entry)
}

// TeamStrengths handles team_strengths.
func (t *Tools) TeamStrengths(ctx context.Context, _ *sdk.CallToolRequest, _ TeamStrengthsArgs) (*sdk.CallToolResult, any, error) {
	teams, err := t.deps.Teams(ctx)
	if err != nil {
		return t.toolError(ctx, ToolTeamStrengths, err), nil, nil
	}
	return toolMarshal(map[string]any{"teams": teams})
}

func (t *Tools) toolError(ctx context.Context, tool string, err error) *sdk.CallToolResult {
	metrics.RecordErrorByComponent("mcp", tool)
	if t.log != nil {
		t.log.Debug(ctx, "tool call failed", logger.String("tool", tool), logger.Error(err))
	}
	return &sdk.CallToolResult{
		IsError: true,
		Content: []sdk.Content{
			&sdk.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}

func toolMarshal(v any) (*sdk.CallToolResult, any, error) {
	res, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, err
	}
	return &sdk.CallToolResult{
		Content: []sdk.Content{
			&sdk.TextContent{Text: string(res)},
		},
	}, nil, nil
}
