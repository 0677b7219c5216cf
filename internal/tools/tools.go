package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MereWhiplash/neurocat/internal/intensity"
	"github.com/MereWhiplash/neurocat/internal/service"
	"github.com/MereWhiplash/neurocat/internal/types"
)

// Backend answers tool calls. *service.Service serves them locally and
// *client.Client forwards them to an API server.
type Backend interface {
	Colorize(ctx context.Context, text string, multicolor bool) (string, error)
	Scores(ctx context.Context, word string, limit int) (*service.WordScores, error)
	Spectrum(ctx context.Context, word string, mapping intensity.Strategy) (*service.SpectrumResult, error)
}

// Handler holds dependencies for tool handlers
type Handler struct {
	svc Backend
}

// NewHandler creates a tool handler backed by b.
func NewHandler(b Backend) *Handler {
	return &Handler{svc: b}
}

// ColorizeInput defines the input schema for nc_colorize
type ColorizeInput struct {
	Text       string `json:"text" jsonschema:"required" jsonschema_description:"Text to color word by word"`
	Multicolor *bool  `json:"multicolor,omitempty" jsonschema_description:"Color each letter by the word's ranked colors (default: true)"`
}

// ColorizeOutput defines the output schema for nc_colorize
type ColorizeOutput struct {
	Output string `json:"output"`
}

// ScoresInput defines the input schema for nc_scores
type ScoresInput struct {
	Word  string `json:"word" jsonschema:"required" jsonschema_description:"Word to score against the palette"`
	Limit int    `json:"limit,omitempty" jsonschema_description:"Maximum number of colors (default: 10)"`
}

// ScoresOutput defines the output schema for nc_scores
type ScoresOutput struct {
	Scores *service.WordScores `json:"scores"`
}

// SpectrumInput defines the input schema for nc_spectrum
type SpectrumInput struct {
	Word    string `json:"word" jsonschema:"required" jsonschema_description:"Word to render; must be stored exactly"`
	Mapping string `json:"mapping,omitempty" jsonschema_description:"Intensity mapping: expdist, expdist-norm, polynomial, rank or binary (default: expdist-norm)"`
}

// SpectrumOutput defines the output schema for nc_spectrum
type SpectrumOutput struct {
	Spectrum *service.SpectrumResult `json:"spectrum"`
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// Register adds all neurocat tools to the MCP server
func Register(server *mcp.Server, b Backend) {
	h := NewHandler(b)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "nc_colorize",
		Description: "Color text with ANSI escapes by each word's association with the palette",
	}, h.Colorize)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "nc_scores",
		Description: "Rank palette colors by association with a word",
	}, h.Scores)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "nc_spectrum",
		Description: "Render a word's association spectrum over the reference palette",
	}, h.Spectrum)
}

func (h *Handler) Colorize(ctx context.Context, req *mcp.CallToolRequest, input ColorizeInput) (*mcp.CallToolResult, ColorizeOutput, error) {
	if input.Text == "" {
		return errorResult("text is required"), ColorizeOutput{}, nil
	}

	multicolor := true
	if input.Multicolor != nil {
		multicolor = *input.Multicolor
	}

	out, err := h.svc.Colorize(ctx, input.Text, multicolor)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to colorize: %v", err)), ColorizeOutput{}, nil
	}
	return textResult(out), ColorizeOutput{Output: out}, nil
}

func (h *Handler) Scores(ctx context.Context, req *mcp.CallToolRequest, input ScoresInput) (*mcp.CallToolResult, ScoresOutput, error) {
	if input.Word == "" {
		return errorResult("word is required"), ScoresOutput{}, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	scores, err := h.svc.Scores(ctx, input.Word, limit)
	if errors.Is(err, types.ErrNotFound) {
		return textResult(fmt.Sprintf("Word %q is not in the database.", input.Word)), ScoresOutput{}, nil
	}
	if err != nil {
		return errorResult(fmt.Sprintf("failed to score: %v", err)), ScoresOutput{}, nil
	}

	result, err := json.MarshalIndent(scores, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to format response: %v", err)), ScoresOutput{}, nil
	}
	return textResult(string(result)), ScoresOutput{Scores: scores}, nil
}

func (h *Handler) Spectrum(ctx context.Context, req *mcp.CallToolRequest, input SpectrumInput) (*mcp.CallToolResult, SpectrumOutput, error) {
	if input.Word == "" {
		return errorResult("word is required"), SpectrumOutput{}, nil
	}

	mapping, err := intensity.ParseStrategy(input.Mapping)
	if err != nil {
		return errorResult(err.Error()), SpectrumOutput{}, nil
	}

	res, err := h.svc.Spectrum(ctx, input.Word, mapping)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to render spectrum: %v", err)), SpectrumOutput{}, nil
	}

	text := strings.Join(res.Lines, "\n") + "\n" + res.Statistics
	return textResult(text), SpectrumOutput{Spectrum: res}, nil
}
