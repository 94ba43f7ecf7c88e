package review

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/everyskill/everyskill-backend/internal/logger"
)

// Input is the skill material handed to the reviewer model.
type Input struct {
	Name        string
	Description string
	Content     string
	Category    string
}

// LLMClient is the structured-output LLM call the generator depends
// on. Satisfied by clients/openai.Client.
type LLMClient interface {
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)
	Model() string
}

// Generator produces AI reviews. It is the single implementation shared
// by the web API and the MCP tool server.
type Generator struct {
	client LLMClient
	log    *logger.Logger
}

func NewGenerator(client LLMClient, log *logger.Logger) *Generator {
	return &Generator{
		client: client,
		log:    log.With("service", "ReviewGenerator"),
	}
}

// ModelName reports which model reviews are generated with.
func (g *Generator) ModelName() string {
	return g.client.Model()
}

// Generate runs one review call and parses the structured response.
// Any malformed or truncated model output is an error, never a partial
// result.
func (g *Generator) Generate(ctx context.Context, in Input) (*Result, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("skill name required")
	}
	if in.Content == "" {
		return nil, fmt.Errorf("skill content required")
	}

	obj, err := g.client.GenerateJSON(ctx, SystemPrompt(), UserPrompt(in), SchemaName, Schema())
	if err != nil {
		return nil, fmt.Errorf("review generation: %w", err)
	}

	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("review generation: re-encode model output: %w", err)
	}
	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("review generation: malformed model output: %w", err)
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("review generation: %w", err)
	}

	g.log.Debug("Review generated",
		"skill", in.Name,
		"quality", result.Quality.Score,
		"clarity", result.Clarity.Score,
		"completeness", result.Completeness.Score,
	)
	return &result, nil
}
