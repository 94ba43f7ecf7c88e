package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/everyskill/everyskill-backend/internal/repos"
	"github.com/everyskill/everyskill-backend/internal/services"
)

func (s *Server) registerTools(m *server.MCPServer) {
	m.AddTool(mcp.NewTool("create_skill",
		mcp.WithDescription("Create a new skill draft in your workspace."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Display name of the skill")),
		mcp.WithString("category", mcp.Required(), mcp.Description("One of: prompt, workflow, agent, mcp")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Skill content in markdown")),
		mcp.WithString("description", mcp.Description("Short description shown in the marketplace")),
		mcp.WithNumber("hours_saved", mcp.Description("Estimated hours saved per use")),
		mcp.WithString("visibility", mcp.Description("tenant (default) or personal")),
	), s.handleCreateSkill)

	m.AddTool(mcp.NewTool("get_skill",
		mcp.WithDescription("Fetch one skill by id, including content and status."),
		mcp.WithString("skill_id", mcp.Required(), mcp.Description("Skill UUID")),
	), s.handleGetSkill)

	m.AddTool(mcp.NewTool("search_skills",
		mcp.WithDescription("Search skills in your workspace by text, category, or status."),
		mcp.WithString("query", mcp.Description("Free-text match on name and description")),
		mcp.WithString("category", mcp.Description("Filter: prompt, workflow, agent, or mcp")),
		mcp.WithString("status", mcp.Description("Filter by lifecycle status, e.g. published")),
	), s.handleSearchSkills)

	m.AddTool(mcp.NewTool("list_my_skills",
		mcp.WithDescription("List the skills you authored."),
	), s.handleListMySkills)

	m.AddTool(mcp.NewTool("submit_skill",
		mcp.WithDescription("Submit a skill you own for AI review. High scores publish it automatically; otherwise it is held for a human decision. Safe to retry after a failure."),
		mcp.WithString("skill_id", mcp.Required(), mcp.Description("Skill UUID")),
	), s.handleSubmitSkill)

	m.AddTool(mcp.NewTool("review_skill",
		mcp.WithDescription("Request an advisory AI review of any skill. Never changes the skill's status. Refused when content is unchanged since the last review."),
		mcp.WithString("skill_id", mcp.Required(), mcp.Description("Skill UUID")),
	), s.handleReviewSkill)
}

func (s *Server) handleCreateSkill(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, authErr := s.requestContext(ctx)
	if authErr != "" {
		return mcp.NewToolResultError(authErr), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	skill, err := s.skillService.Create(ctx, services.CreateSkillInput{
		Name:        name,
		Category:    category,
		Content:     content,
		Description: req.GetString("description", ""),
		HoursSaved:  req.GetFloat("hours_saved", 0),
		Visibility:  req.GetString("visibility", ""),
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.toolJSON(map[string]any{
		"success": true,
		"skill":   skill,
		"message": fmt.Sprintf("Skill %q created as a draft. Use submit_skill to run it through review.", skill.Name),
	})
}

func (s *Server) handleGetSkill(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, authErr := s.requestContext(ctx)
	if authErr != "" {
		return mcp.NewToolResultError(authErr), nil
	}
	skillID, err := s.skillIDArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	skill, err := s.skillService.Get(ctx, skillID)
	if err != nil {
		return s.toolError(err), nil
	}
	return s.toolJSON(map[string]any{"skill": skill})
}

func (s *Server) handleSearchSkills(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, authErr := s.requestContext(ctx)
	if authErr != "" {
		return mcp.NewToolResultError(authErr), nil
	}
	skills, err := s.skillService.Search(ctx, repos.SkillSearchFilter{
		Query:    req.GetString("query", ""),
		Category: req.GetString("category", ""),
		Status:   req.GetString("status", ""),
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.toolJSON(map[string]any{"skills": skills, "count": len(skills)})
}

func (s *Server) handleListMySkills(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, authErr := s.requestContext(ctx)
	if authErr != "" {
		return mcp.NewToolResultError(authErr), nil
	}
	skills, err := s.skillService.ListMine(ctx, 0, 0)
	if err != nil {
		return s.toolError(err), nil
	}
	return s.toolJSON(map[string]any{"skills": skills, "count": len(skills)})
}

func (s *Server) handleSubmitSkill(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, authErr := s.requestContext(ctx)
	if authErr != "" {
		return mcp.NewToolResultError(authErr), nil
	}
	skillID, err := s.skillIDArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := s.submissionService.SubmitForReview(ctx, skillID)
	if err != nil {
		return s.toolError(err), nil
	}
	return s.toolJSON(result)
}

func (s *Server) handleReviewSkill(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, authErr := s.requestContext(ctx)
	if authErr != "" {
		return mcp.NewToolResultError(authErr), nil
	}
	skillID, err := s.skillIDArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := s.reviewService.RequestReview(ctx, skillID)
	if err != nil {
		return s.toolError(err), nil
	}
	return s.toolJSON(result)
}

func (s *Server) skillIDArg(req mcp.CallToolRequest) (uuid.UUID, error) {
	raw, err := req.RequireString("skill_id")
	if err != nil {
		return uuid.Nil, err
	}
	skillID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("skill_id is not a valid UUID: %s", raw)
	}
	return skillID, nil
}

// toolError renders the shared service error taxonomy as a structured
// tool failure payload.
func (s *Server) toolError(err error) *mcp.CallToolResult {
	payload := map[string]any{
		"error":   "request_failed",
		"message": err.Error(),
	}
	var pre *services.PreconditionError
	if errors.As(err, &pre) {
		payload["error"] = pre.Code
	}
	var pipe *services.PipelineError
	if errors.As(err, &pipe) {
		payload["error"] = "review_pipeline_failed"
		payload["retryable"] = pipe.Retryable
	}
	raw, mErr := json.Marshal(payload)
	if mErr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(string(raw))
}

func (s *Server) toolJSON(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}
