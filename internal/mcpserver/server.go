// Package mcpserver exposes EverySkill over the Model Context
// Protocol. It wires the same services the web API uses, so the review
// pipeline has exactly one implementation across both surfaces.
package mcpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/everyskill/everyskill-backend/internal/logger"
	"github.com/everyskill/everyskill-backend/internal/ratelimit"
	"github.com/everyskill/everyskill-backend/internal/requestdata"
	"github.com/everyskill/everyskill-backend/internal/services"
)

// Version is set at build time via ldflags.
var Version = "dev"

type authResultKey struct{}

type authResult struct {
	rd  *requestdata.RequestData
	err string
}

type Server struct {
	log               *logger.Logger
	apiKeyService     services.APIKeyService
	skillService      services.SkillService
	submissionService services.SubmissionService
	reviewService     services.ReviewService
	limiter           ratelimit.Limiter
}

func New(
	log *logger.Logger,
	apiKeyService services.APIKeyService,
	skillService services.SkillService,
	submissionService services.SubmissionService,
	reviewService services.ReviewService,
	limiter ratelimit.Limiter,
) *Server {
	return &Server{
		log:               log.With("service", "MCPServer"),
		apiKeyService:     apiKeyService,
		skillService:      skillService,
		submissionService: submissionService,
		reviewService:     reviewService,
		limiter:           limiter,
	}
}

// Handler builds the streamable HTTP handler with bearer-key auth and
// per-key rate limiting resolved before any tool runs.
func (s *Server) Handler() http.Handler {
	mcpServer := server.NewMCPServer(
		"everyskill",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions("EverySkill is a marketplace for reusable AI skills. Use search_skills and get_skill to find skills, create_skill to author one, submit_skill to run it through AI review and publication, and review_skill for an advisory review that never changes status."),
	)
	s.registerTools(mcpServer)

	return server.NewStreamableHTTPServer(
		mcpServer,
		server.WithHTTPContextFunc(s.authContext),
	)
}

func (s *Server) authContext(ctx context.Context, r *http.Request) context.Context {
	rawKey := extractBearer(r)
	if rawKey == "" {
		return context.WithValue(ctx, authResultKey{}, &authResult{err: "missing api key: pass it as Authorization: Bearer <key>"})
	}
	if !s.limiter.Allow(rawKey) {
		return context.WithValue(ctx, authResultKey{}, &authResult{err: "rate limit exceeded: 60 requests per minute per api key"})
	}
	rd, err := s.apiKeyService.Resolve(ctx, rawKey)
	if err != nil {
		return context.WithValue(ctx, authResultKey{}, &authResult{err: "invalid api key"})
	}
	return context.WithValue(ctx, authResultKey{}, &authResult{rd: rd})
}

// requestContext surfaces the auth outcome to a tool handler: either a
// context carrying request data or the auth failure message.
func (s *Server) requestContext(ctx context.Context) (context.Context, string) {
	res, ok := ctx.Value(authResultKey{}).(*authResult)
	if !ok || res == nil {
		return ctx, "unauthenticated"
	}
	if res.err != "" {
		return ctx, res.err
	}
	return requestdata.WithRequestData(ctx, res.rd), ""
}

func extractBearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
