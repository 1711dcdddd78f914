package services

import (
	"context"
	"fmt"
	"log"

	"coursechat/models"
	"coursechat/services/agent"

	"github.com/anthropics/anthropic-sdk-go"
)

// responseGenerator is the slice of agent.Generator the RAG service needs.
type responseGenerator interface {
	GenerateResponse(ctx context.Context, query, conversationHistory string, tools []anthropic.ToolUnionParam, executor agent.ToolExecutor) (string, error)
}

// RAGService is the single entry point the HTTP layer invokes: it threads
// session history into the generator, gives it a fresh tool registry for the
// query, and collects the citation sources the tools captured.
type RAGService struct {
	store     agent.CourseStore
	generator responseGenerator
	sessions  *SessionService
}

func NewRAGService(store agent.CourseStore, generator *agent.Generator, sessions *SessionService) *RAGService {
	return &RAGService{
		store:     store,
		generator: generator,
		sessions:  sessions,
	}
}

// Query answers one user question and returns the synthesized text plus the
// sources of the last content search. Each call owns its registry, so
// concurrent sessions never share source state.
func (s *RAGService) Query(ctx context.Context, query, sessionID string) (string, []models.Source, error) {
	log.Printf("[INFO] Processing query for session %q", sessionID)

	var history string
	if sessionID != "" {
		history = s.sessions.FormattedHistory(sessionID)
	}

	registry, err := s.newToolRegistry()
	if err != nil {
		return "", nil, err
	}

	answer, err := s.generator.GenerateResponse(ctx, query, history, registry.Definitions(), registry)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate response: %w", err)
	}

	sources := registry.LastSources()
	registry.ResetSources()

	if sessionID != "" {
		s.sessions.AddExchange(sessionID, query, answer)
	}

	log.Printf("[INFO] Query completed with %d sources", len(sources))
	return answer, sources, nil
}

func (s *RAGService) newToolRegistry() (*agent.Registry, error) {
	registry := agent.NewRegistry()

	if err := registry.Register(agent.NewCourseSearchTool(s.store)); err != nil {
		return nil, fmt.Errorf("failed to register search tool: %w", err)
	}
	if err := registry.Register(agent.NewCourseOutlineTool(s.store)); err != nil {
		return nil, fmt.Errorf("failed to register outline tool: %w", err)
	}

	return registry, nil
}
