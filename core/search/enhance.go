package search

import (
	"context"
	"fmt"
	"strings"

	"partyfm/logger"
)

const enhancePromptTemplate = `Given this music search query: "%s"

Extract the key information and suggest 2-3 alternative search terms that would help find similar music.
Focus on artist names, song titles, genres, or musical styles.
Return only the search terms, separated by commas.

Query: %s
Search terms:`

// EnhanceQuery asks the language model for alternative search terms.
// Whenever the model is unreachable, errors, or returns nothing useful, the
// original query comes back unchanged.
func (s *Service) EnhanceQuery(ctx context.Context, query string) string {
	if !s.llmAvailable.Load() {
		return query
	}

	prompt := fmt.Sprintf(enhancePromptTemplate, query, query)
	response, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		logger.Debug("[Search] Query enhancement failed",
			logger.String("query", query),
			logger.ErrorField(err))
		return query
	}

	enhanced := strings.TrimSpace(response)
	if enhanced == "" {
		return query
	}

	logger.Debug("[Search] Enhanced query",
		logger.String("query", query),
		logger.String("enhanced", enhanced))
	return enhanced
}
