package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/chronicle-ai/chronicle/internal/agents"
	"github.com/chronicle-ai/chronicle/internal/memory"
	"github.com/chronicle-ai/chronicle/internal/prompts"
	"github.com/chronicle-ai/chronicle/internal/retrieval"
)

// Citation references a context passage that supported an answer.
type Citation struct {
	Ref        int       `json:"ref"`
	DocumentID uuid.UUID `json:"document_id"`
	Ordinal    int       `json:"ordinal"`
	Excerpt    string    `json:"excerpt"`
}

// Answer is the outcome of a question-answering exchange.
type Answer struct {
	ConversationID string     `json:"conversation_id"`
	Answer         string     `json:"answer"`
	Citations      []Citation `json:"citations"`
	CostUSD        float64    `json:"cost_usd"`
}

// excerptLen bounds citation excerpts in answers.
const excerptLen = 200

// AskQuestion answers a question about a document using retrieved context
// and the prior turns of the conversation. The user turn is stored before
// invocation and the assistant turn after, so follow-up questions see the
// full exchange up to the memory cap.
func (o *Orchestrator) AskQuestion(
	ctx context.Context,
	question string,
	documentID uuid.UUID,
	conversationID string,
) (*Answer, error) {
	if question == "" {
		return nil, &agents.ValidationError{Unit: "question-answerer", Reason: "question required"}
	}
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	var filters retrieval.Filters
	if documentID != uuid.Nil {
		filters.DocumentID = &documentID
	}

	chunks, err := o.searcher.Search(ctx, question, filters)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	prior := o.memory.Recent(conversationID)
	o.memory.Append(conversationID, memory.Turn{
		Role:    memory.RoleUser,
		Content: question,
	})

	prompt := prompts.ComposeQuestion(question, prior, chunks)

	result, err := o.RouteTask(ctx, agents.TaskQuestionAnswering, agents.Input{
		DocumentID: documentID,
		Prompt:     prompt,
	})
	if err != nil {
		return nil, err
	}

	answer, refs := parseAnswer(result)

	o.memory.Append(conversationID, memory.Turn{
		Role:    memory.RoleAssistant,
		Content: answer,
	})

	return &Answer{
		ConversationID: conversationID,
		Answer:         answer,
		Citations:      buildCitations(refs, chunks),
		CostUSD:        result.Cost.CostUSD,
	}, nil
}

// parseAnswer extracts the answer text and citation references from the
// unit's structured output, falling back to the raw content when the model
// skipped the response specification.
func parseAnswer(result *agents.Result) (string, []int) {
	answer, _ := result.Output["answer"].(string)
	if answer == "" {
		answer = result.Raw
	}

	var refs []int
	if cited, ok := result.Output["citations"].([]any); ok {
		for _, c := range cited {
			if n, ok := c.(float64); ok {
				refs = append(refs, int(n))
			}
		}
	}

	return answer, refs
}

func buildCitations(refs []int, chunks []retrieval.Chunk) []Citation {
	citations := make([]Citation, 0, len(refs))
	for _, ref := range refs {
		if ref < 1 || ref > len(chunks) {
			continue
		}
		c := chunks[ref-1]
		citations = append(citations, Citation{
			Ref:        ref,
			DocumentID: c.DocumentID,
			Ordinal:    c.Ordinal,
			Excerpt:    excerpt(c.Content),
		})
	}
	return citations
}

func excerpt(content string) string {
	if len(content) <= excerptLen {
		return content
	}
	return content[:excerptLen] + "..."
}
