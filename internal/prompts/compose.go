package prompts

import (
	"fmt"
	"slices"
	"strings"

	"github.com/chronicle-ai/chronicle/internal/memory"
	"github.com/chronicle-ai/chronicle/internal/retrieval"
)

// ComposeAnalysis builds the user prompt for a document analysis task.
// Parameters are rendered in sorted key order so identical inputs always
// produce an identical prompt.
func ComposeAnalysis(text string, parameters map[string]any) string {
	var b strings.Builder

	if len(parameters) > 0 {
		keys := make([]string, 0, len(parameters))
		for k := range parameters {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		b.WriteString("Task parameters:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %v\n", k, parameters[k])
		}
		b.WriteString("\n")
	}

	b.WriteString("Document text:\n\n")
	b.WriteString(text)

	return b.String()
}

// ComposeQuestion builds the user prompt for retrieval-augmented question
// answering: numbered context passages, the prior conversation turns in
// order, then the current question. The prior turns include the anchoring
// first turn so follow-up questions can resolve references to it.
func ComposeQuestion(question string, turns []memory.Turn, chunks []retrieval.Chunk) string {
	var b strings.Builder

	if len(chunks) > 0 {
		b.WriteString("Context passages:\n\n")
		for i, c := range chunks {
			fmt.Fprintf(&b, "[%d] %s\n\n", i+1, c.Content)
		}
	}

	if len(turns) > 0 {
		b.WriteString("Conversation so far:\n\n")
		for _, t := range turns {
			fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Question: %s", question)

	return b.String()
}
