package prompts_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/chronicle-ai/chronicle/internal/memory"
	"github.com/chronicle-ai/chronicle/internal/prompts"
	"github.com/chronicle-ai/chronicle/internal/retrieval"
)

func TestSystemKnownTasks(t *testing.T) {
	tasks := []prompts.Task{
		prompts.TaskDeepAnalysis,
		prompts.TaskEntityExtraction,
		prompts.TaskActionItems,
		prompts.TaskRiskAssessment,
		prompts.TaskSummarization,
		prompts.TaskQuestionAnswering,
	}

	for _, task := range tasks {
		system, err := prompts.System(task)
		if err != nil {
			t.Errorf("%s: %v", task, err)
			continue
		}
		if system == "" {
			t.Errorf("%s: empty system prompt", task)
		}
		// Every task carries a response specification.
		if !strings.Contains(system, "JSON") {
			t.Errorf("%s: no response specification in prompt", task)
		}
	}
}

func TestSystemUnknownTask(t *testing.T) {
	_, err := prompts.System("telepathy")
	if !errors.Is(err, prompts.ErrInvalidTask) {
		t.Errorf("got %v, want ErrInvalidTask", err)
	}
}

func TestComposeAnalysisIncludesParameters(t *testing.T) {
	prompt := prompts.ComposeAnalysis("the document body", map[string]any{"focus": "deadlines"})

	if !strings.Contains(prompt, "the document body") {
		t.Error("document text missing")
	}
	if !strings.Contains(prompt, "focus: deadlines") {
		t.Error("task parameters missing")
	}
}

func TestComposeAnalysisParameterOrderIsStable(t *testing.T) {
	params := map[string]any{
		"depth":  "full",
		"audit":  true,
		"focus":  "deadlines",
		"locale": "en",
	}

	first := prompts.ComposeAnalysis("body", params)
	for i := 0; i < 20; i++ {
		if got := prompts.ComposeAnalysis("body", params); got != first {
			t.Fatalf("prompt varies across runs:\n%q\n%q", first, got)
		}
	}

	// Keys render sorted.
	order := []string{"audit:", "depth:", "focus:", "locale:"}
	last := -1
	for _, key := range order {
		idx := strings.Index(first, key)
		if idx < 0 {
			t.Fatalf("parameter %q missing from prompt %q", key, first)
		}
		if idx < last {
			t.Errorf("parameter %q out of order in prompt %q", key, first)
		}
		last = idx
	}
}

func TestComposeAnalysisWithoutParameters(t *testing.T) {
	prompt := prompts.ComposeAnalysis("just text", nil)

	if strings.Contains(prompt, "Task parameters") {
		t.Error("parameter section present for empty parameters")
	}
	if !strings.Contains(prompt, "just text") {
		t.Error("document text missing")
	}
}

func TestComposeQuestionOrdersSections(t *testing.T) {
	docID := uuid.New()
	chunks := []retrieval.Chunk{
		{ID: uuid.New(), DocumentID: docID, Ordinal: 0, Content: "passage one"},
		{ID: uuid.New(), DocumentID: docID, Ordinal: 1, Content: "passage two"},
	}
	turns := []memory.Turn{
		{Role: memory.RoleUser, Content: "earlier question"},
		{Role: memory.RoleAssistant, Content: "earlier answer"},
	}

	prompt := prompts.ComposeQuestion("current question", turns, chunks)

	// Passages are numbered for citation references.
	if !strings.Contains(prompt, "[1] passage one") || !strings.Contains(prompt, "[2] passage two") {
		t.Errorf("passages not numbered: %q", prompt)
	}
	if !strings.Contains(prompt, "earlier question") || !strings.Contains(prompt, "earlier answer") {
		t.Error("conversation turns missing")
	}
	if !strings.HasSuffix(prompt, "Question: current question") {
		t.Errorf("question not last: %q", prompt)
	}

	// Context precedes conversation, which precedes the question.
	ctxIdx := strings.Index(prompt, "passage one")
	convIdx := strings.Index(prompt, "earlier question")
	qIdx := strings.Index(prompt, "Question: current question")
	if !(ctxIdx < convIdx && convIdx < qIdx) {
		t.Error("prompt sections out of order")
	}
}

func TestComposeQuestionWithoutContext(t *testing.T) {
	prompt := prompts.ComposeQuestion("a question", nil, nil)

	if strings.Contains(prompt, "Context passages") {
		t.Error("empty context section present")
	}
	if strings.Contains(prompt, "Conversation so far") {
		t.Error("empty conversation section present")
	}
	if prompt != "Question: a question" {
		t.Errorf("prompt: got %q", prompt)
	}
}
