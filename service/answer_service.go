package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tieubaoca/pdfchat/types"
	"github.com/tmc/langchaingo/prompts"
)

// NotInContextAnswer is the phrase the model is told to use when the context
// does not contain the answer.
const NotInContextAnswer = "answer is not available in the context"

const answerTemplate = `
Answer the question as detailed as possible from the provided context, make sure to provide all the details, if the answer is not in
provided context just say, "` + NotInContextAnswer + `", don't provide the wrong answer

Context:
 {{.context}}?

Question:
{{.question}}

Answer:
`

const DefaultTemperature = 0.9

// Answerer stuffs the retrieved chunks into a single prompt and asks the
// generator once.
type Answerer struct {
	generator   Generator
	temperature float32
	prompt      prompts.PromptTemplate
}

func NewAnswerer(generator Generator, temperature float32) *Answerer {
	return &Answerer{
		generator:   generator,
		temperature: temperature,
		prompt:      prompts.NewPromptTemplate(answerTemplate, []string{"context", "question"}),
	}
}

// Prompt renders the prompt sent for question and chunks.
func (a *Answerer) Prompt(question string, chunks []types.RetrievedChunk) (string, error) {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return a.prompt.Format(map[string]any{
		"context":  strings.Join(parts, "\n\n"),
		"question": question,
	})
}

// Answer returns the model output verbatim.
func (a *Answerer) Answer(ctx context.Context, question string, chunks []types.RetrievedChunk) (string, error) {
	prompt, err := a.Prompt(question, chunks)
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return a.generator.Generate(ctx, prompt, a.temperature)
}
