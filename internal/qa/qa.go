// Package qa answers questions with a language model grounded on retrieved
// document context.
package qa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"docchat/internal/domain"
)

// DefaultK is the number of chunks retrieved per question.
const DefaultK = 3

var ErrEmptyQuestion = errors.New("question is empty")

// LLM completes a prompt.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Retriever returns the chunks most relevant to a query.
type Retriever interface {
	Query(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)
}

// Answer is the model output together with the chunks it was given.
type Answer struct {
	Text    string
	Sources []domain.Chunk
}

// Chain stuffs retrieved context into a single prompt.
type Chain struct {
	LLM       LLM
	Retriever Retriever
	K         int
}

var stuffPrompt = template.Must(template.New("stuff").Parse(
	`Use the following pieces of context to answer the question at the end. If you don't know the answer, just say that you don't know, don't try to make up an answer.

{{range $i, $c := .Context}}{{if $i}}

{{end}}{{$c}}{{end}}

Question: {{.Question}}
Helpful Answer:`))

// Ask retrieves K chunks for question and answers from them.
func (c *Chain) Ask(ctx context.Context, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, ErrEmptyQuestion
	}
	if c.Retriever == nil {
		return Answer{}, errors.New("qa: no retriever configured")
	}
	k := c.K
	if k <= 0 {
		k = DefaultK
	}
	results, err := c.Retriever.Query(ctx, question, k)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieve context: %w", err)
	}
	sources := make([]domain.Chunk, 0, len(results))
	texts := make([]string, 0, len(results))
	for _, r := range results {
		sources = append(sources, r.Chunk)
		texts = append(texts, r.Chunk.Text)
	}
	text, err := c.complete(ctx, texts, question)
	if err != nil {
		return Answer{}, err
	}
	return Answer{Text: text, Sources: sources}, nil
}

// AskDocuments answers from the full content of docs without retrieval.
func (c *Chain) AskDocuments(ctx context.Context, docs []domain.Document, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, ErrEmptyQuestion
	}
	texts := make([]string, 0, len(docs))
	for _, d := range docs {
		if s := strings.TrimSpace(d.Content); s != "" {
			texts = append(texts, s)
		}
	}
	text, err := c.complete(ctx, texts, question)
	if err != nil {
		return Answer{}, err
	}
	return Answer{Text: text}, nil
}

// Prompt renders the stuff prompt for the given context and question.
func Prompt(chunks []string, question string) (string, error) {
	var buf bytes.Buffer
	err := stuffPrompt.Execute(&buf, struct {
		Context  []string
		Question string
	}{chunks, question})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (c *Chain) complete(ctx context.Context, texts []string, question string) (string, error) {
	if c.LLM == nil {
		return "", errors.New("qa: no model configured")
	}
	prompt, err := Prompt(texts, question)
	if err != nil {
		return "", err
	}
	out, err := c.LLM.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return out, nil
}
