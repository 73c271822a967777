// Package story writes a short children's lullaby and translates it.
package story

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// DefaultWords is the target story length.
const DefaultWords = 90

var ErrMissingInput = errors.New("location, name and language are required")

// LLM completes a prompt.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Lullaby holds the original story and its translation.
type Lullaby struct {
	Story       string
	Translation string
}

// Chain generates a story and then translates it with the same model.
type Chain struct {
	LLM   LLM
	Words int
}

var (
	storyPrompt = template.Must(template.New("story").Parse(
		`As a children's book writer, please come up with a simple and short ({{.Words}} words)
lullaby based on the location
{{.Location}}
and the main character {{.Name}}

STORY:
`))

	translatePrompt = template.Must(template.New("translate").Parse(
		`Translate the {{.Story}} into {{.Language}}. Make sure
the language is simple and fun.

TRANSLATION:
`))
)

// Generate writes a lullaby set in location with name as the main character.
func (c *Chain) Generate(ctx context.Context, location, name string) (string, error) {
	location, name = strings.TrimSpace(location), strings.TrimSpace(name)
	if location == "" || name == "" {
		return "", ErrMissingInput
	}
	words := c.Words
	if words <= 0 {
		words = DefaultWords
	}
	return c.run(ctx, storyPrompt, struct {
		Words          int
		Location, Name string
	}{words, location, name})
}

// Translate rewrites story in language.
func (c *Chain) Translate(ctx context.Context, story, language string) (string, error) {
	story, language = strings.TrimSpace(story), strings.TrimSpace(language)
	if story == "" || language == "" {
		return "", ErrMissingInput
	}
	return c.run(ctx, translatePrompt, struct{ Story, Language string }{story, language})
}

// Run generates the story and translates it. All inputs are checked before
// the model is called.
func (c *Chain) Run(ctx context.Context, location, name, language string) (Lullaby, error) {
	if strings.TrimSpace(location) == "" || strings.TrimSpace(name) == "" || strings.TrimSpace(language) == "" {
		return Lullaby{}, ErrMissingInput
	}
	s, err := c.Generate(ctx, location, name)
	if err != nil {
		return Lullaby{}, fmt.Errorf("generate story: %w", err)
	}
	t, err := c.Translate(ctx, s, language)
	if err != nil {
		return Lullaby{Story: s}, fmt.Errorf("translate story: %w", err)
	}
	return Lullaby{Story: s, Translation: t}, nil
}

func (c *Chain) run(ctx context.Context, tmpl *template.Template, data any) (string, error) {
	if c.LLM == nil {
		return "", errors.New("story: no model configured")
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return c.LLM.Generate(ctx, buf.String())
}
