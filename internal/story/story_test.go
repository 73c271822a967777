package story

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedLLM struct {
	prompts []string
	replies []string
	failAt  int
}

func (l *scriptedLLM) Generate(_ context.Context, prompt string) (string, error) {
	l.prompts = append(l.prompts, prompt)
	if l.failAt > 0 && len(l.prompts) == l.failAt {
		return "", errors.New("model crashed")
	}
	return l.replies[len(l.prompts)-1], nil
}

func TestRunGeneratesThenTranslates(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"Sleep, Mia, by the sea.", "Duerme, Mia, junto al mar."}}
	chain := &Chain{LLM: llm}

	out, err := chain.Run(context.Background(), "Lisbon", "Mia", "Spanish")
	require.NoError(t, err)
	assert.Equal(t, Lullaby{Story: "Sleep, Mia, by the sea.", Translation: "Duerme, Mia, junto al mar."}, out)

	require.Len(t, llm.prompts, 2)
	assert.Contains(t, llm.prompts[0], "(90 words)")
	assert.Contains(t, llm.prompts[0], "\nLisbon\n")
	assert.Contains(t, llm.prompts[0], "main character Mia")
	assert.True(t, strings.HasSuffix(llm.prompts[0], "STORY:\n"))
	assert.Contains(t, llm.prompts[1], "Translate the Sleep, Mia, by the sea. into Spanish.")
}

func TestRunRequiresAllInputs(t *testing.T) {
	llm := &scriptedLLM{}
	chain := &Chain{LLM: llm}
	for _, in := range [][3]string{{"", "Mia", "Spanish"}, {"Lisbon", " ", "Spanish"}, {"Lisbon", "Mia", ""}} {
		_, err := chain.Run(context.Background(), in[0], in[1], in[2])
		assert.ErrorIs(t, err, ErrMissingInput)
	}
	assert.Empty(t, llm.prompts)
}

func TestRunKeepsStoryWhenTranslationFails(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"A story."}, failAt: 2}
	out, err := (&Chain{LLM: llm, Words: 40}).Run(context.Background(), "Oslo", "Ada", "French")
	assert.ErrorContains(t, err, "translate story")
	assert.Equal(t, "A story.", out.Story)
	assert.Contains(t, llm.prompts[0], "(40 words)")
}
