package summarizer

import (
	"math"
	"sort"
	"strings"

	"docchat/internal/textutil"
)

// FrequencySummarizer picks the sentences whose content words are most
// frequent across the whole text.
type FrequencySummarizer struct{}

func NewFrequencySummarizer() *FrequencySummarizer { return &FrequencySummarizer{} }

// Summarize returns up to maxSentences sentences in document order. A text
// without terminators, or an unterminated tail, counts as a sentence.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	sentences := textutil.Sentences(text)
	if len(sentences) <= 1 {
		return strings.Join(sentences, " "), nil
	}

	words := make([][]string, len(sentences))
	freq := map[string]float64{}
	peak := 0.0
	for i, sent := range sentences {
		words[i] = textutil.Words(sent)
		for _, w := range words[i] {
			if textutil.IsStopword(w) {
				continue
			}
			freq[w]++
			peak = max(peak, freq[w])
		}
	}

	scores := make([]float64, len(sentences))
	for i, ws := range words {
		if len(ws) == 0 || peak == 0 {
			continue
		}
		for _, w := range ws {
			scores[i] += freq[w] / peak
		}
		// damp long sentences
		scores[i] /= math.Sqrt(float64(len(ws)))
	}

	order := make([]int, len(sentences))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })
	picked := order[:min(maxSentences, len(order))]
	sort.Ints(picked)

	out := make([]string, len(picked))
	for i, idx := range picked {
		out[i] = sentences[idx]
	}
	return strings.Join(out, " "), nil
}
