// Package tfidf embeds text as L2-normalized TF-IDF vectors over a vocabulary
// learned from the ingested chunks. It needs no model server.
package tfidf

import (
	"context"
	"errors"
	"math"
	"sort"

	"docchat/internal/textutil"
)

// Embedder must be prepared on a corpus before Embed is called. Words outside
// the prepared vocabulary are ignored, so a query made only of unknown words
// embeds to the zero vector.
type Embedder struct {
	vocabulary map[string]int
	idf        []float64
}

func NewEmbedder() *Embedder { return &Embedder{} }

func (e *Embedder) Name() string { return "tfidf" }

// Prepare replaces the vocabulary with the content words of corpus, in sorted
// order, and computes smoothed IDF weights ln((1+N)/(1+df)) + 1.
func (e *Embedder) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("tfidf: empty corpus")
	}
	df := make(map[string]int)
	for _, text := range corpus {
		for term := range contentSet(text) {
			df[term]++
		}
	}
	if len(df) == 0 {
		return errors.New("tfidf: corpus has no indexable words")
	}
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(corpus))
	e.vocabulary = make(map[string]int, len(terms))
	e.idf = make([]float64, len(terms))
	for i, term := range terms {
		e.vocabulary[term] = i
		e.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return nil
}

func (e *Embedder) Dimension() int { return len(e.idf) }

func (e *Embedder) Embed(_ context.Context, text string) ([]float64, error) {
	if e.vocabulary == nil {
		return nil, errors.New("tfidf embedder not prepared")
	}
	vec := make([]float64, len(e.idf))
	known := 0
	for _, w := range textutil.ContentWords(text) {
		if i, ok := e.vocabulary[w]; ok {
			vec[i]++
			known++
		}
	}
	if known == 0 {
		return vec, nil
	}
	var norm float64
	for i, count := range vec {
		if count == 0 {
			continue
		}
		vec[i] = count / float64(known) * e.idf[i]
		norm += vec[i] * vec[i]
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}

func contentSet(text string) map[string]struct{} {
	words := textutil.ContentWords(text)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
