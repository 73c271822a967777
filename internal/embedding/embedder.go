// Package embedding groups the text embedder implementations.
package embedding

import "docchat/internal/domain"

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder = domain.Embedder
