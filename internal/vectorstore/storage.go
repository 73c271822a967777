// Package vectorstore groups the vector index implementations.
package vectorstore

import "docchat/internal/domain"

// Storage persists vectors and supports similarity search.
type Storage = domain.VectorStore
