// Package loader turns files on disk into documents.
package loader

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"docchat/internal/domain"
)

// TextLoader loads a whole text file as one document.
type TextLoader struct{}

func (TextLoader) Load(path string) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return []domain.Document{{ID: documentID(path, 0), Path: path, Content: string(data)}}, nil
}

// PDFLoader loads one document per page that has extractable text.
type PDFLoader struct{}

func (PDFLoader) Load(path string) ([]domain.Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var docs []domain.Document
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("pdf %s page %d: %w", path, i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, domain.Document{ID: documentID(path, i), Path: path, Page: i, Content: text})
	}
	if len(docs) == 0 {
		// Some producers only expose text through the document-level stream.
		rd, err := r.GetPlainText()
		if err != nil {
			return nil, fmt.Errorf("pdf %s: %w", path, err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rd); err != nil {
			return nil, err
		}
		if strings.TrimSpace(buf.String()) != "" {
			docs = append(docs, domain.Document{ID: documentID(path, 0), Path: path, Content: buf.String()})
		}
	}
	return docs, nil
}

// Multi picks a loader by file extension and expands glob patterns.
type Multi struct {
	loaders map[string]domain.Loader
}

// NewMulti returns a loader for .txt and .pdf files.
func NewMulti() *Multi {
	return &Multi{loaders: map[string]domain.Loader{
		".txt": TextLoader{},
		".pdf": PDFLoader{},
	}}
}

// Register adds or replaces the loader for an extension such as ".md".
func (m *Multi) Register(ext string, l domain.Loader) {
	m.loaders[strings.ToLower(ext)] = l
}

// Load loads a single path using the loader registered for its extension.
func (m *Multi) Load(path string) ([]domain.Document, error) {
	l, ok := m.loaders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("no loader for %s", path)
	}
	return l.Load(path)
}

// LoadAll expands each pattern and loads every supported file. Unsupported
// extensions are skipped.
func (m *Multi) LoadAll(patterns []string) ([]domain.Document, error) {
	var documents []domain.Document
	for _, p := range patterns {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, path := range matches {
			if _, ok := m.loaders[strings.ToLower(filepath.Ext(path))]; !ok {
				continue
			}
			docs, err := m.Load(path)
			if err != nil {
				return nil, err
			}
			documents = append(documents, docs...)
		}
	}
	if len(documents) == 0 {
		return nil, fmt.Errorf("no supported documents found")
	}
	return documents, nil
}

func documentID(path string, page int) string {
	key := path
	if page > 0 {
		key += "#" + strconv.Itoa(page)
	}
	h := sha1.Sum([]byte(key))
	return hex.EncodeToString(h[:8])
}
