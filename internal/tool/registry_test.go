package tool

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echo(name string) Tool {
	return Func(name, func(_ context.Context, q string) (Result, error) {
		return Result{Text: name + ":" + q}, nil
	}, "echoes the query")
}

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echo("Wikipedia")))
	require.NoError(t, r.Register(echo("Corpus")))

	got, err := r.Lookup("Corpus")
	require.NoError(t, err)
	assert.Equal(t, "Corpus", got.Name())
	assert.Equal(t, "echoes the query", got.Description())

	res, err := got.Invoke(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Corpus:hello", res.Text)

	assert.Equal(t, []string{"Wikipedia", "Corpus"}, r.Names())
}

func TestRegisterDuplicateName(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echo("Wikipedia")))

	err := r.Register(echo("Wikipedia"))
	var dup *DuplicateNameError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "Wikipedia", dup.Name)
	assert.Equal(t, []string{"Wikipedia"}, r.Names())
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.Register(echo("  ")), ErrEmptyName)
	assert.Error(t, r.Register(nil))
}

func TestLookupUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("FAISS")
	var unknown *UnknownToolError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "FAISS", unknown.Name)
	assert.Contains(t, err.Error(), "FAISS")
}

func TestConcurrentLookup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echo("a")))
	require.NoError(t, r.Register(echo("b")))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "a"
			if i%2 == 1 {
				name = "b"
			}
			got, err := r.Lookup(name)
			assert.NoError(t, err)
			assert.Equal(t, name, got.Name())
		}(i)
	}
	wg.Wait()
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "summary", Result{Text: "summary"}.String())
	assert.Equal(t, "one\n\ntwo", Result{Fragments: []string{"one", "two"}}.String())
}
