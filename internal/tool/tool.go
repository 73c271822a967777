// Package tool holds the named retrieval capabilities an agent can dispatch
// a query to, and the registry they are looked up in.
package tool

import (
	"context"
	"strings"
)

// Tool is a named capability that answers a query.
type Tool interface {
	Name() string
	Description() string
	Invoke(ctx context.Context, query string) (Result, error)
}

// Result is whatever the invoked backend returned. Encyclopedic backends fill
// Text, corpus backends fill Fragments; nothing is normalized between them.
type Result struct {
	Text      string
	Fragments []string
}

// String renders the result for display.
func (r Result) String() string {
	if len(r.Fragments) == 0 {
		return r.Text
	}
	return strings.Join(r.Fragments, "\n\n")
}

// InvokeFunc is the signature of a plain function usable as a tool.
type InvokeFunc func(ctx context.Context, query string) (Result, error)

type funcTool struct {
	name        string
	description string
	fn          InvokeFunc
}

// Func wraps fn as a Tool with the given name and description.
func Func(name string, fn InvokeFunc, description string) Tool {
	return &funcTool{name: name, description: description, fn: fn}
}

func (t *funcTool) Name() string        { return t.name }
func (t *funcTool) Description() string { return t.description }

func (t *funcTool) Invoke(ctx context.Context, query string) (Result, error) {
	return t.fn(ctx, query)
}
