// Package router picks exactly one registered tool for a query and invokes it.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docchat/internal/tool"
)

// DefaultThreshold is the token count at which queries stop being treated as
// short encyclopedic lookups.
const DefaultThreshold = 5

// Decider maps a query to the name of the tool that should serve it.
type Decider interface {
	Decide(query string) string
}

// DeciderFunc adapts a plain function to Decider.
type DeciderFunc func(query string) string

func (f DeciderFunc) Decide(query string) string { return f(query) }

// WordCountDecider routes queries with fewer than Threshold whitespace
// separated tokens to Short, everything else to Long.
type WordCountDecider struct {
	Threshold int
	Short     string
	Long      string
}

func (d WordCountDecider) Decide(query string) string {
	threshold := d.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if len(strings.Fields(query)) < threshold {
		return d.Short
	}
	return d.Long
}

// BackendInvocationError wraps a failure raised by the invoked tool.
type BackendInvocationError struct {
	Tool  string
	Cause error
}

func (e *BackendInvocationError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Cause)
}

func (e *BackendInvocationError) Unwrap() error { return e.Cause }

// Router dispatches each query to the single tool its Decider names.
type Router struct {
	registry *tool.Registry
	decider  Decider
}

// New creates a router over an already populated registry.
func New(registry *tool.Registry, decider Decider) (*Router, error) {
	if registry == nil {
		return nil, errors.New("router: nil registry")
	}
	if decider == nil {
		return nil, errors.New("router: nil decider")
	}
	return &Router{registry: registry, decider: decider}, nil
}

// Decide returns the tool name the query would be routed to.
func (r *Router) Decide(query string) string {
	return r.decider.Decide(query)
}

// Run decides, resolves and invokes one tool, returning its result as is.
// Lookup failures come back as *tool.UnknownToolError; tool failures as
// *BackendInvocationError.
func (r *Router) Run(ctx context.Context, query string) (tool.Result, error) {
	name := r.decider.Decide(query)
	t, err := r.registry.Lookup(name)
	if err != nil {
		return tool.Result{}, err
	}
	res, err := t.Invoke(ctx, query)
	if err != nil {
		return tool.Result{}, &BackendInvocationError{Tool: name, Cause: err}
	}
	return res, nil
}
