package generate

import (
	"context"
	"sync"

	"mindflow/diagram"
)

// Mock provides a Generator for tests. Funcs take precedence over the
// canned values.
type Mock struct {
	DiagramFunc func(ctx context.Context, req Request) (*diagram.Diagram, error)
	ExpandFunc  func(ctx context.Context, req ExpandRequest) ([]Child, error)

	Diagram  *diagram.Diagram
	Children []Child
	Err      error

	mu             sync.Mutex
	Requests       []Request
	ExpandRequests []ExpandRequest
}

// GenerateDiagram implements Generator.
func (m *Mock) GenerateDiagram(ctx context.Context, req Request) (*diagram.Diagram, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if m.DiagramFunc != nil {
		return m.DiagramFunc(ctx, req)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Diagram.Clone(), nil
}

// ExpandNode implements Generator.
func (m *Mock) ExpandNode(ctx context.Context, req ExpandRequest) ([]Child, error) {
	m.mu.Lock()
	m.ExpandRequests = append(m.ExpandRequests, req)
	m.mu.Unlock()

	if m.ExpandFunc != nil {
		return m.ExpandFunc(ctx, req)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]Child(nil), m.Children...), nil
}
