// Package generate asks a language model for diagram content.
package generate

import (
	"context"
	"errors"
	"fmt"

	"mindflow/diagram"
)

var (
	// ErrTransient marks failures worth retrying later: rate limits, server
	// errors, timeouts.
	ErrTransient = errors.New("generation service unavailable")
	// ErrMalformedResponse marks a response that could not be turned into
	// a diagram.
	ErrMalformedResponse = errors.New("malformed generation response")
	// ErrAPIKeyMissing indicates the OpenAI API key was not configured.
	ErrAPIKeyMissing = errors.New("OpenAI API key not found in environment variable OPENAI_API_KEY")
)

// Detail controls how much text the generated nodes carry.
type Detail string

const (
	DetailBrief    Detail = "brief"
	DetailStandard Detail = "standard"
	DetailDetailed Detail = "detailed"
)

// ParseDetail validates a detail level. Empty means standard.
func ParseDetail(s string) (Detail, error) {
	switch Detail(s) {
	case "":
		return DetailStandard, nil
	case DetailBrief, DetailStandard, DetailDetailed:
		return Detail(s), nil
	default:
		return "", fmt.Errorf("unknown detail level %q", s)
	}
}

// Request describes a whole diagram to generate.
type Request struct {
	Topic  string
	Detail Detail
	Mode   diagram.LayoutMode
	// TargetNodes is a hint; zero lets the model decide.
	TargetNodes int
}

// ExpandRequest asks for new children of an existing node.
type ExpandRequest struct {
	Topic       string
	Parent      string
	Description string
	Count       int
	Mode        diagram.LayoutMode
}

// Child is one generated node for ExpandNode.
type Child struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// Generator produces diagram content. Implementations must return
// documents with unique node ids.
type Generator interface {
	GenerateDiagram(ctx context.Context, req Request) (*diagram.Diagram, error)
	ExpandNode(ctx context.Context, req ExpandRequest) ([]Child, error)
}

// UserMessage returns the text shown to the user when generation failed.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "Generation was cancelled."
	case errors.Is(err, ErrAPIKeyMissing):
		return "No API key is configured. Set OPENAI_API_KEY and try again."
	case errors.Is(err, ErrTransient):
		return "The generation service is busy or unreachable. Please try again in a moment."
	case errors.Is(err, ErrMalformedResponse):
		return "The generated diagram could not be read. Please try again."
	default:
		return "Generation failed. Your diagram was not changed."
	}
}
