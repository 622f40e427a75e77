package generate

import (
	"fmt"
	"strings"

	"mindflow/diagram"
)

const systemPrompt = `You design diagrams. Answer with one JSON object and nothing else.`

const diagramSchema = `{
  "title": string,
  "caption": string,
  "nodes": [{"id": string, "kind": "primary"|"terminal", "title": string, "description": string, "icon": string}],
  "connectors": [{"id": string, "fromNodeId": string, "toNodeId": string}],
  "sideBoxes": [{"id": string, "text": string, "attachedNodeId": string}],
  "supportingPanel": {"title": string, "items": [{"id": string, "title": string, "description": string, "icon": string, "connectsToNodeId": string}]}
}`

// icon keys the renderers know.
const iconHint = "start, stop, user, team, database, cloud, document, settings, check, warning, idea, chart, mail, lock, clock, search, code"

func diagramPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %s about: %s\n", modeNoun(req.Mode), req.Topic)
	fmt.Fprintf(&b, "Detail level: %s. %s\n", req.Detail, detailHint(req.Detail))
	if req.TargetNodes > 0 {
		fmt.Fprintf(&b, "Use about %d nodes.\n", req.TargetNodes)
	}
	if req.Mode == diagram.ModeMindMap {
		b.WriteString("Exactly one central node connects to every main branch; branches may have their own children.\n")
	} else {
		b.WriteString("Start with a terminal node, end with a terminal node, connectors follow the flow.\n")
	}
	fmt.Fprintf(&b, "Icons must be one of: %s.\n", iconHint)
	b.WriteString("Node ids must be unique. Use this JSON shape:\n")
	b.WriteString(diagramSchema)
	return b.String()
}

func expandPrompt(req ExpandRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The %s %q contains the node %q", modeNoun(req.Mode), req.Topic, req.Parent)
	if req.Description != "" {
		fmt.Fprintf(&b, " (%s)", req.Description)
	}
	fmt.Fprintf(&b, ".\nSuggest %d child nodes for it.\n", max(req.Count, 1))
	fmt.Fprintf(&b, "Icons must be one of: %s.\n", iconHint)
	b.WriteString(`Use this JSON shape: {"children": [{"title": string, "description": string, "icon": string}]}`)
	return b.String()
}

func modeNoun(mode diagram.LayoutMode) string {
	if mode == diagram.ModeMindMap {
		return "mind map"
	}
	return "flowchart"
}

func detailHint(d Detail) string {
	switch d {
	case DetailBrief:
		return "Titles only, no descriptions."
	case DetailDetailed:
		return "Every node gets a two or three sentence description."
	default:
		return "Every node gets a one sentence description."
	}
}
