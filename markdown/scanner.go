// Package markdown finds Mermaid code blocks in Markdown documents and
// replaces their content in place.
package markdown

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrNoBlock is returned when a document has no block at the requested
// index.
var ErrNoBlock = errors.New("no mermaid block")

// Block is a fenced Mermaid block.
type Block struct {
	Content   string // lines between the fences, indentation removed
	StartLine int    // line of the opening fence (0-based)
	EndLine   int    // line of the closing fence
	Indent    string // indentation before the opening fence
	Hash      string // SHA256 of Content when scanned
}

// Scanner finds and extracts Mermaid blocks from markdown content
type Scanner struct {
	lines []string
}

// NewScanner creates a new markdown scanner
func NewScanner(content string) *Scanner {
	return &Scanner{lines: strings.Split(content, "\n")}
}

// Blocks returns every closed ```mermaid block in document order.
func (s *Scanner) Blocks() []Block {
	var blocks []Block
	var current *Block
	var body []string

	for i, line := range s.lines {
		trimmed := strings.TrimLeft(line, " \t")
		if current == nil {
			if strings.HasPrefix(trimmed, "```") && isMermaid(strings.TrimPrefix(trimmed, "```")) {
				current = &Block{StartLine: i, Indent: line[:len(line)-len(trimmed)]}
				body = body[:0]
			}
			continue
		}

		if strings.HasPrefix(trimmed, "```") {
			current.EndLine = i
			current.Content = strings.Join(body, "\n")
			current.Hash = hashOf(current.Content)
			blocks = append(blocks, *current)
			current = nil
			continue
		}
		body = append(body, strings.TrimPrefix(line, current.Indent))
	}

	return blocks
}

// Block returns the n-th block, counting from 1.
func (s *Scanner) Block(n int) (Block, error) {
	blocks := s.Blocks()
	if n < 1 || n > len(blocks) {
		return Block{}, fmt.Errorf("%w #%d (found %d)", ErrNoBlock, n, len(blocks))
	}
	return blocks[n-1], nil
}

// Replace returns the document with the block's content swapped for
// content. It fails when the block moved or was edited since it was
// scanned.
func (s *Scanner) Replace(block Block, content string) (string, error) {
	if block.StartLine < 0 || block.EndLine >= len(s.lines) || block.StartLine >= block.EndLine {
		return "", fmt.Errorf("invalid block boundaries: start=%d, end=%d, total lines=%d",
			block.StartLine, block.EndLine, len(s.lines))
	}

	current := make([]string, 0, block.EndLine-block.StartLine-1)
	for _, line := range s.lines[block.StartLine+1 : block.EndLine] {
		current = append(current, strings.TrimPrefix(line, block.Indent))
	}
	if hashOf(strings.Join(current, "\n")) != block.Hash {
		return "", errors.New("block content has been modified externally (hash mismatch)")
	}

	out := make([]string, 0, len(s.lines))
	out = append(out, s.lines[:block.StartLine+1]...)
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		if line == "" {
			out = append(out, line)
			continue
		}
		out = append(out, block.Indent+line)
	}
	out = append(out, s.lines[block.EndLine:]...)
	return strings.Join(out, "\n"), nil
}

// Describe returns a one-line summary of a block for listings.
func Describe(block Block, index int) string {
	preview := ""
	for _, line := range strings.Split(block.Content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			preview = trimmed
			break
		}
	}
	if len([]rune(preview)) > 50 {
		preview = string([]rune(preview)[:47]) + "..."
	}
	return fmt.Sprintf("%d. line %d: %s", index+1, block.StartLine+1, preview)
}

func isMermaid(lang string) bool {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "mermaid", "mmd":
		return true
	}
	return false
}

func hashOf(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
