package diagram

import (
	"fmt"
	"strconv"
	"strings"
)

// EnsureUniqueConnectorIDs ensures all connectors in a diagram have unique IDs.
// Connectors with a missing ID, or whose ID was already used by an earlier
// connector, get a fresh "c<n>" ID. Existing unique IDs are left alone.
func EnsureUniqueConnectorIDs(d *Diagram) {
	if d == nil || len(d.Connectors) == 0 {
		return
	}

	used := make(map[string]bool, len(d.Connectors))
	var needsID []int

	for i := range d.Connectors {
		id := d.Connectors[i].ID
		if id == "" || used[id] {
			needsID = append(needsID, i)
			continue
		}
		used[id] = true
	}

	next := nextSuffix(used, "c")
	for _, i := range needsID {
		id := fmt.Sprintf("c%d", next)
		for used[id] {
			next++
			id = fmt.Sprintf("c%d", next)
		}
		d.Connectors[i].ID = id
		used[id] = true
		next++
	}
}

// NextNodeID returns an unused node ID of the form "n<k>".
func NextNodeID(d *Diagram) string {
	used := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		used[n.ID] = true
	}
	return fmt.Sprintf("n%d", nextSuffix(used, "n"))
}

// NextConnectorID returns an unused connector ID of the form "c<k>".
func NextConnectorID(d *Diagram) string {
	used := make(map[string]bool, len(d.Connectors))
	for _, c := range d.Connectors {
		used[c.ID] = true
	}
	return fmt.Sprintf("c%d", nextSuffix(used, "c"))
}

// nextSuffix returns one more than the highest numeric suffix among the IDs
// that start with prefix.
func nextSuffix(used map[string]bool, prefix string) int {
	highest := 0
	for id := range used {
		rest, ok := strings.CutPrefix(id, prefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1
}
