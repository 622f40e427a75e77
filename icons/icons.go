// Package icons maps icon keys from a diagram document to glyphs.
package icons

import "strings"

// Icon is one of the glyphs the renderers know how to draw.
type Icon int

// Known icons. Default is used for any key that is not recognised.
const (
	Default Icon = iota
	Start
	Stop
	User
	Team
	Database
	Cloud
	Document
	Settings
	Check
	Warning
	Idea
	Chart
	Mail
	Lock
	Clock
	Search
	Code
)

// All lists every icon in declaration order.
var All = []Icon{
	Default, Start, Stop, User, Team, Database, Cloud, Document, Settings,
	Check, Warning, Idea, Chart, Mail, Lock, Clock, Search, Code,
}

// Lookup returns the icon for key. Matching ignores case and surrounding
// space, and accepts a few common aliases. Unknown keys return Default.
func Lookup(key string) Icon {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "start", "play", "rocket":
		return Start
	case "stop", "end", "flag":
		return Stop
	case "user", "person":
		return User
	case "team", "users", "people":
		return Team
	case "database", "db", "storage":
		return Database
	case "cloud", "server":
		return Cloud
	case "document", "doc", "file":
		return Document
	case "settings", "gear", "config":
		return Settings
	case "check", "done", "ok":
		return Check
	case "warning", "alert":
		return Warning
	case "idea", "lightbulb", "bulb":
		return Idea
	case "chart", "analytics", "graph":
		return Chart
	case "mail", "email":
		return Mail
	case "lock", "security":
		return Lock
	case "clock", "time":
		return Clock
	case "search", "find":
		return Search
	case "code", "dev":
		return Code
	default:
		return Default
	}
}

// Known reports whether key resolves to something other than Default.
func Known(key string) bool {
	return key == "" || Lookup(key) != Default
}

// Glyph returns the rune used to draw the icon.
func (i Icon) Glyph() rune {
	switch i {
	case Start:
		return '▶'
	case Stop:
		return '■'
	case User:
		return '☺'
	case Team:
		return '♟'
	case Database:
		return '⛁'
	case Cloud:
		return '☁'
	case Document:
		return '✎'
	case Settings:
		return '⚙'
	case Check:
		return '✓'
	case Warning:
		return '⚠'
	case Idea:
		return '✦'
	case Chart:
		return '▤'
	case Mail:
		return '✉'
	case Lock:
		return '⚿'
	case Clock:
		return '◷'
	case Search:
		return '⌕'
	case Code:
		return '⌘'
	default:
		return '●'
	}
}

// String returns the canonical key of the icon.
func (i Icon) String() string {
	switch i {
	case Start:
		return "start"
	case Stop:
		return "stop"
	case User:
		return "user"
	case Team:
		return "team"
	case Database:
		return "database"
	case Cloud:
		return "cloud"
	case Document:
		return "document"
	case Settings:
		return "settings"
	case Check:
		return "check"
	case Warning:
		return "warning"
	case Idea:
		return "idea"
	case Chart:
		return "chart"
	case Mail:
		return "mail"
	case Lock:
		return "lock"
	case Clock:
		return "clock"
	case Search:
		return "search"
	case Code:
		return "code"
	default:
		return "default"
	}
}
