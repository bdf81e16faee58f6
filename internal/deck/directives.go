package deck

import (
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Directive keys recognized in <!-- deck --> and <!-- slide --> blocks.
// Unknown keys are reported in Directives.Ignored, never treated as errors.
const (
	KeyTheme            = "theme"
	KeyShowClock        = "show_clock"
	KeyShowElapsed      = "show_elapsed"
	KeyCountdownMinutes = "countdown_minutes"
	KeyImageMode        = "image_mode"
	KeyIncrementalLists = "incremental_lists"
)

// Directives is one layer of presentation settings. Nil fields mean "not set
// at this layer"; Settings.Apply implements the slide > document > global
// precedence.
type Directives struct {
	Theme            *string
	ShowClock        *bool
	ShowElapsed      *bool
	CountdownMinutes *int
	ImageMode        *string
	IncrementalLists *bool

	// Ignored lists unrecognized keys found in the block, for callers that
	// want to log them.
	Ignored []string
}

// IsZero reports whether no directive was set at this layer.
func (d Directives) IsZero() bool {
	return d.Theme == nil && d.ShowClock == nil && d.ShowElapsed == nil &&
		d.CountdownMinutes == nil && d.ImageMode == nil && d.IncrementalLists == nil
}

// Settings is a fully resolved set of presentation options: the global
// configuration defaults with document and slide directive layers applied.
type Settings struct {
	Theme            string
	ShowClock        bool
	ShowElapsed      bool
	CountdownMinutes int
	ImageMode        string
	IncrementalLists bool
}

// Apply overlays the given directive layers, later layers winning.
func (s Settings) Apply(layers ...Directives) Settings {
	for _, d := range layers {
		if d.Theme != nil {
			s.Theme = *d.Theme
		}
		if d.ShowClock != nil {
			s.ShowClock = *d.ShowClock
		}
		if d.ShowElapsed != nil {
			s.ShowElapsed = *d.ShowElapsed
		}
		if d.CountdownMinutes != nil {
			s.CountdownMinutes = *d.CountdownMinutes
		}
		if d.ImageMode != nil {
			s.ImageMode = *d.ImageMode
		}
		if d.IncrementalLists != nil {
			s.IncrementalLists = *d.IncrementalLists
		}
	}
	return s
}

// SettingsFor resolves the effective settings for one slide:
// slide directives over document directives over the global defaults.
func (d *Document) SettingsFor(s *Slide, global Settings) Settings {
	out := global.Apply(d.Directives, s.Directives)
	if s.Incremental != nil {
		out.IncrementalLists = *s.Incremental
	}
	return out
}

const frontmatterFence = "---"

// splitFrontmatter separates a leading YAML frontmatter block (between ---
// fences at the very start of the text) from the body. Absent or invalid
// frontmatter yields a nil map and the whole input as body.
func splitFrontmatter(src string) (map[string]any, string) {
	trimmed := strings.TrimPrefix(src, "\ufeff")
	if !strings.HasPrefix(trimmed, frontmatterFence+"\n") && trimmed != frontmatterFence {
		return nil, src
	}

	rest := trimmed[len(frontmatterFence):]
	idx := strings.Index(rest, "\n"+frontmatterFence)
	if idx < 0 {
		return nil, src
	}

	yamlBlock := rest[:idx]
	after := rest[idx+1+len(frontmatterFence):]
	// Drop the remainder of the closing fence line.
	if nl := strings.IndexByte(after, '\n'); nl >= 0 {
		after = after[nl+1:]
	} else {
		after = ""
	}

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(yamlBlock), &fm); err != nil {
		return nil, src
	}
	return fm, after
}

var (
	deckBlockRe  = regexp.MustCompile(`(?s)<!--\s*deck\s*\n(.*?)-->`)
	slideBlockRe = regexp.MustCompile(`(?s)<!--\s*slide\s*\n(.*?)-->`)
	// Per-slide shorthand for list reveal behavior.
	incrementalRe = regexp.MustCompile(`(?i)<!--\s*(no-)?incremental\s*-->`)
)

// extractDeckDirectives finds the document-level <!-- deck --> block and
// removes it from the body. Only the first block is recognized; any later
// one stays in the body as literal content.
func extractDeckDirectives(body string) (Directives, string) {
	return extractDirectiveBlock(deckBlockRe, body)
}

// extractSlideDirectives finds a per-slide <!-- slide --> block inside one
// slide segment and removes it.
func extractSlideDirectives(segment string) (Directives, string) {
	return extractDirectiveBlock(slideBlockRe, segment)
}

func extractDirectiveBlock(re *regexp.Regexp, body string) (Directives, string) {
	loc := re.FindStringSubmatchIndex(body)
	if loc == nil {
		return Directives{}, body
	}
	block := body[loc[2]:loc[3]]
	// Blank the block out instead of deleting it so line numbers reported by
	// the block parser keep matching the source document.
	rest := body[:loc[0]] + newlinesOnly(body[loc[0]:loc[1]]) + body[loc[1]:]
	return parseDirectiveLines(block), rest
}

// newlinesOnly reduces s to just its newline characters.
func newlinesOnly(s string) string {
	return strings.Repeat("\n", strings.Count(s, "\n"))
}

// extractIncremental handles the <!-- incremental --> / <!-- no-incremental -->
// per-slide shorthands. Returns nil when neither is present.
func extractIncremental(segment string) (*bool, string) {
	loc := incrementalRe.FindStringSubmatchIndex(segment)
	if loc == nil {
		return nil, segment
	}
	on := loc[2] < 0 // no "no-" prefix captured
	rest := segment[:loc[0]] + segment[loc[1]:]
	return &on, rest
}

// parseDirectiveLines parses "key: value" lines. Keys are case-insensitive
// and dashes normalize to underscores; values that fail to parse for a
// recognized key are ignored rather than erroring.
func parseDirectiveLines(block string) Directives {
	var d Directives
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = normalizeKey(key)
		value = strings.TrimSpace(value)

		switch key {
		case KeyTheme:
			if value != "" {
				d.Theme = &value
			}
		case KeyShowClock:
			if b, ok := parseBool(value); ok {
				d.ShowClock = &b
			}
		case KeyShowElapsed:
			if b, ok := parseBool(value); ok {
				d.ShowElapsed = &b
			}
		case KeyCountdownMinutes:
			if n, err := strconv.Atoi(value); err == nil && n >= 0 {
				d.CountdownMinutes = &n
			}
		case KeyImageMode:
			if value != "" {
				mode := strings.ToLower(value)
				d.ImageMode = &mode
			}
		case KeyIncrementalLists, "incremental":
			if b, ok := parseBool(value); ok {
				d.IncrementalLists = &b
			}
		default:
			d.Ignored = append(d.Ignored, key)
		}
	}
	return d
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.ReplaceAll(key, "-", "_")
}

func parseBool(value string) (bool, bool) {
	switch strings.ToLower(value) {
	case "true", "yes", "1", "on":
		return true, true
	case "false", "no", "0", "off":
		return false, true
	}
	return false, false
}

var headingRe = regexp.MustCompile(`(?m)^#{1,6}\s+(.+?)\s*$`)

// firstHeading returns the text of the first Markdown heading in content.
func firstHeading(content string) string {
	m := headingRe.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
