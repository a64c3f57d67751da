package labels

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher tries to extract a group key from one page's text.
type Matcher interface {
	Name() string
	Match(text string) (string, bool)
}

// Product patterns in descending confidence: explicit code labels, explicit
// name labels, joined tokens, uppercase codes, generic alphanumeric tokens.
var productPatterns = []struct {
	name string
	expr string
}{
	{"labeled-code", `(?i)(?:SKU|Product\s*Code|Item\s*Code|Model)\s*:?\s*([A-Za-z0-9_-]{3,25})`},
	{"labeled-name", `(?i)(?:Product|Item)\s*Name\s*:?\s*["']?([A-Za-z0-9\s_-]{3,30})["']?`},
	{"joined-token", `\b([A-Za-z]{2,}[-_][A-Za-z0-9]+(?:[-_][A-Za-z0-9]+)*)\b`},
	{"upper-code", `\b([A-Z]{2,}\d{2,}[A-Z]?)\b`},
	{"mixed-token", `\b([A-Za-z]{3,}\d+[A-Za-z]*)\b`},
}

var (
	labelPrefix  = regexp.MustCompile(`(?i)^(?:SKU|Product|Item|Code|Name|Model)(?:\s*:\s*|\s+)`)
	trailingJunk = regexp.MustCompile(`[.,;:\s"'\[\]]+$`)
	innerSpace   = regexp.MustCompile(`\s+`)
	hasLetter    = regexp.MustCompile(`[A-Za-z]`)
)

// keyFilter normalizes raw product candidates and rejects implausible ones.
type keyFilter struct {
	minLen int
	maxLen int
	stop   map[string]struct{}
}

func newKeyFilter(r Rules) keyFilter {
	stop := make(map[string]struct{}, len(r.Stoplist)+1)
	for _, w := range r.Stoplist {
		stop[strings.ToLower(w)] = struct{}{}
	}
	if r.Marketplace != "" {
		stop[strings.ToLower(r.Marketplace)] = struct{}{}
	}
	return keyFilter{minLen: r.MinKeyLength, maxLen: r.MaxKeyLength, stop: stop}
}

// normalize strips a leading field label and trailing punctuation, joins
// internal whitespace with hyphens, and accepts the result when its length
// is in bounds, it holds a letter, and it is not a stop word.
func (f keyFilter) normalize(raw string) (string, bool) {
	c := strings.TrimSpace(raw)
	c = labelPrefix.ReplaceAllString(c, "")
	c = trailingJunk.ReplaceAllString(c, "")
	c = innerSpace.ReplaceAllString(c, "-")

	n := runeLen(c)
	if n < f.minLen || n > f.maxLen {
		return "", false
	}
	if !hasLetter.MatchString(c) {
		return "", false
	}
	if _, stopped := f.stop[strings.ToLower(c)]; stopped {
		return "", false
	}
	return c, true
}

type productMatcher struct {
	name   string
	re     *regexp.Regexp
	filter keyFilter
}

func (m *productMatcher) Name() string { return m.name }

// Match tests every match of the pattern in document order and returns the
// first candidate the filter accepts.
func (m *productMatcher) Match(text string) (string, bool) {
	for _, sub := range m.re.FindAllStringSubmatch(text, -1) {
		raw := sub[0]
		if len(sub) > 1 && sub[1] != "" {
			raw = sub[1]
		}
		if key, ok := m.filter.normalize(raw); ok {
			return key, true
		}
	}
	return "", false
}

type courierMatcher struct {
	name string
	re   *regexp.Regexp
}

func (m *courierMatcher) Name() string { return m.name }

func (m *courierMatcher) Match(text string) (string, bool) {
	if m.re.MatchString(text) {
		return m.name, true
	}
	return "", false
}

// ProductMatchers returns the product cascade in priority order.
func ProductMatchers(r Rules) []Matcher {
	filter := newKeyFilter(r)
	matchers := make([]Matcher, 0, len(productPatterns))
	for _, p := range productPatterns {
		matchers = append(matchers, &productMatcher{
			name:   p.name,
			re:     regexp.MustCompile(p.expr),
			filter: filter,
		})
	}
	return matchers
}

// CourierMatchers compiles couriers into case-insensitive matchers, preserving order.
func CourierMatchers(couriers []Courier) ([]Matcher, error) {
	matchers := make([]Matcher, 0, len(couriers))
	for _, c := range couriers {
		re, err := regexp.Compile(`(?i)` + c.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile courier %s: %w", c.Name, err)
		}
		matchers = append(matchers, &courierMatcher{name: c.Name, re: re})
	}
	return matchers, nil
}

// Classifier assigns a group key to each page chunk.
type Classifier struct {
	mode     Mode
	matchers []Matcher
	unknown  string
	observer Observer
}

// Key returns the first key produced by the matcher cascade, or the mode's
// unmatched key when no matcher accepts the text.
func (c *Classifier) Key(p PageText) string {
	for _, m := range c.matchers {
		if key, ok := m.Match(p.Text); ok {
			c.observer.Observe(Event{
				Stage:    StageClassify,
				Page:     p.Index,
				Decision: "matched " + m.Name(),
				Key:      key,
			})
			return key
		}
	}

	key := c.Unmatched(p.Index)
	c.observer.Observe(Event{
		Stage:    StageClassify,
		Page:     p.Index,
		Decision: "unmatched",
		Key:      key,
	})
	return key
}

// Unmatched returns the key for a page no matcher recognized:
// Product-{page+1} in product mode, the unknown courier key in courier mode.
func (c *Classifier) Unmatched(page int) string {
	if c.mode == ModeCourier {
		return c.unknown
	}
	return fmt.Sprintf("Product-%d", page+1)
}
