// Package labels reorganizes bulk shipping-label PDFs. Each page is
// classified into a group (product SKU or courier) from its embedded text,
// groups are consolidated in first-seen order, and the document is rebuilt
// with every group's pages contiguous, optionally cropped to the label region.
//
// Pipeline: extract -> segment -> classify -> consolidate (or fallback) -> reassemble.
// A Sorter holds no per-call state and may be shared across goroutines.
package labels

import (
	"fmt"
	"slices"
	"strings"
)

// Mode selects what pages are grouped by.
type Mode string

const (
	ModeProduct Mode = "PRODUCT"
	ModeCourier Mode = "COURIER"
)

// ParseMode parses a sort mode, case-insensitively. Empty input selects ModeProduct.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case "", ModeProduct:
		return ModeProduct, nil
	case ModeCourier:
		return ModeCourier, nil
	}
	return "", fmt.Errorf("%w: unknown sort mode %q", ErrInvalidInput, s)
}

// Result is the outcome of one sort.
type Result struct {
	Output      []byte           `json:"-"`
	OutputPath  string           `json:"output_path,omitempty"`
	Groups      []Group          `json:"groups"`
	PageMapping map[string][]int `json:"page_mapping"`
	TotalPages  int              `json:"total_pages"`
	// Fallback reports that groups were synthesized because no usable text was found.
	Fallback bool `json:"fallback"`
}

// Sorter runs the label pipeline with a fixed set of rules.
type Sorter struct {
	rules     Rules
	extractor Extractor
	observer  Observer
	products  []Matcher
	couriers  []Matcher
}

// Option configures a Sorter.
type Option func(*Sorter)

// WithExtractor replaces the default ledongthuc/pdf text extractor.
func WithExtractor(e Extractor) Option {
	return func(s *Sorter) { s.extractor = e }
}

// WithObserver receives every pipeline decision.
func WithObserver(o Observer) Option {
	return func(s *Sorter) { s.observer = o }
}

// New creates a Sorter after validating rules.
func New(rules Rules, opts ...Option) (*Sorter, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("label rules: %w", err)
	}

	couriers, err := CourierMatchers(rules.Couriers)
	if err != nil {
		return nil, err
	}

	s := &Sorter{
		rules:     rules,
		extractor: TextExtractor{},
		observer:  nopObserver{},
		products:  ProductMatchers(rules),
		couriers:  couriers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Rules returns the rules the Sorter was built with.
func (s *Sorter) Rules() Rules {
	return s.rules
}

// Classifier returns the page classifier for mode.
func (s *Sorter) Classifier(mode Mode) *Classifier {
	matchers := s.products
	if mode == ModeCourier {
		matchers = s.couriers
	}
	return &Classifier{
		mode:     mode,
		matchers: matchers,
		unknown:  s.rules.UnknownCourier,
		observer: s.observer,
	}
}

// Classify groups the pages of a PDF. It fails only when the bytes are not
// a readable PDF container; unreadable text selects the fallback grouping.
func (s *Sorter) Classify(data []byte, mode Mode) ([]Group, error) {
	total, err := PageCount(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	groups, _ := s.group(data, total, mode)
	return groups, nil
}

// Sort classifies a PDF and rebuilds it with pages in group order. With
// strip set, every output page keeps only the top label region.
func (s *Sorter) Sort(data []byte, mode Mode, strip bool) (*Result, error) {
	total, err := PageCount(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocument, err)
	}

	groups, fallback := s.group(data, total, mode)

	out, err := s.rebuild(data, total, groups, strip)
	if err != nil {
		return nil, err
	}

	return &Result{
		Output:      out,
		Groups:      groups,
		PageMapping: PageMapping(groups),
		TotalPages:  total,
		Fallback:    fallback,
	}, nil
}

// Rebuild writes a document holding the pages of groups in group order.
// Page indices outside the source document are skipped.
func (s *Sorter) Rebuild(data []byte, groups []Group, strip bool) ([]byte, error) {
	total, err := PageCount(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocument, err)
	}
	return s.rebuild(data, total, groups, strip)
}

// Export writes a standalone document holding exactly the given pages in
// ascending order, uncropped. Duplicate indices are emitted once.
func (s *Sorter) Export(data []byte, pages []int) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages selected", ErrInvalidInput)
	}

	total, err := PageCount(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocument, err)
	}

	seq, err := selectPages(pages, total)
	if err != nil {
		return nil, err
	}

	out, err := collect(data, seq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocument, err)
	}

	s.observer.Observe(Event{
		Stage:    StageExport,
		Page:     -1,
		Decision: fmt.Sprintf("exported %d pages", len(seq)),
	})
	return out, nil
}

// Crop keeps the top label region of every page without reordering.
func (s *Sorter) Crop(data []byte) ([]byte, error) {
	if _, err := PageCount(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocument, err)
	}

	out, err := cropTop(data, s.rules.LabelRatio)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocument, err)
	}
	return out, nil
}

// group runs extraction, segmentation, classification, and consolidation,
// falling back to synthesized groups when no usable text exists. The
// returned flag reports the fallback.
func (s *Sorter) group(data []byte, total int, mode Mode) ([]Group, bool) {
	pages, ok := s.pageTexts(data, total)
	if !ok {
		return s.fallback(total, mode), true
	}

	classifier := s.Classifier(mode)
	keys := make([]string, total)
	seen := make([]bool, total)

	for _, p := range pages {
		if p.Index >= total {
			s.observer.Observe(Event{Stage: StageSegment, Page: p.Index, Decision: "chunk beyond page count"})
			continue
		}
		keys[p.Index] = classifier.Key(p)
		seen[p.Index] = true
	}

	for i := range keys {
		if !seen[i] {
			keys[i] = classifier.Unmatched(i)
			s.observer.Observe(Event{Stage: StageClassify, Page: i, Decision: "no text chunk", Key: keys[i]})
		}
	}

	groups := Consolidate(keys)
	if len(groups) == 0 {
		return s.fallback(total, mode), true
	}

	for _, g := range groups {
		s.observer.Observe(Event{
			Stage:    StageConsolidate,
			Page:     g.Pages[0],
			Decision: fmt.Sprintf("%d labels", g.LabelCount),
			Key:      g.Key,
		})
	}
	return groups, false
}

func (s *Sorter) pageTexts(data []byte, total int) ([]PageText, bool) {
	ext, err := s.extractor.Extract(data)
	if err != nil {
		s.observer.Observe(Event{Stage: StageExtract, Page: -1, Decision: "extractor failed: " + err.Error()})
		return nil, false
	}

	if n := runeLen(strings.TrimSpace(ext.Text)); n < s.rules.MinTextLength {
		s.observer.Observe(Event{Stage: StageExtract, Page: -1, Decision: fmt.Sprintf("insufficient text (%d chars)", n)})
		return nil, false
	}

	hint := ext.Pages
	if hint <= 0 {
		hint = total
	}

	pages := Segment(ext.Text, hint, s.rules.MinChunkLength)
	s.observer.Observe(Event{Stage: StageSegment, Page: -1, Decision: fmt.Sprintf("%d page chunks", len(pages))})

	return pages, len(pages) > 0
}

func (s *Sorter) fallback(total int, mode Mode) []Group {
	groups := Synthesize(total, s.rules.fallbackNames(mode))
	s.observer.Observe(Event{
		Stage:    StageFallback,
		Page:     -1,
		Decision: fmt.Sprintf("synthesized %d groups for %d pages", len(groups), total),
	})
	return groups
}

func (s *Sorter) rebuild(data []byte, total int, groups []Group, strip bool) ([]byte, error) {
	var seq []int
	for _, g := range groups {
		for _, p := range g.Pages {
			if p < 0 || p >= total {
				s.observer.Observe(Event{Stage: StageReassemble, Page: p, Decision: "skipped out of range", Key: g.Key})
				continue
			}
			seq = append(seq, p)
		}
	}

	if len(seq) == 0 {
		return nil, fmt.Errorf("%w: no pages to assemble", ErrInvalidInput)
	}

	out, err := collect(data, seq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocument, err)
	}

	if strip {
		if out, err = cropTop(out, s.rules.LabelRatio); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDocument, err)
		}
	}

	s.observer.Observe(Event{
		Stage:    StageReassemble,
		Page:     -1,
		Decision: fmt.Sprintf("assembled %d pages (strip=%t)", len(seq), strip),
	})
	return out, nil
}

func selectPages(pages []int, total int) ([]int, error) {
	seq := slices.Clone(pages)
	slices.Sort(seq)
	seq = slices.Compact(seq)

	for _, p := range seq {
		if p < 0 || p >= total {
			return nil, fmt.Errorf("%w: page %d out of range [0,%d)", ErrInvalidInput, p, total)
		}
	}
	return seq, nil
}
