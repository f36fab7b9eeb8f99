// Package match decides whether a record is relevant.
//
// Matching is case-insensitive substring containment with no tokenization:
// "GIS" matches inside "logistics".
package match

import "strings"

// Matcher tests text against a fixed keyword set
type Matcher struct {
	keywords []string // lower-cased, non-empty
}

// New creates a Matcher. Empty keywords are dropped.
func New(keywords []string) *Matcher {
	m := &Matcher{keywords: make([]string, 0, len(keywords))}
	for _, k := range keywords {
		if k == "" {
			continue
		}
		m.keywords = append(m.keywords, strings.ToLower(k))
	}
	return m
}

// Matches reports whether any keyword occurs in text. Empty text never matches.
func (m *Matcher) Matches(text string) bool {
	_, ok := m.FirstMatch(text)
	return ok
}

// FirstMatch returns the first keyword, in configured order, found in text.
func (m *Matcher) FirstMatch(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	lower := strings.ToLower(text)
	for _, k := range m.keywords {
		if strings.Contains(lower, k) {
			return k, true
		}
	}
	return "", false
}

// Len returns the number of active keywords
func (m *Matcher) Len() int {
	return len(m.keywords)
}
