// Package parser extracts rankings, athlete profiles and schedules from tennis HTML pages
package parser

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrUnexpectedStructure is returned when an element the layout guarantees is missing
var ErrUnexpectedStructure = errors.New("unexpected page structure")

// cleanText collapses runs of whitespace (including non-breaking spaces) into single spaces
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// text returns the cleaned text of a selection
func text(s *goquery.Selection) string {
	return cleanText(s.Text())
}

// cellTexts returns the cleaned text of every td in a row
func cellTexts(row *goquery.Selection) []string {
	cells := row.Find("td")
	texts := make([]string, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		texts = append(texts, text(cell))
	})
	return texts
}

// normalizeName standardizes athlete names for comparison
func normalizeName(name string) string {
	return strings.ToLower(cleanText(name))
}

// firstWord returns s up to its first space, or all of s
func firstWord(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}
