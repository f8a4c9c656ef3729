package parser

import (
	"strconv"
	"strings"
)

const wordSeparators = " \t\n\r-_/',"

// normaliseInput lowercases raw, keeps letters, digits and dots, turns
// separators into single spaces and drops everything else.
func normaliseInput(raw string) string {
	kept := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.':
			return r
		case strings.ContainsRune(wordSeparators, r):
			return ' '
		default:
			return -1
		}
	}, strings.ToLower(raw))
	return strings.Join(strings.Fields(kept), " ")
}

// Normalise exposes input normalisation so callers can compare names the
// same way the parser does.
func Normalise(raw string) string {
	return normaliseInput(raw)
}

func tokenise(normalised string) []string {
	if fields := strings.Fields(normalised); len(fields) > 0 {
		return fields
	}
	return nil
}

func parseQuantityToken(token string) *Quantity {
	token = strings.TrimSpace(strings.ToLower(token))
	if token == "" {
		return nil
	}
	if token == "all" {
		return &Quantity{Raw: token, N: -1, Unit: "all"}
	}
	if n, err := strconv.Atoi(token); err == nil && n >= 0 {
		return &Quantity{Raw: token, N: n, Unit: "count"}
	}
	for _, suffix := range []string{"days", "day", "d"} {
		if strings.HasSuffix(token, suffix) {
			if v, err := strconv.Atoi(strings.TrimSuffix(token, suffix)); err == nil && v >= 0 {
				return &Quantity{Raw: token, N: v, Unit: "days"}
			}
		}
	}
	for _, suffix := range []string{"lbs", "lb"} {
		if strings.HasSuffix(token, suffix) {
			if v, err := strconv.Atoi(strings.TrimSuffix(token, suffix)); err == nil && v >= 0 {
				return &Quantity{Raw: token, N: v, Unit: "lb"}
			}
		}
	}
	return nil
}

func isPronoun(token string) bool {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "it", "that", "them", "this", "those", "him", "her":
		return true
	default:
		return false
	}
}

func isFiller(token string) bool {
	switch token {
	case "of", "some", "more", "the", "a", "an", "for", "to", "units", "pounds", "pairs", "day", "days", "lb", "lbs":
		return true
	default:
		return false
	}
}
