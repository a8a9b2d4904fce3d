package todotxt

import (
	"regexp"

	"github.com/harrisonrobin/todotxt/pkg/model"
)

var (
	tokenRegex      = regexp.MustCompile(`\S+`)
	completionRegex = regexp.MustCompile(`^x\s`)
	priorityRegex   = regexp.MustCompile(`^(?:\s*x\s)*\s*\(([A-Z]+)\) `)
	dateRegex       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	projectRegex    = regexp.MustCompile(`^\+([\pL\pN_]+)$`)
	contextRegex    = regexp.MustCompile(`^@([\pL\pN_]+)$`)
	dueRegex        = regexp.MustCompile(`^due:(\d{4}-\d{2}-\d{2})$`)
	attributeRegex  = regexp.MustCompile(`^([\pL\pN_]+):([\pL\pN_,;.\-]+)$`)
)

type kind int

const (
	plainToken kind = iota
	dateToken
	projectToken
	contextToken
	dueToken
	attributeToken
)

// token is a whitespace-delimited word of a line with its byte offsets.
type token struct {
	start, end int
	text       string
}

func tokenize(line string, offset int) []token {
	locs := tokenRegex.FindAllStringIndex(line[offset:], -1)
	tokens := make([]token, 0, len(locs))
	for _, loc := range locs {
		start, end := loc[0]+offset, loc[1]+offset
		tokens = append(tokens, token{start: start, end: end, text: line[start:end]})
	}
	return tokens
}

// classify reports what kind of field a token is. Dates that are not real
// calendar days and due: tokens without a valid date are plain text.
func classify(text string) kind {
	switch {
	case dateRegex.MatchString(text):
		if _, err := model.ParseDate(text); err == nil {
			return dateToken
		}
		return plainToken
	case projectRegex.MatchString(text):
		return projectToken
	case contextRegex.MatchString(text):
		return contextToken
	}
	if m := dueRegex.FindStringSubmatch(text); m != nil {
		if _, err := model.ParseDate(m[1]); err == nil {
			return dueToken
		}
		return plainToken
	}
	if m := attributeRegex.FindStringSubmatch(text); m != nil && m[1] != dueKey {
		return attributeToken
	}
	return plainToken
}

// prefixEnd returns the offset just past the completion marker and priority.
func prefixEnd(line string) int {
	if loc := priorityRegex.FindStringIndex(line); loc != nil {
		return loc[1]
	}
	if loc := completionRegex.FindStringIndex(line); loc != nil {
		return loc[1]
	}
	return 0
}
