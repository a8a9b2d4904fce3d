package todotxt

import (
	"regexp"
	"strconv"
	"strings"
)

// Placeholders use private-use runes so they never collide with tag,
// attribute or date syntax.
const (
	placeholderOpen  = '\uE000'
	placeholderClose = '\uE001'
)

var (
	markdownLinkRegex = regexp.MustCompile(`\[[^\[\]\n]*\]\([^()\s]*\)`)
	autoLinkRegex     = regexp.MustCompile(`<[A-Za-z][A-Za-z0-9+.\-]*:[^<>\s]*>`)
	placeholderRegex  = regexp.MustCompile(`\x{E000}([0-9]+)\x{E001}`)
)

// encodedLine is a line with its links swapped out for placeholder tokens.
type encodedLine struct {
	text  string
	links []string
}

// encodeLinks replaces markdown links and autolinks with placeholders.
func encodeLinks(line string) encodedLine {
	if strings.ContainsRune(line, placeholderOpen) {
		return encodedLine{text: line}
	}
	var links []string
	replace := func(link string) string {
		links = append(links, link)
		return string(placeholderOpen) + strconv.Itoa(len(links)-1) + string(placeholderClose)
	}
	text := markdownLinkRegex.ReplaceAllStringFunc(line, replace)
	text = autoLinkRegex.ReplaceAllStringFunc(text, replace)
	return encodedLine{text: text, links: links}
}

// decode restores the original links inside s.
func (e encodedLine) decode(s string) string {
	if len(e.links) == 0 {
		return s
	}
	return placeholderRegex.ReplaceAllStringFunc(s, func(ph string) string {
		m := placeholderRegex.FindStringSubmatch(ph)
		i, err := strconv.Atoi(m[1])
		if err != nil || i >= len(e.links) {
			return ph
		}
		return e.links[i]
	})
}
