package periodtab

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseLinks reads tzdata link lines from r and returns a map of alias name
// to canonical target, suitable for [New] and [Load]. Lines other than link
// lines, comments and blank lines are rejected, so the input is typically
// the "backward" file of a tzdb release.
//
// A link line has the form
//
//	Link  TARGET  LINK-NAME
//
// where LINK-NAME is used as an alternative name for the TARGET zone.
func ParseLinks(r io.Reader) (map[string]string, error) {
	links := make(map[string]string)
	scanner := bufio.NewScanner(r)
	var lineNumber int
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		fields := splitLine(line)
		if fields == nil {
			continue // skip comment or empty line
		}
		target, alias, err := parseLinkLine(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %q: parse link: %w", lineNumber, line, err)
		}
		links[alias] = target
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return links, nil
}

// splitLine removes comments and splits the remainder into fields.
// It returns nil for lines with no content.
func splitLine(line string) []string {
	if i := strings.Index(line, "#"); i != -1 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}
	return strings.Fields(line)
}

func parseLinkLine(fields []string) (target, alias string, err error) {
	if len(fields) != 3 {
		return "", "", fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	if fields[0] != "Link" {
		return "", "", fmt.Errorf("expected 'Link', got %q", fields[0])
	}
	return fields[1], fields[2], nil
}
