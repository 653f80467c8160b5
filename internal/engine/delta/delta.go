// Package delta reads the pipe-delimited partial-update payloads returned by
// asynchronous postbacks.
//
// A payload is a sequence of "length|type|id|content|" blocks. Only three block
// types matter here: updatePanel (rendered HTML for a region), hiddenField
// (refreshed state tokens) and pageRedirect.
package delta

import (
	"regexp"
	"strconv"
	"strings"
)

// Markers that together identify a redirect to the portal's error page
const (
	RedirectMarker = "pageRedirect"
	ErrorPagePath  = "ErrorPage.aspx"
)

var (
	updatePanelPattern = regexp.MustCompile(`\|updatePanel\|([^|]+)\|([\s\S]*?)\|`)
	pagePattern        = regexp.MustCompile(`Page\$(\d+)`)
)

// Panel is one updatePanel block
type Panel struct {
	ID   string
	HTML string
}

// IsErrorRedirect reports whether text redirects the client to the error page
func IsErrorRedirect(text string) bool {
	return strings.Contains(text, RedirectMarker) && strings.Contains(text, ErrorPagePath)
}

// HiddenField returns the value of the first |hiddenField|name|value| block
func HiddenField(text, name string) (string, bool) {
	re := regexp.MustCompile(`\|hiddenField\|` + regexp.QuoteMeta(name) + `\|([\s\S]*?)\|`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// UpdatePanels returns every updatePanel block in payload order
func UpdatePanels(text string) []Panel {
	matches := updatePanelPattern.FindAllStringSubmatch(text, -1)
	panels := make([]Panel, 0, len(matches))
	for _, m := range matches {
		panels = append(panels, Panel{ID: m[1], HTML: m[2]})
	}
	return panels
}

// MaxPage returns the highest page referenced by a Page$N pager link, or 1
func MaxPage(text string) int {
	highest := 1
	for _, m := range pagePattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest
}
