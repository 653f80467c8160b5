// Package results turns the results grid embedded in a postback delta into records.
package results

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/law-makers/elicense/internal/engine"
	"github.com/law-makers/elicense/internal/engine/delta"
	"github.com/law-makers/elicense/pkg/models"
)

const (
	// TableID is the rendered id of the search results grid
	TableID = "ctl00_MainContentPlaceHolder_ucLicenseLookup_gvSearchResults"
	// HeaderRowClass marks the grid's header row
	HeaderRowClass = "CavuGridHeader"
	// DetailColumn names the unlabeled first column holding the detail link
	DetailColumn = "Detail"
)

// Debug artifact names
const (
	DebugNoUpdatePanels = "debug_no_update_panels.txt"
	DebugNoResultsTable = "debug_no_results_table.txt"
	DebugEmptyDelta     = "debug_empty_delta.txt"
	DebugEmptyTable     = "debug_empty_table.html"
)

const nbsp = "\u00a0"

// FallbackHeader is used when the grid has no usable header row
var FallbackHeader = []string{
	"Detail",
	"Name",
	"Credential",
	"Credential Description",
	"Status",
	"Status Reason",
	"City",
	"DBA",
}

// Parse extracts the results grid from a postback delta. The first update panel
// containing the grid wins. Rows whose cell count differs from the header are
// dropped. An empty grid is not an error; both the delta and the table markup are
// saved to sink for inspection.
func Parse(text string, sink engine.DebugSink) (*models.RecordSet, error) {
	panels := delta.UpdatePanels(text)
	if len(panels) == 0 {
		path := sink.Save(DebugNoUpdatePanels, text)
		return nil, engine.ParseError("no updatePanel blocks found").WithDebugFile(path)
	}

	for _, panel := range panels {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(panel.HTML))
		if err != nil {
			log.Debug().Err(err).Str("panel", panel.ID).Msg("Skipping unparsable update panel")
			continue
		}

		table := doc.Find("table#" + TableID).First()
		if table.Length() == 0 {
			continue
		}

		rs := parseTable(table)

		log.Debug().
			Str("panel", panel.ID).
			Int("columns", len(rs.Header)).
			Int("rows", rs.Len()).
			Msg("Parsed results table")

		if rs.Empty() {
			markup, _ := goquery.OuterHtml(table)
			deltaPath := sink.Save(DebugEmptyDelta, text)
			tablePath := sink.Save(DebugEmptyTable, markup)
			log.Warn().
				Str("delta_file", deltaPath).
				Str("table_file", tablePath).
				Msg("Results table has no rows")
		}
		return rs, nil
	}

	path := sink.Save(DebugNoResultsTable, text)
	return nil, engine.ParseError("no results table found in any updatePanel").WithDebugFile(path)
}

func parseTable(table *goquery.Selection) *models.RecordSet {
	rs := models.NewRecordSet(headerOf(table))

	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() == 0 {
			return
		}
		row := make([]string, 0, tds.Length())
		for _, n := range tds.Nodes {
			row = append(row, cellText(n))
		}
		rs.Append(row)
	})

	return rs
}

// headerOf returns the grid's column names, or FallbackHeader when no header
// row with text is present
func headerOf(table *goquery.Selection) []string {
	ths := table.Find("tr." + HeaderRowClass).First().Find("th")
	if ths.Length() == 0 {
		return FallbackHeader
	}

	header := make([]string, 0, ths.Length())
	hasText := false
	for _, n := range ths.Nodes {
		name := headerText(n)
		if name != "" {
			hasText = true
		}
		header = append(header, name)
	}
	if !hasText {
		return FallbackHeader
	}
	if header[0] == "" {
		header[0] = DetailColumn
	}
	return header
}

// cellText joins the trimmed text fragments of n with single spaces
func cellText(n *html.Node) string {
	joined := strings.Join(textParts(n), " ")
	joined = strings.ReplaceAll(joined, nbsp, "")
	return strings.Join(strings.Fields(joined), " ")
}

// headerText concatenates the trimmed text fragments of n
func headerText(n *html.Node) string {
	return strings.ReplaceAll(strings.Join(textParts(n), ""), nbsp, "")
}

func textParts(n *html.Node) []string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return parts
}
