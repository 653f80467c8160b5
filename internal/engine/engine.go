package engine

import (
	"context"
	"strconv"
)

// Control identifiers of the license lookup page
const (
	// UpdatePanelTarget is the update panel wrapping the results grid
	UpdatePanelTarget = "ctl00$MainContentPlaceHolder$ucLicenseLookup$UpdtPanelGridLookup"
	// GridTarget is the results grid; paging postbacks are addressed to it
	GridTarget = "ctl00$MainContentPlaceHolder$ucLicenseLookup$gvSearchResults"
	// InitialSearchArgument runs the search on the first postback
	InitialSearchArgument = "11~~2~~7~~41"
)

// PageArgument returns the grid event argument that selects page n
func PageArgument(n int) string {
	return "Page$" + strconv.Itoa(n)
}

// Client replays the lookup portal's postback protocol
type Client interface {
	// LoadCookies merges a Netscape cookie file into the session and returns
	// the number of cookies loaded
	LoadCookies(path string) (int, error)

	// Bootstrap loads the landing page and returns the initial session state
	Bootstrap(ctx context.Context) (*State, error)

	// Postback submits an asynchronous postback and returns the raw delta text
	Postback(ctx context.Context, st *State, target, argument string) (string, error)
}

// DebugSink persists raw payloads for postmortem inspection.
// Save returns the written path, or "" when nothing could be written.
type DebugSink interface {
	Save(name, content string) string
}
