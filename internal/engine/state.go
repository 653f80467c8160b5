package engine

import (
	"github.com/law-makers/elicense/internal/engine/delta"
)

// Hidden form fields carrying the server's opaque page state
const (
	FieldViewState          = "__VIEWSTATE"
	FieldViewStateGenerator = "__VIEWSTATEGENERATOR"
	FieldEventValidation    = "__EVENTVALIDATION"
	FieldViewStateEncrypted = "__VIEWSTATEENCRYPTED"
)

// StateFields lists every token echoed back on a postback, in form order
var StateFields = []string{
	FieldViewState,
	FieldViewStateGenerator,
	FieldEventValidation,
	FieldViewStateEncrypted,
}

// MandatoryFields must be present on the landing page
var MandatoryFields = []string{FieldViewState, FieldViewStateGenerator}

// refreshedFields are the tokens a postback response may resend
var refreshedFields = []string{FieldViewState, FieldEventValidation, FieldViewStateEncrypted}

// State is the session's opaque token bag. It is created once from the landing
// page and then updated in place after every postback; tokens are never cleared.
type State struct {
	ViewState          string
	ViewStateGenerator string
	EventValidation    string
	ViewStateEncrypted string
}

// NewState builds a State from hidden field values keyed by field name
func NewState(fields map[string]string) *State {
	st := &State{}
	for name, v := range fields {
		st.Set(name, v)
	}
	return st
}

// Get returns a token by its form field name
func (s *State) Get(name string) string {
	switch name {
	case FieldViewState:
		return s.ViewState
	case FieldViewStateGenerator:
		return s.ViewStateGenerator
	case FieldEventValidation:
		return s.EventValidation
	case FieldViewStateEncrypted:
		return s.ViewStateEncrypted
	}
	return ""
}

// Set overwrites a token by its form field name. Unknown names are ignored.
func (s *State) Set(name, value string) {
	switch name {
	case FieldViewState:
		s.ViewState = value
	case FieldViewStateGenerator:
		s.ViewStateGenerator = value
	case FieldEventValidation:
		s.EventValidation = value
	case FieldViewStateEncrypted:
		s.ViewStateEncrypted = value
	}
}

// Refresh copies updated tokens out of a postback delta and returns the names
// that changed. Tokens missing from the delta, or sent empty, keep their value.
func (s *State) Refresh(text string) []string {
	var updated []string
	for _, name := range refreshedFields {
		v, ok := delta.HiddenField(text, name)
		if !ok || v == "" {
			continue
		}
		if v != s.Get(name) {
			updated = append(updated, name)
		}
		s.Set(name, v)
	}
	return updated
}

// Form returns the tokens as postback form fields
func (s *State) Form() map[string]string {
	form := make(map[string]string, len(StateFields))
	for _, name := range StateFields {
		form[name] = s.Get(name)
	}
	return form
}
