package delta

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsErrorRedirect(t *testing.T) {
	padding := strings.Repeat("x", 64*1024)

	cases := []struct {
		name string
		text string
		want bool
	}{
		{"both markers", "0|pageRedirect||/lookup/ErrorPage.aspx?e=1|", true},
		{"markers reversed", "ErrorPage.aspx ... pageRedirect", true},
		{"markers buried in large payload", padding + "pageRedirect" + padding + "ErrorPage.aspx" + padding, true},
		{"redirect elsewhere", "0|pageRedirect||/lookup/Home.aspx|", false},
		{"error path only", "<a href=\"ErrorPage.aspx\">", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsErrorRedirect(tc.text))
		})
	}
}

func TestHiddenField(t *testing.T) {
	text := "8|hiddenField|__VIEWSTATE|abc/+=12|4|hiddenField|__VIEWSTATEGENERATOR|C2EE|0|hiddenField|__EVENTVALIDATION||"

	v, ok := HiddenField(text, "__VIEWSTATE")
	require.True(t, ok)
	assert.Equal(t, "abc/+=12", v)

	v, ok = HiddenField(text, "__VIEWSTATEGENERATOR")
	require.True(t, ok)
	assert.Equal(t, "C2EE", v)

	v, ok = HiddenField(text, "__EVENTVALIDATION")
	require.True(t, ok)
	assert.Empty(t, v)

	_, ok = HiddenField(text, "__VIEWSTATEENCRYPTED")
	assert.False(t, ok)
}

func TestHiddenField_NameIsLiteral(t *testing.T) {
	_, ok := HiddenField("|hiddenField|__VIEWSTATEX|v|", "__VIEWSTATE.")
	assert.False(t, ok)
}

func TestUpdatePanels(t *testing.T) {
	text := "1|#||4|20|updatePanel|panelA|<div>first</div>|" +
		"30|updatePanel|panelB|<table id=\"t\"></table>|" +
		"10|hiddenField|__VIEWSTATE|vs|"

	panels := UpdatePanels(text)
	require.Len(t, panels, 2)
	assert.Equal(t, Panel{ID: "panelA", HTML: "<div>first</div>"}, panels[0])
	assert.Equal(t, Panel{ID: "panelB", HTML: "<table id=\"t\"></table>"}, panels[1])
}

func TestUpdatePanels_None(t *testing.T) {
	assert.Empty(t, UpdatePanels("1|#||4|10|hiddenField|__VIEWSTATE|vs|"))
	assert.Empty(t, UpdatePanels(""))
}

func TestMaxPage(t *testing.T) {
	assert.Equal(t, 7, MaxPage(`__doPostBack('grid','Page$3') Page$1 ... Page$7 Page$2`))
	assert.Equal(t, 1, MaxPage("no pager here"))
	assert.Equal(t, 1, MaxPage(""))
	assert.Equal(t, 12, MaxPage("Page$12 Page$9"))
}
