package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/law-makers/elicense/internal/engine"
	"github.com/law-makers/elicense/internal/engine/results"
	"github.com/law-makers/elicense/internal/ui"
)

func init() {
	ui.Enabled = false
}

const landing = `<html><body>
<input type="hidden" id="__VIEWSTATE" value="vs" />
<input type="hidden" id="__VIEWSTATEGENERATOR" value="gen" />
</body></html>`

func singlePageDelta() string {
	html := `<table id="` + results.TableID + `">` +
		`<tr class="CavuGridHeader"><th></th><th>Name</th></tr>` +
		`<tr><td>Detail</td><td>SMITH, JOHN</td></tr>` +
		`<tr><td>Detail</td><td>DOE, JANE</td></tr>` +
		`</table>`
	return fmt.Sprintf("1|#||4|%d|updatePanel|panel|%s|", len(html), html)
}

func TestRootCommand_WritesCSV(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(landing))
			return
		}
		w.Write([]byte(singlePageDelta()))
	}))
	defer server.Close()

	dir := t.TempDir()
	t.Setenv("ELICENSE_BASE_URL", server.URL+"/lookup/licenselookup.aspx")
	t.Setenv("ELICENSE_OUTPUT_DIR", dir)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	path := filepath.Join(dir, "connecticut_dentists_landing.csv")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected CSV at %s: %v", path, err)
	}
	if string(data) != "Detail,Name\nDetail,\"SMITH, JOHN\"\nDetail,\"DOE, JANE\"\n" {
		t.Errorf("unexpected CSV: %q", string(data))
	}

	if !strings.Contains(out.String(), "SUCCESS: Saved 2 rows to "+path) {
		t.Errorf("Expected success line, got %q", out.String())
	}
}

func TestRootCommand_RejectsArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"extra"})

	if err := cmd.Execute(); err == nil {
		t.Error("Expected error for positional arguments")
	}
}

func TestReportError_ShowsHint(t *testing.T) {
	err := fmt.Errorf("page 1: %w", engine.ProtocolError("redirected to ErrorPage.aspx").
		WithDebugFile("outputs/debug_error_redirect.txt").
		WithHint("re-run with --cookies cookies.txt"))

	var buf bytes.Buffer
	reportError(&buf, err)

	got := buf.String()
	for _, want := range []string{"ERROR:", "redirected to ErrorPage.aspx", "outputs/debug_error_redirect.txt", "--cookies cookies.txt"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected output to contain %q, got %q", want, got)
		}
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three\n\nfour", 7)
	want := "one two\nthree\n\nfour"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
