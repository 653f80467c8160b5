package auth

import (
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleCookies = "# Netscape HTTP Cookie File\n" +
	"# This is a generated file! Do not edit.\n" +
	"\n" +
	".elicense.ct.gov\tTRUE\t/\tTRUE\t1893456000\tASP.NET_SessionId\tabc123\n" +
	"#HttpOnly_www.elicense.ct.gov\tFALSE\t/lookup\tFALSE\t0\t__RequestVerificationToken\ttok en\n" +
	"broken line\n"

func TestParseNetscape(t *testing.T) {
	cookies, err := ParseNetscape(strings.NewReader(sampleCookies))
	if err != nil {
		t.Fatalf("ParseNetscape failed: %v", err)
	}

	if len(cookies) != 2 {
		t.Fatalf("Expected 2 cookies, got %d: %+v", len(cookies), cookies)
	}

	session := cookies[0]
	if session.Name != "ASP.NET_SessionId" || session.Value != "abc123" {
		t.Errorf("unexpected first cookie: %+v", session)
	}
	if !session.IncludeSubdomains || !session.Secure || session.HTTPOnly {
		t.Errorf("unexpected flags on first cookie: %+v", session)
	}
	if session.ExpiresAt().Unix() != 1893456000 {
		t.Errorf("Expected expiry 1893456000, got %d", session.ExpiresAt().Unix())
	}

	token := cookies[1]
	if token.Domain != "www.elicense.ct.gov" {
		t.Errorf("Expected HttpOnly prefix stripped from domain, got %q", token.Domain)
	}
	if !token.HTTPOnly {
		t.Error("Expected HttpOnly cookie")
	}
	if token.Value != "tok en" {
		t.Errorf("Expected value with space preserved, got %q", token.Value)
	}
	if !token.ExpiresAt().IsZero() {
		t.Errorf("Expected session cookie, got expiry %v", token.ExpiresAt())
	}
}

func TestLoadNetscapeFile_Missing(t *testing.T) {
	_, err := LoadNetscapeFile(filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Error("Expected error for missing cookie file, got nil")
	}
}

func TestAddToJar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.txt")
	if err := os.WriteFile(path, []byte(sampleCookies), 0600); err != nil {
		t.Fatal(err)
	}

	cookies, err := LoadNetscapeFile(path)
	if err != nil {
		t.Fatalf("LoadNetscapeFile failed: %v", err)
	}

	jar, _ := cookiejar.New(nil)
	if n := AddToJar(jar, cookies); n != 2 {
		t.Fatalf("Expected 2 cookies added, got %d", n)
	}

	u, _ := url.Parse("https://www.elicense.ct.gov/lookup/licenselookup.aspx")
	got := map[string]string{}
	for _, c := range jar.Cookies(u) {
		got[c.Name] = c.Value
	}

	if got["ASP.NET_SessionId"] != "abc123" {
		t.Errorf("Expected domain cookie to apply to subdomain, got %v", got)
	}
	if got["__RequestVerificationToken"] != "tok en" {
		t.Errorf("Expected host cookie for /lookup path, got %v", got)
	}

	other, _ := url.Parse("https://www.elicense.ct.gov/")
	for _, c := range jar.Cookies(other) {
		if c.Name == "__RequestVerificationToken" {
			t.Error("Expected /lookup cookie not to apply to /")
		}
	}
}

func TestExpired(t *testing.T) {
	now := time.Unix(1700000000, 0)
	cookies := []Cookie{
		{Name: "session"},
		{Name: "stale", Expires: 1600000000},
		{Name: "fresh", Expires: 1800000000},
	}

	if n := Expired(cookies, now); n != 1 {
		t.Errorf("Expected 1 expired cookie, got %d", n)
	}
	if !cookies[0].ExpiresAt().IsZero() {
		t.Error("Expected session cookie to have no expiry")
	}
}
