// internal/auth/cookies.go
package auth

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// httpOnlyPrefix marks HttpOnly cookies in curl/browser exports
const httpOnlyPrefix = "#HttpOnly_"

// Cookie represents a browser cookie exported from a verified session
type Cookie struct {
	Name              string  `json:"name"`
	Value             string  `json:"value"`
	Domain            string  `json:"domain"`
	IncludeSubdomains bool    `json:"includeSubdomains"`
	Path              string  `json:"path"`
	Expires           float64 `json:"expires"`
	HTTPOnly          bool    `json:"httpOnly"`
	Secure            bool    `json:"secure"`
}

// ExpiresAt returns the cookie expiry, or the zero time for session cookies
func (c Cookie) ExpiresAt() time.Time {
	if c.Expires <= 0 {
		return time.Time{}
	}
	return time.Unix(int64(c.Expires), 0)
}

// Expired counts cookies whose export-time expiry is before now. Session
// cookies never count.
func Expired(cookies []Cookie, now time.Time) int {
	n := 0
	for _, c := range cookies {
		if exp := c.ExpiresAt(); !exp.IsZero() && exp.Before(now) {
			n++
		}
	}
	return n
}

// LoadNetscapeFile reads a Netscape/curl format cookie file
func LoadNetscapeFile(path string) ([]Cookie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cookie file: %w", err)
	}
	defer f.Close()

	cookies, err := ParseNetscape(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookie file %s: %w", path, err)
	}
	return cookies, nil
}

// ParseNetscape parses cookies in Netscape format:
// domain, include-subdomains, path, secure, expires, name, value (tab separated).
// Comment lines, blank lines and lines with too few fields are skipped.
func ParseNetscape(r io.Reader) ([]Cookie, error) {
	var cookies []Cookie
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		httpOnly := false
		if strings.HasPrefix(line, httpOnlyPrefix) {
			line = strings.TrimPrefix(line, httpOnlyPrefix)
			httpOnly = true
		} else if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			fields = strings.Fields(line)
		}
		if len(fields) < 6 {
			continue
		}

		cookie := Cookie{
			Domain:            strings.TrimSpace(fields[0]),
			IncludeSubdomains: strings.EqualFold(fields[1], "TRUE"),
			Path:              fields[2],
			Secure:            strings.EqualFold(fields[3], "TRUE"),
			Name:              fields[5],
			HTTPOnly:          httpOnly,
		}
		if len(fields) > 6 {
			cookie.Value = fields[6]
		}
		if exp, err := strconv.ParseInt(fields[4], 10, 64); err == nil && exp > 0 {
			cookie.Expires = float64(exp)
		}
		if cookie.Path == "" {
			cookie.Path = "/"
		}

		cookies = append(cookies, cookie)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return cookies, nil
}

// AddToJar stores cookies in jar, each under the host it was exported for.
// Expiry is not carried over: a cookie the user supplied is sent even if the
// export marks it stale.
func AddToJar(jar http.CookieJar, cookies []Cookie) int {
	added := 0
	for _, c := range cookies {
		host := strings.TrimPrefix(c.Domain, ".")
		if host == "" || c.Name == "" {
			continue
		}

		scheme := "http"
		if c.Secure {
			scheme = "https"
		}
		u := &url.URL{Scheme: scheme, Host: host, Path: c.Path}

		hc := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		}
		if c.IncludeSubdomains || strings.HasPrefix(c.Domain, ".") {
			hc.Domain = host
		}

		jar.SetCookies(u, []*http.Cookie{hc})
		added++
	}
	return added
}
