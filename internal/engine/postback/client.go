// Package postback talks to the license lookup page: one plain GET to pick up the
// initial page state, then asynchronous form postbacks that return deltas.
package postback

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"

	"github.com/law-makers/elicense/internal/auth"
	"github.com/law-makers/elicense/internal/engine"
	headersutil "github.com/law-makers/elicense/internal/utils/headers"
	urlutil "github.com/law-makers/elicense/internal/utils/url"
)

// DebugInitialGet is written when the landing page lacks mandatory state fields
const DebugInitialGet = "debug_initial_get.html"

const (
	scriptManagerField = "ctl00$ScriptManager1"
	filterPrefix       = "ctl00$MainContentPlaceHolder$ucLicenseLookup$ctl03$"
)

// Search filters sent with every postback: Dentist credentials, state CT, status Active
var searchFilters = map[string]string{
	filterPrefix + "lbMultipleCredentialTypePrefix": "137",
	filterPrefix + "ddStates":                       "CT",
	filterPrefix + "ddStatus":                       "368",
}

// ajaxHeaders mark a request as an ASP.NET AJAX partial update
var ajaxHeaders = []string{
	"Accept: */*",
	"Accept-Language: en-US,en;q=0.9",
	"Cache-Control: no-cache",
	"Pragma: no-cache",
	"Content-Type: application/x-www-form-urlencoded; charset=UTF-8",
	"X-MicrosoftAjax: Delta=true",
	"X-Requested-With: XMLHttpRequest",
	"X-Security-Request: required",
}

// maxRedirects bounds redirects followed by the landing page GET
const maxRedirects = 10

// Options configures a Client
type Options struct {
	BaseURL   string
	UserAgent string
}

// Client implements engine.Client on top of a resty client
type Client struct {
	http      *resty.Client
	jar       http.CookieJar
	baseURL   string
	userAgent string
	headers   map[string]string
	sink      engine.DebugSink
}

// New creates a Client. It installs its own cookie jar and redirect policy on rc:
// the landing page GET follows redirects, postbacks never do.
func New(rc *resty.Client, opts Options, sink engine.DebugSink) (*Client, error) {
	if err := urlutil.ValidateURL(opts.BaseURL); err != nil {
		return nil, err
	}
	origin, err := urlutil.Origin(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	rc.SetCookieJar(jar)
	rc.SetRedirectPolicy(resty.RedirectPolicyFunc(noPostbackRedirects))

	headers := headersutil.ParseHeaders(ajaxHeaders)
	headers["Origin"] = origin
	headers["Referer"] = opts.BaseURL
	headers["User-Agent"] = opts.UserAgent

	return &Client{
		http:      rc,
		jar:       jar,
		baseURL:   opts.BaseURL,
		userAgent: opts.UserAgent,
		headers:   headers,
		sink:      sink,
	}, nil
}

// noPostbackRedirects hands redirect responses to POSTs back to the caller
// unfollowed. The ASP.NET error page is signalled in the delta body instead.
func noPostbackRedirects(req *http.Request, via []*http.Request) error {
	if len(via) > 0 && via[0].Method == http.MethodPost {
		return http.ErrUseLastResponse
	}
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	return nil
}

// LoadCookies merges a Netscape cookie file into the session's jar
func (c *Client) LoadCookies(path string) (int, error) {
	cookies, err := auth.LoadNetscapeFile(path)
	if err != nil {
		return 0, err
	}
	n := auth.AddToJar(c.jar, cookies)
	log.Debug().
		Str("file", path).
		Int("cookies", n).
		Int("expired_kept", auth.Expired(cookies, time.Now())).
		Msg("Session cookies injected")
	return n, nil
}

// Bootstrap fetches the landing page and reads the initial hidden state fields.
// The landing document is saved for inspection when a mandatory field is missing.
func (c *Client) Bootstrap(ctx context.Context) (*engine.State, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("User-Agent", c.userAgent).
		SetHeader("Accept", "text/html").
		Get(c.baseURL)
	if err != nil {
		return nil, engine.TransportError("initial GET failed", err).
			WithDetail(engine.DetailURL, c.baseURL)
	}
	if res.IsError() {
		return nil, statusError(http.MethodGet, c.baseURL, res)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse landing page: %w", err)
	}

	fields := hiddenFields(doc)

	var missing []string
	for _, name := range engine.MandatoryFields {
		if _, ok := fields[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		path := c.sink.Save(DebugInitialGet, string(res.Body()))
		return nil, engine.ProtocolError(fmt.Sprintf("missing %v on initial GET", missing)).
			WithDebugFile(path)
	}

	log.Debug().
		Int("status", res.StatusCode()).
		Int("viewstate_bytes", len(fields[engine.FieldViewState])).
		Bool("has_event_validation", fields[engine.FieldEventValidation] != "").
		Msg("Landing page loaded")

	return engine.NewState(fields), nil
}

// hiddenFields reads the value attribute of each state field present in doc
func hiddenFields(doc *goquery.Document) map[string]string {
	fields := make(map[string]string, len(engine.StateFields))
	for _, name := range engine.StateFields {
		sel := doc.Find("#" + name).First()
		if sel.Length() == 0 {
			continue
		}
		if v, ok := sel.Attr("value"); ok {
			fields[name] = v
		}
	}
	return fields
}

// Postback submits an asynchronous postback carrying st and the search filters,
// and returns the raw delta text
func (c *Client) Postback(ctx context.Context, st *engine.State, target, argument string) (string, error) {
	form := url.Values{}
	for name, v := range st.Form() {
		form.Set(name, v)
	}
	form.Set("__EVENTTARGET", target)
	form.Set("__EVENTARGUMENT", argument)
	form.Set("__ASYNCPOST", "true")
	form.Set(scriptManagerField, engine.UpdatePanelTarget+"|"+target)
	for name, v := range searchFilters {
		form.Set(name, v)
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetHeaders(c.headers).
		SetBody(form.Encode()).
		Post(c.baseURL)
	if err != nil {
		return "", engine.TransportError("postback failed", err).
			WithDetail(engine.DetailURL, c.baseURL)
	}
	if res.IsError() {
		return "", statusError(http.MethodPost, c.baseURL, res)
	}

	log.Debug().
		Str("target", target).
		Str("argument", argument).
		Int("status", res.StatusCode()).
		Int("bytes", len(res.Body())).
		Msg("Postback completed")

	return string(res.Body()), nil
}

func statusError(method, target string, res *resty.Response) *engine.EngineError {
	return engine.TransportError(fmt.Sprintf("%s %s returned %s", method, target, res.Status()), nil).
		WithDetail(engine.DetailStatus, res.StatusCode()).
		WithDetail(engine.DetailURL, target)
}
