// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package portal talks to the academy web portal: session login, course and
// unit enumeration, and resolution of downloadable resources. The portal
// answers with HTML fragments (option lists, onclick-wired anchors), parsed
// here with goquery. This package is glue around the recovery pipeline, not
// part of it — the pipeline consumes only the files it writes to disk.
package portal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/course-engine/internal/httputil"
	"github.com/pdiddy/course-engine/pkg/types"
)

// Client is an authenticated portal session.
type Client struct {
	http *http.Client
	cfg  types.PortalConfig
}

// New builds a client with a cookie jar for the portal session.
func New(cfg types.PortalConfig) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	return &Client{
		http: &http.Client{Timeout: cfg.Timeout, Jar: jar},
		cfg:  cfg,
	}, nil
}

// get issues a GET with the configured User-Agent, retrying on rate limits.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	return httputil.DoWithRetry(ctx, c.http, req, 0)
}

// Login fetches the portal landing page, extracts the CSRF token, and
// posts the login form. A redirect back to the auth-failed page means bad
// credentials.
func (c *Client) Login(ctx context.Context) error {
	resp, err := c.get(ctx, c.cfg.BaseURL+"/")
	if err != nil {
		return fmt.Errorf("fetching login page: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("parsing login page: %w", err)
	}
	csrf, ok := doc.Find(`input[name="_csrf"]`).First().Attr("value")
	if !ok || csrf == "" {
		return fmt.Errorf("login page has no CSRF token")
	}

	form := url.Values{
		"j_username": {c.cfg.Username},
		"j_password": {c.cfg.Password},
		"_csrf":      {csrf},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/j_spring_security_check", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	loginResp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("posting login form: %w", err)
	}
	defer loginResp.Body.Close()
	io.Copy(io.Discard, loginResp.Body)

	if strings.Contains(loginResp.Request.URL.String(), "authfailed") {
		return fmt.Errorf("login failed: check credentials")
	}
	return nil
}

// option is one parsed <option> entry.
type option struct {
	id   string
	name string
}

// parseOptions extracts the portal's option lists. Option values arrive
// with stray escaped quotes that must be stripped before reuse in URLs.
func parseOptions(r io.Reader) ([]option, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var opts []option
	doc.Find("option").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("value")
		id = cleanID(id)
		name := strings.TrimSpace(s.Text())
		if id != "" && name != "" {
			opts = append(opts, option{id: id, name: name})
		}
	})
	return opts, nil
}

var idCleaner = strings.NewReplacer(`\"`, "", `\'`, "", `\`, "")

func cleanID(id string) string {
	id = strings.TrimSpace(idCleaner.Replace(id))
	return strings.Trim(id, `"'`)
}

// Courses returns all courses available to the account. The subject code
// is the part of the display name before the first dash.
func (c *Client) Courses(ctx context.Context) ([]types.Course, error) {
	resp, err := c.get(ctx, c.cfg.BaseURL+"/a/g/getSubjectsCode")
	if err != nil {
		return nil, fmt.Errorf("fetching course list: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("course list: HTTP %d", resp.StatusCode)
	}

	opts, err := parseOptions(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing course list: %w", err)
	}

	courses := make([]types.Course, 0, len(opts))
	for _, o := range opts {
		code := o.name
		if i := strings.Index(code, "-"); i >= 0 {
			code = strings.TrimSpace(code[:i])
		}
		courses = append(courses, types.Course{ID: o.id, Code: code, Name: o.name})
	}
	return courses, nil
}

// Units returns the units of a course.
func (c *Client) Units(ctx context.Context, courseID string) ([]types.Unit, error) {
	resp, err := c.get(ctx, c.cfg.BaseURL+"/a/i/getCourse/"+courseID)
	if err != nil {
		return nil, fmt.Errorf("fetching units: %w", err)
	}
	defer resp.Body.Close()

	opts, err := parseOptions(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing units: %w", err)
	}
	units := make([]types.Unit, 0, len(opts))
	for _, o := range opts {
		units = append(units, types.Unit{ID: o.id, Name: o.name})
	}
	return units, nil
}

// Classes returns the classes of a unit.
func (c *Client) Classes(ctx context.Context, unitID string) ([]types.Class, error) {
	resp, err := c.get(ctx, c.cfg.BaseURL+"/a/i/getCourseClasses/"+unitID)
	if err != nil {
		return nil, fmt.Errorf("fetching classes: %w", err)
	}
	defer resp.Body.Close()

	opts, err := parseOptions(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing classes: %w", err)
	}
	classes := make([]types.Class, 0, len(opts))
	for _, o := range opts {
		classes = append(classes, types.Class{ID: o.id, Name: o.name})
	}
	return classes, nil
}

// Patterns for the two onclick link styles the resource pages use.
var (
	loadIframePattern  = regexp.MustCompile(`loadIframe\('([^']+)'`)
	downloadDocPattern = regexp.MustCompile(`downloadcoursedoc\('([^']+)'`)
)

// ResourceLinks resolves the downloadable resources of one (course, class,
// category) triple. The portal either answers with the file itself
// (non-HTML content type) or with an HTML page of onclick-wired links.
func (c *Client) ResourceLinks(ctx context.Context, courseID, classID, categoryID string) ([]types.ResourceLink, error) {
	u, err := url.Parse(c.cfg.BaseURL + "/s/studentProfilePESUAdmin")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("url", "studentProfilePESUAdmin")
	q.Set("controllerMode", "6403")
	q.Set("actionType", "60")
	q.Set("selectedData", courseID)
	q.Set("id", categoryID)
	q.Set("unitid", classID)
	u.RawQuery = q.Encode()

	resp, err := c.get(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("fetching resources: %w", err)
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/") && !strings.Contains(contentType, "html") {
		content, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading direct resource: %w", err)
		}
		return []types.ResourceLink{{URL: resp.Request.URL.String(), Content: content}}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading resource page: %w", err)
	}
	return c.parseResourceLinks(bytes.NewReader(body))
}

// parseResourceLinks extracts download links from the onclick attributes.
func (c *Client) parseResourceLinks(r io.Reader) ([]types.ResourceLink, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	origin := c.cfg.BaseURL
	if u, err := url.Parse(c.cfg.BaseURL); err == nil {
		origin = u.Scheme + "://" + u.Host
	}

	var links []types.ResourceLink
	doc.Find("[onclick]").Each(func(_ int, s *goquery.Selection) {
		onclick, _ := s.Attr("onclick")
		label := strings.TrimSpace(s.Text())

		switch {
		case strings.Contains(onclick, "downloadslidecoursedoc"):
			if m := loadIframePattern.FindStringSubmatch(onclick); m != nil {
				target, _, _ := strings.Cut(m[1], "#")
				if strings.HasPrefix(target, "/") {
					links = append(links, types.ResourceLink{URL: origin + target, Label: label})
				}
			}
		case strings.Contains(onclick, "downloadcoursedoc"):
			if m := downloadDocPattern.FindStringSubmatch(onclick); m != nil {
				links = append(links, types.ResourceLink{
					URL:   c.cfg.BaseURL + "/s/referenceMeterials/downloadcoursedoc/" + m[1],
					Label: label,
				})
			}
		}
	})
	return links, nil
}
