package activityportal

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"activityhub-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/activityportal")

const (
	loginPath  = "/Login.aspx"
	detailPath = "/Services/ActivityService.asmx/GetActivityDetails"
	probePath  = "/Services/ActivityService.asmx/GetTermDates"

	sessionCookieName   = "ASP.NET_SessionId"
	formsAuthCookieName = ".ASPXAUTH"
)

type Client struct {
	http *resty.Client

	attempts  int
	delayUnit time.Duration
}

type ClientOptions struct {
	BaseUrl string
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		return nil, fmt.Errorf("empty portal base url")
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetTimeout(time.Second * 20)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")

	// cookies are managed by hand because the portal's Set-Cookie
	// behavior is quirky, and redirects are never followed: a 302 off
	// the login form is the success signal, not an error.
	client.GetClient().CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	telemetry.InstrumentResty(client, "scrapers/activityportal/http")

	return &Client{
		http:      client,
		attempts:  3,
		delayUnit: time.Second,
	}, nil
}

// Login runs the two-step handshake against the portal and returns the
// composite credential the other calls expect in their cookie header.
// The steps are strictly sequential, the form submission depends on the
// session identifier issued by the login page.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Get(loginPath)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch login page")
		return "", fmt.Errorf("login page: %w", err)
	}
	session := firstCookie(res.Cookies(), sessionCookieName)
	if session == "" {
		span.SetStatus(codes.Error, ErrLoginFailed.Error())
		return "", ErrLoginFailed
	}

	res, err = c.http.R().
		SetContext(ctx).
		SetHeader("cookie", sessionCookieName+"="+session).
		SetFormData(loginForm(username, password)).
		Post(loginPath)
	if err != nil {
		span.SetStatus(codes.Error, "failed to submit login form")
		return "", fmt.Errorf("login form: %w", err)
	}

	// the server has been seen re-issuing .ASPXAUTH with an emptied
	// value before the real one in the same response, so prefer the
	// last non-empty candidate
	auth := lastNonEmptyCookie(res.Cookies(), formsAuthCookieName)
	if auth == "" {
		span.SetStatus(codes.Error, ErrLoginFailed.Error())
		return "", ErrLoginFailed
	}

	return fmt.Sprintf(
		"%s=%s; %s=%s",
		sessionCookieName, session,
		formsAuthCookieName, auth,
	), nil
}

func loginForm(username, password string) map[string]string {
	return map[string]string{
		"__EVENTTARGET":                 "",
		"__EVENTARGUMENT":               "",
		"__VIEWSTATE":                   "",
		"ctl00$MainContent$txtUsername": username,
		"ctl00$MainContent$txtPassword": password,
		"ctl00$MainContent$btnLogin":    "Log in",
	}
}

func firstCookie(cookies []*http.Cookie, name string) string {
	for _, cookie := range cookies {
		if cookie.Name == name && cookie.Value != "" {
			return cookie.Value
		}
	}
	return ""
}

func lastNonEmptyCookie(cookies []*http.Cookie, name string) string {
	value := ""
	for _, cookie := range cookies {
		if cookie.Name == name && cookie.Value != "" {
			value = cookie.Value
		}
	}
	return value
}
