package battlenet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	errs "wowprofile/pkg/errors"
	"wowprofile/pkg/logger"
)

// DefaultTokenURL is the Battle.net OAuth token endpoint.
const DefaultTokenURL = "https://oauth.battle.net/token"

// ErrTokenUnavailable is wrapped by every error caused by a failed access
// token request.
var ErrTokenUnavailable = errors.New("battle.net access token unavailable")

const userAgent = "wowprofile/1.0"

var tracer = otel.Tracer("wowprofile/battlenet")

// Fetcher is the subset of Client used by the collection pipelines.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string, query url.Values, headers map[string]string, target any) error
	FetchURL(ctx context.Context, href string, target any) error
}

// Options configures a Client.
type Options struct {
	ClientID     string
	ClientSecret string
	Region       Region
	// APIBaseURL overrides https://{region}.api.blizzard.com.
	APIBaseURL string
	// TokenURL overrides DefaultTokenURL.
	TokenURL string
	// Timeout bounds each HTTP request; zero disables the bound.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     logger.Logger
}

// Client is an authenticated Battle.net API client. The access token is
// requested on first use and shared by all goroutines.
type Client struct {
	httpClient *http.Client
	tokens     oauth2.TokenSource
	baseURL    string
	region     Region
	headers    map[string]string
	logger     logger.Logger
}

// NewClient creates a client. No network traffic happens until the first
// fetch.
func NewClient(opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	region := opts.Region
	if region == "" {
		region = RegionUS
	}

	baseURL := opts.APIBaseURL
	if baseURL == "" {
		baseURL = region.APIBaseURL()
	}

	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	cc := &clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)

	return &Client{
		httpClient: httpClient,
		tokens:     oauth2.ReuseTokenSource(nil, cc.TokenSource(tokenCtx)),
		baseURL:    strings.TrimRight(baseURL, "/"),
		region:     region,
		headers: map[string]string{
			"Accept":     "application/json",
			"User-Agent": userAgent,
		},
		logger: log.WithField("component", "battlenet"),
	}
}

// Region returns the region the client talks to.
func (c *Client) Region() Region {
	return c.region
}

// ProfileHeaders returns the namespace header required by profile endpoints.
func (c *Client) ProfileHeaders() map[string]string {
	return map[string]string{"Battlenet-Namespace": c.region.ProfileNamespace()}
}

// Fetch issues an authenticated GET for an API-relative endpoint and
// decodes the JSON body into target. A non-success status is returned as
// an *errors.Error carrying the status, reason phrase and body.
func (c *Client) Fetch(ctx context.Context, endpoint string, query url.Values, headers map[string]string, target any) error {
	u := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.getJSON(ctx, u, headers, target)
}

// FetchURL follows a hypermedia link that already carries a full URL. The
// locale parameter is always set to en_US.
func (c *Client) FetchURL(ctx context.Context, href string, target any) error {
	u, err := url.Parse(href)
	if err != nil || !u.IsAbs() {
		return &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("invalid link %q", href),
			URL:     href,
		}
	}
	q := u.Query()
	q.Set("locale", DefaultLocale)
	u.RawQuery = q.Encode()

	return c.getJSON(ctx, u.String(), nil, target)
}

func (c *Client) getJSON(ctx context.Context, rawURL string, headers map[string]string, target any) (err error) {
	ctx, span := tracer.Start(ctx, "battlenet.get", trace.WithAttributes(
		attribute.String("http.url", rawURL),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			URL:     rawURL,
		}
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return errs.Network(rawURL, fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := errs.FromStatus(resp.StatusCode, string(body), rawURL)
		c.logger.DebugWithFields("API returned error status", map[string]interface{}{
			"url":    rawURL,
			"status": resp.StatusCode,
			"type":   string(apiErr.Type),
		})
		return apiErr
	}

	if err := json.Unmarshal(body, target); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          rawURL,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return errs.Parsing(rawURL, resp.StatusCode, err)
	}

	return nil
}

// doRequest sends req and logs its outcome. Transport failures become
// network errors unless the context ended.
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.WarnWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.Network(req.URL.String(), err)
	}

	logger.LogRequest(c.logger, req.Method, req.URL.String(), resp.StatusCode, duration)
	return resp, nil
}

func (c *Client) token(ctx context.Context) (*oauth2.Token, error) {
	tok, err := c.tokens.Token()
	if err == nil {
		return tok, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	apiErr := &errs.Error{
		Type:    errs.ErrorTypeAuth,
		Message: fmt.Sprintf("token request failed: %v", err),
	}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		apiErr.Code = re.Response.StatusCode
		apiErr.Reason = http.StatusText(re.Response.StatusCode)
		apiErr.Body = string(re.Body)
		if re.Response.Request != nil {
			apiErr.URL = re.Response.Request.URL.String()
		}
	}

	c.logger.WithError(err).Error("Failed to obtain Battle.net access token")
	return nil, fmt.Errorf("%w: %w", ErrTokenUnavailable, apiErr)
}
