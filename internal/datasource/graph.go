package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/vanderheijden86/orgview/pkg/model"
)

const (
	graphSelect      = "id,displayName,jobTitle,department,mail,userPrincipalName"
	graphScope       = "https://graph.microsoft.com/.default"
	graphTokenURLFmt = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"
	maxGraphPages    = 100
	maxPhotoBytes    = 4 << 20
)

// HTTPError is a non-2xx Graph response.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("graph: http %d: %s", e.StatusCode, msg)
}

// GraphOptions configures a GraphSource.
type GraphOptions struct {
	BaseURL      string        // e.g. https://graph.microsoft.com/v1.0
	TenantID     string        // Entra tenant for client-credentials auth
	ClientID     string        // App registration id
	ClientSecret string        // App secret; with ClientID enables OAuth2
	TokenURL     string        // Overrides the tenant token endpoint
	AccessToken  string        // Static bearer token, used when no client credentials are set
	Timeout      time.Duration // Per-request timeout (default 10s)
	HTTPClient   *http.Client  // Base transport; nil = default
}

// GraphSource reads users and reporting lines from Microsoft Graph.
type GraphSource struct {
	baseURL    string
	httpClient *http.Client
}

// NewGraphSource validates opts and builds an authenticated client. Client
// credentials take precedence over a static access token; with neither,
// requests are sent unauthenticated (useful against proxies and tests).
func NewGraphSource(opts GraphOptions) (*GraphSource, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("graph: missing base url")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, errors.New("graph: invalid base url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("graph: invalid base url scheme")
	}
	if u.Host == "" {
		return nil, errors.New("graph: invalid base url host")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	baseClient := opts.HTTPClient
	if baseClient == nil {
		baseClient = &http.Client{Timeout: timeout}
	}

	client := baseClient
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, baseClient)
	switch {
	case opts.ClientID != "" && opts.ClientSecret != "":
		tokenURL := opts.TokenURL
		if tokenURL == "" {
			if opts.TenantID == "" {
				return nil, errors.New("graph: tenant id required for client credentials")
			}
			tokenURL = fmt.Sprintf(graphTokenURLFmt, url.PathEscape(opts.TenantID))
		}
		cc := clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     tokenURL,
			Scopes:       []string{graphScope},
		}
		client = cc.Client(ctx)
		client.Timeout = timeout
	case opts.AccessToken != "":
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.AccessToken}))
		client.Timeout = timeout
	}

	return &GraphSource{baseURL: base, httpClient: client}, nil
}

type graphUser struct {
	ODataType         string `json:"@odata.type"`
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	JobTitle          string `json:"jobTitle"`
	Department        string `json:"department"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

func (u graphUser) member() model.Member {
	return model.Member{
		ID:                u.ID,
		DisplayName:       u.DisplayName,
		JobTitle:          u.JobTitle,
		Department:        u.Department,
		Mail:              u.Mail,
		UserPrincipalName: u.UserPrincipalName,
		Initials:          model.Initials(u.DisplayName),
	}
}

// ResolveIdentity fetches /users/{email}.
func (g *GraphSource) ResolveIdentity(ctx context.Context, email string) (model.Member, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.Member{}, ErrNotFound
	}
	endpoint := g.baseURL + "/users/" + url.PathEscape(email) + "?$select=" + graphSelect

	var u graphUser
	if err := g.getJSON(ctx, endpoint, &u); err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return model.Member{}, ErrNotFound
		}
		return model.Member{}, fmt.Errorf("resolving %s: %w", email, err)
	}
	if u.ID == "" {
		return model.Member{}, ErrNotFound
	}
	return u.member(), nil
}

// DirectReports fetches /users/{id}/directReports, following
// @odata.nextLink. Non-user directory objects (groups, contacts) are
// skipped.
func (g *GraphSource) DirectReports(ctx context.Context, id string) ([]model.Member, error) {
	next := g.baseURL + "/users/" + url.PathEscape(id) + "/directReports?$select=" + graphSelect
	var out []model.Member
	for page := 0; next != "" && page < maxGraphPages; page++ {
		var resp struct {
			Value    []graphUser `json:"value"`
			NextLink string      `json:"@odata.nextLink"`
		}
		if err := g.getJSON(ctx, next, &resp); err != nil {
			return nil, fmt.Errorf("direct reports of %s: %w", id, err)
		}
		for _, u := range resp.Value {
			if u.ODataType != "" && u.ODataType != "#microsoft.graph.user" {
				continue
			}
			if u.ID == "" {
				continue
			}
			out = append(out, u.member())
		}
		next = resp.NextLink
	}
	return out, nil
}

// Photo fetches /users/{id}/photo/$value. Users without a photo yield
// (nil, nil).
func (g *GraphSource) Photo(ctx context.Context, id string) ([]byte, error) {
	endpoint := g.baseURL + "/users/" + url.PathEscape(id) + "/photo/$value"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode/100 != 2 {
		return nil, readHTTPError(resp)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
}

func (g *GraphSource) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return readHTTPError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func readHTTPError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := strings.TrimSpace(string(b))

	var graphErr struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(b, &graphErr); err == nil && graphErr.Error.Message != "" {
		msg = graphErr.Error.Message
		if graphErr.Error.Code != "" {
			msg = graphErr.Error.Code + ": " + msg
		}
	}
	return &HTTPError{StatusCode: resp.StatusCode, Message: msg}
}
