package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	gh "github.com/google/go-github/v68/github"
	cleanhttp "github.com/hashicorp/go-cleanhttp"
	gl "gitlab.com/gitlab-org/api/client-go"
)

// Config holds the settings for a Fetcher. The zero value
// fetches public resources anonymously.
type Config struct {
	// HTTPClient performs every request. Defaults to a
	// non-shared pooled client from go-cleanhttp.
	HTTPClient *http.Client
	// UserAgent is sent on plain http(s) requests when
	// set.
	UserAgent string
	// GitHub configures the github:// source.
	GitHub GitHubConfig
	// GitLab configures the gitlab:// source.
	GitLab GitLabConfig
}

// GitHubConfig holds optional credentials for reading
// repository files from GitHub.
type GitHubConfig struct {
	// AccessToken authenticates API calls. Public
	// repositories work without one, subject to rate
	// limits.
	AccessToken string
	// EnterpriseHost is a GitHub Enterprise hostname
	// (e.g. "git.corp.example.com") or a full base URL.
	// Leave empty for github.com.
	EnterpriseHost string
}

// GitLabConfig holds optional settings for reading
// repository files from GitLab.
type GitLabConfig struct {
	// Host is the base URL of the GitLab instance.
	// Defaults to "https://gitlab.com".
	Host string
	// AccessToken authenticates API calls.
	AccessToken string
}

// Fetcher retrieves resource bytes. It keeps no per-call
// state and is safe for concurrent use.
type Fetcher struct {
	client    *http.Client
	userAgent string
	github    *gh.Client
	gitlab    *gl.Client
}

// New validates cfg and returns a Fetcher.
func New(cfg Config) (*Fetcher, error) {
	const errCtx = "creating fetcher"

	client := cfg.HTTPClient
	if client == nil {
		client = cleanhttp.DefaultPooledClient()
	}

	ghClient, err := newGitHubClient(client, cfg.GitHub)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	glClient, err := newGitLabClient(client, cfg.GitLab)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return &Fetcher{
		client:    client,
		userAgent: cfg.UserAgent,
		github:    ghClient,
		gitlab:    glClient,
	}, nil
}

// Fetch returns the exact bytes of the resource at rawURL.
// The source is chosen by scheme: http and https, github
// and gitlab. For github and gitlab URLs an "@" in the last
// path segment starts the ref, so a file name holding "@"
// is written with %40 (img/logo%402x.png). ctx bounds the
// whole call; there is no built-in timeout.
func (f *Fetcher) Fetch(
	ctx context.Context,
	rawURL string,
) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	slog.Debug("fetching resource", "url", rawURL)

	var data []byte

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		data, err = f.fetchHTTP(ctx, rawURL)
	case "github":
		data, err = f.fetchGitHub(ctx, rawURL, u)
	case "gitlab":
		data, err = f.fetchGitLab(ctx, rawURL, u)
	default:
		err = &FetchError{
			URL: rawURL,
			Err: fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme),
		}
	}

	if err != nil {
		return nil, err
	}

	slog.Debug(
		"fetched resource",
		"url", rawURL,
		"bytes", len(data),
	)

	return data, nil
}

func (f *Fetcher) fetchHTTP(
	ctx context.Context,
	rawURL string,
) (result []byte, retErr error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, rawURL, nil,
	)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	// CORS mode with default caching: no credentials of
	// our own and no Cache-Control override.
	req.Header.Set("Sec-Fetch-Mode", "cors")

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && retErr == nil {
			retErr = &FetchError{URL: rawURL, Err: closeErr}
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Reason:     reason(resp),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	return body, nil
}

// reason extracts the reason phrase from the status line,
// falling back to the standard text for the code.
func reason(resp *http.Response) string {
	prefix := strconv.Itoa(resp.StatusCode) + " "
	if rp := strings.TrimPrefix(resp.Status, prefix); rp != resp.Status && rp != "" {
		return rp
	}

	return http.StatusText(resp.StatusCode)
}

// statusError converts an API client failure into a
// FetchError, keeping the HTTP status when one was
// received.
func statusError(
	rawURL string,
	resp *http.Response,
	err error,
) *FetchError {
	fe := &FetchError{URL: rawURL, Err: err}

	if resp != nil && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		fe.StatusCode = resp.StatusCode
		fe.Reason = reason(resp)
	}

	return fe
}

// splitRef cuts an optional "@ref" suffix from the last
// segment of an escaped path and unescapes both parts. An
// "@" that belongs to a file name must be written as %40.
func splitRef(escaped string) (pa string, ref string, err error) {
	at := strings.LastIndex(escaped, "@")
	if at >= 0 && at > strings.LastIndex(escaped, "/") {
		ref, err = url.PathUnescape(escaped[at+1:])
		if err != nil {
			return "", "", err
		}

		escaped = escaped[:at]
	}

	pa, err = url.PathUnescape(escaped)
	if err != nil {
		return "", "", err
	}

	return pa, ref, nil
}
