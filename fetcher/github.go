package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v68/github"
)

var (
	errNotAFile       = errors.New("path does not name a file")
	errDownloadFailed = errors.New("raw download failed")
)

func newGitHubClient(
	client *http.Client,
	cfg GitHubConfig,
) (*gh.Client, error) {
	const errCtx = "creating github client"

	ghc := gh.NewClient(client)

	if cfg.AccessToken != "" {
		ghc = ghc.WithAuthToken(cfg.AccessToken)
	}

	if cfg.EnterpriseHost == "" {
		return ghc, nil
	}

	baseURL := cfg.EnterpriseHost
	uploadURL := cfg.EnterpriseHost

	if !strings.Contains(baseURL, "://") {
		baseURL = "https://" + cfg.EnterpriseHost + "/api/v3/"
		uploadURL = "https://" + cfg.EnterpriseHost + "/api/uploads/"
	}

	ghc, err := ghc.WithEnterpriseURLs(baseURL, uploadURL)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: enterprise urls: %w", errCtx, err,
		)
	}

	return ghc, nil
}

// parseGitHub splits github://owner/repo/path[@ref].
func parseGitHub(
	u *url.URL,
) (owner, repo, pa, ref string, err error) {
	owner = u.Host

	rest := strings.TrimPrefix(u.EscapedPath(), "/")

	repo, pa, ok := strings.Cut(rest, "/")
	if owner == "" || !ok || repo == "" || pa == "" {
		return "", "", "", "", fmt.Errorf(
			"github url must be github://owner/repo/path[@ref], got %q",
			u.String(),
		)
	}

	pa, ref, err = splitRef(pa)
	if err != nil {
		return "", "", "", "", err
	}

	repo, err = url.PathUnescape(repo)
	if err != nil {
		return "", "", "", "", err
	}

	return owner, repo, pa, ref, nil
}

func (f *Fetcher) fetchGitHub(
	ctx context.Context,
	rawURL string,
	u *url.URL,
) ([]byte, error) {
	owner, repo, pa, ref, err := parseGitHub(u)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	opts := &gh.RepositoryContentGetOptions{Ref: ref}

	fc, _, resp, err := f.github.Repositories.GetContents(
		ctx, owner, repo, pa, opts,
	)
	if err != nil {
		return nil, statusError(rawURL, ghResponse(resp), err)
	}

	if fc == nil || fc.GetType() != "file" {
		return nil, &FetchError{URL: rawURL, Err: errNotAFile}
	}

	// Files over 1 MB come back without inline content.
	if fc.GetEncoding() == "none" {
		return f.downloadGitHub(ctx, rawURL, owner, repo, pa, opts)
	}

	content, err := fc.GetContent()
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	return []byte(content), nil
}

func (f *Fetcher) downloadGitHub(
	ctx context.Context,
	rawURL string,
	owner string,
	repo string,
	pa string,
	opts *gh.RepositoryContentGetOptions,
) (result []byte, retErr error) {
	rc, resp, err := f.github.Repositories.DownloadContents(
		ctx, owner, repo, pa, opts,
	)
	if err != nil {
		return nil, statusError(rawURL, ghResponse(resp), err)
	}

	defer func() {
		if closeErr := rc.Close(); closeErr != nil && retErr == nil {
			retErr = &FetchError{URL: rawURL, Err: closeErr}
		}
	}()

	// DownloadContents reports a failed download through the
	// response only.
	if hr := ghResponse(resp); hr != nil &&
		(hr.StatusCode < 200 || hr.StatusCode > 299) {
		return nil, statusError(rawURL, hr, errDownloadFailed)
	}

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	return data, nil
}

func ghResponse(resp *gh.Response) *http.Response {
	if resp == nil {
		return nil
	}

	return resp.Response
}
