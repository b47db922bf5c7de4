package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gl "gitlab.com/gitlab-org/api/client-go"
)

// defaultGitLabRef is used when a gitlab:// URL carries no
// @ref suffix.
const defaultGitLabRef = "HEAD"

func newGitLabClient(
	client *http.Client,
	cfg GitLabConfig,
) (*gl.Client, error) {
	const errCtx = "creating gitlab client"

	host := cfg.Host
	if host == "" {
		host = "https://gitlab.com"
	}

	glc, err := gl.NewClient(
		cfg.AccessToken,
		gl.WithBaseURL(host),
		gl.WithHTTPClient(client),
		gl.WithoutRetries(),
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: new client: %w", errCtx, err,
		)
	}

	return glc, nil
}

// parseGitLab splits
// gitlab://group[/subgroup]/project/-/path[@ref].
func parseGitLab(
	u *url.URL,
) (project, pa, ref string, err error) {
	full := u.Host + u.EscapedPath()

	project, pa, ok := strings.Cut(full, "/-/")
	if u.Host == "" || !ok || project == "" || pa == "" {
		return "", "", "", fmt.Errorf(
			"gitlab url must be gitlab://group/project/-/path[@ref], got %q",
			u.String(),
		)
	}

	pa, ref, err = splitRef(pa)
	if err != nil {
		return "", "", "", err
	}

	project, err = url.PathUnescape(project)
	if err != nil {
		return "", "", "", err
	}

	if ref == "" {
		ref = defaultGitLabRef
	}

	return project, pa, ref, nil
}

func (f *Fetcher) fetchGitLab(
	ctx context.Context,
	rawURL string,
	u *url.URL,
) ([]byte, error) {
	project, pa, ref, err := parseGitLab(u)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	data, resp, err := f.gitlab.RepositoryFiles.GetRawFile(
		project,
		pa,
		&gl.GetRawFileOptions{Ref: gl.Ptr(ref)},
		gl.WithContext(ctx),
	)
	if err != nil {
		return nil, statusError(rawURL, glResponse(resp), err)
	}

	return data, nil
}

func glResponse(resp *gl.Response) *http.Response {
	if resp == nil {
		return nil
	}

	return resp.Response
}
