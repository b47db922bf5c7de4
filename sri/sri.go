package sri

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/byte4ever/rules_sri/clipboard"
	"github.com/byte4ever/rules_sri/digest"
	"github.com/byte4ever/rules_sri/fetcher"
	"github.com/byte4ever/rules_sri/render"
)

// Fetcher retrieves resource bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Pipeline holds the settings shared by every run. Use a
// Pipeline value instead of many arguments.
type Pipeline struct {
	// Fetcher retrieves remote resources.
	Fetcher Fetcher

	// Encoder hashes resource bytes. Nil selects the
	// standard engine.
	Encoder *digest.Encoder

	// Algorithm is the case-insensitive algorithm
	// selector.
	Algorithm string

	// Format is a render preset name or template.
	Format string

	// Vars are extra template variables.
	Vars map[string]string
}

// Result describes one computed integrity value.
type Result struct {
	URL       string `json:"url"`
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest"`
	Integrity string `json:"integrity"`
	Size      int    `json:"size"`
	Output    string `json:"output"`
}

// Run fetches url and returns its integrity value. The
// algorithm is validated before anything is fetched.
func (p *Pipeline) Run(
	ctx context.Context,
	url string,
) (Result, error) {
	errCtx := "computing integrity for " + url

	alg, err := digest.ParseAlgorithm(p.Algorithm)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	data, err := p.Fetcher.Fetch(ctx, url)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	res, err := p.result(url, data, alg)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	return res, nil
}

// RunFile computes the integrity value of a local file.
func (p *Pipeline) RunFile(pa string) (Result, error) {
	errCtx := "computing integrity for " + pa

	alg, err := digest.ParseAlgorithm(p.Algorithm)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	data, err := fetcher.ReadFile(pa)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	res, err := p.result(pa, data, alg)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	return res, nil
}

func (p *Pipeline) result(
	url string,
	data []byte,
	alg digest.Algorithm,
) (Result, error) {
	en := p.Encoder
	if en == nil {
		en = digest.NewEncoder(nil)
	}

	b64, err := en.Sum(data, alg)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		URL:       url,
		Algorithm: alg.String(),
		Digest:    b64,
		Integrity: digest.Integrity(alg, b64),
		Size:      len(data),
	}

	res.Output = render.Render(p.Format, render.Values{
		URL:       res.URL,
		Algorithm: res.Algorithm,
		Digest:    res.Digest,
		Integrity: res.Integrity,
		Size:      res.Size,
		Extra:     p.Vars,
	})

	slog.Info(
		"computed integrity",
		"url", url,
		"integrity", res.Integrity,
		"bytes", res.Size,
	)

	return res, nil
}

// Copy places the rendered output of res on the clipboard.
func Copy(
	ctx context.Context,
	host clipboard.Host,
	res Result,
) error {
	const errCtx = "copying integrity"

	if err := clipboard.Copy(ctx, host, res.Output); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info("copied to clipboard", "url", res.URL)

	return nil
}
