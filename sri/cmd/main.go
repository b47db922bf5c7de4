// Command sri computes Subresource Integrity values for remote
// resources and local files, renders them as integrity strings or
// ready-to-paste tags, and optionally copies the result to the
// clipboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	json "github.com/goccy/go-json"

	"github.com/byte4ever/rules_sri/clipboard"
	"github.com/byte4ever/rules_sri/config"
	"github.com/byte4ever/rules_sri/digest"
	"github.com/byte4ever/rules_sri/fetcher"
	"github.com/byte4ever/rules_sri/render"
	"github.com/byte4ever/rules_sri/sri"
)

// CLI is the kong command tree.
type CLI struct {
	Config   string `name:"config" help:"YAML config file (default: <user config dir>/sri/config.yaml)"`
	LogLevel string `name:"log-level" default:"warn" enum:"debug,info,warn,error" help:"Log level: debug, info, warn, error"`

	Hash       HashCmd       `cmd:"" help:"Compute integrity values for remote resources"`
	File       FileCmd       `cmd:"" help:"Compute integrity values for local files"`
	Fetch      FetchCmd      `cmd:"" help:"Download a resource unchanged"`
	Algorithms AlgorithmsCmd `cmd:"" help:"List supported algorithms"`
}

// OutputFlags are shared by the hashing commands.
type OutputFlags struct {
	Algorithm string            `short:"a" help:"Hash algorithm: sha256, sha384 or sha512 (case-insensitive)"`
	Format    string            `short:"f" help:"Output preset (integrity, script, link) or a {var} template"`
	Var       map[string]string `name:"var" help:"Extra template variable NAME=VALUE (repeatable)"`
	Copy      bool              `name:"copy" help:"Copy the last output to the clipboard"`
	JSON      bool              `name:"json" help:"Print results as JSON"`
}

// HashCmd hashes remote resources.
type HashCmd struct {
	URLs        []string      `arg:"" name:"url" help:"Resource URL (http, https, github://owner/repo/path@ref, gitlab://group/project/-/path@ref; write @ in file names as %40)"`
	Parallelism int           `short:"p" help:"Concurrent fetches (default from config)"`
	Timeout     time.Duration `help:"Abort the run after this long"`

	OutputFlags `embed:""`
}

// FileCmd hashes local files.
type FileCmd struct {
	Paths []string `arg:"" name:"path" help:"Local file to hash"`

	OutputFlags `embed:""`
}

// FetchCmd downloads a resource.
type FetchCmd struct {
	URL     string        `arg:"" name:"url" help:"Resource URL"`
	Out     string        `short:"o" help:"Output file (default: stdout)"`
	Timeout time.Duration `help:"Abort the download after this long"`
}

// AlgorithmsCmd lists algorithms.
type AlgorithmsCmd struct{}

type kongExitCode int

type commandDeps struct {
	out        io.Writer
	errOut     io.Writer
	getenv     func(string) string
	httpClient *http.Client
	host       func() clipboard.Host
}

func main() {
	os.Exit(run(os.Args[1:], defaultDeps()))
}

func defaultDeps() commandDeps {
	return commandDeps{
		out:    os.Stdout,
		errOut: os.Stderr,
		getenv: os.Getenv,
		host: func() clipboard.Host {
			return clipboard.DetectHost(os.Stdout)
		},
	}
}

func run(args []string, deps commandDeps) (exitCode int) {
	if deps.out == nil {
		deps.out = os.Stdout
	}

	if deps.errOut == nil {
		deps.errOut = os.Stderr
	}

	if deps.getenv == nil {
		deps.getenv = os.Getenv
	}

	cli := CLI{}

	parser, err := kong.New(
		&cli,
		kong.Name("sri"),
		kong.Description("Compute Subresource Integrity values."),
		kong.Writers(deps.out, deps.errOut),
		kong.Exit(func(code int) {
			panic(kongExitCode(code))
		}),
	)
	if err != nil {
		_, _ = fmt.Fprintf(deps.errOut, "Error: initialize command parser: %v\n", err)

		return 1
	}

	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}

		code, ok := recovered.(kongExitCode)
		if !ok {
			panic(recovered)
		}

		exitCode = int(code)
	}()

	kctx, err := parser.Parse(args)
	if err != nil {
		_, _ = fmt.Fprintf(deps.errOut, "Error: %v\n", err)
		_, _ = fmt.Fprintln(deps.errOut, "Hint: run `sri --help`.")

		return 1
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(
		deps.errOut,
		&slog.HandlerOptions{Level: parseLevel(cli.LogLevel)},
	)))

	cmd := strings.Fields(kctx.Command())[0]

	switch cmd {
	case "algorithms":
		err = runAlgorithms(deps.out)
	case "fetch":
		err = runFetch(cli, deps)
	case "hash":
		err = runHash(cli, deps)
	case "file":
		err = runFile(cli, deps)
	default:
		err = fmt.Errorf("unsupported command: %s", kctx.Command())
	}

	if err != nil {
		slog.Error(err.Error())

		return 1
	}

	return 0
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// loadConfig reads the config file and lets flags win.
func loadConfig(
	cli CLI,
	deps commandDeps,
	flags OutputFlags,
) (config.Config, error) {
	const errCtx = "resolving settings"

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return config.Config{}, err
	}

	cfg.ApplyEnv(deps.getenv)

	if flags.Algorithm != "" {
		cfg.Algorithm = flags.Algorithm
	}

	if flags.Format != "" {
		cfg.Format = flags.Format
	}

	if flags.Copy {
		cfg.Copy = true
	}

	if _, err := digest.ParseAlgorithm(cfg.Algorithm); err != nil {
		return config.Config{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	return cfg, nil
}

func newFetcher(
	cfg config.Config,
	deps commandDeps,
) (*fetcher.Fetcher, error) {
	return fetcher.New(fetcher.Config{
		HTTPClient: deps.httpClient,
		UserAgent:  cfg.UserAgent,
		GitHub: fetcher.GitHubConfig{
			AccessToken:    cfg.GitHub.AccessToken,
			EnterpriseHost: cfg.GitHub.EnterpriseHost,
		},
		GitLab: fetcher.GitLabConfig{
			Host:        cfg.GitLab.Host,
			AccessToken: cfg.GitLab.AccessToken,
		},
	})
}

func withTimeout(
	flagTimeout time.Duration,
	cfg config.Config,
) (context.Context, context.CancelFunc, error) {
	timeout := flagTimeout

	if timeout <= 0 {
		var err error

		timeout, err = cfg.TimeoutDuration()
		if err != nil {
			return nil, nil, err
		}
	}

	if timeout <= 0 {
		ctx, cancel := context.WithCancel(context.Background())

		return ctx, cancel, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	return ctx, cancel, nil
}

func runHash(cli CLI, deps commandDeps) error {
	const errCtx = "hash"

	cmd := cli.Hash

	cfg, err := loadConfig(cli, deps, cmd.OutputFlags)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	fe, err := newFetcher(cfg, deps)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	ctx, cancel, err := withTimeout(cmd.Timeout, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}
	defer cancel()

	parallelism := cfg.Parallelism
	if cmd.Parallelism > 0 {
		parallelism = cmd.Parallelism
	}

	pl := &sri.Pipeline{
		Fetcher:   fe,
		Algorithm: cfg.Algorithm,
		Format:    cfg.Format,
		Vars:      cmd.Var,
	}

	results, runErr := sri.RunAll(ctx, pl, cmd.URLs, parallelism)

	return finish(ctx, deps, cfg, cmd.JSON, results, runErr)
}

func runFile(cli CLI, deps commandDeps) error {
	const errCtx = "file"

	cmd := cli.File

	cfg, err := loadConfig(cli, deps, cmd.OutputFlags)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	pl := &sri.Pipeline{
		Algorithm: cfg.Algorithm,
		Format:    cfg.Format,
		Vars:      cmd.Var,
	}

	results := make([]sri.Result, len(cmd.Paths))

	var errs []error

	for idx, pa := range cmd.Paths {
		res, err := pl.RunFile(pa)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		results[idx] = res
	}

	return finish(
		context.Background(), deps, cfg, cmd.JSON,
		results, errors.Join(errs...),
	)
}

// finish prints every successful result, then copies the
// last one when asked and nothing failed.
func finish(
	ctx context.Context,
	deps commandDeps,
	cfg config.Config,
	asJSON bool,
	results []sri.Result,
	runErr error,
) error {
	done := make([]sri.Result, 0, len(results))

	for _, res := range results {
		if res.Integrity != "" {
			done = append(done, res)
		}
	}

	if err := printResults(deps.out, done, asJSON); err != nil {
		return errors.Join(runErr, err)
	}

	if runErr != nil {
		return runErr
	}

	if !cfg.Copy || len(done) == 0 {
		return nil
	}

	host := deps.host
	if host == nil {
		host = func() clipboard.Host { return clipboard.Host{} }
	}

	return sri.Copy(ctx, host(), done[len(done)-1])
}

func printResults(
	out io.Writer,
	results []sri.Result,
	asJSON bool,
) error {
	const errCtx = "writing results"

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		return nil
	}

	for _, res := range results {
		if _, err := fmt.Fprintln(out, res.Output); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	return nil
}

func runFetch(cli CLI, deps commandDeps) error {
	const errCtx = "fetch"

	cmd := cli.Fetch

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	cfg.ApplyEnv(deps.getenv)

	fe, err := newFetcher(cfg, deps)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	ctx, cancel, err := withTimeout(cmd.Timeout, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}
	defer cancel()

	data, err := fe.Fetch(ctx, cmd.URL)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if cmd.Out != "" {
		if err := os.WriteFile( //nolint:gosec // path from CLI flag
			cmd.Out, data, 0o666,
		); err != nil {
			return fmt.Errorf("%s: writing output: %w", errCtx, err)
		}

		return nil
	}

	if _, err := deps.out.Write(data); err != nil {
		return fmt.Errorf("%s: writing to stdout: %w", errCtx, err)
	}

	return nil
}

func runAlgorithms(out io.Writer) error {
	for _, alg := range digest.Algorithms() {
		if _, err := fmt.Fprintf(
			out, "%s\t%d bytes\n", alg, alg.Size(),
		); err != nil {
			return fmt.Errorf("listing algorithms: %w", err)
		}
	}

	_, err := fmt.Fprintf(
		out, "formats: %s\n", strings.Join(render.Presets(), ", "),
	)

	return err
}
