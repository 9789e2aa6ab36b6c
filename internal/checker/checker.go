// Package checker runs the external analyzer against an image and maps its
// JSON report into a model.Result.
package checker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redhat-developer/openshift-checker/internal/log"
	"github.com/redhat-developer/openshift-checker/internal/model"
	"github.com/redhat-developer/openshift-checker/internal/platform"
	"github.com/redhat-developer/openshift-checker/internal/runner"
)

// CheckProvider is the capability a host registers to inspect images.
type CheckProvider interface {
	Check(ctx context.Context, req model.Request) (model.Result, error)
}

var (
	errTimeout       = errors.New("analyzer timeout")
	errIsDir         = errors.New("is a directory")
	errNotExecutable = errors.New("not executable")
)

// Bridge is a CheckProvider running the analyzer binary once per Check.
// It holds no mutable state and is safe for concurrent use.
type Bridge struct {
	info      model.ProviderInfo
	resolver  platform.Resolver
	os        platform.OS
	env       []string
	timeout   time.Duration
	waitDelay time.Duration
}

var _ CheckProvider = Bridge{}

type Option func(*Bridge)

// WithOS overrides the detected operating system.
func WithOS(os platform.OS) Option {
	return func(b *Bridge) {
		b.os = os
	}
}

// WithTimeout kills the analyzer after d, 0 disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		b.timeout = d
	}
}

func WithWaitDelay(d time.Duration) Option {
	return func(b *Bridge) {
		b.waitDelay = d
	}
}

// WithEnv adds KEY=value pairs to the analyzer environment.
func WithEnv(env ...string) Option {
	return func(b *Bridge) {
		b.env = append(append([]string(nil), b.env...), env...)
	}
}

func WithInfo(info model.ProviderInfo) Option {
	return func(b *Bridge) {
		b.info = info
	}
}

func New(resolver platform.Resolver, opts ...Option) Bridge {
	b := Bridge{
		info:      model.DefaultConfig().Provider,
		resolver:  resolver,
		os:        platform.Current(),
		waitDelay: model.DefaultWaitDelay,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// ResolverFromConfig returns the platform.Resolver for the analyzer
// configuration. An empty analyzer.root means the directory of the running
// executable.
func ResolverFromConfig(cfg model.Analyzer) (platform.Resolver, error) {
	layout, err := platform.ParseLayout(cfg.Layout)
	if err != nil {
		return platform.Resolver{}, fmt.Errorf("analyzer.layout: %w", err)
	}
	root := cfg.Root
	if root == "" {
		exe, err := os.Executable()
		if err != nil {
			return platform.Resolver{}, fmt.Errorf("locating install root: %w", err)
		}
		root = filepath.Dir(exe)
	}
	return platform.New(root,
		platform.WithName(cfg.Name),
		platform.WithLayout(layout),
	), nil
}

// FromConfig creates a Bridge from the configuration.
func FromConfig(cfg model.Config) (Bridge, error) {
	resolver, err := ResolverFromConfig(cfg.Analyzer)
	if err != nil {
		return Bridge{}, err
	}
	return New(resolver,
		WithInfo(cfg.Provider),
		WithTimeout(cfg.Analyzer.Timeout),
		WithWaitDelay(cfg.Analyzer.WaitDelay),
		WithEnv(cfg.Analyzer.Environ()...),
	), nil
}

func (b Bridge) Info() model.ProviderInfo {
	return b.info
}

// Args returns the analyzer arguments for imageID.
func Args(imageID string) []string {
	return []string{"analyze", "-i", imageID, "-o", "json"}
}

// Executable returns the resolved analyzer path if it exists and is executable.
func (b Bridge) Executable() (string, error) {
	path, err := b.resolver.Resolve(b.os)
	if err != nil {
		return "", &model.ExecutableNotFoundError{OS: string(b.os), Err: err}
	}
	info, err := os.Stat(path)
	switch {
	case err != nil:
		return "", &model.ExecutableNotFoundError{Path: path, OS: string(b.os), Err: err}
	case info.IsDir():
		return "", &model.ExecutableNotFoundError{Path: path, OS: string(b.os), Err: errIsDir}
	case b.os != platform.Windows && info.Mode().Perm()&0o111 == 0:
		return "", &model.ExecutableNotFoundError{Path: path, OS: string(b.os), Err: errNotExecutable}
	}
	return path, nil
}

// Check runs the analyzer for req.ImageID and returns its findings. A done
// ctx kills the analyzer and Check returns a model.CancelledError once the
// process has exited. Every call spawns exactly one process, failures are
// never retried.
func (b Bridge) Check(ctx context.Context, req model.Request) (model.Result, error) {
	if strings.TrimSpace(req.ImageID) == "" {
		return model.Result{}, fmt.Errorf("%w: empty image id", model.ErrInvalidRequest)
	}

	path, err := b.Executable()
	if err != nil {
		return model.Result{}, err
	}

	ctx = log.ContextAttrs(ctx,
		slog.String("check_id", uuid.NewString()),
		slog.String("image", req.ImageID),
		slog.String("analyzer", path),
	)

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if b.timeout > 0 {
		runCtx, cancel = context.WithTimeoutCause(ctx, b.timeout, errTimeout)
	}
	defer cancel()

	slog.DebugContext(ctx, "check started")
	res := runner.Run(runCtx, runner.Command{
		Path:      path,
		Args:      Args(req.ImageID),
		Env:       b.env,
		WaitDelay: b.waitDelay,
	}, logStderr)

	// caller's cancellation wins over whatever the process did meanwhile
	if ctx.Err() != nil {
		slog.DebugContext(ctx, "check cancelled", "elapsed", res.Elapsed().String())
		return model.Result{}, &model.CancelledError{Cause: context.Cause(ctx)}
	}
	if runCtx.Err() != nil {
		err := &model.ProcessError{
			Path:     path,
			ExitCode: -1,
			Stderr:   strings.TrimSpace(res.Stderr.String()),
			TimedOut: true,
			Err:      context.Cause(runCtx),
		}
		slog.DebugContext(ctx, "check timed out", "timeout", b.timeout.String())
		return model.Result{}, err
	}
	if res.Err != nil {
		err := b.processError(path, res)
		slog.DebugContext(ctx, "check failed", "kind", model.Kind(err), "error", err)
		return model.Result{}, err
	}

	result, err := Decode(res.Stdout.Bytes())
	if err != nil {
		slog.DebugContext(ctx, "check failed", "kind", model.Kind(err), "error", err)
		return model.Result{}, err
	}
	slog.DebugContext(ctx, "check finished",
		"checks", len(result.Checks),
		"elapsed", res.Elapsed().String(),
	)
	return result, nil
}

func (b Bridge) processError(path string, res runner.Result) error {
	if res.State == nil {
		if errors.Is(res.Err, fs.ErrNotExist) ||
			errors.Is(res.Err, fs.ErrPermission) ||
			errors.Is(res.Err, exec.ErrNotFound) {
			return &model.ExecutableNotFoundError{Path: path, OS: string(b.os), Err: res.Err}
		}
		return &model.ProcessError{Path: path, ExitCode: -1, Err: res.Err}
	}

	pe := &model.ProcessError{
		Path:     path,
		ExitCode: res.State.ExitCode(),
		Stderr:   strings.TrimSpace(res.Stderr.String()),
		Err:      res.Err,
	}
	if pe.ExitCode == -1 {
		pe.Signal = strings.TrimPrefix(res.State.String(), "signal: ")
	}
	return pe
}

func logStderr(ctx context.Context, line string) {
	slog.DebugContext(ctx, "analyzer stderr", "line", line)
}
