// Package runner is a thin, opinionated wrapper around os/exec running a
// single command to completion:
//   - starts the process, killing it once ctx is done
//   - captures stdout
//   - captures stderr, optionally passing each line to a callback
//   - returns a Result once the process has been reaped
//
// Run keeps no state between calls and can be called from multiple
// goroutines.
package runner

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// MaxStderr is the number of stderr bytes kept in Result.Stderr.
const MaxStderr = 64 << 10

// MaxLine is the longest stderr line passed to a StderrFunc, longer lines
// are split.
const MaxLine = bufio.MaxScanTokenSize

type StderrFunc func(ctx context.Context, line string)

type Command struct {
	Path string
	Args []string
	// Env is appended to the environment of the current process.
	Env []string
	// WaitDelay bounds the wait for I/O after the process was killed.
	WaitDelay time.Duration
}

type Result struct {
	Path    string
	Args    []string
	Started time.Time
	Stopped time.Time
	State   *os.ProcessState
	Stdout  *bytes.Buffer
	Stderr  *bytes.Buffer
	// Err is the start or wait error, *exec.ExitError for unsuccessful exit
	Err error
}

// Elapsed returns how long the process ran.
func (r Result) Elapsed() time.Duration {
	return r.Stopped.Sub(r.Started)
}

// Run starts the command and waits for it to exit or for ctx to be done,
// whichever comes first. If ctx is done the process is killed and Run
// returns after it has been reaped.
func Run(ctx context.Context, proto Command, stderrFunc StderrFunc) Result {
	res := Result{
		Path:   proto.Path,
		Args:   append([]string(nil), proto.Args...),
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	}

	cmd := exec.CommandContext(ctx, proto.Path, proto.Args...)
	if len(proto.Env) > 0 {
		cmd.Env = append(os.Environ(), proto.Env...)
	}
	cmd.WaitDelay = proto.WaitDelay
	cmd.Stdout = res.Stdout
	cmd.Stderr = &lineWriter{
		ctx:  ctx,
		buf:  res.Stderr,
		max:     MaxStderr,
		maxLine: MaxLine,
		line:    stderrFunc,
	}

	res.Started = time.Now().UTC()
	if err := cmd.Start(); err != nil {
		res.Stopped = time.Now().UTC()
		res.Err = err
		return res
	}
	slog.DebugContext(ctx, "process started", "pid", cmd.Process.Pid)

	err := cmd.Wait()
	res.Stopped = time.Now().UTC()
	res.State = cmd.ProcessState
	res.Err = err
	if w, ok := cmd.Stderr.(*lineWriter); ok {
		w.flush()
	}
	if errors.Is(err, exec.ErrWaitDelay) {
		slog.WarnContext(ctx, "process output not closed in time", "wait_delay", proto.WaitDelay)
	}
	return res
}

// lineWriter stores up to max bytes and passes complete lines to line.
// Lines longer than maxLine are split, so pending never grows past it.
// os/exec writes to it from a single goroutine.
type lineWriter struct {
	ctx     context.Context
	buf     *bytes.Buffer
	max     int
	maxLine int
	line    StderrFunc
	pending []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	if room := w.max - w.buf.Len(); room > 0 {
		w.buf.Write(p[:min(room, len(p))])
	}
	if w.line == nil {
		return len(p), nil
	}
	w.pending = append(w.pending, p...)
	rest := w.pending
	for {
		i := bytes.IndexByte(rest, '\n')
		if i >= 0 && i <= w.maxLine {
			w.line(w.ctx, string(bytes.TrimSuffix(rest[:i], []byte{'\r'})))
			rest = rest[i+1:]
			continue
		}
		if len(rest) > w.maxLine {
			w.line(w.ctx, string(rest[:w.maxLine]))
			rest = rest[w.maxLine:]
			continue
		}
		break
	}
	w.pending = append(w.pending[:0], rest...)
	return len(p), nil
}

func (w *lineWriter) flush() {
	if w.line != nil && len(w.pending) > 0 {
		w.line(w.ctx, string(w.pending))
		w.pending = nil
	}
}
