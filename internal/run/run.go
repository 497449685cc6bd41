//  Copyright 2024 Google LLC
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

// Package run runs external commands, either collecting their output or
// streaming it line by line.
package run

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/GoogleCloudPlatform/galog"
)

var (
	// Client is the Runner running commands.
	Client RunnerInterface = Runner{}
)

// RunnerInterface defines the runner running commands.
type RunnerInterface interface {
	WithContext(ctx context.Context, opts Options) (*Result, error)
}

// OutputType selects how the command output is handed back.
type OutputType int

const (
	// OutputStdout runs the command to completion and returns its stdout. The
	// stderr is buffered and appended to the returned error on failure.
	OutputStdout OutputType = iota
	// OutputStream starts the command and returns immediately, the output is
	// delivered line by line on [StreamOutput]. The process is bound to the
	// passed down context.
	OutputStream
)

// Options represents the command options.
type Options struct {
	// OutputType is the output type requested.
	OutputType OutputType
	// Name is the command name.
	Name string
	// Args is the command arguments.
	Args []string
}

// StreamOutput carries the output of a streamed command. The channels are
// closed by the runner, callers only read from them. Both StdOut and StdErr
// must be drained, Result is only delivered once both pipes were consumed. It
// carries the exit status joined with any failure reading the pipes.
type StreamOutput struct {
	// StdOut delivers the stdout lines.
	StdOut <-chan string
	// StdErr delivers the stderr lines.
	StdErr <-chan string
	// Result delivers what cmd.Wait() returned.
	Result <-chan error
}

// Result represents the result of running a command.
type Result struct {
	// OutputType is the output type requested with [Options].
	OutputType OutputType
	// Output is the stdout of an OutputStdout command.
	Output string
	// OutputScanners streams the output of an OutputStream command.
	OutputScanners *StreamOutput
	// Pid is the process id of an OutputStream command.
	Pid int
}

// Runner implements RunnerInterface executing real processes.
type Runner struct{}

// WithContext runs the command with the given [Options].
func WithContext(ctx context.Context, opts Options) (*Result, error) {
	return Client.WithContext(ctx, opts)
}

// WithContext runs the command with the given [Options].
func (Runner) WithContext(ctx context.Context, opts Options) (*Result, error) {
	switch opts.OutputType {
	case OutputStdout:
		return stdoutOutput(ctx, opts)
	case OutputStream:
		return streamOutput(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown output type %d", opts.OutputType)
	}
}

// stdoutOutput runs the command to completion and returns its stdout.
func stdoutOutput(ctx context.Context, opts Options) (*Result, error) {
	galog.V(2).Debugf("Running command: %+v", opts)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, opts.Name, opts.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := stderr.String(); msg != "" {
			return nil, fmt.Errorf("%w; %s", err, msg)
		}
		return nil, err
	}
	return &Result{OutputType: OutputStdout, Output: stdout.String()}, nil
}

// streamOutput starts the command and streams its output.
func streamOutput(ctx context.Context, opts Options) (*Result, error) {
	galog.V(2).Debugf("Streaming command: %+v", opts)
	cmd := exec.CommandContext(ctx, opts.Name, opts.Args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("unable to obtain pipe to stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("unable to obtain pipe to stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("unable to start command: %w", err)
	}

	outChan := make(chan string)
	errChan := make(chan string)
	doneChan := make(chan error, 1)

	var pipes sync.WaitGroup
	var stdoutErr, stderrErr error
	pipes.Add(2)
	go scanPipe(&pipes, stdout, outChan, &stdoutErr)
	go scanPipe(&pipes, stderr, errChan, &stderrErr)

	// cmd.Wait() closes the pipes, both scanners must be done first. Read
	// failures are reported along with the exit status.
	go func() {
		defer close(doneChan)
		pipes.Wait()
		doneChan <- errors.Join(cmd.Wait(), stdoutErr, stderrErr)
	}()

	output := &StreamOutput{StdOut: outChan, StdErr: errChan, Result: doneChan}
	return &Result{OutputType: OutputStream, OutputScanners: output, Pid: cmd.Process.Pid}, nil
}

// scanPipe sends every line read from pipe on out and closes out at EOF. Lines
// have no length limit. A read failure is stored in readErr and the rest of
// the pipe is discarded, so the process never blocks writing to it.
func scanPipe(wg *sync.WaitGroup, pipe io.Reader, out chan<- string, readErr *error) {
	defer func() {
		close(out)
		wg.Done()
	}()

	reader := bufio.NewReader(pipe)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			out <- strings.TrimRight(line, "\r\n")
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
			return
		}

		*readErr = fmt.Errorf("failed to read pipe: %w", err)
		if _, err := io.Copy(io.Discard, pipe); err != nil {
			galog.V(2).Debugf("Failed to drain pipe: %v", err)
		}
		return
	}
}

// AsExitError returns an ExitError if the error is an ExitError.
func AsExitError(err error) (*exec.ExitError, bool) {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}
