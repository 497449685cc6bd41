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

package accountdb

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/GoogleCloudPlatform/galog"
	"github.com/GoogleCloudPlatform/google-guest-accounts/internal/run"
)

const (
	// getentNoSuchKey is the exit code returned by getent when a key is not
	// found in the database.
	//
	// Per documentation, exit code 2: "One or more supplied key could not be
	// found in the database", see the man page:
	//
	// https://man7.org/linux/man-pages/man1/getent.1.html.
	getentNoSuchKey = 2

	getentPasswd = "passwd"
	getentGroup  = "group"
)

// Getent is a database querying the system through getent(1), lookups and
// enumeration go through NSS so they include remote directories (LDAP, OS
// Login etc).
type Getent struct {
	// Command is the getent binary name or path.
	Command string
}

// NewGetent returns a getent database running the given command.
func NewGetent(command string) *Getent {
	if command == "" {
		command = DefaultGetentCommand
	}
	return &Getent{Command: command}
}

// query runs getent for a single key and returns its first record line.
func (db *Getent) query(ctx context.Context, database, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	res, err := run.WithContext(ctx, run.Options{
		OutputType: run.OutputStdout,
		Name:       db.Command,
		Args:       []string{database, key},
	})

	if err != nil {
		// No such key exit code is returned when the entry does not exist.
		if err, ok := run.AsExitError(err); ok && err.ExitCode() == getentNoSuchKey {
			return "", notFound(database, key)
		}
		return "", fmt.Errorf("could not query %s database: %w", database, err)
	}

	// The result of getent will contain a single entry (given we are querying a
	// single key).
	for _, line := range strings.Split(res.Output, "\n") {
		if !skipLine(line) {
			return line, nil
		}
	}
	return "", notFound(database, key)
}

// UserByName returns the user with the given login name. getent treats
// numeric keys as uids, entries whose name doesn't match are reported as not
// found.
func (db *Getent) UserByName(ctx context.Context, name string) (*PasswdEntry, error) {
	line, err := db.query(ctx, getentPasswd, name)
	if err != nil {
		return nil, err
	}

	entry, err := ParsePasswdEntry(line)
	if err != nil {
		return nil, fmt.Errorf("could not parse user %s: %w", name, err)
	}

	if entry.Name != name {
		return nil, notFound(getentPasswd, name)
	}
	return entry, nil
}

// UserByID returns the user with the given uid.
func (db *Getent) UserByID(ctx context.Context, id string) (*PasswdEntry, error) {
	if err := validateUnixID(id); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	line, err := db.query(ctx, getentPasswd, id)
	if err != nil {
		return nil, err
	}

	entry, err := ParsePasswdEntry(line)
	if err != nil {
		return nil, fmt.Errorf("could not parse user %s: %w", id, err)
	}
	return entry, nil
}

// GroupByName returns the group with the given name.
func (db *Getent) GroupByName(ctx context.Context, name string) (*GroupEntry, error) {
	line, err := db.query(ctx, getentGroup, name)
	if err != nil {
		return nil, err
	}

	entry, err := ParseGroupEntry(line)
	if err != nil {
		return nil, fmt.Errorf("could not parse group %s: %w", name, err)
	}

	if entry.Name != name {
		return nil, notFound(getentGroup, name)
	}
	return entry, nil
}

// GroupByID returns the group with the given gid.
func (db *Getent) GroupByID(ctx context.Context, id string) (*GroupEntry, error) {
	if err := validateUnixID(id); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	line, err := db.query(ctx, getentGroup, id)
	if err != nil {
		return nil, err
	}

	entry, err := ParseGroupEntry(line)
	if err != nil {
		return nil, fmt.Errorf("could not parse group %s: %w", id, err)
	}
	return entry, nil
}

// Users opens a cursor streaming "getent passwd".
func (db *Getent) Users(ctx context.Context) (*Cursor[PasswdEntry], error) {
	src, err := db.stream(ctx, getentPasswd)
	if err != nil {
		return nil, err
	}
	return newCursor[PasswdEntry](&lineSource[PasswdEntry]{readLine: src.readLine, parse: ParsePasswdEntry, release: src.release}), nil
}

// Groups opens a cursor streaming "getent group".
func (db *Getent) Groups(ctx context.Context) (*Cursor[GroupEntry], error) {
	src, err := db.stream(ctx, getentGroup)
	if err != nil {
		return nil, err
	}
	return newCursor[GroupEntry](&lineSource[GroupEntry]{readLine: src.readLine, parse: ParseGroupEntry, release: src.release}), nil
}

// getentStream owns a running "getent <database>" process. The process lives
// until its output is exhausted or release is called, whichever comes first.
type getentStream struct {
	database string
	out      *run.StreamOutput
	cancel   context.CancelFunc
	stderr   strings.Builder
	errDone  chan struct{}
	finished bool
	result   error
}

func (db *Getent) stream(ctx context.Context, database string) (*getentStream, error) {
	ctx, cancel := context.WithCancel(ctx)

	res, err := run.WithContext(ctx, run.Options{
		OutputType: run.OutputStream,
		Name:       db.Command,
		Args:       []string{database},
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("could not enumerate %s database: %w", database, err)
	}

	s := &getentStream{
		database: database,
		out:      res.OutputScanners,
		cancel:   cancel,
		errDone:  make(chan struct{}),
	}

	// stderr must be consumed for the process to make progress.
	go func() {
		defer close(s.errDone)
		for line := range s.out.StdErr {
			s.stderr.WriteString(line)
			s.stderr.WriteString("\n")
		}
	}()

	galog.V(2).Debugf("Enumerating %s database with %s (pid %d)", database, db.Command, res.Pid)
	return s, nil
}

func (s *getentStream) readLine() (string, error) {
	if s.finished {
		return "", s.eof()
	}

	line, ok := <-s.out.StdOut
	if ok {
		return line, nil
	}

	s.finish()
	return "", s.eof()
}

// finish collects the process exit status, all output channels must have been
// drained.
func (s *getentStream) finish() {
	if s.finished {
		return
	}
	s.finished = true
	<-s.errDone
	s.result = <-s.out.Result
	s.cancel()
}

func (s *getentStream) eof() error {
	if s.result != nil {
		return fmt.Errorf("getent %s failed: %w; %s", s.database, s.result, strings.TrimSpace(s.stderr.String()))
	}
	return io.EOF
}

// release stops the process if it's still running and waits for it.
func (s *getentStream) release() error {
	if s.finished {
		return nil
	}

	// Killing the process closes its pipes, the remaining output is discarded.
	s.cancel()
	for range s.out.StdOut {
	}
	s.finish()
	return nil
}
