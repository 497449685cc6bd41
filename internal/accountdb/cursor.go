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
	"errors"
	"io"

	"github.com/GoogleCloudPlatform/galog"
)

// source produces the entries walked by a Cursor.
type source[T any] interface {
	// next returns the next entry or io.EOF once the source is exhausted.
	next() (*T, error)
	// close releases the resources held by the source.
	close() error
}

// Cursor is a sequential, forward only iterator over a database. A cursor is
// open from its creation until Close is called, callers must always close it:
//
//	c, err := db.Users(ctx)
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//	for c.Next() {
//		entry := c.Entry()
//	}
//	return c.Err()
//
// Cursors don't share state, opening a cursor while another one is open (i.e.
// resolving group members while walking groups) is safe.
type Cursor[T any] struct {
	src    source[T]
	entry  *T
	err    error
	closed bool
}

func newCursor[T any](src source[T]) *Cursor[T] {
	return &Cursor[T]{src: src}
}

// Next advances the cursor, it returns false when the database is exhausted,
// when reading failed (see Err) or when the cursor was closed.
func (c *Cursor[T]) Next() bool {
	if c.closed || c.err != nil {
		return false
	}

	entry, err := c.src.next()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			c.err = err
		}
		c.entry = nil
		return false
	}

	c.entry = entry
	return true
}

// Entry returns the entry the cursor is positioned on, it's nil before the
// first call to Next and after Next returned false.
func (c *Cursor[T]) Entry() *T {
	return c.entry
}

// Err returns the error that stopped the iteration, if any.
func (c *Cursor[T]) Err() error {
	return c.err
}

// Close releases the cursor. It's safe to call Close more than once.
func (c *Cursor[T]) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.entry = nil
	return c.src.close()
}

// lineSource adapts a line oriented reader (a file or a command output) to a
// source, skipping non record and malformed lines.
type lineSource[T any] struct {
	// readLine returns the next line or io.EOF.
	readLine func() (string, error)
	// parse converts a line into an entry.
	parse func(string) (*T, error)
	// release frees the underlying reader.
	release func() error
}

func (s *lineSource[T]) next() (*T, error) {
	for {
		line, err := s.readLine()
		if err != nil {
			return nil, err
		}

		if skipLine(line) {
			continue
		}

		entry, err := s.parse(line)
		if err != nil {
			galog.V(2).Debugf("Skipping malformed database line: %v", err)
			continue
		}
		return entry, nil
	}
}

func (s *lineSource[T]) close() error {
	if s.release == nil {
		return nil
	}
	return s.release()
}

// sliceSource walks a list of keys resolving each of them lazily, keys that no
// longer resolve are skipped.
type sliceSource[T any] struct {
	keys    []string
	idx     int
	resolve func(string) (*T, error)
}

func (s *sliceSource[T]) next() (*T, error) {
	for s.idx < len(s.keys) {
		key := s.keys[s.idx]
		s.idx++

		entry, err := s.resolve(key)
		if errors.Is(err, ErrNotFound) {
			galog.V(2).Debugf("Entry %q vanished during enumeration, skipping", key)
			continue
		}
		if err != nil {
			return nil, err
		}
		return entry, nil
	}
	return nil, io.EOF
}

func (s *sliceSource[T]) close() error {
	s.keys = nil
	return nil
}
