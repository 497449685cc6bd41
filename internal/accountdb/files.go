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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// Files is a database backed by /etc/passwd and /etc/group style files. Every
// call re-reads the files, nothing is cached.
type Files struct {
	// PasswdFile is the passwd file path.
	PasswdFile string
	// GroupFile is the group file path.
	GroupFile string
}

// NewFiles returns a files database reading the given passwd and group files.
func NewFiles(passwdFile, groupFile string) *Files {
	return &Files{PasswdFile: passwdFile, GroupFile: groupFile}
}

// openLines opens path and returns a line source reading it.
func openLines[T any](path string, parse func(string) (*T, error)) (*Cursor[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database file %s: %w", path, err)
	}

	reader := bufio.NewReader(f)
	src := &lineSource[T]{
		readLine: func() (string, error) {
			line, err := reader.ReadString('\n')
			switch {
			case err == nil:
				return line, nil
			case errors.Is(err, io.EOF):
				// Last line without a trailing newline.
				if line != "" {
					return line, nil
				}
				return "", io.EOF
			default:
				return "", fmt.Errorf("failed to read database file %s: %w", path, err)
			}
		},
		parse:   parse,
		release: f.Close,
	}
	return newCursor[T](src), nil
}

// find walks the cursor returning the first entry matching.
func find[T any](c *Cursor[T], match func(*T) bool) (*T, bool, error) {
	defer c.Close()
	for c.Next() {
		if e := c.Entry(); match(e) {
			return e, true, nil
		}
	}
	return nil, false, c.Err()
}

// Users opens a cursor over the passwd file.
func (db *Files) Users(ctx context.Context) (*Cursor[PasswdEntry], error) {
	return openLines(db.PasswdFile, ParsePasswdEntry)
}

// Groups opens a cursor over the group file.
func (db *Files) Groups(ctx context.Context) (*Cursor[GroupEntry], error) {
	return openLines(db.GroupFile, ParseGroupEntry)
}

func (db *Files) findUser(ctx context.Context, key string, match func(*PasswdEntry) bool) (*PasswdEntry, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	c, err := db.Users(ctx)
	if err != nil {
		return nil, err
	}

	entry, found, err := find(c, match)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, notFound("passwd", key)
	}
	return entry, nil
}

func (db *Files) findGroup(ctx context.Context, key string, match func(*GroupEntry) bool) (*GroupEntry, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	c, err := db.Groups(ctx)
	if err != nil {
		return nil, err
	}

	entry, found, err := find(c, match)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, notFound("group", key)
	}
	return entry, nil
}

// UserByName returns the first passwd entry with the given login name.
func (db *Files) UserByName(ctx context.Context, name string) (*PasswdEntry, error) {
	return db.findUser(ctx, name, func(e *PasswdEntry) bool { return e.Name == name })
}

// UserByID returns the first passwd entry with the given uid. Ids are compared
// by value, "01000" matches 1000.
func (db *Files) UserByID(ctx context.Context, id string) (*PasswdEntry, error) {
	uid, err := parseUnixID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return db.findUser(ctx, id, func(e *PasswdEntry) bool { return sameUnixID(e.UID, uid) })
}

// GroupByName returns the first group entry with the given name.
func (db *Files) GroupByName(ctx context.Context, name string) (*GroupEntry, error) {
	return db.findGroup(ctx, name, func(e *GroupEntry) bool { return e.Name == name })
}

// GroupByID returns the first group entry with the given gid, compared by
// value.
func (db *Files) GroupByID(ctx context.Context, id string) (*GroupEntry, error) {
	gid, err := parseUnixID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return db.findGroup(ctx, id, func(e *GroupEntry) bool { return sameUnixID(e.GID, gid) })
}
