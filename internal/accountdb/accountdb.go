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

// Package accountdb provides read access to the operating system's user and
// group account databases.
package accountdb

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// BackendSystem selects the platform's native account database: getent on
	// unix (falling back to files if getent is not available) and netapi32 on
	// windows.
	BackendSystem = "system"
	// BackendGetent selects the getent(1) backed database, it honors the NSS
	// configuration of the host.
	BackendGetent = "getent"
	// BackendFiles selects the flat /etc/passwd and /etc/group style files
	// database.
	BackendFiles = "files"

	// DefaultPasswdFile is the default passwd file used by the files backend.
	DefaultPasswdFile = "/etc/passwd"
	// DefaultGroupFile is the default group file used by the files backend.
	DefaultGroupFile = "/etc/group"
	// DefaultGetentCommand is the default getent command.
	DefaultGetentCommand = "getent"
)

var (
	// ErrNotFound is returned (wrapped) when the requested key does not exist
	// in the database.
	ErrNotFound = errors.New("no such entry")
	// ErrInvalidKey is returned when the requested key can never match an
	// entry, i.e. it's empty or contains a field separator. It is a variant of
	// ErrNotFound, errors.Is(ErrInvalidKey, ErrNotFound) is true.
	ErrInvalidKey = fmt.Errorf("%w: invalid key", ErrNotFound)
)

// PasswdEntry is a single user account record, fields follow the passwd(5)
// layout.
type PasswdEntry struct {
	// Name is the login name.
	Name string
	// Passwd is the (usually masked) password field.
	Passwd string
	// UID is the user id. It's a decimal number on unix and a SID string on
	// windows.
	UID string
	// GID is the primary group id, same format as UID.
	GID string
	// Gecos is the comment field, conventionally a comma separated list of
	// full name, room number, work phone and home phone.
	Gecos string
	// HomeDir is the home directory.
	HomeDir string
	// Shell is the login shell.
	Shell string
}

// GroupEntry is a single group record, fields follow the group(5) layout.
type GroupEntry struct {
	// Name is the group name.
	Name string
	// Passwd is the (usually masked) group password field.
	Passwd string
	// GID is the group id. It's a decimal number on unix and a SID string on
	// windows.
	GID string
	// Members is the list of member login names, in record order.
	Members []string
}

// Database is the account and group database. Lookups return an error
// wrapping ErrNotFound if no entry matches the key.
type Database interface {
	// UserByName returns the user with the given login name.
	UserByName(ctx context.Context, name string) (*PasswdEntry, error)
	// UserByID returns the user with the given user id.
	UserByID(ctx context.Context, id string) (*PasswdEntry, error)
	// GroupByName returns the group with the given name.
	GroupByName(ctx context.Context, name string) (*GroupEntry, error)
	// GroupByID returns the group with the given group id.
	GroupByID(ctx context.Context, id string) (*GroupEntry, error)
	// Users opens a cursor over all users, the caller must close it.
	Users(ctx context.Context) (*Cursor[PasswdEntry], error)
	// Groups opens a cursor over all groups, the caller must close it.
	Groups(ctx context.Context) (*Cursor[GroupEntry], error)
}

// Options configures the database returned by New.
type Options struct {
	// Backend is one of BackendSystem, BackendGetent or BackendFiles. An empty
	// value means BackendSystem.
	Backend string
	// GetentCommand is the getent command, defaults to DefaultGetentCommand.
	GetentCommand string
	// PasswdFile is the passwd file read by the files backend, defaults to
	// DefaultPasswdFile.
	PasswdFile string
	// GroupFile is the group file read by the files backend, defaults to
	// DefaultGroupFile.
	GroupFile string
}

func (o Options) withDefaults() Options {
	if o.Backend == "" {
		o.Backend = BackendSystem
	}
	if o.GetentCommand == "" {
		o.GetentCommand = DefaultGetentCommand
	}
	if o.PasswdFile == "" {
		o.PasswdFile = DefaultPasswdFile
	}
	if o.GroupFile == "" {
		o.GroupFile = DefaultGroupFile
	}
	return o
}

// New returns the database selected by opts.
func New(opts Options) (Database, error) {
	opts = opts.withDefaults()

	switch strings.ToLower(opts.Backend) {
	case BackendSystem:
		return newSystemDatabase(opts), nil
	case BackendGetent:
		return NewGetent(opts.GetentCommand), nil
	case BackendFiles:
		return NewFiles(opts.PasswdFile, opts.GroupFile), nil
	default:
		return nil, fmt.Errorf("unknown account database backend %q", opts.Backend)
	}
}

// validateKey rejects keys that can't possibly match a record, these are
// reported as not found without consulting the database.
func validateKey(key string) error {
	switch {
	case key == "":
		return fmt.Errorf("empty key: %w", ErrInvalidKey)
	case strings.ContainsAny(key, ":\n\r\x00"):
		return fmt.Errorf("key %q contains a field or record separator: %w", key, ErrInvalidKey)
	case strings.HasPrefix(key, "-"), strings.HasPrefix(key, "+"):
		return fmt.Errorf("key %q starts with %q: %w", key, key[:1], ErrInvalidKey)
	}
	return nil
}

// notFound wraps ErrNotFound with the database and key looked up.
func notFound(database, key string) error {
	return fmt.Errorf("%s entry %q: %w", database, key, ErrNotFound)
}
