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

//go:build windows

package accountdb

import (
	"context"
	"errors"
	"fmt"
	"os/user"

	"github.com/GoogleCloudPlatform/galog"
	"golang.org/x/sys/windows"
)

var (
	// The following has been stubbed out for error injection testing.
	lookupUser    = user.Lookup
	lookupUserID  = user.LookupId
	lookupGroup   = user.LookupGroup
	lookupGroupID = user.LookupGroupId

	netUserEnum             = defaultNetUserEnum
	netLocalGroupEnum       = defaultNetLocalGroupEnum
	netLocalGroupGetMembers = defaultNetLocalGroupGetMembers
)

// NetAPI is the windows account database. Single record lookups go through
// the security account manager (LookupAccountName/LookupAccountSid) and
// enumeration through netapi32, user and group ids are SID strings.
type NetAPI struct{}

// lookupError maps os/user lookup failures to ErrNotFound where applicable.
func lookupError(database, key string, err error) error {
	var (
		unknownUser    user.UnknownUserError
		unknownUserID  user.UnknownUserIdError
		unknownGroup   user.UnknownGroupError
		unknownGroupID user.UnknownGroupIdError
	)

	switch {
	case errors.As(err, &unknownUser), errors.As(err, &unknownUserID),
		errors.As(err, &unknownGroup), errors.As(err, &unknownGroupID),
		errors.Is(err, windows.ERROR_NONE_MAPPED):
		return notFound(database, key)
	}
	return fmt.Errorf("failed to look up %s entry %q: %w", database, key, err)
}

func userEntry(u *user.User) *PasswdEntry {
	return &PasswdEntry{
		Name:    u.Username,
		UID:     u.Uid,
		GID:     u.Gid,
		Gecos:   u.Name,
		HomeDir: u.HomeDir,
	}
}

// groupEntry builds the group entry, member lookup failures (i.e. for domain
// groups) leave the member list empty.
func groupEntry(g *user.Group) *GroupEntry {
	members, err := netLocalGroupGetMembers(g.Name)
	if err != nil {
		galog.V(1).Debugf("Failed to list members of group %s: %v", g.Name, err)
	}
	return &GroupEntry{Name: g.Name, GID: g.Gid, Members: members}
}

// UserByName returns the user with the given account name.
func (NetAPI) UserByName(_ context.Context, name string) (*PasswdEntry, error) {
	if err := validateKey(name); err != nil {
		return nil, err
	}
	u, err := lookupUser(name)
	if err != nil {
		return nil, lookupError("passwd", name, err)
	}
	return userEntry(u), nil
}

// UserByID returns the user with the given SID.
func (NetAPI) UserByID(_ context.Context, id string) (*PasswdEntry, error) {
	if err := validateKey(id); err != nil {
		return nil, err
	}
	u, err := lookupUserID(id)
	if err != nil {
		return nil, lookupError("passwd", id, err)
	}
	return userEntry(u), nil
}

// GroupByName returns the local group with the given name.
func (NetAPI) GroupByName(_ context.Context, name string) (*GroupEntry, error) {
	if err := validateKey(name); err != nil {
		return nil, err
	}
	g, err := lookupGroup(name)
	if err != nil {
		return nil, lookupError("group", name, err)
	}
	return groupEntry(g), nil
}

// GroupByID returns the group with the given SID.
func (NetAPI) GroupByID(_ context.Context, id string) (*GroupEntry, error) {
	if err := validateKey(id); err != nil {
		return nil, err
	}
	g, err := lookupGroupID(id)
	if err != nil {
		return nil, lookupError("group", id, err)
	}
	return groupEntry(g), nil
}

// Users opens a cursor over the local user accounts, each account is resolved
// when the cursor reaches it.
func (db NetAPI) Users(ctx context.Context) (*Cursor[PasswdEntry], error) {
	names, err := netUserEnum()
	if err != nil {
		return nil, fmt.Errorf("could not enumerate users: %w", err)
	}
	resolve := func(name string) (*PasswdEntry, error) { return db.UserByName(ctx, name) }
	return newCursor[PasswdEntry](&sliceSource[PasswdEntry]{keys: names, resolve: resolve}), nil
}

// Groups opens a cursor over the local groups, each group is resolved when the
// cursor reaches it.
func (db NetAPI) Groups(ctx context.Context) (*Cursor[GroupEntry], error) {
	names, err := netLocalGroupEnum()
	if err != nil {
		return nil, fmt.Errorf("could not enumerate groups: %w", err)
	}
	resolve := func(name string) (*GroupEntry, error) { return db.GroupByName(ctx, name) }
	return newCursor[GroupEntry](&sliceSource[GroupEntry]{keys: names, resolve: resolve}), nil
}
