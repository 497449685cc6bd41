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

package accounts

import (
	"context"

	"github.com/GoogleCloudPlatform/google-guest-accounts/internal/accountdb"
	"golang.org/x/exp/slices"
)

// UserGroup is a group and its resolved members. It's an immutable value,
// copies share the same read only record. The zero value is an invalid group.
type UserGroup struct {
	rec *groupRecord
}

type groupRecord struct {
	gid     GroupID
	name    string
	members []User
}

// NewGroupFromEntry returns the group described by a database entry. Each
// member name is resolved with one user lookup, members that can't be resolved
// are left out.
func NewGroupFromEntry(ctx context.Context, e *accountdb.GroupEntry) UserGroup {
	if e == nil {
		return UserGroup{}
	}

	gid := GroupID{key: keyFromString(e.GID)}
	if !gid.IsValid() {
		return UserGroup{}
	}

	members := make([]User, 0, len(e.Members))
	for _, name := range e.Members {
		u := FindUser(ctx, name)
		if !u.IsValid() {
			continue
		}
		members = append(members, u)
	}

	return UserGroup{rec: &groupRecord{gid: gid, name: e.Name, members: members}}
}

// CurrentGroup returns the primary group of the user CurrentUser resolves for
// mode.
func CurrentGroup(ctx context.Context, mode UIDMode) UserGroup {
	return FindGroupByID(ctx, CurrentUser(ctx, mode).GroupID())
}

// FindGroup looks up a group by name.
func FindGroup(ctx context.Context, name string) UserGroup {
	e, err := database().GroupByName(ctx, name)
	if err != nil {
		logLookupFailure("group", name, err)
		return UserGroup{}
	}
	return NewGroupFromEntry(ctx, e)
}

// FindGroupByID looks up a group by id, an invalid id yields an invalid group.
func FindGroupByID(ctx context.Context, id GroupID) UserGroup {
	if !id.IsValid() {
		return UserGroup{}
	}

	e, err := database().GroupByID(ctx, id.String())
	if err != nil {
		logLookupFailure("group id", id.String(), err)
		return UserGroup{}
	}
	return NewGroupFromEntry(ctx, e)
}

// FindGroupByNativeID looks up a group by native id.
func FindGroupByNativeID(ctx context.Context, id NativeID) UserGroup {
	return FindGroupByID(ctx, NewGroupID(id))
}

// IsValid returns true if g is an existing group.
func (g UserGroup) IsValid() bool {
	return g.rec != nil && g.rec.gid.IsValid()
}

// Equal returns true if both groups are valid and have the same group id.
func (g UserGroup) Equal(other UserGroup) bool {
	return g.IsValid() && other.IsValid() && g.rec.gid == other.rec.gid
}

// GroupID returns the group's id.
func (g UserGroup) GroupID() GroupID {
	if !g.IsValid() {
		return GroupID{}
	}
	return g.rec.gid
}

// Name returns the group's name.
func (g UserGroup) Name() string {
	if !g.IsValid() {
		return ""
	}
	return g.rec.name
}

// Users returns the group members in record order, at most maxCount of them
// (Unlimited for all of them).
func (g UserGroup) Users(maxCount int) []User {
	if !g.IsValid() {
		return []User{}
	}

	n := len(g.rec.members)
	if maxCount >= 0 && maxCount < n {
		n = maxCount
	}
	return slices.Clone(g.rec.members[:n])
}

// UserNames returns the login names of the group members, at most maxCount of
// them.
func (g UserGroup) UserNames(maxCount int) []string {
	users := g.Users(maxCount)
	res := make([]string, 0, len(users))
	for _, u := range users {
		res = append(res, u.LoginName())
	}
	return res
}

// AllGroups returns all groups of the database with their members resolved, at
// most maxCount of them (Unlimited for no bound), in database order.
func AllGroups(ctx context.Context, maxCount int) []UserGroup {
	conv := func(e *accountdb.GroupEntry) (UserGroup, bool) {
		g := NewGroupFromEntry(ctx, e)
		return g, g.IsValid()
	}
	return collect(ctx, "groups", maxCount, database().Groups, conv)
}

// AllGroupNames returns the names of all groups, at most maxCount of them.
func AllGroupNames(ctx context.Context, maxCount int) []string {
	conv := func(e *accountdb.GroupEntry) (string, bool) { return e.Name, true }
	return collect(ctx, "groups", maxCount, database().Groups, conv)
}
