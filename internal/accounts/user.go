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
	"path/filepath"
	"strings"

	"github.com/GoogleCloudPlatform/galog"
	"github.com/GoogleCloudPlatform/google-guest-accounts/internal/accountdb"
	"github.com/GoogleCloudPlatform/google-guest-accounts/internal/utils/file"
	"golang.org/x/exp/slices"
)

// UIDMode selects which of the process' user ids CurrentUser resolves.
type UIDMode int

const (
	// UseEffectiveUserID resolves the effective user id.
	UseEffectiveUserID UIDMode = iota
	// UseRealUserID resolves the real user id.
	UseRealUserID
)

// Properties are the descriptive fields carried by the gecos field of an
// account, in gecos order.
type Properties struct {
	FullName   string
	RoomNumber string
	WorkPhone  string
	HomePhone  string
}

// User is a user account. It's an immutable value, copies share the same
// read only record. The zero value is an invalid user.
type User struct {
	rec *userRecord
}

type userRecord struct {
	uid       UserID
	gid       GroupID
	loginName string
	homeDir   string
	shell     string
	props     Properties
}

// parseGecos splits the gecos field, missing fields are left empty and fields
// past the home phone are ignored.
func parseGecos(gecos string) Properties {
	fields := strings.Split(gecos, ",")
	for len(fields) < 4 {
		fields = append(fields, "")
	}
	return Properties{
		FullName:   fields[0],
		RoomNumber: fields[1],
		WorkPhone:  fields[2],
		HomePhone:  fields[3],
	}
}

// NewUserFromEntry returns the user described by a database entry without
// querying the database. A nil entry or an entry without a valid uid yields an
// invalid user.
func NewUserFromEntry(e *accountdb.PasswdEntry) User {
	if e == nil {
		return User{}
	}

	uid := UserID{key: keyFromString(e.UID)}
	if !uid.IsValid() {
		return User{}
	}

	homeDir := e.HomeDir
	// The environment belongs to the process' user, it only applies if the
	// record is that user both for the real and effective ids.
	if uid == CurrentUserID() && uid == CurrentEffectiveUserID() {
		if env := getenv(homeEnv); env != "" {
			homeDir = env
		}
	}

	return User{rec: &userRecord{
		uid:       uid,
		gid:       GroupID{key: keyFromString(e.GID)},
		loginName: e.Name,
		homeDir:   homeDir,
		shell:     e.Shell,
		props:     parseGecos(e.Gecos),
	}}
}

// CurrentUser returns the user running the process. With UseEffectiveUserID,
// if the effective id differs from the real one the effective user is
// returned. Otherwise the login name environment variables are tried first,
// any of them only counts if it resolves to the real user id.
func CurrentUser(ctx context.Context, mode UIDMode) User {
	uid := CurrentUserID()

	if mode == UseEffectiveUserID {
		if euid := CurrentEffectiveUserID(); euid != uid {
			return FindUserByID(ctx, euid)
		}
	}

	for _, env := range loginNameEnvs {
		name := getenv(env)
		if name == "" {
			continue
		}
		if u := FindUser(ctx, name); u.IsValid() && u.UserID() == uid {
			return u
		}
		galog.V(2).Debugf("Ignoring %s=%q, it does not match user id %s", env, name, uid)
	}

	return FindUserByID(ctx, uid)
}

// FindUser looks up a user by login name.
func FindUser(ctx context.Context, loginName string) User {
	e, err := database().UserByName(ctx, loginName)
	if err != nil {
		logLookupFailure("user", loginName, err)
		return User{}
	}
	return NewUserFromEntry(e)
}

// FindUserByID looks up a user by id, an invalid id yields an invalid user.
func FindUserByID(ctx context.Context, id UserID) User {
	if !id.IsValid() {
		return User{}
	}

	e, err := database().UserByID(ctx, id.String())
	if err != nil {
		logLookupFailure("user id", id.String(), err)
		return User{}
	}
	return NewUserFromEntry(e)
}

// FindUserByNativeID looks up a user by native id.
func FindUserByNativeID(ctx context.Context, id NativeID) User {
	return FindUserByID(ctx, NewUserID(id))
}

// IsValid returns true if u is an existing account.
func (u User) IsValid() bool {
	return u.rec != nil && u.rec.uid.IsValid()
}

// Equal returns true if both users are valid and have the same user id.
func (u User) Equal(other User) bool {
	return u.IsValid() && other.IsValid() && u.rec.uid == other.rec.uid
}

// UserID returns the user's id.
func (u User) UserID() UserID {
	if !u.IsValid() {
		return UserID{}
	}
	return u.rec.uid
}

// GroupID returns the user's primary group id.
func (u User) GroupID() GroupID {
	if !u.IsValid() {
		return GroupID{}
	}
	return u.rec.gid
}

// LoginName returns the user's login name.
func (u User) LoginName() string {
	if !u.IsValid() {
		return ""
	}
	return u.rec.loginName
}

// HomeDir returns the user's home directory.
func (u User) HomeDir() string {
	if !u.IsValid() {
		return ""
	}
	return u.rec.homeDir
}

// Shell returns the user's login shell.
func (u User) Shell() string {
	if !u.IsValid() {
		return ""
	}
	return u.rec.shell
}

// Properties returns the user's descriptive properties.
func (u User) Properties() Properties {
	if !u.IsValid() {
		return Properties{}
	}
	return u.rec.props
}

// FullName returns the user's full name.
func (u User) FullName() string {
	return u.Properties().FullName
}

// IsSuperUser returns true if u is the administrative account, root on unix.
func (u User) IsSuperUser() bool {
	return u.IsValid() && u.rec.uid.key.superUser()
}

// FaceIconPath returns the path of the user's face icon, or an empty string if
// the user has none.
func (u User) FaceIconPath() string {
	if !u.IsValid() || u.rec.homeDir == "" {
		return ""
	}

	p := filepath.Join(u.rec.homeDir, configuredFaceIconName())
	if !file.Exists(p, file.TypeFile) {
		return ""
	}
	return p
}

// memberGroups scans all groups and returns the ones u is a member of, at most
// maxCount of them in scan order.
func (u User) memberGroups(ctx context.Context, maxCount int) []UserGroup {
	if !u.IsValid() {
		return []UserGroup{}
	}

	conv := func(e *accountdb.GroupEntry) (UserGroup, bool) {
		g := NewGroupFromEntry(ctx, e)
		return g, slices.ContainsFunc(g.Users(Unlimited), u.Equal)
	}
	return collect(ctx, "groups", maxCount, database().Groups, conv)
}

// Groups returns the groups listing u as a member, at most maxCount of them
// (Unlimited for no bound). The primary group only counts if it lists u.
func (u User) Groups(ctx context.Context, maxCount int) []UserGroup {
	return u.memberGroups(ctx, maxCount)
}

// GroupNames returns the names of the groups listing u as a member, at most
// maxCount of them.
func (u User) GroupNames(ctx context.Context, maxCount int) []string {
	groups := u.memberGroups(ctx, maxCount)
	res := make([]string, 0, len(groups))
	for _, g := range groups {
		res = append(res, g.Name())
	}
	return res
}

// AllUsers returns all users of the database, at most maxCount of them
// (Unlimited for no bound), in database order.
func AllUsers(ctx context.Context, maxCount int) []User {
	conv := func(e *accountdb.PasswdEntry) (User, bool) {
		u := NewUserFromEntry(e)
		return u, u.IsValid()
	}
	return collect(ctx, "users", maxCount, database().Users, conv)
}

// AllUserNames returns the login names of all users, at most maxCount of them.
func AllUserNames(ctx context.Context, maxCount int) []string {
	conv := func(e *accountdb.PasswdEntry) (string, bool) { return e.Name, true }
	return collect(ctx, "users", maxCount, database().Users, conv)
}
