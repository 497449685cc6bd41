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

	"github.com/GoogleCloudPlatform/galog"
)

// UserID identifies a user account. The zero value is the invalid id, all
// invalid ids compare equal no matter how they were obtained so == can be
// used as well as Equal.
type UserID struct {
	key idKey
}

// GroupID identifies a group. The zero value is the invalid id, all invalid
// ids compare equal.
type GroupID struct {
	key idKey
}

// NewUserID returns the user id wrapping the native id.
func NewUserID(id NativeID) UserID {
	return UserID{key: keyFromNative(id)}
}

// CurrentUserID returns the real user id of the process.
func CurrentUserID() UserID {
	return UserID{key: currentUserKey()}
}

// CurrentEffectiveUserID returns the effective user id of the process.
func CurrentEffectiveUserID() UserID {
	return UserID{key: currentEffectiveUserKey()}
}

// UserIDFromName resolves a login name to its user id. The returned id is
// invalid, and a warning is logged, if the name can't be resolved.
func UserIDFromName(ctx context.Context, name string) UserID {
	e, err := database().UserByName(ctx, name)
	if err != nil {
		galog.Warnf("Failed to resolve user name %q: %v", name, err)
		return UserID{}
	}
	return UserID{key: keyFromString(e.UID)}
}

// ParseUserID parses the string form of a user id, as returned by String. The
// returned id is invalid if s is malformed.
func ParseUserID(s string) UserID {
	return UserID{key: keyFromString(s)}
}

// IsValid returns true if id identifies a user.
func (id UserID) IsValid() bool { return id.key.valid() }

// Equal returns true if both ids are invalid or both identify the same user.
func (id UserID) Equal(other UserID) bool { return id.key == other.key }

// Native returns the platform's native representation of the id.
func (id UserID) Native() NativeID { return id.key.native() }

// String returns the decimal uid on unix and the SID string on windows.
func (id UserID) String() string { return id.key.String() }

// NewGroupID returns the group id wrapping the native id.
func NewGroupID(id NativeID) GroupID {
	return GroupID{key: keyFromNative(id)}
}

// CurrentGroupID returns the real group id of the process.
func CurrentGroupID() GroupID {
	return GroupID{key: currentGroupKey()}
}

// CurrentEffectiveGroupID returns the effective group id of the process.
func CurrentEffectiveGroupID() GroupID {
	return GroupID{key: currentEffectiveGroupKey()}
}

// GroupIDFromName resolves a group name to its group id. The returned id is
// invalid, and a warning is logged, if the name can't be resolved.
func GroupIDFromName(ctx context.Context, name string) GroupID {
	e, err := database().GroupByName(ctx, name)
	if err != nil {
		galog.Warnf("Failed to resolve group name %q: %v", name, err)
		return GroupID{}
	}
	return GroupID{key: keyFromString(e.GID)}
}

// ParseGroupID parses the string form of a group id, as returned by String.
// The returned id is invalid if s is malformed.
func ParseGroupID(s string) GroupID {
	return GroupID{key: keyFromString(s)}
}

// IsValid returns true if id identifies a group.
func (id GroupID) IsValid() bool { return id.key.valid() }

// Equal returns true if both ids are invalid or both identify the same group.
func (id GroupID) Equal(other GroupID) bool { return id.key == other.key }

// Native returns the platform's native representation of the id.
func (id GroupID) Native() NativeID { return id.key.native() }

// String returns the decimal gid on unix and the SID string on windows.
func (id GroupID) String() string { return id.key.String() }
