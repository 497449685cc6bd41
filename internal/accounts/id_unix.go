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

//go:build !windows

package accounts

import (
	"strconv"

	"golang.org/x/sys/unix"
)

// NativeID is the platform's native user and group id, a uid or gid.
type NativeID = int

const (
	// invalidNativeID is returned by Native for invalid ids.
	invalidNativeID NativeID = -1
	// noID is (uid_t)-1, reserved as "no id" by chown(2) and friends.
	noID = 4294967295
	// superUserID is root's uid.
	superUserID = 0
)

var (
	// The following are stubbed out for testing.
	getuid  = unix.Getuid
	geteuid = unix.Geteuid
	getgid  = unix.Getgid
	getegid = unix.Getegid
)

// idKey is the comparable representation of an id, the zero value is
// invalid.
type idKey struct {
	id uint32
	ok bool
}

func keyFromNative(id NativeID) idKey {
	if id < 0 || int64(id) >= noID {
		return idKey{}
	}
	return idKey{id: uint32(id), ok: true}
}

// keyFromString parses a database id.
func keyFromString(s string) idKey {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == noID {
		return idKey{}
	}
	return idKey{id: uint32(id), ok: true}
}

func (k idKey) valid() bool { return k.ok }

func (k idKey) native() NativeID {
	if !k.ok {
		return invalidNativeID
	}
	return NativeID(k.id)
}

func (k idKey) String() string {
	if !k.ok {
		return strconv.Itoa(invalidNativeID)
	}
	return strconv.FormatUint(uint64(k.id), 10)
}

func (k idKey) superUser() bool { return k.ok && k.id == superUserID }

func currentUserKey() idKey           { return keyFromNative(getuid()) }
func currentEffectiveUserKey() idKey  { return keyFromNative(geteuid()) }
func currentGroupKey() idKey          { return keyFromNative(getgid()) }
func currentEffectiveGroupKey() idKey { return keyFromNative(getegid()) }
