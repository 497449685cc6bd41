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

package accounts

import (
	"strings"

	"github.com/GoogleCloudPlatform/galog"
	"golang.org/x/sys/windows"
)

// NativeID is the platform's native user and group id, a security identifier.
type NativeID = *windows.SID

const (
	// localSystemSID is the well known LocalSystem account SID.
	localSystemSID = "S-1-5-18"
	// domainSIDPrefix prefixes machine and domain account SIDs.
	domainSIDPrefix = "S-1-5-21-"
	// administratorRID is the relative id of the built-in Administrator.
	administratorRID = "-500"
)

var (
	// The following are stubbed out for testing.
	processUserSID  = defaultProcessUserSID
	processGroupSID = defaultProcessGroupSID
)

// idKey is the comparable representation of an id, a canonical SID string.
// The zero value is invalid.
type idKey struct {
	sid string
}

func keyFromNative(sid NativeID) idKey {
	if sid == nil || !sid.IsValid() {
		return idKey{}
	}
	return idKey{sid: sid.String()}
}

// keyFromString parses a database id, SIDs are normalized to their canonical
// form.
func keyFromString(s string) idKey {
	sid, err := windows.StringToSid(s)
	if err != nil {
		return idKey{}
	}
	return keyFromNative(sid)
}

func (k idKey) valid() bool { return k.sid != "" }

func (k idKey) native() NativeID {
	if k.sid == "" {
		return nil
	}
	sid, err := windows.StringToSid(k.sid)
	if err != nil {
		return nil
	}
	return sid
}

func (k idKey) String() string { return k.sid }

func (k idKey) superUser() bool {
	if k.sid == localSystemSID {
		return true
	}
	return strings.HasPrefix(k.sid, domainSIDPrefix) && strings.HasSuffix(k.sid, administratorRID)
}

func defaultProcessUserSID() (*windows.SID, error) {
	tu, err := windows.GetCurrentProcessToken().GetTokenUser()
	if err != nil {
		return nil, err
	}
	return tu.User.Sid, nil
}

func defaultProcessGroupSID() (*windows.SID, error) {
	pg, err := windows.GetCurrentProcessToken().GetTokenPrimaryGroup()
	if err != nil {
		return nil, err
	}
	return pg.PrimaryGroup, nil
}

// tokenKey returns the key of the SID read from the process token.
func tokenKey(kind string, read func() (*windows.SID, error)) idKey {
	sid, err := read()
	if err != nil {
		galog.V(1).Debugf("Failed to read the process %s SID: %v", kind, err)
		return idKey{}
	}
	return keyFromNative(sid)
}

// Windows has no real and effective distinction, both come from the process
// token.
func currentUserKey() idKey           { return tokenKey("user", processUserSID) }
func currentEffectiveUserKey() idKey  { return tokenKey("user", processUserSID) }
func currentGroupKey() idKey          { return tokenKey("primary group", processGroupSID) }
func currentEffectiveGroupKey() idKey { return tokenKey("primary group", processGroupSID) }
