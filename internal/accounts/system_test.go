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
	"context"
	"testing"
)

// The following run against the host's own account database.

func TestSystemEnumeration(t *testing.T) {
	Configure(Options{})
	ctx := context.Background()

	users := AllUsers(ctx, Unlimited)
	if len(users) < 2 {
		t.Errorf("AllUsers() returned %d users, want at least 2", len(users))
	}
	for _, u := range users {
		if !u.IsValid() {
			t.Errorf("AllUsers() returned an invalid user")
		}
	}

	if got := len(AllUsers(ctx, 1)); got != 1 {
		t.Errorf("AllUsers(1) returned %d users, want 1", got)
	}

	if got := len(AllGroupNames(ctx, Unlimited)); got < 2 {
		t.Errorf("AllGroupNames() returned %d groups, want at least 2", got)
	}
}

func TestSystemRoot(t *testing.T) {
	Configure(Options{})
	ctx := context.Background()

	id := UserIDFromName(ctx, "root")
	if !id.IsValid() {
		t.Fatalf("UserIDFromName(root) is invalid")
	}

	root := FindUser(ctx, "root")
	if root.UserID() != id {
		t.Errorf("FindUser(root).UserID() = %v, want %v", root.UserID(), id)
	}
	if !root.IsSuperUser() {
		t.Errorf("FindUser(root).IsSuperUser() = false, want true")
	}
	if !FindUserByID(ctx, id).Equal(root) {
		t.Errorf("FindUserByID(%v) is not root", id)
	}

	if UserIDFromName(ctx, "name_known_not_to_exist").IsValid() {
		t.Errorf("UserIDFromName(name_known_not_to_exist) is valid")
	}
}

func TestSystemCurrentUser(t *testing.T) {
	Configure(Options{})
	ctx := context.Background()

	u := CurrentUser(ctx, UseRealUserID)
	if !u.IsValid() {
		t.Skipf("the test process user has no account database entry")
	}
	if u.UserID() != CurrentUserID() {
		t.Errorf("CurrentUser().UserID() = %v, want %v", u.UserID(), CurrentUserID())
	}
	if !CurrentUser(ctx, UseEffectiveUserID).Equal(u) {
		t.Errorf("CurrentUser(UseEffectiveUserID) != CurrentUser(UseRealUserID)")
	}
}
