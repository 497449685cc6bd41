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
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/GoogleCloudPlatform/google-guest-accounts/internal/accountdb"
)

func swapForTest[T any](t *testing.T, old *T, new T) {
	t.Helper()
	saved := *old
	t.Cleanup(func() { *old = saved })
	*old = new
}

// testDatabase describes the fixture database installed by setupDatabase.
type testDatabase struct {
	// homes maps login names to their (temporary) home directory.
	homes map[string]string
	// env is the fake process environment.
	env map[string]string
}

const testGroup = `root:x:0:
alice:x:1000:
bob:x:1001:
wheel:x:10:alice,bob
# comment
staff:x:50:bob,ghost,alice
empty:x:20:
`

// setupDatabase configures the package with a files database holding root,
// alice, bob and carol. The process runs as an unrelated uid (4242) with an
// empty environment unless the test changes it.
func setupDatabase(t *testing.T) *testDatabase {
	t.Helper()
	dir := t.TempDir()

	td := &testDatabase{homes: make(map[string]string), env: make(map[string]string)}
	for _, name := range []string{"root", "alice", "bob", "carol"} {
		home := filepath.Join(dir, "home", name)
		if err := os.MkdirAll(home, 0755); err != nil {
			t.Fatalf("os.MkdirAll(%q) failed: %v", home, err)
		}
		td.homes[name] = home
	}

	passwd := fmt.Sprintf(`root:x:0:0:root:%s:/bin/bash
alice:x:1000:1000:Alice Liddell,Room 1,555-0001,555-0002,extra:%s:/bin/bash
bob:x:1001:1001:Bob:%s:/bin/sh
carol:x:1002:1002::%s:/bin/zsh
`, td.homes["root"], td.homes["alice"], td.homes["bob"], td.homes["carol"])

	passwdFile := filepath.Join(dir, "passwd")
	if err := os.WriteFile(passwdFile, []byte(passwd), 0644); err != nil {
		t.Fatalf("os.WriteFile(%q) failed: %v", passwdFile, err)
	}
	groupFile := filepath.Join(dir, "group")
	if err := os.WriteFile(groupFile, []byte(testGroup), 0644); err != nil {
		t.Fatalf("os.WriteFile(%q) failed: %v", groupFile, err)
	}

	Configure(Options{Database: accountdb.NewFiles(passwdFile, groupFile)})
	t.Cleanup(func() { Configure(Options{}) })

	setProcessIDs(t, 4242, 4242)
	swapForTest(t, &getenv, func(key string) string { return td.env[key] })
	return td
}

// setProcessIDs stubs the process' real and effective ids, gids mirror uids.
func setProcessIDs(t *testing.T, uid, euid int) {
	t.Helper()
	swapForTest(t, &getuid, func() int { return uid })
	swapForTest(t, &geteuid, func() int { return euid })
	swapForTest(t, &getgid, func() int { return uid })
	swapForTest(t, &getegid, func() int { return euid })
}

func TestConfigureDefaults(t *testing.T) {
	Configure(Options{FaceIconName: "avatar.png"})
	if got := configuredFaceIconName(); got != "avatar.png" {
		t.Errorf("configuredFaceIconName() = %q, want %q", got, "avatar.png")
	}

	Configure(Options{})
	if got := configuredFaceIconName(); got != DefaultFaceIconName {
		t.Errorf("configuredFaceIconName() = %q, want %q", got, DefaultFaceIconName)
	}
	if database() == nil {
		t.Errorf("database() = nil, want the system database")
	}
}

func TestCollectFailure(t *testing.T) {
	Configure(Options{Database: accountdb.NewFiles(filepath.Join(t.TempDir(), "passwd"), filepath.Join(t.TempDir(), "group"))})
	t.Cleanup(func() { Configure(Options{}) })

	ctx := context.Background()
	if got := AllUsers(ctx, Unlimited); len(got) != 0 {
		t.Errorf("AllUsers() = %d users for a missing database, want 0", len(got))
	}
	if got := AllGroupNames(ctx, Unlimited); got == nil || len(got) != 0 {
		t.Errorf("AllGroupNames() = %v for a missing database, want an empty list", got)
	}
}

func TestSystemDatabaseFallback(t *testing.T) {
	swapForTest(t, &db, nil)
	swapForTest(t, &newSystemDatabase, func() (accountdb.Database, error) {
		return nil, fmt.Errorf("system database unavailable")
	})

	got, ok := database().(*accountdb.Files)
	if !ok {
		t.Fatalf("database() = %T, want *accountdb.Files", database())
	}
	want := accountdb.NewFiles(accountdb.DefaultPasswdFile, accountdb.DefaultGroupFile)
	if *got != *want {
		t.Errorf("database() = %+v, want %+v", got, want)
	}
}

func TestZeroPaddedIDs(t *testing.T) {
	dir := t.TempDir()
	passwd := filepath.Join(dir, "passwd")
	if err := os.WriteFile(passwd, []byte("dave:x:01000:0050::/home/dave:/bin/sh\n"), 0644); err != nil {
		t.Fatalf("os.WriteFile(%q) failed: %v", passwd, err)
	}
	group := filepath.Join(dir, "group")
	if err := os.WriteFile(group, []byte("staff:x:0050:dave\n"), 0644); err != nil {
		t.Fatalf("os.WriteFile(%q) failed: %v", group, err)
	}
	Configure(Options{Database: accountdb.NewFiles(passwd, group)})
	t.Cleanup(func() { Configure(Options{}) })

	ctx := context.Background()
	u := FindUserByNativeID(ctx, 1000)
	if got := u.LoginName(); got != "dave" {
		t.Errorf("FindUserByNativeID(1000).LoginName() = %q, want dave", got)
	}
	if got := u.UserID().String(); got != "1000" {
		t.Errorf("FindUserByNativeID(1000).UserID() = %q, want 1000", got)
	}

	g := FindGroupByID(ctx, u.GroupID())
	if got := g.Name(); got != "staff" {
		t.Errorf("FindGroupByID(%s).Name() = %q, want staff", u.GroupID(), got)
	}
}
