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

// Package testhelper provides helpers for testing the CLI commands.
package testhelper

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/GoogleCloudPlatform/google-guest-accounts/cmd/userinfo/commands"
	"github.com/GoogleCloudPlatform/google-guest-accounts/internal/accountdb"
	"github.com/GoogleCloudPlatform/google-guest-accounts/internal/accounts"
	"github.com/spf13/cobra"
)

// Database describes the fixture installed by SetupDatabase.
type Database struct {
	// CurrentLogin is the login name given to the process' user.
	CurrentLogin string
	// UID is the uid of the process' user, alice and bob follow it.
	UID int
	// HomeDir is the home directory of the process' user.
	HomeDir string
}

// SetupDatabase configures the accounts package with a files database holding
// the process' user (as "tester"), alice and bob. Groups: "testers" (tester's
// primary group), "wheel" (alice and bob) and "staff" (tester and alice).
// Login name environment variables are cleared so the process' user resolves
// by id, HOME points at the temporary home directory of "tester".
func SetupDatabase(t *testing.T) *Database {
	t.Helper()
	dir := t.TempDir()

	uid, err := strconv.Atoi(accounts.CurrentUserID().String())
	if err != nil {
		t.Fatalf("unable to convert current user id: %v", err)
	}
	gid, err := strconv.Atoi(accounts.CurrentGroupID().String())
	if err != nil {
		t.Fatalf("unable to convert current group id: %v", err)
	}

	passwd := fmt.Sprintf(`tester:x:%d:%d:Test Runner,,,:%s:/bin/sh
alice:x:%d:%d:Alice Liddell,Room 1,555-0001,555-0002:/home/alice:/bin/bash
bob:x:%d:%d::/home/bob:/bin/sh
`, uid, gid, dir, uid+1, gid+1, uid+2, gid+2)

	group := fmt.Sprintf(`testers:x:%d:
wheel:x:%d:alice,bob
staff:x:%d:tester,alice
`, gid, gid+10, gid+11)

	passwdFile := filepath.Join(dir, "passwd")
	if err := os.WriteFile(passwdFile, []byte(passwd), 0644); err != nil {
		t.Fatalf("os.WriteFile(%q) failed: %v", passwdFile, err)
	}
	groupFile := filepath.Join(dir, "group")
	if err := os.WriteFile(groupFile, []byte(group), 0644); err != nil {
		t.Fatalf("os.WriteFile(%q) failed: %v", groupFile, err)
	}

	for _, env := range []string{"LOGNAME", "USER", "USERNAME"} {
		t.Setenv(env, "")
	}
	t.Setenv("HOME", dir)

	accounts.Configure(accounts.Options{Database: accountdb.NewFiles(passwdFile, groupFile)})
	t.Cleanup(func() { accounts.Configure(accounts.Options{}) })

	return &Database{CurrentLogin: "tester", UID: uid, HomeDir: dir}
}

// NewRoot returns a root command carrying the persistent flags with cmd as
// its only subcommand.
func NewRoot(cmd *cobra.Command) *cobra.Command {
	root := &cobra.Command{Use: "userinfo", SilenceUsage: true, SilenceErrors: true}
	commands.AddPersistentFlags(root, commands.FormatText)
	root.AddCommand(cmd)
	return root
}

func captureOutput(ctx context.Context, cmd *cobra.Command, out *bytes.Buffer) {
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetContext(ctx)

	for _, subCmd := range cmd.Commands() {
		captureOutput(ctx, subCmd, out)
	}
}

// ExecuteCommand executes the given command and returns its output.
func ExecuteCommand(ctx context.Context, cmd *cobra.Command, args []string) (string, error) {
	out := new(bytes.Buffer)
	captureOutput(ctx, cmd, out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}
