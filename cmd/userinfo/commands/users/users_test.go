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

package users

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/GoogleCloudPlatform/google-guest-accounts/cmd/userinfo/commands"
	"github.com/GoogleCloudPlatform/google-guest-accounts/cmd/userinfo/commands/testhelper"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
)

func newRoot() *cobra.Command {
	root := testhelper.NewRoot(NewUser())
	root.AddCommand(NewUsers())
	return root
}

func TestUser(t *testing.T) {
	db := testhelper.SetupDatabase(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		key       string
		wantLogin string
	}{
		{name: "by_name", key: "alice", wantLogin: "alice"},
		{name: "by_id", key: strconv.Itoa(db.UID + 2), wantLogin: "bob"},
		{name: "current_by_id", key: strconv.Itoa(db.UID), wantLogin: db.CurrentLogin},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			args := []string{"user", tc.key, "--format", "json"}
			out, err := testhelper.ExecuteCommand(ctx, newRoot(), args)
			if err != nil {
				t.Fatalf("ExecuteCommand(%v) failed unexpectedly: %v", args, err)
			}

			var got commands.UserReport
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("json.Unmarshal(%q) failed unexpectedly: %v", out, err)
			}
			if got.LoginName != tc.wantLogin {
				t.Errorf("ExecuteCommand(%v).LoginName = %q, want %q", args, got.LoginName, tc.wantLogin)
			}
		})
	}
}

func TestUserFailure(t *testing.T) {
	testhelper.SetupDatabase(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown_name", args: []string{"user", "mallory"}},
		{name: "unknown_id", args: []string{"user", "4000000000"}},
		{name: "invalid_key", args: []string{"user", "al:ice"}},
		{name: "missing_key", args: []string{"user"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := testhelper.ExecuteCommand(ctx, newRoot(), tc.args); err == nil {
				t.Errorf("ExecuteCommand(%v) succeeded, want error", tc.args)
			}
		})
	}
}

func TestUsers(t *testing.T) {
	db := testhelper.SetupDatabase(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "names",
			args: []string{"users", "--names-only"},
			want: db.CurrentLogin + "\nalice\nbob\n",
		},
		{
			name: "bounded_names",
			args: []string{"users", "--names-only", "--max", "2"},
			want: db.CurrentLogin + "\nalice\n",
		},
		{
			name: "no_names",
			args: []string{"users", "--names-only", "--max", "0"},
			want: "",
		},
		{
			name: "names_json",
			args: []string{"users", "--names-only", "--max", "1", "--format", "json"},
			want: "[\n  \"" + db.CurrentLogin + "\"\n]\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := testhelper.ExecuteCommand(ctx, newRoot(), tc.args)
			if err != nil {
				t.Fatalf("ExecuteCommand(%v) failed unexpectedly: %v", tc.args, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ExecuteCommand(%v) returned diff (-want +got):\n%s", tc.args, diff)
			}
		})
	}
}

func TestUsersReports(t *testing.T) {
	testhelper.SetupDatabase(t)

	args := []string{"users", "--format", "json"}
	out, err := testhelper.ExecuteCommand(context.Background(), newRoot(), args)
	if err != nil {
		t.Fatalf("ExecuteCommand(%v) failed unexpectedly: %v", args, err)
	}

	var got commands.UserReports
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("json.Unmarshal(%q) failed unexpectedly: %v", out, err)
	}
	if len(got) != 3 {
		t.Fatalf("ExecuteCommand(%v) returned %d users, want 3", args, len(got))
	}
	if got[1].LoginName != "alice" || got[1].FullName != "Alice Liddell" {
		t.Errorf("ExecuteCommand(%v)[1] = %+v, want alice with full name", args, got[1])
	}
	for _, u := range got {
		if u.Groups != nil {
			t.Errorf("ExecuteCommand(%v) reported groups %v for %s, want none", args, u.Groups, u.LoginName)
		}
	}
}
