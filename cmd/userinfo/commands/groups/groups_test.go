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

package groups

import (
	"context"
	"strconv"
	"testing"

	"github.com/GoogleCloudPlatform/google-guest-accounts/cmd/userinfo/commands"
	"github.com/GoogleCloudPlatform/google-guest-accounts/cmd/userinfo/commands/testhelper"
	"github.com/GoogleCloudPlatform/google-guest-accounts/internal/accounts"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRoot() *cobra.Command {
	root := testhelper.NewRoot(NewGroup())
	root.AddCommand(NewGroups())
	return root
}

func TestGroup(t *testing.T) {
	testhelper.SetupDatabase(t)
	ctx := context.Background()
	gid := accounts.CurrentGroupID().String()
	baseGID, err := strconv.Atoi(gid)
	if err != nil {
		t.Fatalf("strconv.Atoi(%q) failed: %v", gid, err)
	}

	tests := []struct {
		name string
		args []string
		want commands.GroupReport
	}{
		{
			name: "by_name",
			args: []string{"group", "wheel", "--format", "yaml"},
			want: commands.GroupReport{Name: "wheel", GID: strconv.Itoa(baseGID + 10), Members: []string{"alice", "bob"}},
		},
		{
			name: "by_id",
			args: []string{"group", strconv.Itoa(baseGID + 11), "--format", "yaml"},
			want: commands.GroupReport{Name: "staff", GID: strconv.Itoa(baseGID + 11), Members: []string{"tester", "alice"}},
		},
		{
			name: "no_members",
			args: []string{"group", "testers", "--format", "yaml"},
			want: commands.GroupReport{Name: "testers", GID: gid, Members: []string{}},
		},
		{
			name: "bounded_members",
			args: []string{"group", "wheel", "--max", "1", "--format", "yaml"},
			want: commands.GroupReport{Name: "wheel", GID: strconv.Itoa(baseGID + 10), Members: []string{"alice"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := testhelper.ExecuteCommand(ctx, newRoot(), tc.args)
			if err != nil {
				t.Fatalf("ExecuteCommand(%v) failed unexpectedly: %v", tc.args, err)
			}

			var got commands.GroupReport
			if err := yaml.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("yaml.Unmarshal(%q) failed unexpectedly: %v", out, err)
			}
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ExecuteCommand(%v) returned diff (-want +got):\n%s", tc.args, diff)
			}
		})
	}
}

func TestGroupFailure(t *testing.T) {
	testhelper.SetupDatabase(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown_name", args: []string{"group", "nogroup-here"}},
		{name: "unknown_id", args: []string{"group", "4000000000"}},
		{name: "too_many_args", args: []string{"group", "wheel", "staff"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := testhelper.ExecuteCommand(ctx, newRoot(), tc.args); err == nil {
				t.Errorf("ExecuteCommand(%v) succeeded, want error", tc.args)
			}
		})
	}
}

func TestGroups(t *testing.T) {
	testhelper.SetupDatabase(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "names",
			args: []string{"groups", "--names-only"},
			want: "testers\nwheel\nstaff\n",
		},
		{
			name: "bounded_names",
			args: []string{"groups", "--names-only", "--max", "1"},
			want: "testers\n",
		},
		{
			name: "names_yaml",
			args: []string{"groups", "--names-only", "--format", "yaml"},
			want: "- testers\n- wheel\n- staff\n",
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

func TestGroupsReports(t *testing.T) {
	testhelper.SetupDatabase(t)

	args := []string{"groups", "--max", "2", "--format", "yaml"}
	out, err := testhelper.ExecuteCommand(context.Background(), newRoot(), args)
	if err != nil {
		t.Fatalf("ExecuteCommand(%v) failed unexpectedly: %v", args, err)
	}

	var got commands.GroupReports
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("yaml.Unmarshal(%q) failed unexpectedly: %v", out, err)
	}

	var names []string
	for _, g := range got {
		names = append(names, g.Name)
	}
	if diff := cmp.Diff([]string{"testers", "wheel"}, names); diff != "" {
		t.Errorf("ExecuteCommand(%v) returned diff (-want +got):\n%s", args, diff)
	}
	if diff := cmp.Diff([]string{"alice", "bob"}, got[1].Members); diff != "" {
		t.Errorf("ExecuteCommand(%v) wheel members returned diff (-want +got):\n%s", args, diff)
	}
}
