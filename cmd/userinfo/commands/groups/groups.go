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

// Package groups implements the commands reporting groups.
package groups

import (
	"context"
	"fmt"

	"github.com/GoogleCloudPlatform/google-guest-accounts/cmd/userinfo/commands"
	"github.com/GoogleCloudPlatform/google-guest-accounts/internal/accounts"
	"github.com/spf13/cobra"
)

const (
	// flagNamesOnly lists group names instead of full reports.
	flagNamesOnly = "names-only"
)

// NewGroup returns a new cobra command reporting a single group.
func NewGroup() *cobra.Command {
	return &cobra.Command{
		Use:   "group <name|gid>",
		Short: "Report a group",
		Long:  "Reports a group and its members, looked up by name or, failing that, by group id.",
		Args:  cobra.ExactArgs(1),
		RunE:  runGroup,
	}
}

// NewGroups returns a new cobra command listing all groups.
func NewGroups() *cobra.Command {
	groups := &cobra.Command{
		Use:   "groups",
		Short: "List all groups",
		Long:  "Lists the groups of the group database and their members, in database order.",
		Args:  cobra.NoArgs,
		RunE:  runGroups,
	}
	groups.Flags().Bool(flagNamesOnly, false, "Only list group names.")
	return groups
}

// lookup resolves key as a group name first and as a group id second.
func lookup(ctx context.Context, key string) accounts.UserGroup {
	if g := accounts.FindGroup(ctx, key); g.IsValid() {
		return g
	}
	return accounts.FindGroupByID(ctx, accounts.ParseGroupID(key))
}

func runGroup(cmd *cobra.Command, args []string) error {
	g := lookup(cmd.Context(), args[0])
	if !g.IsValid() {
		return fmt.Errorf("no such group: %s", args[0])
	}
	return commands.Render(cmd, commands.NewGroupReport(g, commands.MaxCount(cmd)))
}

func runGroups(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	maxCount := commands.MaxCount(cmd)

	if namesOnly, _ := cmd.Flags().GetBool(flagNamesOnly); namesOnly {
		return commands.Render(cmd, commands.Names(accounts.AllGroupNames(ctx, maxCount)))
	}

	reports := commands.GroupReports{}
	for _, g := range accounts.AllGroups(ctx, maxCount) {
		reports = append(reports, commands.NewGroupReport(g, accounts.Unlimited))
	}
	return commands.Render(cmd, reports)
}
