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

// Package users implements the commands reporting user accounts.
package users

import (
	"context"
	"fmt"

	"github.com/GoogleCloudPlatform/google-guest-accounts/cmd/userinfo/commands"
	"github.com/GoogleCloudPlatform/google-guest-accounts/internal/accounts"
	"github.com/spf13/cobra"
)

const (
	// flagNamesOnly lists login names instead of full reports.
	flagNamesOnly = "names-only"
)

// NewUser returns a new cobra command reporting a single user.
func NewUser() *cobra.Command {
	return &cobra.Command{
		Use:   "user <name|uid>",
		Short: "Report a user",
		Long:  "Reports a user looked up by login name or, failing that, by user id.",
		Args:  cobra.ExactArgs(1),
		RunE:  runUser,
	}
}

// NewUsers returns a new cobra command listing all users.
func NewUsers() *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "List all users",
		Long:  "Lists the users of the account database, in database order.",
		Args:  cobra.NoArgs,
		RunE:  runUsers,
	}
	users.Flags().Bool(flagNamesOnly, false, "Only list login names.")
	return users
}

// lookup resolves key as a login name first and as a user id second.
func lookup(ctx context.Context, key string) accounts.User {
	if u := accounts.FindUser(ctx, key); u.IsValid() {
		return u
	}
	return accounts.FindUserByID(ctx, accounts.ParseUserID(key))
}

func runUser(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	u := lookup(ctx, args[0])
	if !u.IsValid() {
		return fmt.Errorf("no such user: %s", args[0])
	}
	return commands.Render(cmd, commands.NewUserReport(ctx, u, commands.MaxCount(cmd)))
}

func runUsers(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	maxCount := commands.MaxCount(cmd)

	if namesOnly, _ := cmd.Flags().GetBool(flagNamesOnly); namesOnly {
		return commands.Render(cmd, commands.Names(accounts.AllUserNames(ctx, maxCount)))
	}

	reports := commands.UserReports{}
	for _, u := range accounts.AllUsers(ctx, maxCount) {
		reports = append(reports, commands.NewUserReport(ctx, u, 0))
	}
	return commands.Render(cmd, reports)
}
