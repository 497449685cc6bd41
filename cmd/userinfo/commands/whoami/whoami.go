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

// Package whoami implements the command reporting the process' user.
package whoami

import (
	"fmt"

	"github.com/GoogleCloudPlatform/google-guest-accounts/cmd/userinfo/commands"
	"github.com/GoogleCloudPlatform/google-guest-accounts/internal/accounts"
	"github.com/spf13/cobra"
)

const (
	// flagEffective selects the effective user id.
	flagEffective = "effective"
)

// New returns a new cobra command reporting the user running the process.
func New() *cobra.Command {
	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Report the current user",
		Long:  "Reports the user running the process, its properties and the groups listing it as a member.",
		Args:  cobra.NoArgs,
		RunE:  runWhoami,
	}
	whoami.Flags().Bool(flagEffective, false, "Report the effective user instead of the real one.")
	return whoami
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	mode := accounts.UseRealUserID
	if effective, _ := cmd.Flags().GetBool(flagEffective); effective {
		mode = accounts.UseEffectiveUserID
	}

	u := accounts.CurrentUser(ctx, mode)
	if !u.IsValid() {
		return fmt.Errorf("unable to resolve the current user (uid %s)", accounts.CurrentUserID())
	}

	return commands.Render(cmd, commands.NewUserReport(ctx, u, commands.MaxCount(cmd)))
}
