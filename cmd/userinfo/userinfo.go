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

// Package main implements userinfo, a CLI reporting the user and group
// accounts known to the host.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/GoogleCloudPlatform/galog"
	"github.com/GoogleCloudPlatform/google-guest-accounts/cmd/userinfo/commands"
	"github.com/GoogleCloudPlatform/google-guest-accounts/cmd/userinfo/commands/groups"
	"github.com/GoogleCloudPlatform/google-guest-accounts/cmd/userinfo/commands/users"
	"github.com/GoogleCloudPlatform/google-guest-accounts/cmd/userinfo/commands/whoami"
	"github.com/GoogleCloudPlatform/google-guest-accounts/internal/accountdb"
	"github.com/GoogleCloudPlatform/google-guest-accounts/internal/accounts"
	"github.com/GoogleCloudPlatform/google-guest-accounts/internal/cfg"
	"github.com/GoogleCloudPlatform/google-guest-accounts/internal/logger"
	"github.com/spf13/cobra"
)

const (
	// galogShutdownTimeout is the period of time we should wait for galog to
	// shutdown.
	galogShutdownTimeout = time.Second
)

// newRootCommand generates the root command with all the report subcommands.
func newRootCommand(defaultFormat string) *cobra.Command {
	root := &cobra.Command{
		Use:           "userinfo",
		Short:         "Report user and group accounts.",
		Long:          "Reports the user and group accounts of the host as text, JSON or YAML.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	commands.AddPersistentFlags(root, defaultFormat)

	root.AddCommand(whoami.New())
	root.AddCommand(users.NewUser())
	root.AddCommand(users.NewUsers())
	root.AddCommand(groups.NewGroup())
	root.AddCommand(groups.NewGroups())
	root.AddCommand(newConfigCommand())

	return root
}

// newConfigCommand returns the command printing the effective configuration.
func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := cfg.ToString()
			if err != nil {
				return fmt.Errorf("failed to serialize configuration: %w", err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), data)
			return err
		},
	}
}

// configureAccounts points the accounts package at the database selected by
// the configuration.
func configureAccounts(conf *cfg.Sections) error {
	db, err := accountdb.New(accountdb.Options{
		Backend:       conf.Accounts.Database,
		GetentCommand: conf.Accounts.GetentCommand,
		PasswdFile:    conf.Accounts.PasswdFile,
		GroupFile:     conf.Accounts.GroupFile,
	})
	if err != nil {
		return fmt.Errorf("failed to open account database: %w", err)
	}

	accounts.Configure(accounts.Options{Database: db, FaceIconName: conf.Accounts.FaceIconName})
	galog.V(1).Debugf("Using %q account database", conf.Accounts.Database)
	return nil
}

func main() {
	ctx := context.Background()

	if err := cfg.Load(nil); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	conf := cfg.Retrieve()

	logOpts := logger.Options{
		Ident:       filepath.Base(os.Args[0]),
		LogToStderr: true,
		Level:       conf.Core.LogLevel,
		Verbosity:   conf.Core.LogVerbosity,
		LogFile:     conf.Core.LogFile,
	}

	if err := logger.Init(ctx, logOpts); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer galog.Shutdown(galogShutdownTimeout)

	if err := configureAccounts(conf); err != nil {
		galog.Fatalf("Failed to configure accounts: %v", err)
	}

	rootCmd := newRootCommand(conf.Output.Format)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		galog.Fatalf("Failed to execute: %v", err)
	}
}
