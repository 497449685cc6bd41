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

package logger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/GoogleCloudPlatform/galog"
	"golang.org/x/exp/slices"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name         string
		logFile      bool
		logToStderr  bool
		level        int
		wantBackends []string
	}{
		{
			name:  "no_backends",
			level: 1,
		},
		{
			name:         "file",
			logFile:      true,
			level:        3,
			wantBackends: []string{"log-backend,file"},
		},
		{
			name:         "stderr",
			logToStderr:  true,
			level:        4,
			wantBackends: []string{"log-backend,stderr"},
		},
		{
			name:         "file_and_stderr",
			logFile:      true,
			logToStderr:  true,
			level:        2,
			wantBackends: []string{"log-backend,file", "log-backend,stderr"},
		},
	}

	ctx := context.Background()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := Options{
				Ident:       "userinfo_test",
				LogToStderr: tc.logToStderr,
				Level:       tc.level,
				Verbosity:   2,
			}
			if tc.logFile {
				opts.LogFile = filepath.Join(t.TempDir(), "accounts.log")
			}

			if err := Init(ctx, opts); err != nil {
				t.Fatalf("Init(%+v) failed: %v", opts, err)
			}

			wantLevel, err := galog.ParseLevel(tc.level)
			if err != nil {
				t.Fatalf("ParseLevel(%d) failed: %v", tc.level, err)
			}
			if got := galog.CurrentLevel(); got != wantLevel {
				t.Errorf("CurrentLevel() = %s, want %s", got, wantLevel)
			}
			if got := galog.MinVerbosity(); got != opts.Verbosity {
				t.Errorf("MinVerbosity() = %d, want %d", got, opts.Verbosity)
			}

			ids := galog.RegisteredBackendIDs()
			for _, want := range tc.wantBackends {
				if !slices.Contains(ids, want) {
					t.Errorf("RegisteredBackendIDs() = %v, want it to contain %q", ids, want)
				}
			}
		})
	}
}

func TestInitFailure(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{
			name: "invalid_level",
			opts: Options{Level: 5},
		},
		{
			name: "missing_log_directory",
			opts: Options{Level: 3, LogFile: filepath.Join(t.TempDir(), "missing", "accounts.log")},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := Init(context.Background(), tc.opts); err == nil {
				t.Errorf("Init(%+v) succeeded, want error", tc.opts)
			}
		})
	}
}
