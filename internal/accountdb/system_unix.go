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

package accountdb

import (
	"os/exec"

	"github.com/GoogleCloudPlatform/galog"
)

var (
	// lookPath is stubbed out for testing.
	lookPath = exec.LookPath
)

// newSystemDatabase returns the getent database if getent is available and
// falls back to the flat files otherwise (i.e. on darwin).
func newSystemDatabase(opts Options) Database {
	if _, err := lookPath(opts.GetentCommand); err != nil {
		galog.Warnf("%s is not available (%v), reading accounts from %s and %s", opts.GetentCommand, err, opts.PasswdFile, opts.GroupFile)
		return NewFiles(opts.PasswdFile, opts.GroupFile)
	}
	return NewGetent(opts.GetentCommand)
}
