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

package logger

import (
	"context"

	"github.com/GoogleCloudPlatform/galog"
)

// initPlatformLogger is the unix implementation of platform logger
// initialization. A command line tool has no platform logger, logs go to
// stderr and the optional log file.
func initPlatformLogger(context.Context, string) ([]galog.Backend, error) {
	return nil, nil
}
