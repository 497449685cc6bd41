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

//go:build windows

package cfg

const (
	// defaultConfigFile is the path to the config file on windows.
	defaultConfigFile = `C:\Program Files\Google\Compute Engine\guest_accounts.cfg`
	// defaultDatabase is the account database backend, netapi32 on windows.
	defaultDatabase = "system"
	// defaultGetentCommand is unused on windows, the getent backend is only
	// available where getent is installed.
	defaultGetentCommand = "getent"
	// defaultPasswdFile and defaultGroupFile are only read by the files backend,
	// which has to be explicitly selected on windows.
	defaultPasswdFile = ""
	defaultGroupFile  = ""
)
