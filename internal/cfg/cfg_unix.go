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

package cfg

const (
	// defaultConfigFile is the path to the config file on unix based systems.
	defaultConfigFile = `/etc/default/guest_accounts.cfg`
	// defaultDatabase is the account database backend, getent with a flat
	// files fallback.
	defaultDatabase = "system"
	// defaultGetentCommand is the getent command name.
	defaultGetentCommand = "getent"
	// defaultPasswdFile is the passwd file read by the files backend.
	defaultPasswdFile = "/etc/passwd"
	// defaultGroupFile is the group file read by the files backend.
	defaultGroupFile = "/etc/group"
)
