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

package accountdb

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePasswdEntry parses a single /etc/passwd style line.
//
// The UID and GID of any entry returned by this function are guaranteed to be
// valid decimal numbers.
func ParsePasswdEntry(line string) (*PasswdEntry, error) {
	line = strings.TrimSpace(strings.TrimSuffix(line, "\n"))

	// kevin:x:1005:1006::/home/kevin:/usr/bin/zsh
	parts := strings.SplitN(line, ":", 7)
	if len(parts) < 7 {
		return nil, fmt.Errorf("invalid passwd entry %q, expected 7 fields got %d", line, len(parts))
	}

	if parts[0] == "" {
		return nil, fmt.Errorf("invalid passwd entry %q, empty login name", line)
	}

	res := &PasswdEntry{
		Name:    parts[0],
		Passwd:  parts[1],
		UID:     parts[2],
		GID:     parts[3],
		Gecos:   parts[4],
		HomeDir: parts[5],
		Shell:   parts[6],
	}

	if err := validateUnixID(res.UID); err != nil {
		return nil, fmt.Errorf("invalid uid for %s: %w", res.Name, err)
	}

	if err := validateUnixID(res.GID); err != nil {
		return nil, fmt.Errorf("invalid gid for %s: %w", res.Name, err)
	}

	return res, nil
}

// ParseGroupEntry parses a single /etc/group style line.
//
// The GID of any entry returned by this function is guaranteed to be a valid
// decimal number.
func ParseGroupEntry(line string) (*GroupEntry, error) {
	line = strings.TrimSpace(strings.TrimSuffix(line, "\n"))

	// staff:!:1:shadow,cjf
	parts := strings.SplitN(line, ":", 4)
	if len(parts) < 4 {
		return nil, fmt.Errorf("invalid group entry %q, expected 4 fields got %d", line, len(parts))
	}

	if parts[0] == "" {
		return nil, fmt.Errorf("invalid group entry %q, empty group name", line)
	}

	var members []string
	for _, m := range strings.Split(parts[3], ",") {
		if m = strings.TrimSpace(m); m != "" {
			members = append(members, m)
		}
	}

	res := &GroupEntry{
		Name:    parts[0],
		Passwd:  parts[1],
		GID:     parts[2],
		Members: members,
	}

	if err := validateUnixID(res.GID); err != nil {
		return nil, fmt.Errorf("invalid gid for %s: %w", res.Name, err)
	}

	return res, nil
}

// parseUnixID parses a non negative decimal id fitting an uint32.
func parseUnixID(id string) (uint32, error) {
	n, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("failed to convert id %q: %w", id, err)
	}
	return uint32(n), nil
}

// validateUnixID checks the id is a non negative decimal number fitting an
// uint32.
func validateUnixID(id string) error {
	_, err := parseUnixID(id)
	return err
}

// sameUnixID reports whether the record id field holds the id value.
func sameUnixID(field string, id uint32) bool {
	n, err := parseUnixID(field)
	return err == nil && n == id
}

// skipLine reports whether a database line carries no record: blank lines,
// comments and NIS compat (+/-) entries.
func skipLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	switch line[0] {
	case '#', '+', '-':
		return true
	}
	return false
}
