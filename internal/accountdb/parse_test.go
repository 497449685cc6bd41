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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsePasswdEntry(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    *PasswdEntry
		wantErr bool
	}{
		{
			name: "valid_entry",
			line: "testuser:x:1:1:Test User:/home/test:/usr/sbin/nologin\n",
			want: &PasswdEntry{
				Name:    "testuser",
				Passwd:  "x",
				UID:     "1",
				GID:     "1",
				Gecos:   "Test User",
				HomeDir: "/home/test",
				Shell:   "/usr/sbin/nologin",
			},
		},
		{
			name: "leading_whitespace",
			line: "    testuser:x:1:1:Test User:/home/test:/usr/sbin/nologin",
			want: &PasswdEntry{
				Name:    "testuser",
				Passwd:  "x",
				UID:     "1",
				GID:     "1",
				Gecos:   "Test User",
				HomeDir: "/home/test",
				Shell:   "/usr/sbin/nologin",
			},
		},
		{
			name: "full_gecos_and_empty_shell",
			line: "kevin:x:1005:1006:Kevin,12,555-1234,555-4321:/home/kevin:",
			want: &PasswdEntry{
				Name:    "kevin",
				Passwd:  "x",
				UID:     "1005",
				GID:     "1006",
				Gecos:   "Kevin,12,555-1234,555-4321",
				HomeDir: "/home/kevin",
			},
		},
		{
			name: "shell_with_colon",
			line: "odd:x:7:7::/:/bin/sh:extra",
			want: &PasswdEntry{
				Name:    "odd",
				Passwd:  "x",
				UID:     "7",
				GID:     "7",
				HomeDir: "/",
				Shell:   "/bin/sh:extra",
			},
		},
		{
			name:    "too_few_fields",
			line:    "testuser:x:1:1",
			wantErr: true,
		},
		{
			name:    "empty_name",
			line:    ":x:1:1::/home/test:/bin/sh",
			wantErr: true,
		},
		{
			name:    "non_numeric_uid",
			line:    "testuser:x:abc:1::/home/test:/bin/sh",
			wantErr: true,
		},
		{
			name:    "negative_gid",
			line:    "testuser:x:1:-1::/home/test:/bin/sh",
			wantErr: true,
		},
		{
			name:    "uid_overflow",
			line:    "testuser:x:4294967296:1::/home/test:/bin/sh",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParsePasswdEntry(tc.line)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParsePasswdEntry(%q) returned error %v, want error? %v", tc.line, err, tc.wantErr)
			}

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParsePasswdEntry(%q) returned an unexpected diff (-want +got):\n%v", tc.line, diff)
			}
		})
	}
}

func TestParseGroupEntry(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    *GroupEntry
		wantErr bool
	}{
		{
			name: "no_members",
			line: "testgroup:x:1:\n",
			want: &GroupEntry{Name: "testgroup", Passwd: "x", GID: "1"},
		},
		{
			name: "single_member",
			line: "testgroup:x:1:alice",
			want: &GroupEntry{Name: "testgroup", Passwd: "x", GID: "1", Members: []string{"alice"}},
		},
		{
			name: "multiple_members_in_order",
			line: "staff:!:50:shadow,cjf,alice",
			want: &GroupEntry{Name: "staff", Passwd: "!", GID: "50", Members: []string{"shadow", "cjf", "alice"}},
		},
		{
			name: "empty_member_slots",
			line: "staff:!:50:shadow,,cjf,",
			want: &GroupEntry{Name: "staff", Passwd: "!", GID: "50", Members: []string{"shadow", "cjf"}},
		},
		{
			name:    "too_few_fields",
			line:    "testgroup:x:1",
			wantErr: true,
		},
		{
			name:    "empty_name",
			line:    ":x:1:",
			wantErr: true,
		},
		{
			name:    "invalid_gid",
			line:    "testgroup:x:one:",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseGroupEntry(tc.line)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseGroupEntry(%q) returned error %v, want error? %v", tc.line, err, tc.wantErr)
			}

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseGroupEntry(%q) returned an unexpected diff (-want +got):\n%v", tc.line, diff)
			}
		})
	}
}

func TestSkipLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{line: "", want: true},
		{line: "   ", want: true},
		{line: "# comment", want: true},
		{line: "+@netgroup", want: true},
		{line: "-baduser", want: true},
		{line: "root:x:0:0:root:/root:/bin/bash", want: false},
	}

	for _, tc := range tests {
		if got := skipLine(tc.line); got != tc.want {
			t.Errorf("skipLine(%q) = %t, want %t", tc.line, got, tc.want)
		}
	}
}
