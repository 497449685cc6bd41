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

// Package commands provides common helper methods for all commands implemented
// by CLI.
package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/GoogleCloudPlatform/galog"
	"github.com/GoogleCloudPlatform/google-guest-accounts/internal/accounts"
	"github.com/GoogleCloudPlatform/google-guest-accounts/internal/utils/file"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	// FlagFormat is the persistent flag selecting the output format.
	FlagFormat = "format"
	// FlagMax is the persistent flag bounding the number of listed entries.
	FlagMax = "max"
	// FlagOutput is the persistent flag redirecting the output to a file.
	FlagOutput = "output"

	// FormatText renders aligned key/value reports.
	FormatText = "text"
	// FormatJSON renders indented JSON.
	FormatJSON = "json"
	// FormatYAML renders YAML.
	FormatYAML = "yaml"
)

// AddPersistentFlags registers the flags shared by all commands on root.
func AddPersistentFlags(root *cobra.Command, defaultFormat string) {
	if defaultFormat == "" {
		defaultFormat = FormatText
	}
	root.PersistentFlags().String(FlagFormat, defaultFormat, "Output format: text, json or yaml.")
	root.PersistentFlags().Int(FlagMax, accounts.Unlimited, "Maximum number of listed entries, negative for no limit.")
	root.PersistentFlags().String(FlagOutput, "", "Write the output to this file instead of stdout.")
}

// texter is implemented by the reports supporting the text format.
type texter interface {
	text(w io.Writer)
}

// UserReport describes a user.
type UserReport struct {
	LoginName  string   `json:"login_name" yaml:"login_name"`
	UID        string   `json:"uid" yaml:"uid"`
	GID        string   `json:"gid" yaml:"gid"`
	FullName   string   `json:"full_name,omitempty" yaml:"full_name,omitempty"`
	RoomNumber string   `json:"room_number,omitempty" yaml:"room_number,omitempty"`
	WorkPhone  string   `json:"work_phone,omitempty" yaml:"work_phone,omitempty"`
	HomePhone  string   `json:"home_phone,omitempty" yaml:"home_phone,omitempty"`
	HomeDir    string   `json:"home_dir" yaml:"home_dir"`
	Shell      string   `json:"shell,omitempty" yaml:"shell,omitempty"`
	SuperUser  bool     `json:"super_user" yaml:"super_user"`
	FaceIcon   string   `json:"face_icon,omitempty" yaml:"face_icon,omitempty"`
	Groups     []string `json:"groups,omitempty" yaml:"groups,omitempty"`
}

// NewUserReport returns the report of u. If maxGroups is not zero the names of
// (at most maxGroups of) the groups u is a member of are included, which
// requires a scan of the group database.
func NewUserReport(ctx context.Context, u accounts.User, maxGroups int) UserReport {
	props := u.Properties()
	res := UserReport{
		LoginName:  u.LoginName(),
		UID:        u.UserID().String(),
		GID:        u.GroupID().String(),
		FullName:   props.FullName,
		RoomNumber: props.RoomNumber,
		WorkPhone:  props.WorkPhone,
		HomePhone:  props.HomePhone,
		HomeDir:    u.HomeDir(),
		Shell:      u.Shell(),
		SuperUser:  u.IsSuperUser(),
		FaceIcon:   u.FaceIconPath(),
	}
	if maxGroups != 0 {
		res.Groups = u.GroupNames(ctx, maxGroups)
	}
	return res
}

func (r UserReport) text(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	row := func(key, value string) {
		if value != "" {
			fmt.Fprintf(tw, "%s:\t%s\n", key, value)
		}
	}

	row("Login name", r.LoginName)
	row("User ID", r.UID)
	row("Group ID", r.GID)
	row("Full name", r.FullName)
	row("Room number", r.RoomNumber)
	row("Work phone", r.WorkPhone)
	row("Home phone", r.HomePhone)
	row("Home directory", r.HomeDir)
	row("Shell", r.Shell)
	row("Super user", fmt.Sprintf("%t", r.SuperUser))
	row("Face icon", r.FaceIcon)
	row("Groups", strings.Join(r.Groups, ", "))
	tw.Flush()
}

// UserReports is a list of user reports.
type UserReports []UserReport

func (r UserReports) text(w io.Writer) {
	for i, u := range r {
		if i > 0 {
			fmt.Fprintln(w)
		}
		u.text(w)
	}
}

// GroupReport describes a group.
type GroupReport struct {
	Name    string   `json:"name" yaml:"name"`
	GID     string   `json:"gid" yaml:"gid"`
	Members []string `json:"members" yaml:"members"`
}

// NewGroupReport returns the report of g listing at most maxMembers members.
func NewGroupReport(g accounts.UserGroup, maxMembers int) GroupReport {
	return GroupReport{
		Name:    g.Name(),
		GID:     g.GroupID().String(),
		Members: g.UserNames(maxMembers),
	}
}

func (r GroupReport) text(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	fmt.Fprintf(tw, "Name:\t%s\n", r.Name)
	fmt.Fprintf(tw, "Group ID:\t%s\n", r.GID)
	fmt.Fprintf(tw, "Members:\t%s\n", strings.Join(r.Members, ", "))
	tw.Flush()
}

// GroupReports is a list of group reports.
type GroupReports []GroupReport

func (r GroupReports) text(w io.Writer) {
	for i, g := range r {
		if i > 0 {
			fmt.Fprintln(w)
		}
		g.text(w)
	}
}

// Names is a list of user or group names.
type Names []string

func (n Names) text(w io.Writer) {
	for _, name := range n {
		fmt.Fprintln(w, name)
	}
}

// Marshal renders report in the given format.
func Marshal(format string, report any) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatText:
		t, ok := report.(texter)
		if !ok {
			return nil, fmt.Errorf("%T does not support the text format", report)
		}
		var buf bytes.Buffer
		t.text(&buf)
		return buf.Bytes(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal report to JSON: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(report)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal report to YAML: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown output format %q, expected one of: %s, %s, %s", format, FormatText, FormatJSON, FormatYAML)
	}
}

// MaxCount returns the value of the max flag.
func MaxCount(cmd *cobra.Command) int {
	maxCount, err := cmd.Flags().GetInt(FlagMax)
	if err != nil {
		galog.V(1).Debugf("No %q flag on %s, listing everything: %v", FlagMax, cmd.CommandPath(), err)
		return accounts.Unlimited
	}
	return maxCount
}

// Render writes report to the command's output, or to the file named by the
// output flag, in the format selected by the format flag.
func Render(cmd *cobra.Command, report any) error {
	format, err := cmd.Flags().GetString(FlagFormat)
	if err != nil {
		format = FormatText
	}

	data, err := Marshal(format, report)
	if err != nil {
		return err
	}

	output, err := cmd.Flags().GetString(FlagOutput)
	if err == nil && output != "" {
		if err := file.SaferWriteFile(cmd.Context(), data, output, file.Options{Perm: 0644}); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		galog.Debugf("Report written to %s", output)
		return nil
	}

	if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
