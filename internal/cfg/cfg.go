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

// Package cfg is package responsible to loading and accessing the account
// tools configuration.
package cfg

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/template"

	"github.com/GoogleCloudPlatform/galog"
	"gopkg.in/ini.v1"
)

var (
	// instance is the single instance of configuration sections, once loaded this
	// package should always return it.
	instance *Sections

	// dataSource is a pointer to a data source loading/defining function, unit
	// tests will want to change this pointer to whatever makes sense to its
	// implementation.
	dataSources = defaultDataSources
	// configValues holds the defaults values for template.
	defaultConfigValues = map[string]string{
		"database":      defaultDatabase,
		"getentCommand": defaultGetentCommand,
		"passwdFile":    defaultPasswdFile,
		"groupFile":     defaultGroupFile,
	}

	// panicFc is a reference to panic(), it's overridden in unit tests.
	panicFc = panicWrapper

	// cfgMu protects the initialization and retrieval of config instance.
	cfgMu sync.RWMutex
)

const (
	// defaultConfigTemplate is the default configuration template for the
	// configuration sections.
	defaultConfigTemplate = `
[Core]
log_level = 3
log_verbosity = 0
log_file =

[Accounts]
database = {{.database}}
getent_command = {{.getentCommand}}
passwd_file = {{.passwdFile}}
group_file = {{.groupFile}}
face_icon_name = .face.icon

[Output]
format = text
`
)

// Sections encapsulates all the configuration sections.
type Sections struct {
	// Core defines the logging configuration entries/keys.
	Core *Core `ini:"Core,omitempty"`

	// Accounts defines the account database selection and its options.
	Accounts *Accounts `ini:"Accounts,omitempty"`

	// Output defines how reports are rendered.
	Output *Output `ini:"Output,omitempty"`
}

// Core contains the core configuration entries.
type Core struct {
	// LogLevel defines the log level, 0 is fatal and 4 is debug.
	LogLevel int `ini:"log_level,omitempty"`
	// LogVerbosity defines the verbosity of debug messages.
	LogVerbosity int `ini:"log_verbosity,omitempty"`
	// LogFile defines the file logs are written to, empty disables file
	// logging.
	LogFile string `ini:"log_file,omitempty"`
}

// Accounts contains the configuration of the account database.
type Accounts struct {
	// Database is the account database backend: system, getent or files.
	Database string `ini:"database,omitempty"`
	// GetentCommand is the getent command used by the getent backend.
	GetentCommand string `ini:"getent_command,omitempty"`
	// PasswdFile is the passwd file read by the files backend.
	PasswdFile string `ini:"passwd_file,omitempty"`
	// GroupFile is the group file read by the files backend.
	GroupFile string `ini:"group_file,omitempty"`
	// FaceIconName is the face icon file name looked up in home directories.
	FaceIconName string `ini:"face_icon_name,omitempty"`
}

// Output contains the report rendering configuration.
type Output struct {
	// Format is the default output format: text, json or yaml.
	Format string `ini:"format,omitempty"`
}

// panicWrapper is a wrapper over panic() to make it testable.
func panicWrapper(args ...any) {
	panic(args)
}

func applyTemplate(templateStr string, data map[string]string, buffer io.Writer) error {
	t, err := template.New("").Option("missingkey=error").Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	err = t.Execute(buffer, data)
	if err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return nil
}

func defaultDataSources(extraDefaults []byte) []any {
	var res []any

	if len(extraDefaults) > 0 {
		res = append(res, extraDefaults)
	}

	return append(res, []any{
		defaultConfigFile,
		defaultConfigFile + ".distro",
		defaultConfigFile + ".template",
	}...)
}

// Load loads default configuration and the configuration from default config files.
func Load(extraDefaults []byte) error {
	cfgMu.Lock()
	defer cfgMu.Unlock()
	opts := ini.LoadOptions{
		Loose:       true,
		Insensitive: true,
	}

	var buffer bytes.Buffer
	err := applyTemplate(defaultConfigTemplate, defaultConfigValues, &buffer)
	if err != nil {
		return fmt.Errorf("unable to apply %v to config template: %w", defaultConfigValues, err)
	}

	sources := dataSources(extraDefaults)
	galog.V(3).Debugf("Loading configuration from sources: %v", sources)
	cfg, err := ini.LoadSources(opts, buffer.Bytes(), sources...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	sections := new(Sections)
	if err := cfg.MapTo(sections); err != nil {
		return fmt.Errorf("failed to map configuration to object: %w", err)
	}

	instance = sections
	return nil
}

// Retrieve returns the configuration's instance previously loaded with Load().
func Retrieve() *Sections {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	if instance == nil {
		panicFc("cfg package was not initialized, Load() should be called in the early initialization code path")
	}
	return instance
}

// ToString returns the configuration's instance previously loaded with Load()
// as an ini document.
func ToString() (string, error) {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	buffer := new(bytes.Buffer)

	cfg := ini.Empty()
	if err := ini.ReflectFrom(cfg, instance); err != nil {
		return "", fmt.Errorf("failed to reflect configuration to object: %w", err)
	}

	if _, err := cfg.WriteTo(buffer); err != nil {
		return "", fmt.Errorf("failed to write configuration to buffer: %w", err)
	}
	return strings.TrimSpace(buffer.String()), nil
}
