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

// Package file implements file related utilities.
package file

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/GoogleCloudPlatform/galog"
)

// Type is the type of file.
type Type int

// Options contain options for file modification operations behavior.
type Options struct {
	// Perm is the file permissions.
	Perm fs.FileMode
	// DirPerm is the permissions of created parent directories, 0755 if unset.
	DirPerm fs.FileMode
}

const (
	// TypeDir is the type of directory.
	TypeDir Type = iota
	// TypeFile is the type of a regular file.
	TypeFile
)

func (o Options) dirPerm() fs.FileMode {
	if o.DirPerm == 0 {
		return 0755
	}
	return o.DirPerm
}

// Exists returns true if the file exists and match ftype. Symlinks are
// followed.
func Exists(fpath string, ftype Type) bool {
	stat, err := os.Stat(fpath)
	if err != nil {
		return false
	}

	switch ftype {
	case TypeDir:
		return stat.IsDir()
	case TypeFile:
		return stat.Mode().IsRegular()
	}
	return false
}

// SaferWriteFile writes to a temporary file and then replaces the expected
// output file.
// This prevents other processes from reading partial content while the writer
// is still writing.
func SaferWriteFile(ctx context.Context, content []byte, outputFile string, opts Options) error {
	dir := filepath.Dir(outputFile)
	name := filepath.Base(outputFile)

	if err := os.MkdirAll(dir, opts.dirPerm()); err != nil {
		return fmt.Errorf("unable to create required directories %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, name+"*")
	if err != nil {
		return fmt.Errorf("unable to create temporary file under %q: %w", dir, err)
	}

	renamed := false
	defer func() {
		if renamed {
			return
		}
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			galog.Debugf("Failed to remove temporary file %q: %v", tmp.Name(), err)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("unable to write to a temporary file %q: %w", tmp.Name(), err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tmp.Name(), opts.Perm); err != nil {
		return fmt.Errorf("unable to set permissions on temporary file %q: %w", tmp.Name(), err)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("not replacing %q: %w", outputFile, err)
	}

	if err := os.Rename(tmp.Name(), outputFile); err != nil {
		return fmt.Errorf("unable to replace %q: %w", outputFile, err)
	}
	renamed = true
	return nil
}
