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

// Package accounts provides value typed user and group identities and
// accounts backed by the operating system's account databases.
//
// Every exported function is total: lookups that fail (unknown key, malformed
// key or a database failure) yield invalid values and are logged, they never
// return errors or panic. Nothing is cached, every call reaches the database.
package accounts

import (
	"context"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/galog"
	"github.com/GoogleCloudPlatform/google-guest-accounts/internal/accountdb"
)

const (
	// Unlimited disables the maxCount bound of the enumeration functions.
	Unlimited = -1
	// DefaultFaceIconName is the file name looked up under a user's home
	// directory by FaceIconPath.
	DefaultFaceIconName = ".face.icon"
)

var (
	// configMu protects db and faceIconName.
	configMu sync.RWMutex
	// db is the account database all lookups go through. It's lazily
	// initialized with the system backend if Configure was never called.
	db accountdb.Database
	// faceIconName is the file name looked up by FaceIconPath.
	faceIconName = DefaultFaceIconName

	// getenv is stubbed out for testing.
	getenv = os.Getenv

	// newSystemDatabase opens the platform's system database, it's stubbed out
	// for testing.
	newSystemDatabase = func() (accountdb.Database, error) {
		return accountdb.New(accountdb.Options{Backend: accountdb.BackendSystem})
	}
)

// Options configures the package.
type Options struct {
	// Database is the account database, nil selects the platform's system
	// database.
	Database accountdb.Database
	// FaceIconName is the face icon file name, empty selects
	// DefaultFaceIconName.
	FaceIconName string
}

// Configure sets the database and face icon file name used by all subsequent
// calls.
func Configure(opts Options) {
	configMu.Lock()
	defer configMu.Unlock()

	db = opts.Database
	faceIconName = opts.FaceIconName
	if faceIconName == "" {
		faceIconName = DefaultFaceIconName
	}
}

// database returns the configured database, initializing the system database
// on first use.
func database() accountdb.Database {
	configMu.RLock()
	res := db
	configMu.RUnlock()
	if res != nil {
		return res
	}

	configMu.Lock()
	defer configMu.Unlock()
	if db == nil {
		sys, err := newSystemDatabase()
		if err != nil {
			galog.Errorf("Failed to initialize the system account database, falling back to %s and %s: %v", accountdb.DefaultPasswdFile, accountdb.DefaultGroupFile, err)
			sys = accountdb.NewFiles(accountdb.DefaultPasswdFile, accountdb.DefaultGroupFile)
		}
		db = sys
	}
	return db
}

func configuredFaceIconName() string {
	configMu.RLock()
	defer configMu.RUnlock()
	return faceIconName
}

// logLookupFailure logs a failed single record lookup.
func logLookupFailure(kind, key string, err error) {
	galog.V(1).Debugf("Failed to look up %s %q: %v", kind, key, err)
}

// collect walks the cursor returned by open converting entries with conv,
// entries conv rejects are skipped. It stops once maxCount results were
// collected. Failures are logged and the results gathered so far returned.
func collect[E, R any](ctx context.Context, kind string, maxCount int, open func(context.Context) (*accountdb.Cursor[E], error), conv func(*E) (R, bool)) []R {
	res := []R{}
	if maxCount == 0 {
		return res
	}

	c, err := open(ctx)
	if err != nil {
		galog.Errorf("Failed to enumerate %s: %v", kind, err)
		return res
	}
	defer c.Close()

	for c.Next() {
		r, ok := conv(c.Entry())
		if !ok {
			continue
		}
		res = append(res, r)
		if maxCount > 0 && len(res) >= maxCount {
			return res
		}
	}

	if err := c.Err(); err != nil {
		galog.Errorf("Failed to enumerate %s, returning %d entries: %v", kind, len(res), err)
	}
	return res
}
