/*
Copyright 2026 The KServe Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package agent

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/syncmap"

	"github.com/kserve/bundleshim/pkg/bundleconfig"
)

// SyncBundleDir rebuilds the watcher's tracker from the success markers left
// by previous downloads, so an agent restart does not re-pull bundles that
// are already on disk.
func SyncBundleDir(bundleDir string) (*syncmap.Map, error) {
	tracker := &syncmap.Map{}
	entries, err := os.ReadDir(bundleDir)
	if os.IsNotExist(err) {
		return tracker, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read bundle dir %s", bundleDir)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		bundleName := entry.Name()
		spec, err := readSuccessFile(filepath.Join(bundleDir, bundleName))
		if err != nil {
			return nil, err
		}
		if spec == nil {
			continue
		}
		tracker.Store(bundleName, bundleWrapper{
			Spec:  spec,
			Stale: false,
		})
	}
	return tracker, nil
}

func readSuccessFile(bundlePath string) (*bundleconfig.BundleSpec, error) {
	entries, err := os.ReadDir(bundlePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read bundle path %s", bundlePath)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "SUCCESS.") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(bundlePath, entry.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read success file")
		}
		spec := &bundleconfig.BundleSpec{}
		if err := json.Unmarshal(raw, spec); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal bundle spec")
		}
		return spec, nil
	}
	return nil, nil
}
