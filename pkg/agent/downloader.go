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

// Package agent watches a bundle config, downloads the listed exports from
// remote storage and up-converts legacy session bundles into SavedModel form
// so the serving runtime next to it only ever reads the current format.
package agent

import (
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/kserve/bundleshim/pkg/agent/storage"
	"github.com/kserve/bundleshim/pkg/bundle"
)

type Downloader struct {
	BundleDir string
	Providers map[storage.Protocol]storage.Provider
	Logger    *zap.SugaredLogger
}

var protocolPrefix = regexp.MustCompile(`\w+?://`)

// DownloadBundle downloads the event's export if it is not already present,
// up-converts any legacy session bundle found in it, and drops a success
// marker recording the spec it was downloaded from.
func (d *Downloader) DownloadBundle(event BundleEvent) error {
	if event.Spec == nil {
		return nil
	}
	storageUri := event.Spec.StorageURI
	hashString := hash(storageUri)
	successFile := filepath.Join(d.BundleDir, event.BundleName, fmt.Sprintf("SUCCESS.%d", hashString))
	if storage.FileExists(successFile) {
		d.Logger.Infof("bundle %s from %s exists already", event.BundleName, storageUri)
		return nil
	}
	if !event.ShouldDownload {
		d.Logger.Infof("bundle %s does not need to be re-downloaded", event.BundleName)
		return nil
	}
	if err := d.download(event.BundleName, storageUri); err != nil {
		return errors.Wrapf(err, "failed to download %s", storageUri)
	}
	if err := d.upConvert(filepath.Join(d.BundleDir, event.BundleName)); err != nil {
		return errors.Wrapf(err, "failed to up-convert bundle %s", event.BundleName)
	}
	spec, err := json.Marshal(event.Spec)
	if err != nil {
		return err
	}
	file, err := storage.Create(successFile)
	if err != nil {
		return errors.Wrapf(err, "failed to create success file %s", successFile)
	}
	defer file.Close()
	if _, err := file.Write(spec); err != nil {
		return errors.Wrapf(err, "failed to write success file %s", successFile)
	}
	return nil
}

func (d *Downloader) download(bundleName string, storageUri string) error {
	protocol, err := extractProtocol(storageUri)
	if err != nil {
		return err
	}
	provider, err := storage.GetProvider(d.Providers, protocol)
	if err != nil {
		return err
	}
	if provider == nil {
		return fmt.Errorf("protocol %s is not supported", protocol)
	}
	return provider.DownloadBundle(d.BundleDir, bundleName, storageUri)
}

// upConvert walks the downloaded tree and rewrites every legacy session
// bundle as a native SavedModel next to its checkpoint files. Exports already
// in native form are left untouched.
func (d *Downloader) upConvert(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if !bundle.IsSessionBundlePath(path) || bundle.IsSavedModelPath(path) {
			return nil
		}
		loaded, err := bundle.LoadSavedModelFromLegacyPath(path)
		if err != nil {
			return err
		}
		d.Logger.Infof("up-converted legacy session bundle at %s", path)
		return bundle.WriteSavedModel(path, loaded.MetaGraphDef)
	})
}

// RemoveBundle deletes the local copy of an unloaded bundle.
func (d *Downloader) RemoveBundle(bundleName string) error {
	bundleDir := filepath.Join(d.BundleDir, bundleName)
	if _, err := os.Stat(bundleDir); os.IsNotExist(err) {
		return nil
	}
	return storage.RemoveDir(bundleDir)
}

func hash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

func extractProtocol(storageUri string) (storage.Protocol, error) {
	if storageUri == "" {
		return "", fmt.Errorf("there is no storageUri supplied")
	}
	if !protocolPrefix.MatchString(storageUri) {
		return "", fmt.Errorf("there is no protocol specified for the storageUri")
	}
	for _, prefix := range storage.SupportedProtocols {
		if strings.HasPrefix(storageUri, string(prefix)) {
			return prefix, nil
		}
	}
	return "", fmt.Errorf("protocol must be one of %v", storage.GetAllProtocol())
}
