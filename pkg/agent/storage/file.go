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

package storage

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FileProvider copies an export already present on the local filesystem into
// the bundle dir, so mounted volumes go through the same download path as
// remote storage.
type FileProvider struct{}

var _ Provider = (*FileProvider)(nil)

func (f *FileProvider) DownloadBundle(bundleDir string, bundleName string, storageUri string) error {
	zap.S().Infow("Downloading bundle", "bundleName", bundleName, "storageUri", storageUri, "bundleDir", bundleDir)
	source := strings.TrimPrefix(storageUri, string(File))
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("unable to stat %s: %w", source, err)
	}
	if !info.IsDir() {
		return copyFile(source, filepath.Join(bundleDir, bundleName, filepath.Base(source)))
	}
	count := 0
	err = filepath.WalkDir(source, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		subPath, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		if err := copyFile(path, filepath.Join(bundleDir, bundleName, subPath)); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("no files found at %s", storageUri)
	}
	return nil
}

func copyFile(source string, target string) error {
	src, err := os.Open(source)
	if err != nil {
		return err
	}
	defer src.Close()
	file, err := Create(target)
	if err != nil {
		return fmt.Errorf("file is unable to be created: %w", err)
	}
	_, err = io.Copy(file, src)
	closeErr := file.Close()
	if err != nil {
		return fmt.Errorf("unable to copy %s: %w", source, err)
	}
	return closeErr
}
