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
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const headerSuffix = "-headers"

type HTTPSProvider struct {
	Client *http.Client
}

var _ Provider = (*HTTPSProvider)(nil)

func (m *HTTPSProvider) DownloadBundle(bundleDir string, bundleName string, storageUri string) error {
	zap.S().Infow("Downloading bundle", "bundleName", bundleName, "storageUri", storageUri, "bundleDir", bundleDir)
	uri, err := url.Parse(storageUri)
	if err != nil {
		return fmt.Errorf("unable to parse storage uri: %w", err)
	}
	downloader := &HTTPSDownloader{
		StorageUri: storageUri,
		BundleDir:  bundleDir,
		BundleName: bundleName,
		Uri:        uri,
	}
	return downloader.Download(m.Client)
}

type HTTPSDownloader struct {
	StorageUri string
	BundleDir  string
	BundleName string
	Uri        *url.URL
}

func (h *HTTPSDownloader) Download(client *http.Client) error {
	req, err := http.NewRequest(http.MethodGet, h.StorageUri, nil)
	if err != nil {
		return err
	}
	for key, value := range h.extractHeaders() {
		req.Header.Set(key, value)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("URI: %s returned a %d response code", h.StorageUri, resp.StatusCode)
	}

	fileName := filepath.Base(h.Uri.Path)
	switch {
	case strings.HasSuffix(fileName, ".tar.gz"), strings.HasSuffix(fileName, ".tgz"):
		return h.extractTarGz(resp.Body)
	case strings.HasSuffix(fileName, ".zip"):
		return h.extractZip(resp.Body)
	default:
		target := filepath.Join(h.BundleDir, h.BundleName, fileName)
		file, err := Create(target)
		if err != nil {
			return fmt.Errorf("file is unable to be created: %w", err)
		}
		defer file.Close()
		_, err = io.Copy(file, resp.Body)
		return err
	}
}

// extractHeaders reads request headers for this host from the environment,
// keyed as "<hostname>-headers" holding a JSON object. Private registries use
// this for auth tokens.
func (h *HTTPSDownloader) extractHeaders() map[string]string {
	headers := map[string]string{}
	raw, ok := os.LookupEnv(h.Uri.Hostname() + headerSuffix)
	if !ok {
		return headers
	}
	if err := json.Unmarshal([]byte(raw), &headers); err != nil {
		zap.S().Warnw("Unable to parse headers from environment", "host", h.Uri.Hostname(), "error", err)
	}
	return headers
}

func (h *HTTPSDownloader) extractTarGz(body io.Reader) error {
	gzr, err := gzip.NewReader(body)
	if err != nil {
		return fmt.Errorf("unable to open gzip stream: %w", err)
	}
	defer gzr.Close()
	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("unable to read tar stream: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		target, err := h.sanitizePath(header.Name)
		if err != nil {
			return err
		}
		file, err := Create(target)
		if err != nil {
			return fmt.Errorf("file is unable to be created: %w", err)
		}
		//nolint:gosec // bundle archives are caller-provided and size-bounded upstream
		_, err = io.Copy(file, tr)
		closeErr := file.Close()
		if err != nil {
			return fmt.Errorf("unable to extract %s: %w", header.Name, err)
		}
		if closeErr != nil {
			return closeErr
		}
	}
}

func (h *HTTPSDownloader) extractZip(body io.Reader) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return fmt.Errorf("unable to open zip archive: %w", err)
	}
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		target, err := h.sanitizePath(entry.Name)
		if err != nil {
			return err
		}
		src, err := entry.Open()
		if err != nil {
			return err
		}
		file, err := Create(target)
		if err != nil {
			src.Close()
			return fmt.Errorf("file is unable to be created: %w", err)
		}
		//nolint:gosec // bundle archives are caller-provided and size-bounded upstream
		_, err = io.Copy(file, src)
		src.Close()
		closeErr := file.Close()
		if err != nil {
			return fmt.Errorf("unable to extract %s: %w", entry.Name, err)
		}
		if closeErr != nil {
			return closeErr
		}
	}
	return nil
}

// sanitizePath rejects archive entries that would escape the bundle dir.
func (h *HTTPSDownloader) sanitizePath(entryName string) (string, error) {
	root := filepath.Join(h.BundleDir, h.BundleName)
	target := filepath.Join(root, entryName)
	if !strings.HasPrefix(target, filepath.Clean(root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %s escapes bundle directory", entryName)
	}
	return target, nil
}
