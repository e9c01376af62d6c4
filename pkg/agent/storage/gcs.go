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
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gstorage "cloud.google.com/go/storage"
	"github.com/googleapis/google-cloud-go-testing/storage/stiface"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
)

type GCSProvider struct {
	Client stiface.Client
}

var _ Provider = (*GCSProvider)(nil)

func (p *GCSProvider) DownloadBundle(bundleDir string, bundleName string, storageUri string) error {
	zap.S().Infow("Downloading bundle", "bundleName", bundleName, "storageUri", storageUri, "bundleDir", bundleDir)
	gcsUri := strings.TrimPrefix(storageUri, string(GCS))
	tokens := strings.SplitN(gcsUri, "/", 2)
	prefix := ""
	if len(tokens) == 2 {
		prefix = tokens[1]
	}
	gcsObjectDownloader := &GCSObjectDownloader{
		Context:    context.Background(),
		StorageUri: storageUri,
		BundleDir:  bundleDir,
		BundleName: bundleName,
		Bucket:     tokens[0],
		Prefix:     prefix,
	}
	it := gcsObjectDownloader.GetObjectIterator(p.Client)
	if err := gcsObjectDownloader.Download(p.Client, it); err != nil {
		return fmt.Errorf("unable to download objects: %w", err)
	}
	return nil
}

type GCSObjectDownloader struct {
	Context    context.Context
	StorageUri string
	BundleDir  string
	BundleName string
	Bucket     string
	Prefix     string
}

func (g *GCSObjectDownloader) GetObjectIterator(client stiface.Client) stiface.ObjectIterator {
	query := &gstorage.Query{Prefix: g.Prefix}
	return client.Bucket(g.Bucket).Objects(g.Context, query)
}

func (g *GCSObjectDownloader) Download(client stiface.Client, it stiface.ObjectIterator) error {
	count := 0
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("an error occurred while iterating: %w", err)
		}
		subPath := strings.TrimPrefix(attrs.Name, g.Prefix)
		fileName := filepath.Join(g.BundleDir, g.BundleName, subPath)
		if FileExists(fileName) {
			zap.S().Infow("Deleting file before re-download", "fileName", fileName)
			if err := os.Remove(fileName); err != nil {
				return fmt.Errorf("file is unable to be deleted: %w", err)
			}
		}
		file, err := Create(fileName)
		if err != nil {
			return fmt.Errorf("file is unable to be created: %w", err)
		}
		if err := g.DownloadFile(client, attrs, file); err != nil {
			return err
		}
		count++
	}
	if count == 0 {
		return fmt.Errorf("no objects found at %s", g.StorageUri)
	}
	return nil
}

func (g *GCSObjectDownloader) DownloadFile(client stiface.Client, attrs *gstorage.ObjectAttrs, file *os.File) error {
	defer file.Close()
	reader, err := client.Bucket(attrs.Bucket).Object(attrs.Name).NewReader(g.Context)
	if err != nil {
		return fmt.Errorf("failed to create reader for object(%s) in bucket(%s): %w",
			attrs.Name, attrs.Bucket, err)
	}
	defer reader.Close()
	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write object(%s) in bucket(%s) to file(%s): %w",
			attrs.Name, attrs.Bucket, file.Name(), err)
	}
	return nil
}
