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
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"go.uber.org/zap"
)

type S3Provider struct {
	Client     s3iface.S3API
	Downloader s3manageriface.DownloadWithIterator
}

var _ Provider = (*S3Provider)(nil)

func (m *S3Provider) DownloadBundle(bundleDir string, bundleName string, storageUri string) error {
	zap.S().Infow("Downloading bundle", "bundleName", bundleName, "storageUri", storageUri, "bundleDir", bundleDir)
	s3Uri := strings.TrimPrefix(storageUri, string(S3))
	tokens := strings.SplitN(s3Uri, "/", 2)
	prefix := ""
	if len(tokens) == 2 {
		prefix = tokens[1]
	}
	s3ObjectDownloader := &S3ObjectDownloader{
		StorageUri: storageUri,
		BundleDir:  bundleDir,
		BundleName: bundleName,
		Bucket:     tokens[0],
		Prefix:     prefix,
	}
	objects, err := s3ObjectDownloader.GetAllObjects(m.Client)
	if err != nil {
		return fmt.Errorf("unable to list objects: %w", err)
	}
	if len(objects) == 0 {
		return fmt.Errorf("no objects found at %s", storageUri)
	}
	if err := s3ObjectDownloader.Download(m.Downloader, objects); err != nil {
		return fmt.Errorf("unable to download objects: %w", err)
	}
	return nil
}

type S3ObjectDownloader struct {
	StorageUri string
	BundleDir  string
	BundleName string
	Bucket     string
	Prefix     string
}

func (s *S3ObjectDownloader) GetAllObjects(s3Svc s3iface.S3API) ([]s3manager.BatchDownloadObject, error) {
	resp, err := s3Svc.ListObjects(&s3.ListObjectsInput{
		Bucket: aws.String(s.Bucket),
		Prefix: aws.String(s.Prefix),
	})
	if err != nil {
		return nil, err
	}
	results := make([]s3manager.BatchDownloadObject, 0, len(resp.Contents))

	for _, object := range resp.Contents {
		subPath := strings.TrimPrefix(*object.Key, s.Prefix)
		fileName := filepath.Join(s.BundleDir, s.BundleName, subPath)
		if FileExists(fileName) {
			// Stale leftover from an interrupted download.
			zap.S().Infow("Deleting file before re-download", "fileName", fileName)
			if err := os.Remove(fileName); err != nil {
				return nil, fmt.Errorf("file is unable to be deleted: %w", err)
			}
		}
		file, err := Create(fileName)
		if err != nil {
			return nil, fmt.Errorf("file is unable to be created: %w", err)
		}
		object := s3manager.BatchDownloadObject{
			Object: &s3.GetObjectInput{
				Key:    aws.String(*object.Key),
				Bucket: aws.String(s.Bucket),
			},
			Writer: file,
			After: func() error {
				defer file.Close()
				return nil
			},
		}
		results = append(results, object)
	}
	return results, nil
}

func (s *S3ObjectDownloader) Download(downloader s3manageriface.DownloadWithIterator, objects []s3manager.BatchDownloadObject) error {
	iter := &s3manager.DownloadObjectsIterator{Objects: objects}
	return downloader.DownloadWithIterator(aws.BackgroundContext(), iter)
}
