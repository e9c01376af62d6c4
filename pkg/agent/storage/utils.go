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
	"net/http"
	"os"
	"path/filepath"
	"strings"

	gstorage "cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/googleapis/google-cloud-go-testing/storage/stiface"
	jsoniter "github.com/json-iterator/go"
	"google.golang.org/api/option"

	gcscredential "github.com/kserve/bundleshim/pkg/credentials/gcs"
	s3credential "github.com/kserve/bundleshim/pkg/credentials/s3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

func Create(fileName string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(fileName), 0o755); err != nil {
		return nil, err
	}
	return os.Create(fileName)
}

func RemoveDir(dir string) error {
	cleanDir := filepath.Clean(dir)
	if cleanDir != dir {
		return fmt.Errorf("the directory contains invalid characters: %s", dir)
	}
	d, err := os.Open(cleanDir)
	if err != nil {
		return err
	}
	defer d.Close()
	names, err := d.Readdirnames(-1)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := os.RemoveAll(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	if err := os.Remove(dir); err != nil {
		return fmt.Errorf("dir is unable to be deleted: %w", err)
	}
	return nil
}

// GetProvider returns the provider for protocol, constructing and caching it
// on first use. Client configuration comes from the environment, matching
// what the serving storage initializers expect.
func GetProvider(providers map[Protocol]Provider, protocol Protocol) (Provider, error) {
	if provider, ok := providers[protocol]; ok {
		return provider, nil
	}

	switch protocol {
	case GCS:
		var gcsClient *gstorage.Client
		var err error

		ctx := context.Background()
		if _, ok := os.LookupEnv(gcscredential.GCSCredentialEnvKey); ok {
			// GOOGLE_APPLICATION_CREDENTIALS is picked up by the client.
			gcsClient, err = gstorage.NewClient(ctx)
		} else {
			gcsClient, err = gstorage.NewClient(ctx, option.WithoutAuthentication())
		}
		if err != nil {
			return nil, err
		}
		providers[GCS] = &GCSProvider{
			Client: stiface.AdaptClient(gcsClient),
		}
	case S3:
		region, _ := os.LookupEnv(s3credential.AWSRegion)
		awsConfig := aws.Config{
			Region: aws.String(region),
		}
		if endpoint, ok := os.LookupEnv(s3credential.AWSEndpointUrl); ok {
			awsConfig.Endpoint = aws.String(endpoint)
			awsConfig.S3ForcePathStyle = aws.Bool(true)
		}
		if useAnonCred, ok := os.LookupEnv(s3credential.AWSAnonymousCredential); ok && strings.ToLower(useAnonCred) == "true" {
			awsConfig.Credentials = credentials.AnonymousCredentials
		} else if accessKey, ok := os.LookupEnv(s3credential.AWSAccessKeyId); ok {
			secretKey, _ := os.LookupEnv(s3credential.AWSSecretAccessKey)
			awsConfig.Credentials = credentials.NewStaticCredentials(accessKey, secretKey, "")
		}
		sess, err := session.NewSession(&awsConfig)
		if err != nil {
			return nil, err
		}
		sessionClient := s3.New(sess)
		providers[S3] = &S3Provider{
			Client:     sessionClient,
			Downloader: s3manager.NewDownloaderWithClient(sessionClient, func(d *s3manager.Downloader) {}),
		}
	case AZ:
		providers[AZ] = &AzureProvider{
			NewClient: newAzureClient,
		}
	case HTTPS, HTTP:
		providers[protocol] = &HTTPSProvider{
			Client: http.DefaultClient,
		}
	case File:
		providers[File] = &FileProvider{}
	}

	return providers[protocol], nil
}
