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
	"os"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"go.uber.org/zap"

	azcredential "github.com/kserve/bundleshim/pkg/credentials/azure"
)

// AzureClient is the subset of the azblob client the provider needs; it keeps
// the provider mockable in tests.
type AzureClient interface {
	NewListBlobsFlatPager(container string, options *azblob.ListBlobsFlatOptions) *runtime.Pager[azblob.ListBlobsFlatResponse]
	DownloadFile(ctx context.Context, container string, blob string, file *os.File, options *azblob.DownloadFileOptions) (int64, error)
}

type AzureProvider struct {
	// NewClient builds the blob client for a storage account service url;
	// swapped for a fake in tests.
	NewClient func(serviceUrl string) (AzureClient, error)
}

var _ Provider = (*AzureProvider)(nil)

// newAzureClient prefers a shared storage key, then a service principal, and
// falls back to anonymous access for public containers.
func newAzureClient(serviceUrl string) (AzureClient, error) {
	accountName, okName := os.LookupEnv(azcredential.AzureStorageAccountName)
	accountKey, okKey := os.LookupEnv(azcredential.AzureStorageAccessKey)
	if okName && okKey {
		cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
		if err != nil {
			return nil, err
		}
		return azblob.NewClientWithSharedKeyCredential(serviceUrl, cred, nil)
	}
	clientId, okClient := os.LookupEnv(azcredential.AzureClientId)
	clientSecret, okSecret := os.LookupEnv(azcredential.AzureClientSecret)
	tenantId, okTenant := os.LookupEnv(azcredential.AzureTenantId)
	if okClient && okSecret && okTenant {
		cred, err := azidentity.NewClientSecretCredential(tenantId, clientId, clientSecret, nil)
		if err != nil {
			return nil, err
		}
		return azblob.NewClient(serviceUrl, cred, nil)
	}
	return azblob.NewClientWithNoCredential(serviceUrl, nil)
}

type azureUriParts struct {
	serviceUrl    string
	containerName string
	virtualDir    string
}

// parseAzureUri splits azure://account.blob.core.windows.net/container/virtualDir
// into its service url, container and blob prefix.
func parseAzureUri(storageUri string) (azureUriParts, error) {
	uri := strings.TrimPrefix(storageUri, string(AZ))
	if uri == storageUri {
		return azureUriParts{}, fmt.Errorf("invalid Azure uri: %s", storageUri)
	}
	tokens := strings.SplitN(strings.TrimSuffix(uri, "/"), "/", 3)
	if len(tokens) < 3 || tokens[1] == "" || tokens[2] == "" {
		return azureUriParts{}, fmt.Errorf("invalid Azure uri: %s", storageUri)
	}
	return azureUriParts{
		serviceUrl:    "https://" + tokens[0],
		containerName: tokens[1],
		virtualDir:    tokens[2],
	}, nil
}

// DownloadBundle downloads every blob under the uri's virtual directory.
func (a *AzureProvider) DownloadBundle(bundleDir string, bundleName string, storageUri string) error {
	zap.S().Infow("Downloading bundle", "bundleName", bundleName, "storageUri", storageUri, "bundleDir", bundleDir)
	parts, err := parseAzureUri(storageUri)
	if err != nil {
		return err
	}
	client, err := a.NewClient(parts.serviceUrl)
	if err != nil {
		return fmt.Errorf("unable to create Azure client: %w", err)
	}
	ctx := context.Background()
	pager := client.NewListBlobsFlatPager(parts.containerName, &azblob.ListBlobsFlatOptions{
		Prefix: &parts.virtualDir,
	})

	count := 0
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("unable to list blobs: %w", err)
		}
		for _, blob := range resp.Segment.BlobItems {
			subPath := strings.TrimPrefix(*blob.Name, parts.virtualDir)
			fileName := filepath.Join(bundleDir, bundleName, subPath)
			file, err := Create(fileName)
			if err != nil {
				return fmt.Errorf("file is unable to be created: %w", err)
			}
			_, err = client.DownloadFile(ctx, parts.containerName, *blob.Name, file, nil)
			closeErr := file.Close()
			if err != nil {
				return fmt.Errorf("unable to download blob %s: %w", *blob.Name, err)
			}
			if closeErr != nil {
				return closeErr
			}
			count++
		}
	}
	if count == 0 {
		return fmt.Errorf("no blobs found at %s", storageUri)
	}
	return nil
}
