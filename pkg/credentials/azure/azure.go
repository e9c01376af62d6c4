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

package azure

const (
	AzureStorageAccountName = "AZURE_STORAGE_ACCOUNT"
	AzureStorageAccessKey   = "AZURE_STORAGE_ACCESS_KEY" // #nosec G101
	AzureClientId           = "AZURE_CLIENT_ID"
	AzureClientSecret       = "AZURE_CLIENT_SECRET" // #nosec G101
	AzureTenantId           = "AZURE_TENANT_ID"
)
