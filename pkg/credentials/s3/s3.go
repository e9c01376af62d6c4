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

package s3

// Environment keys the S3 client is configured from. They mirror what the
// serving storage initializers expect, so one credential setup serves both.
const (
	AWSAccessKeyId         = "AWS_ACCESS_KEY_ID"     // #nosec G101
	AWSSecretAccessKey     = "AWS_SECRET_ACCESS_KEY" // #nosec G101
	AWSEndpointUrl         = "AWS_ENDPOINT_URL"
	AWSRegion              = "AWS_DEFAULT_REGION"
	AWSAnonymousCredential = "awsAnonymousCredential" // #nosec G101
)
