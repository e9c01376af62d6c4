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

// Package bundleconfig parses the agent's bundle list, a JSON file mapping
// bundle names to the storage locations their legacy exports live at:
//
//	[
//	  {
//	    "bundleName": "half_plus_two",
//	    "bundleSpec": {
//	      "storageUri": "s3://example-bucket/exports/half_plus_two/00000123"
//	    }
//	  }
//	]
package bundleconfig

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type BundleSpec struct {
	StorageURI string `json:"storageUri"`
}

type BundleConfig struct {
	Name string     `json:"bundleName"`
	Spec BundleSpec `json:"bundleSpec"`
}

type BundleConfigs []BundleConfig

// Parse decodes the bundle list. An empty file is an empty list.
func Parse(raw []byte) (BundleConfigs, error) {
	configs := BundleConfigs{}
	if len(raw) == 0 {
		return configs, nil
	}
	if err := json.Unmarshal(raw, &configs); err != nil {
		return nil, fmt.Errorf("unable to parse bundle config: %w", err)
	}
	return configs, nil
}
