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

package bundleconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := map[string]struct {
		raw      string
		expected BundleConfigs
		wantErr  bool
	}{
		"empty file": {
			raw:      "",
			expected: BundleConfigs{},
		},
		"empty list": {
			raw:      "[]",
			expected: BundleConfigs{},
		},
		"single bundle": {
			raw: `[{"bundleName":"half_plus_two","bundleSpec":{"storageUri":"s3://bucket/half_plus_two/00000123"}}]`,
			expected: BundleConfigs{
				{Name: "half_plus_two", Spec: BundleSpec{StorageURI: "s3://bucket/half_plus_two/00000123"}},
			},
		},
		"malformed": {
			raw:     `{"bundleName":`,
			wantErr: true,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			configs, err := Parse([]byte(tc.raw))
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, configs)
		})
	}
}
