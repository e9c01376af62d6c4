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

package bundle

import (
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/kserve/bundleshim/pkg/apis/tensorflow"
	"github.com/kserve/bundleshim/pkg/constants"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// IsSessionBundlePath reports whether exportDir holds a legacy session bundle
// export, identified by the presence of its meta graph file.
func IsSessionBundlePath(exportDir string) bool {
	info, err := os.Stat(filepath.Join(exportDir, constants.SessionBundleMetaGraphFile))
	return err == nil && !info.IsDir()
}

// LoadSessionBundle reads the legacy meta graph from exportDir and verifies
// the variables checkpoint it references is present. Signatures stay packed
// in the collection def; see GetSignatures.
func LoadSessionBundle(exportDir string) (*Bundle, error) {
	zap.S().Infow("Loading session bundle", "exportDir", exportDir)
	raw, err := os.ReadFile(filepath.Join(exportDir, constants.SessionBundleMetaGraphFile))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read meta graph from %s", exportDir)
	}
	metaGraphDef := &tensorflow.MetaGraphDef{}
	if err := json.Unmarshal(raw, metaGraphDef); err != nil {
		return nil, errors.Wrapf(err, "failed to parse meta graph from %s", exportDir)
	}
	if !hasVariablesCheckpoint(exportDir) {
		return nil, errors.Errorf("session bundle at %s has no variables checkpoint", exportDir)
	}
	return &Bundle{Path: exportDir, MetaGraphDef: metaGraphDef}, nil
}

// GetSignatures unpacks the legacy Signatures stashed in the meta graph
// collection def.
func GetSignatures(metaGraphDef *tensorflow.MetaGraphDef) (*tensorflow.Signatures, error) {
	raw, ok := metaGraphDef.CollectionDef[constants.SignaturesCollectionKey]
	if !ok {
		return nil, errors.Errorf("expected exactly one serving signatures collection, found none")
	}
	signatures := &tensorflow.Signatures{}
	if err := json.Unmarshal(raw, signatures); err != nil {
		return nil, errors.Wrap(err, "failed to parse serving signatures collection")
	}
	return signatures, nil
}

// hasVariablesCheckpoint accepts both sharded V1 checkpoints (export-?????-of-?????)
// and V2 checkpoints (export.index).
func hasVariablesCheckpoint(exportDir string) bool {
	if matches, err := filepath.Glob(filepath.Join(exportDir, constants.SessionBundleVariablesFile+"-?????-of-?????")); err == nil && len(matches) > 0 {
		return true
	}
	info, err := os.Stat(filepath.Join(exportDir, constants.SessionBundleVariablesFile+".index"))
	return err == nil && !info.IsDir()
}
