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

// Package bundle loads exported model bundles from disk. It understands the
// native SavedModel layout as well as the legacy session bundle layout, which
// it up-converts through pkg/bundleshim so callers only ever see SignatureDefs.
package bundle

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/kserve/bundleshim/pkg/apis/tensorflow"
	"github.com/kserve/bundleshim/pkg/bundleshim"
)

// Bundle is an exported model loaded into memory.
type Bundle struct {
	// Path is the export directory the bundle was loaded from.
	Path string
	// MetaGraphDef carries the graph and its signature defs. For a legacy
	// bundle this is the up-converted meta graph.
	MetaGraphDef *tensorflow.MetaGraphDef
}

// LoadSavedModelFromLegacyPath loads a session bundle export and up-converts
// its legacy signatures into signature defs on the returned meta graph.
func LoadSavedModelFromLegacyPath(exportDir string) (*Bundle, error) {
	loaded, err := LoadSessionBundle(exportDir)
	if err != nil {
		return nil, err
	}
	signatures, err := GetSignatures(loaded.MetaGraphDef)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to extract legacy signatures from %s", exportDir)
	}
	bundleshim.ConvertSignaturesToSignatureDefs(signatures, loaded.MetaGraphDef)
	if len(loaded.MetaGraphDef.SignatureDef) == 0 {
		zap.S().Warnw("Legacy signatures did not up-convert to any signature def",
			"exportDir", exportDir)
	}
	return loaded, nil
}

// Load loads whichever bundle format is present at exportDir. A native
// SavedModel wins over a legacy session bundle; a directory holding neither
// is an error.
func Load(exportDir string) (*Bundle, error) {
	switch {
	case IsSavedModelPath(exportDir):
		return LoadSavedModel(exportDir)
	case IsSessionBundlePath(exportDir):
		return LoadSavedModelFromLegacyPath(exportDir)
	default:
		return nil, errors.Errorf("no saved model or session bundle found at %s", exportDir)
	}
}
