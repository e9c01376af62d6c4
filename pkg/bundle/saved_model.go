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

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/kserve/bundleshim/pkg/apis/tensorflow"
	"github.com/kserve/bundleshim/pkg/constants"
)

// IsSavedModelPath reports whether exportDir holds a native SavedModel export.
func IsSavedModelPath(exportDir string) bool {
	info, err := os.Stat(filepath.Join(exportDir, constants.SavedModelFile))
	return err == nil && !info.IsDir()
}

// LoadSavedModel reads a native SavedModel export. No up-conversion happens
// on this path; the signature defs are served as exported.
func LoadSavedModel(exportDir string) (*Bundle, error) {
	zap.S().Infow("Loading saved model", "exportDir", exportDir)
	raw, err := os.ReadFile(filepath.Join(exportDir, constants.SavedModelFile))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read saved model from %s", exportDir)
	}
	if !gjson.GetBytes(raw, "signatureDef").Exists() {
		zap.S().Warnw("Saved model carries no signature defs", "exportDir", exportDir)
	}
	metaGraphDef := &tensorflow.MetaGraphDef{}
	if err := json.Unmarshal(raw, metaGraphDef); err != nil {
		return nil, errors.Wrapf(err, "failed to parse saved model from %s", exportDir)
	}
	return &Bundle{Path: exportDir, MetaGraphDef: metaGraphDef}, nil
}

// WriteSavedModel persists the meta graph as a native SavedModel export in
// exportDir, so a legacy bundle only has to be up-converted once.
func WriteSavedModel(exportDir string, metaGraphDef *tensorflow.MetaGraphDef) error {
	raw, err := json.MarshalIndent(metaGraphDef, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to serialize saved model")
	}
	target := filepath.Join(exportDir, constants.SavedModelFile)
	if err := os.WriteFile(target, raw, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write saved model to %s", target)
	}
	return nil
}
