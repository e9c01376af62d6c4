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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kserve/bundleshim/pkg/apis/tensorflow"
	"github.com/kserve/bundleshim/pkg/constants"
)

const (
	sessionBundlePath = "testdata/half_plus_two/00000123"
	savedModelPath    = "testdata/saved_model_half_plus_two"
)

func TestIsSessionBundlePath(t *testing.T) {
	assert.True(t, IsSessionBundlePath(sessionBundlePath))
	assert.False(t, IsSessionBundlePath(savedModelPath))
	assert.False(t, IsSessionBundlePath(t.TempDir()))
}

func TestIsSavedModelPath(t *testing.T) {
	assert.True(t, IsSavedModelPath(savedModelPath))
	assert.False(t, IsSavedModelPath(sessionBundlePath))
}

func TestLoadSessionBundle(t *testing.T) {
	loaded, err := LoadSessionBundle(sessionBundlePath)
	require.NoError(t, err)
	assert.Equal(t, sessionBundlePath, loaded.Path)
	assert.Empty(t, loaded.MetaGraphDef.SignatureDef)
	assert.Contains(t, loaded.MetaGraphDef.CollectionDef, constants.SignaturesCollectionKey)
}

func TestLoadSessionBundleMissingVariables(t *testing.T) {
	_, err := LoadSessionBundle("testdata/missing_variables")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "variables checkpoint")
}

func TestGetSignatures(t *testing.T) {
	loaded, err := LoadSessionBundle(sessionBundlePath)
	require.NoError(t, err)
	signatures, err := GetSignatures(loaded.MetaGraphDef)
	require.NoError(t, err)
	require.NotNil(t, signatures.DefaultSignature)
	require.NotNil(t, signatures.DefaultSignature.Regression)
	assert.Equal(t, "x:0", signatures.DefaultSignature.Regression.Input.TensorName)
	assert.Equal(t, "y:0", signatures.DefaultSignature.Regression.Output.TensorName)
}

func TestGetSignaturesMissingCollection(t *testing.T) {
	_, err := GetSignatures(&tensorflow.MetaGraphDef{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serving signatures")
}

func TestLoadSavedModelFromLegacyPath(t *testing.T) {
	loaded, err := LoadSavedModelFromLegacyPath(sessionBundlePath)
	require.NoError(t, err)
	require.Len(t, loaded.MetaGraphDef.SignatureDef, 1)
	signatureDef := loaded.MetaGraphDef.SignatureDef[constants.DefaultServingSignatureDefKey]
	require.Len(t, signatureDef.Inputs, 1)
	assert.Equal(t, "x:0", signatureDef.Inputs[constants.SignatureInputsKey].Name)
	require.Len(t, signatureDef.Outputs, 1)
	assert.Equal(t, "y:0", signatureDef.Outputs[constants.SignatureOutputsKey].Name)
	assert.Equal(t, constants.RegressMethodName, signatureDef.MethodName)
}

func TestLoadSavedModel(t *testing.T) {
	loaded, err := LoadSavedModel(savedModelPath)
	require.NoError(t, err)
	signatureDef := loaded.MetaGraphDef.SignatureDef[constants.DefaultServingSignatureDefKey]
	assert.Equal(t, "x:0", signatureDef.Inputs["x"].Name)
	assert.Equal(t, constants.PredictMethodName, signatureDef.MethodName)
}

func TestLoadPrefersNativeFormat(t *testing.T) {
	exportDir := t.TempDir()
	copyFile(t, filepath.Join(sessionBundlePath, constants.SessionBundleMetaGraphFile),
		filepath.Join(exportDir, constants.SessionBundleMetaGraphFile))
	copyFile(t, filepath.Join(sessionBundlePath, "export-00000-of-00001"),
		filepath.Join(exportDir, "export-00000-of-00001"))
	copyFile(t, filepath.Join(savedModelPath, constants.SavedModelFile),
		filepath.Join(exportDir, constants.SavedModelFile))

	loaded, err := Load(exportDir)
	require.NoError(t, err)
	signatureDef := loaded.MetaGraphDef.SignatureDef[constants.DefaultServingSignatureDefKey]
	// The native export carries the predict method name; the legacy bundle
	// would have produced a regress entry.
	assert.Equal(t, constants.PredictMethodName, signatureDef.MethodName)
}

func TestLoadNoBundle(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no saved model or session bundle")
}

func TestWriteSavedModelRoundTrip(t *testing.T) {
	loaded, err := LoadSavedModelFromLegacyPath(sessionBundlePath)
	require.NoError(t, err)
	exportDir := t.TempDir()
	require.NoError(t, WriteSavedModel(exportDir, loaded.MetaGraphDef))
	reloaded, err := LoadSavedModel(exportDir)
	require.NoError(t, err)
	assert.Equal(t, loaded.MetaGraphDef.SignatureDef, reloaded.MetaGraphDef.SignatureDef)
}

func copyFile(t *testing.T, src string, dst string) {
	t.Helper()
	raw, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dst, raw, 0o644))
}
