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

package constants

// SignatureDef reserved keys. Downstream model servers probe for these exact
// strings, so they are part of the compatibility surface and never configurable.
const (
	DefaultServingSignatureDefKey = "serving_default"
	SignatureInputsKey            = "inputs"
	SignatureOutputsKey           = "outputs"
	ClassifyOutputClassesKey      = "classes"
	ClassifyOutputScoresKey       = "scores"
)

// SignatureDef method names identifying the serving method contract.
const (
	RegressMethodName  = "tensorflow/serving/regress"
	ClassifyMethodName = "tensorflow/serving/classify"
	PredictMethodName  = "tensorflow/serving/predict"
)

// Session bundle (legacy export) layout.
const (
	SignaturesCollectionKey    = "serving_signatures"
	SessionBundleMetaGraphFile = "export.meta"
	SessionBundleVariablesFile = "export"
)

// SavedModel (native export) layout.
const (
	SavedModelFile = "saved_model.json"
)

// Agent constants.
var (
	BundleConfigFileName = "bundles.json"
)
