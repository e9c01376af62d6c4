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

// Package bundleshim up-converts legacy session bundle signatures into
// SavedModel SignatureDefs. Conversion is fail-closed: a legacy signature
// that does not match one of the supported shapes produces no output entry
// rather than a partially populated one.
package bundleshim

import (
	"github.com/kserve/bundleshim/pkg/apis/tensorflow"
	"github.com/kserve/bundleshim/pkg/constants"
)

// AddInputToSignatureDef inserts tensorName under key into the input map of
// the signature def. An existing binding at key is overwritten.
func AddInputToSignatureDef(tensorName string, key string, signatureDef *tensorflow.SignatureDef) {
	if signatureDef.Inputs == nil {
		signatureDef.Inputs = make(map[string]tensorflow.TensorInfo)
	}
	signatureDef.Inputs[key] = tensorflow.TensorInfo{Name: tensorName}
}

// AddOutputToSignatureDef inserts tensorName under key into the output map of
// the signature def. An existing binding at key is overwritten.
func AddOutputToSignatureDef(tensorName string, key string, signatureDef *tensorflow.SignatureDef) {
	if signatureDef.Outputs == nil {
		signatureDef.Outputs = make(map[string]tensorflow.TensorInfo)
	}
	signatureDef.Outputs[key] = tensorflow.TensorInfo{Name: tensorName}
}

// ConvertDefaultSignatureToSignatureDef up-converts the default signature of
// the legacy descriptor into the "serving_default" entry of the meta graph.
// Regression and classification signatures are converted; generic default
// signatures are never up-converted. A signature missing the bindings needed
// for a non-empty entry produces no entry at all.
func ConvertDefaultSignatureToSignatureDef(signatures *tensorflow.Signatures, metaGraphDef *tensorflow.MetaGraphDef) {
	if signatures == nil || signatures.DefaultSignature.IsEmpty() {
		return
	}
	defaultSignature := signatures.DefaultSignature
	signatureDef := lookupSignatureDef(metaGraphDef, constants.DefaultServingSignatureDefKey)
	switch {
	case defaultSignature.Regression != nil:
		regression := defaultSignature.Regression
		if regression.Input == nil || regression.Output == nil {
			return
		}
		AddInputToSignatureDef(regression.Input.TensorName, constants.SignatureInputsKey, &signatureDef)
		AddOutputToSignatureDef(regression.Output.TensorName, constants.SignatureOutputsKey, &signatureDef)
		signatureDef.MethodName = constants.RegressMethodName
	case defaultSignature.Classification != nil:
		classification := defaultSignature.Classification
		if classification.Input == nil {
			return
		}
		if classification.Classes == nil && classification.Scores == nil {
			return
		}
		AddInputToSignatureDef(classification.Input.TensorName, constants.SignatureInputsKey, &signatureDef)
		if classification.Classes != nil {
			AddOutputToSignatureDef(classification.Classes.TensorName, constants.ClassifyOutputClassesKey, &signatureDef)
		}
		if classification.Scores != nil {
			AddOutputToSignatureDef(classification.Scores.TensorName, constants.ClassifyOutputScoresKey, &signatureDef)
		}
		signatureDef.MethodName = constants.ClassifyMethodName
	default:
		// Generic default signatures are not up-converted.
		return
	}
	commitSignatureDef(metaGraphDef, constants.DefaultServingSignatureDefKey, signatureDef)
}

// ConvertNamedSignaturesToSignatureDef up-converts the named signatures of
// the legacy descriptor into the "serving_default" entry of the meta graph.
// The named map must hold generic signatures under exactly the reserved names
// "inputs" and "outputs"; anything else, including a non-generic signature
// under either name, converts to nothing.
func ConvertNamedSignaturesToSignatureDef(signatures *tensorflow.Signatures, metaGraphDef *tensorflow.MetaGraphDef) {
	if signatures == nil {
		return
	}
	inputsSignature, ok := signatures.NamedSignatures[constants.SignatureInputsKey]
	if !ok || inputsSignature.Generic == nil {
		return
	}
	outputsSignature, ok := signatures.NamedSignatures[constants.SignatureOutputsKey]
	if !ok || outputsSignature.Generic == nil {
		return
	}
	signatureDef := lookupSignatureDef(metaGraphDef, constants.DefaultServingSignatureDefKey)
	for key, binding := range inputsSignature.Generic.Map {
		AddInputToSignatureDef(binding.TensorName, key, &signatureDef)
	}
	for key, binding := range outputsSignature.Generic.Map {
		AddOutputToSignatureDef(binding.TensorName, key, &signatureDef)
	}
	signatureDef.MethodName = constants.PredictMethodName
	commitSignatureDef(metaGraphDef, constants.DefaultServingSignatureDefKey, signatureDef)
}

// ConvertSignaturesToSignatureDefs runs the default pass followed by the
// named pass over the same meta graph. The order is load-bearing: both passes
// target "serving_default" and individual bindings are last write wins, so
// overlapping keys end up with the named pass values and the method name is
// whichever pass wrote the entry last.
func ConvertSignaturesToSignatureDefs(signatures *tensorflow.Signatures, metaGraphDef *tensorflow.MetaGraphDef) {
	ConvertDefaultSignatureToSignatureDef(signatures, metaGraphDef)
	ConvertNamedSignaturesToSignatureDef(signatures, metaGraphDef)
}

// lookupSignatureDef returns a detached copy of the entry at key. The copy
// owns its own binding maps, so a conversion pass that ends up not committing
// can never have mutated the stored entry through shared maps.
func lookupSignatureDef(metaGraphDef *tensorflow.MetaGraphDef, key string) tensorflow.SignatureDef {
	stored := metaGraphDef.SignatureDef[key]
	signatureDef := tensorflow.SignatureDef{MethodName: stored.MethodName}
	if len(stored.Inputs) > 0 {
		signatureDef.Inputs = make(map[string]tensorflow.TensorInfo, len(stored.Inputs))
		for key, info := range stored.Inputs {
			signatureDef.Inputs[key] = info
		}
	}
	if len(stored.Outputs) > 0 {
		signatureDef.Outputs = make(map[string]tensorflow.TensorInfo, len(stored.Outputs))
		for key, info := range stored.Outputs {
			signatureDef.Outputs[key] = info
		}
	}
	return signatureDef
}

// commitSignatureDef stores the entry only when it is complete: an entry with
// zero inputs or zero outputs is never written.
func commitSignatureDef(metaGraphDef *tensorflow.MetaGraphDef, key string, signatureDef tensorflow.SignatureDef) {
	if len(signatureDef.Inputs) == 0 || len(signatureDef.Outputs) == 0 {
		return
	}
	if metaGraphDef.SignatureDef == nil {
		metaGraphDef.SignatureDef = make(map[string]tensorflow.SignatureDef)
	}
	metaGraphDef.SignatureDef[key] = signatureDef
}
