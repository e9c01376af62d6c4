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

package tensorflow

// TensorBinding points at a named tensor within a computation graph. The
// legacy export format identifies tensors solely by their fully-qualified
// name.
type TensorBinding struct {
	TensorName string `json:"tensorName"`
}

// RegressionSignature describes a graph fed through a single input tensor and
// read through a single output tensor.
type RegressionSignature struct {
	Input  *TensorBinding `json:"input,omitempty"`
	Output *TensorBinding `json:"output,omitempty"`
}

// ClassificationSignature describes a graph producing ranked classes and/or
// their scores for a single input. Classes and Scores are each optional in
// the legacy schema.
type ClassificationSignature struct {
	Input   *TensorBinding `json:"input,omitempty"`
	Classes *TensorBinding `json:"classes,omitempty"`
	Scores  *TensorBinding `json:"scores,omitempty"`
}

// GenericSignature carries an arbitrary mapping from logical key to tensor.
type GenericSignature struct {
	Map map[string]TensorBinding `json:"map,omitempty"`
}

// Signature is the legacy signature union. Exactly one of the variant fields
// is set on a well-formed signature; a value with all variants nil is the
// empty signature.
type Signature struct {
	Regression     *RegressionSignature     `json:"regressionSignature,omitempty"`
	Classification *ClassificationSignature `json:"classificationSignature,omitempty"`
	Generic        *GenericSignature        `json:"genericSignature,omitempty"`
}

// IsEmpty reports whether no variant is set.
func (s *Signature) IsEmpty() bool {
	return s == nil || (s.Regression == nil && s.Classification == nil && s.Generic == nil)
}

// Signatures is the top-level legacy descriptor: at most one default
// signature plus a mapping of named signatures.
type Signatures struct {
	DefaultSignature *Signature           `json:"defaultSignature,omitempty"`
	NamedSignatures  map[string]Signature `json:"namedSignatures,omitempty"`
}
