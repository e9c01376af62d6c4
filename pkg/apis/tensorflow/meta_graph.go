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

import "encoding/json"

// TensorInfo names a tensor in the current descriptor format.
type TensorInfo struct {
	Name string `json:"name"`
}

// SignatureDef is the unified descriptor for one serving method: named input
// bindings, named output bindings and the method contract identifier.
type SignatureDef struct {
	Inputs     map[string]TensorInfo `json:"inputs,omitempty"`
	Outputs    map[string]TensorInfo `json:"outputs,omitempty"`
	MethodName string                `json:"methodName,omitempty"`
}

// MetaGraphDef is the exported graph descriptor. Legacy exports stash their
// serialized Signatures in CollectionDef; native exports carry SignatureDef
// directly. GraphDef and the collection payloads are opaque to this package.
type MetaGraphDef struct {
	GraphDef      json.RawMessage            `json:"graphDef,omitempty"`
	CollectionDef map[string]json.RawMessage `json:"collectionDef,omitempty"`
	SignatureDef  map[string]SignatureDef    `json:"signatureDef,omitempty"`
}
