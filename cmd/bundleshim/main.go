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

// Command bundleshim up-converts a single export directory. It loads the
// bundle found there, converting legacy signatures to signature defs when
// needed, and either prints the resulting signature defs or persists the
// whole export as a native SavedModel.
package main

import (
	"flag"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/kserve/bundleshim/pkg/bundle"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	exportDir = flag.String("export-dir", "", "export directory holding a saved model or session bundle")
	write     = flag.Bool("write", false, "write the up-converted export back as a native saved model")
)

func main() {
	flag.Parse()
	zapLogger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zapLogger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(zapLogger)
	logger := zapLogger.Sugar()

	if *exportDir == "" {
		fmt.Fprintln(os.Stderr, "usage: bundleshim -export-dir <dir> [-write]")
		os.Exit(2)
	}

	loaded, err := bundle.Load(*exportDir)
	if err != nil {
		logger.Fatalw("failed to load bundle", "exportDir", *exportDir, zap.Error(err))
	}

	if *write {
		if err := bundle.WriteSavedModel(loaded.Path, loaded.MetaGraphDef); err != nil {
			logger.Fatalw("failed to write saved model", "exportDir", loaded.Path, zap.Error(err))
		}
		logger.Infow("wrote saved model", "exportDir", loaded.Path)
		return
	}

	out, err := json.MarshalIndent(loaded.MetaGraphDef.SignatureDef, "", "  ")
	if err != nil {
		logger.Fatalw("failed to serialize signature defs", zap.Error(err))
	}
	fmt.Println(string(out))
}
