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

package main

import (
	"flag"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/kserve/bundleshim/pkg/agent"
	"github.com/kserve/bundleshim/pkg/agent/storage"
)

var (
	configDir  = flag.String("config-dir", "/mnt/configs", "directory for bundle config files")
	bundleDir  = flag.String("bundle-dir", "/mnt/bundles", "directory for downloaded bundles")
	numWorkers = flag.Int("num-workers", 1, "number of workers for parallel downloads")
)

// agentConfig carries the settings that are more natural to set from the pod
// environment than from flags.
type agentConfig struct {
	ConfigDir  string `envconfig:"AGENT_CONFIG_DIR"`
	BundleDir  string `envconfig:"AGENT_BUNDLE_DIR"`
	NumWorkers int    `envconfig:"AGENT_NUM_WORKERS"`
}

func main() {
	flag.Parse()
	zapLogger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zapLogger.Sync() //nolint:errcheck
	logger := zapLogger.Sugar()

	config := agentConfig{
		ConfigDir:  *configDir,
		BundleDir:  *bundleDir,
		NumWorkers: *numWorkers,
	}
	if err := envconfig.Process("agent", &config); err != nil {
		logger.Fatalw("failed to process environment config", zap.Error(err))
	}

	downloader := &agent.Downloader{
		BundleDir: config.BundleDir,
		Providers: map[storage.Protocol]storage.Provider{},
		Logger:    logger,
	}
	puller := agent.NewPuller(downloader, logger)
	watcher := agent.NewWatcher(config.ConfigDir, puller, config.NumWorkers, logger)

	tracker, err := agent.SyncBundleDir(config.BundleDir)
	if err != nil {
		logger.Fatalw("failed to sync bundle dir", "bundleDir", config.BundleDir, zap.Error(err))
	}
	watcher.BundleTracker = tracker

	logger.Infow("starting bundle agent", "configDir", config.ConfigDir, "bundleDir", config.BundleDir,
		"numWorkers", config.NumWorkers)
	if err := watcher.Start(); err != nil {
		logger.Fatalw("watcher terminated", zap.Error(err))
	}
}
