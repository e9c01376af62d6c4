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

package agent

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/go-cmp/cmp"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/sync/syncmap"

	"github.com/kserve/bundleshim/pkg/bundleconfig"
	"github.com/kserve/bundleshim/pkg/constants"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Watcher keeps the puller in sync with the bundle config file.
type Watcher struct {
	ConfigDir     string
	BundleTracker *syncmap.Map
	NumWorkers    int
	Puller        *Puller
	Logger        *zap.SugaredLogger
}

type bundleWrapper struct {
	Spec       *bundleconfig.BundleSpec
	Time       time.Time
	Stale      bool
	Redownload bool
}

func NewWatcher(configDir string, puller *Puller, numWorkers int, logger *zap.SugaredLogger) *Watcher {
	return &Watcher{
		ConfigDir:     configDir,
		BundleTracker: &syncmap.Map{},
		NumWorkers:    numWorkers,
		Puller:        puller,
		Logger:        logger,
	}
}

// Start syncs once from the config file and then blocks, re-syncing on every
// filesystem event that touches it. Kubernetes configmap mounts surface
// updates as a swap of the "..data" symlink, so that path is watched too.
func (w *Watcher) Start() error {
	if err := w.syncOnce(); err != nil {
		w.Logger.Errorf("initial config sync failed: %v", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(w.ConfigDir); err != nil {
		return err
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.isConfigUpdate(event) {
				continue
			}
			if err := w.syncOnce(); err != nil {
				w.Logger.Errorf("config sync failed: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.Logger.Errorf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) isConfigUpdate(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return false
	}
	base := filepath.Base(filepath.Clean(event.Name))
	return base == constants.BundleConfigFileName || base == "..data"
}

func (w *Watcher) syncOnce() error {
	raw, err := os.ReadFile(filepath.Join(w.ConfigDir, constants.BundleConfigFileName))
	if err != nil {
		return err
	}
	configs, err := bundleconfig.Parse(raw)
	if err != nil {
		return err
	}
	w.ParseConfig(configs)
	return nil
}

// ParseConfig diffs the desired bundle list against the tracker and emits
// load events for new or changed bundles and unloads for vanished ones.
func (w *Watcher) ParseConfig(configs bundleconfig.BundleConfigs) {
	timeNow := time.Now()
	for _, config := range configs {
		spec := config.Spec
		oldWrapper, ok := w.BundleTracker.Load(config.Name)
		stale := true
		redownload := true
		if ok {
			old := oldWrapper.(bundleWrapper)
			if old.Spec != nil {
				stale = !cmp.Equal(*old.Spec, spec)
				redownload = old.Spec.StorageURI != spec.StorageURI
			}
		}
		w.BundleTracker.Store(config.Name, bundleWrapper{
			Spec:       &spec,
			Time:       timeNow,
			Stale:      stale,
			Redownload: redownload,
		})
	}

	w.BundleTracker.Range(func(key interface{}, value interface{}) bool {
		bundleName, wrapper := key.(string), value.(bundleWrapper)
		if wrapper.Time.Before(timeNow) {
			w.BundleTracker.Delete(bundleName)
			w.Logger.Infof("unloading bundle %s", bundleName)
			w.Puller.RemoveBundle(bundleName)
			return true
		}
		if wrapper.Stale {
			channel := w.Puller.AddBundle(bundleName, w.NumWorkers)
			event := BundleEvent{
				BundleName:     bundleName,
				Spec:           wrapper.Spec,
				LoadState:      ShouldLoad,
				ShouldDownload: wrapper.Redownload,
			}
			w.Logger.Infof("sending load event for bundle %s", bundleName)
			channel.EventChannel <- event
		}
		return true
	})
}
