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
	"go.uber.org/zap"

	"github.com/kserve/bundleshim/pkg/bundleconfig"
)

type LoadState string

const (
	ShouldLoad   LoadState = "Load"
	ShouldUnload LoadState = "Unload"
)

// BundleEvent asks a puller worker to load or unload one bundle.
type BundleEvent struct {
	BundleName     string
	Spec           *bundleconfig.BundleSpec
	LoadState      LoadState
	ShouldDownload bool
}

// Puller fans bundle events out to one channel per bundle, each drained by
// worker goroutines, so a slow download never blocks other bundles.
type Puller struct {
	ChannelMap map[string]Channel
	Downloader *Downloader
	Logger     *zap.SugaredLogger
}

type Channel struct {
	EventChannel chan BundleEvent
}

func NewPuller(downloader *Downloader, logger *zap.SugaredLogger) *Puller {
	return &Puller{
		ChannelMap: make(map[string]Channel),
		Downloader: downloader,
		Logger:     logger,
	}
}

// AddBundle registers a bundle and starts its workers. Events for a bundle
// are processed in order by a single worker unless numWorkers is raised.
func (p *Puller) AddBundle(bundleName string, numWorkers int) Channel {
	if channel, ok := p.ChannelMap[bundleName]; ok {
		return channel
	}
	channel := Channel{
		EventChannel: make(chan BundleEvent),
	}
	for worker := 1; worker <= numWorkers; worker++ {
		go p.processEvents(worker, bundleName, channel.EventChannel)
	}
	p.ChannelMap[bundleName] = channel
	return channel
}

// RemoveBundle stops the bundle's workers and deletes its local copy.
func (p *Puller) RemoveBundle(bundleName string) {
	channel, ok := p.ChannelMap[bundleName]
	if !ok {
		return
	}
	close(channel.EventChannel)
	delete(p.ChannelMap, bundleName)
	if err := p.Downloader.RemoveBundle(bundleName); err != nil {
		p.Logger.Errorf("failed to remove bundle %s: %v", bundleName, err)
	}
}

func (p *Puller) processEvents(id int, bundleName string, events <-chan BundleEvent) {
	p.Logger.Infof("worker %d for bundle %s initialized", id, bundleName)
	for event := range events {
		switch event.LoadState {
		case ShouldLoad:
			if err := p.Downloader.DownloadBundle(event); err != nil {
				p.Logger.Errorf("worker %d failed on %s: %v", id, bundleName, err)
			}
		case ShouldUnload:
			// Unload is handled by RemoveBundle on the watcher side; the
			// event only drains the channel before it is closed.
		}
	}
}
