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
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/onsi/gomega"

	"github.com/kserve/bundleshim/pkg/bundleconfig"
)

func writeSuccessFile(t *testing.T, bundleDir string, bundleName string, uri string) {
	t.Helper()
	g := gomega.NewGomegaWithT(t)
	raw, err := json.Marshal(&bundleconfig.BundleSpec{StorageURI: uri})
	g.Expect(err).ToNot(gomega.HaveOccurred())
	g.Expect(os.MkdirAll(filepath.Join(bundleDir, bundleName), 0o755)).To(gomega.Succeed())
	successFile := filepath.Join(bundleDir, bundleName, fmt.Sprintf("SUCCESS.%d", hash(uri)))
	g.Expect(os.WriteFile(successFile, raw, 0o644)).To(gomega.Succeed())
}

func TestSyncBundleDir(t *testing.T) {
	g := gomega.NewGomegaWithT(t)
	bundleDir := t.TempDir()
	uri := "gs://bucket/exports/half_plus_two"
	writeSuccessFile(t, bundleDir, "half_plus_two", uri)

	tracker, err := SyncBundleDir(bundleDir)
	g.Expect(err).ToNot(gomega.HaveOccurred())

	value, ok := tracker.Load("half_plus_two")
	g.Expect(ok).To(gomega.BeTrue())
	wrapper := value.(bundleWrapper)
	g.Expect(wrapper.Stale).To(gomega.BeFalse())
	g.Expect(wrapper.Spec).ToNot(gomega.BeNil())
	g.Expect(wrapper.Spec.StorageURI).To(gomega.Equal(uri))
}

func TestSyncBundleDirMissingDir(t *testing.T) {
	g := gomega.NewGomegaWithT(t)
	tracker, err := SyncBundleDir(filepath.Join(t.TempDir(), "missing"))
	g.Expect(err).ToNot(gomega.HaveOccurred())
	count := 0
	tracker.Range(func(interface{}, interface{}) bool {
		count++
		return true
	})
	g.Expect(count).To(gomega.BeZero())
}

func TestSyncBundleDirSkipsUnmarkedBundles(t *testing.T) {
	g := gomega.NewGomegaWithT(t)
	bundleDir := t.TempDir()
	// A bundle dir without a success marker was never fully downloaded.
	g.Expect(os.MkdirAll(filepath.Join(bundleDir, "partial"), 0o755)).To(gomega.Succeed())

	tracker, err := SyncBundleDir(bundleDir)
	g.Expect(err).ToNot(gomega.HaveOccurred())
	_, ok := tracker.Load("partial")
	g.Expect(ok).To(gomega.BeFalse())
}

func TestSyncedTrackerSkipsRedownload(t *testing.T) {
	g := gomega.NewGomegaWithT(t)
	bundleDir := t.TempDir()
	uri := "gs://bucket/exports/half_plus_two"
	writeSuccessFile(t, bundleDir, "half_plus_two", uri)

	provider := &mockProvider{}
	watcher := newTestWatcher(bundleDir, provider)
	tracker, err := SyncBundleDir(bundleDir)
	g.Expect(err).ToNot(gomega.HaveOccurred())
	watcher.BundleTracker = tracker

	// Same spec the marker records: nothing to pull after a restart.
	watcher.ParseConfig(bundleconfig.BundleConfigs{
		{Name: "half_plus_two", Spec: bundleconfig.BundleSpec{StorageURI: uri}},
	})
	g.Consistently(func() int32 { return provider.downloads.Load() }, 200*time.Millisecond, 20*time.Millisecond).Should(gomega.Equal(int32(0)))
}
