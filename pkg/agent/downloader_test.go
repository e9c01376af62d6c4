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
	"sync/atomic"
	"testing"

	"github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/kserve/bundleshim/pkg/agent/storage"
	"github.com/kserve/bundleshim/pkg/bundle"
	"github.com/kserve/bundleshim/pkg/bundleconfig"
	"github.com/kserve/bundleshim/pkg/constants"
)

const legacyMetaGraph = `{
  "collectionDef": {
    "serving_signatures": {
      "defaultSignature": {
        "regressionSignature": {
          "input": {"tensorName": "x:0"},
          "output": {"tensorName": "y:0"}
        }
      }
    }
  }
}`

// mockProvider materializes a legacy session bundle locally instead of
// reaching out to remote storage.
type mockProvider struct {
	downloads atomic.Int32
}

func (m *mockProvider) DownloadBundle(bundleDir string, bundleName string, storageUri string) error {
	m.downloads.Add(1)
	target := filepath.Join(bundleDir, bundleName, "00000123")
	if err := os.MkdirAll(target, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(target, constants.SessionBundleMetaGraphFile), []byte(legacyMetaGraph), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(target, "export-00000-of-00001"), []byte("shard"), 0o644)
}

type failingProvider struct{}

func (f *failingProvider) DownloadBundle(string, string, string) error {
	return fmt.Errorf("storage unavailable")
}

func newTestDownloader(bundleDir string, provider storage.Provider) *Downloader {
	return &Downloader{
		BundleDir: bundleDir,
		Providers: map[storage.Protocol]storage.Provider{storage.GCS: provider},
		Logger:    zap.NewNop().Sugar(),
	}
}

func loadEvent(name string, uri string) BundleEvent {
	return BundleEvent{
		BundleName:     name,
		Spec:           &bundleconfig.BundleSpec{StorageURI: uri},
		LoadState:      ShouldLoad,
		ShouldDownload: true,
	}
}

func TestDownloadBundleUpConverts(t *testing.T) {
	g := gomega.NewGomegaWithT(t)
	bundleDir := t.TempDir()
	provider := &mockProvider{}
	downloader := newTestDownloader(bundleDir, provider)

	err := downloader.DownloadBundle(loadEvent("half_plus_two", "gs://bucket/exports/half_plus_two"))
	g.Expect(err).ToNot(gomega.HaveOccurred())

	exportDir := filepath.Join(bundleDir, "half_plus_two", "00000123")
	g.Expect(bundle.IsSavedModelPath(exportDir)).To(gomega.BeTrue())

	loaded, err := bundle.LoadSavedModel(exportDir)
	g.Expect(err).ToNot(gomega.HaveOccurred())
	signatureDef := loaded.MetaGraphDef.SignatureDef[constants.DefaultServingSignatureDefKey]
	g.Expect(signatureDef.MethodName).To(gomega.Equal(constants.RegressMethodName))
	g.Expect(signatureDef.Inputs[constants.SignatureInputsKey].Name).To(gomega.Equal("x:0"))
	g.Expect(signatureDef.Outputs[constants.SignatureOutputsKey].Name).To(gomega.Equal("y:0"))
}

func TestDownloadBundleWritesSuccessFile(t *testing.T) {
	g := gomega.NewGomegaWithT(t)
	bundleDir := t.TempDir()
	downloader := newTestDownloader(bundleDir, &mockProvider{})
	uri := "gs://bucket/exports/half_plus_two"

	err := downloader.DownloadBundle(loadEvent("half_plus_two", uri))
	g.Expect(err).ToNot(gomega.HaveOccurred())

	successFile := filepath.Join(bundleDir, "half_plus_two", fmt.Sprintf("SUCCESS.%d", hash(uri)))
	raw, err := os.ReadFile(successFile)
	g.Expect(err).ToNot(gomega.HaveOccurred())
	spec := &bundleconfig.BundleSpec{}
	g.Expect(json.Unmarshal(raw, spec)).To(gomega.Succeed())
	g.Expect(spec.StorageURI).To(gomega.Equal(uri))
}

func TestDownloadBundleSkipsWhenAlreadyDownloaded(t *testing.T) {
	g := gomega.NewGomegaWithT(t)
	bundleDir := t.TempDir()
	provider := &mockProvider{}
	downloader := newTestDownloader(bundleDir, provider)
	event := loadEvent("half_plus_two", "gs://bucket/exports/half_plus_two")

	g.Expect(downloader.DownloadBundle(event)).To(gomega.Succeed())
	g.Expect(downloader.DownloadBundle(event)).To(gomega.Succeed())
	g.Expect(provider.downloads.Load()).To(gomega.Equal(int32(1)))
}

func TestDownloadBundleFailure(t *testing.T) {
	g := gomega.NewGomegaWithT(t)
	downloader := newTestDownloader(t.TempDir(), &failingProvider{})

	err := downloader.DownloadBundle(loadEvent("m", "gs://bucket/exports/m"))
	g.Expect(err).To(gomega.HaveOccurred())
	g.Expect(err.Error()).To(gomega.ContainSubstring("storage unavailable"))
}

func TestExtractProtocol(t *testing.T) {
	g := gomega.NewGomegaWithT(t)
	testCases := map[string]struct {
		uri      string
		expected storage.Protocol
		wantErr  bool
	}{
		"s3":          {uri: "s3://bucket/key", expected: storage.S3},
		"gcs":         {uri: "gs://bucket/key", expected: storage.GCS},
		"azure":       {uri: "azure://account.blob.core.windows.net/c/d", expected: storage.AZ},
		"https":       {uri: "https://example.com/bundle.tar.gz", expected: storage.HTTPS},
		"empty":       {uri: "", wantErr: true},
		"no protocol": {uri: "/local/path", wantErr: true},
		"unsupported": {uri: "ftp://example.com/bundle", wantErr: true},
	}
	for name, tc := range testCases {
		protocol, err := extractProtocol(tc.uri)
		if tc.wantErr {
			g.Expect(err).To(gomega.HaveOccurred(), name)
			continue
		}
		g.Expect(err).ToNot(gomega.HaveOccurred(), name)
		g.Expect(protocol).To(gomega.Equal(tc.expected), name)
	}
}
