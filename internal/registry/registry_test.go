package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZebulonRouseFrantzich/tvm/internal/selector"
)

const testTriple = "aarch64-apple-darwin"

// newTestRegistry serves a fake GitHub Releases API. releases maps request
// paths (after /repos/owner/repo) to response bodies.
func newTestRegistry(t *testing.T, releases map[string]string) *Client {
	t.Helper()

	mux := http.NewServeMux()
	for path, body := range releases {
		mux.HandleFunc("/repos/"+RepoOwner+"/"+RepoName+path, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		})
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return NewClient(WithBaseURL(server.URL))
}

func releaseJSON(tag string, assetNames ...string) string {
	assets := ""
	for i, name := range assetNames {
		if i > 0 {
			assets += ","
		}
		assets += fmt.Sprintf(`{"name":%q,"browser_download_url":"https://dl.example/%s","digest":"sha256:abc"}`, name, name)
	}
	return fmt.Sprintf(`{"tag_name":%q,"name":%q,"assets":[%s]}`, tag, tag, assets)
}

func TestResolveStaticVersion(t *testing.T) {
	client := newTestRegistry(t, map[string]string{
		"/releases/tags/v0.10.15": releaseJSON("v0.10.15",
			"tidal-"+testTriple, "tidal-run-"+testTriple, "tdk-"+testTriple, "tvm-"+testTriple),
	})

	ps, err := client.ResolvePackageSet(context.Background(), selector.Static("0.10.15"), testTriple)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ps.Version != "0.10.15" {
		t.Errorf("version = %q, want 0.10.15", ps.Version)
	}
	if len(ps.Artifacts) != 4 {
		t.Fatalf("artifacts = %d, want 4", len(ps.Artifacts))
	}
	if _, ok := ps.Artifact("tvm"); !ok {
		t.Error("full package set is missing the tvm artifact")
	}
}

func TestResolveStableFollowsLatestRelease(t *testing.T) {
	client := newTestRegistry(t, map[string]string{
		"/releases/latest": releaseJSON("v0.10.14", "tidal-"+testTriple),
	})

	ps, err := client.ResolvePackageSet(context.Background(), selector.Channel("stable"), testTriple)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ps.Version != "0.10.14" {
		t.Errorf("version = %q, want 0.10.14", ps.Version)
	}
	if ps.Tag != "v0.10.14" {
		t.Errorf("tag = %q, want v0.10.14", ps.Tag)
	}
}

func TestResolveLatestFollowsDevTag(t *testing.T) {
	client := newTestRegistry(t, map[string]string{
		"/releases/tags/dev": fmt.Sprintf(
			`{"tag_name":"dev","name":"0.11.0-dev.3","assets":[{"name":"tidal-%s","browser_download_url":"https://dl.example/tidal","digest":""}]}`,
			testTriple),
	})

	ps, err := client.ResolvePackageSet(context.Background(), selector.Channel("latest"), testTriple)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ps.Version != "0.11.0-dev.3" {
		t.Errorf("version = %q, want 0.11.0-dev.3", ps.Version)
	}
}

func TestUnknownTagSurfacesNotFoundWithTag(t *testing.T) {
	client := newTestRegistry(t, map[string]string{})

	_, err := client.ResolvePackageSet(context.Background(), selector.Static("9.9.9"), testTriple)
	if err == nil {
		t.Fatal("expected error")
	}

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error type = %T, want NotFoundError", err)
	}
	if nf.Tag != "v9.9.9" {
		t.Errorf("tag = %q, want v9.9.9", nf.Tag)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound returned false")
	}
}

func TestMissingTripleSurfacesArchError(t *testing.T) {
	client := newTestRegistry(t, map[string]string{
		"/releases/tags/v0.10.15": releaseJSON("v0.10.15", "tidal-x86_64-unknown-linux-musl"),
	})

	_, err := client.ResolvePackageSet(context.Background(), selector.Static("0.10.15"), testTriple)
	if err == nil {
		t.Fatal("expected error")
	}

	var archErr *ArchError
	if !errors.As(err, &archErr) {
		t.Fatalf("error type = %T, want ArchError", err)
	}
	if archErr.Tag != "v0.10.15" || archErr.Triple != testTriple {
		t.Errorf("arch error = %+v", archErr)
	}
}

func TestInstallSetExcludesManagerBinary(t *testing.T) {
	client := newTestRegistry(t, map[string]string{
		"/releases/tags/v0.10.15": releaseJSON("v0.10.15",
			"tidal-"+testTriple, "tvm-"+testTriple),
	})

	ps, err := client.ResolveInstallSet(context.Background(), selector.Static("0.10.15"), testTriple)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ps.Artifacts) != 1 || ps.Artifacts[0].Name != "tidal" {
		t.Errorf("install set = %+v, want only tidal", ps.Artifacts)
	}
}

func TestSignatureAssetsAttachToArtifacts(t *testing.T) {
	client := newTestRegistry(t, map[string]string{
		"/releases/tags/v0.10.15": releaseJSON("v0.10.15",
			"tidal-"+testTriple, "tidal-"+testTriple+".asc"),
	})

	ps, err := client.ResolvePackageSet(context.Background(), selector.Static("0.10.15"), testTriple)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, ok := ps.Artifact("tidal")
	if !ok {
		t.Fatal("tidal artifact missing")
	}
	if a.SignatureURL == "" {
		t.Error("signature URL not attached")
	}
}

func TestStableVersion(t *testing.T) {
	client := newTestRegistry(t, map[string]string{
		"/releases/latest": releaseJSON("v0.12.0", "tvm-"+testTriple),
	})

	v, err := client.StableVersion(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "0.12.0" {
		t.Errorf("stable version = %q, want 0.12.0", v)
	}
}
