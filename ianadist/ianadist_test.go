package ianadist

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

// roundTripperFunc is a function that implements the http.RoundTripper interface.
// Useful to fake a http.Client with fakeClient.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (fn roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return fn(req)
}

func fakeClient(fn roundTripperFunc) *http.Client {
	return &http.Client{Transport: fn}
}

const (
	testVersion         = "2024b"
	testLeapSecondsFile = "# Allowance for leap seconds added to each time zone file.\nLeap\t2016\tDec\t31\t23:59:60\t+\tS\n"
	testBackwardFile    = "# tzdb links for backward compatibility\nLink\tEurope/Oslo\tAtlantic/Jan_Mayen\n"
)

// testArchive builds a gzip-compressed tar archive resembling a tzdata
// source distribution. files maps archive member names to contents.
func testArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, data := range files {
		err := tw.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(data)),
		})
		if err != nil {
			t.Fatalf("write tar header %q: %v", name, err)
		}
		if _, err := tw.Write([]byte(data)); err != nil {
			t.Fatalf("write tar data %q: %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar writer: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip writer: %v", err)
	}
	return buf.Bytes()
}

func fullTestArchive(t *testing.T) []byte {
	t.Helper()
	return testArchive(t, map[string]string{
		"version":     testVersion + "\n",
		"leapseconds": testLeapSecondsFile,
		"backward":    testBackwardFile,
		"europe":      "# tzdb data for Europe and environs\n",
		"Makefile":    "VERSION = unknown\n",
	})
}

func TestReadArchive(t *testing.T) {
	release, err := ReadArchive(bytes.NewReader(fullTestArchive(t)))
	if err != nil {
		t.Fatalf("ReadArchive(...): unexpected non-nil error: %v", err)
	}
	if release.Version != testVersion {
		t.Errorf("Version = %q, want %q", release.Version, testVersion)
	}
	if got := string(release.LeapSecondsFile); got != testLeapSecondsFile {
		t.Errorf("LeapSecondsFile = %q, want %q", got, testLeapSecondsFile)
	}
	if got := string(release.BackwardFile); got != testBackwardFile {
		t.Errorf("BackwardFile = %q, want %q", got, testBackwardFile)
	}
}

func TestReadArchiveMissingVersion(t *testing.T) {
	data := testArchive(t, map[string]string{
		"leapseconds": testLeapSecondsFile,
	})
	_, err := ReadArchive(bytes.NewReader(data))
	if err == nil || !strings.Contains(err.Error(), "no version found") {
		t.Errorf("ReadArchive(...) error = %v, want missing version error", err)
	}
}

func TestReadArchiveMissingLeapSeconds(t *testing.T) {
	data := testArchive(t, map[string]string{
		"version": testVersion + "\n",
	})
	_, err := ReadArchive(bytes.NewReader(data))
	if err == nil || !strings.Contains(err.Error(), "no leap seconds file found") {
		t.Errorf("ReadArchive(...) error = %v, want missing leap seconds error", err)
	}
}

func TestReadArchiveNotGzip(t *testing.T) {
	_, err := ReadArchive(strings.NewReader("not an archive"))
	if err == nil {
		t.Error("ReadArchive(...) expected error for non-gzip input")
	}
}

func TestLatest(t *testing.T) {
	const (
		testEtag  = "test-etag"
		emptyEtag = ""
	)
	httpClient := fakeClient(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodGet {
			t.Errorf("unexpected method %q", req.Method)
		}
		if req.URL.String() != "https://data.iana.org/time-zones/tzdata-latest.tar.gz" {
			t.Errorf("unexpected URL %q", req.URL)
		}

		if req.Header.Get("If-None-Match") == testEtag {
			return &http.Response{
				StatusCode: http.StatusNotModified,
				Body:       io.NopCloser(strings.NewReader("")),
			}, nil
		}

		resp := &http.Response{
			Body:       io.NopCloser(bytes.NewReader(fullTestArchive(t))),
			StatusCode: http.StatusOK,
		}
		resp.Header = make(http.Header)
		resp.Header.Set("etag", testEtag)
		return resp, nil
	})

	client := &Client{HTTPClient: httpClient}

	ctx := context.Background()

	// Test that Latest returns the latest release.
	release, gotEtag, err := client.Latest(ctx, emptyEtag)
	if err != nil {
		t.Errorf("Latest(%v) returned unexpected error: %v", emptyEtag, err)
	}
	if gotEtag != testEtag {
		t.Errorf("Latest(%v) returned ETag %q, want %q", emptyEtag, gotEtag, testEtag)
	}
	if release.Version != testVersion {
		t.Errorf("Latest(%v) returned version %q, want %q", emptyEtag, release.Version, testVersion)
	}

	// Test that Latest returns no release when the ETag is up-to-date.
	release, newEtag, err := client.Latest(ctx, gotEtag)
	if err != nil {
		t.Errorf("Latest(%q) returned unexpected error: %v", gotEtag, err)
	}
	if newEtag != testEtag {
		t.Errorf("Latest(%q) returned ETag %q, want %q", gotEtag, newEtag, testEtag)
	}
	if release != nil {
		t.Errorf("Latest(%q) returned non-nil release", gotEtag)
	}
}
