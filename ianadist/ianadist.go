// Package ianadist downloads and extracts tzdb files distributed by IANA.
//
// Releases are downloaded from the [IANA data server]. Clients are advised
// to store the [ETags] returned by this package and pass them to subsequent
// calls to avoid downloading the same data multiple times.
//
// Only the files needed by a resolver are extracted from a release: the
// leap second table and the backward compatibility links. Compiled TZif
// zone files are not part of the source distribution and come from the
// system zoneinfo directory instead.
//
// [ETags]: https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/ETag
// [IANA data server]: https://www.iana.org/time-zones
package ianadist

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Release holds the resolver-relevant files of an IANA time zone
// database release.
type Release struct {
	// Version is the version of the IANA time zone database.
	// For example, "2024b".
	Version string
	// LeapSecondsFile is the content of the leapseconds file.
	LeapSecondsFile []byte
	// BackwardFile is the content of the backward file which
	// declares links from old zone names to their modern
	// replacements.
	BackwardFile []byte
}

// DefaultClient is the default client to download the IANA time zone database.
// It is ready to use and is used by the top-level functions [Latest] and [Download]
// in this package.
var DefaultClient = &Client{}

// Client downloads releases from the IANA data server.
// The zero value is ready to use.
type Client struct {
	// HTTPClient is used for all requests. When nil, http.DefaultClient
	// is used. Tests substitute a client with a fake http.RoundTripper
	// to avoid network calls; it is also the place to configure
	// timeouts and redirect policies, although cancellation is usually
	// better handled through the context passed to Download and Latest.
	HTTPClient *http.Client
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

const (
	// baseURL is the base URL for time zones on the IANA data server.
	baseURL = "https://data.iana.org/time-zones/"
	// latestDataPath is the path to the latest IANA time zone database
	// relative to the baseURL.
	latestDataPath = "tzdata-latest.tar.gz"
	// leapSecondsFilename is the name of the leap seconds file in the archive.
	leapSecondsFilename = "leapseconds"
	// backwardFilename is the name of the backward links file in the archive.
	backwardFilename = "backward"
	// versionFilename is the name of the version file in the archive.
	versionFilename = "version"
	// emptyEtag is the empty etag value.
	emptyEtag = ""
)

// ReadArchive unpacks an IANA time zone database release from an archive.
//
// The io.Reader must contain a gzip-compressed tar archive as found at
// https://data.iana.org/time-zones/releases/.
func ReadArchive(r io.Reader) (*Release, error) {
	gunzip, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("read gzip: %w", err)
	}
	tr := tar.NewReader(gunzip)

	var result Release
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch header.Name {
		case leapSecondsFilename:
			result.LeapSecondsFile, err = io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("read leap seconds file: %w", err)
			}
		case backwardFilename:
			result.BackwardFile, err = io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("read backward file: %w", err)
			}
		case versionFilename:
			versionBytes, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("read version file: %w", err)
			}
			if len(versionBytes) == 0 {
				return nil, fmt.Errorf("empty version file")
			}
			result.Version = trimNewline(string(versionBytes))
		}
	}

	if result.Version == "" {
		return nil, fmt.Errorf("no version found")
	}
	if result.LeapSecondsFile == nil {
		return nil, fmt.Errorf("no leap seconds file found")
	}

	return &result, nil
}

// trimNewline removes a single trailing newline. The version file in the
// distribution ends with one.
func trimNewline(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\n' {
		return s[:len(s)-1]
	}
	return s
}

// Latest is a wrapper around DefaultClient.Latest.
func Latest(ctx context.Context, etag string) (*Release, string, error) {
	return DefaultClient.Latest(ctx, etag)
}

// Latest downloads and unpacks the latest release.
//
// The etag should be the value returned by a previous call, or empty on the
// first call. A 304 Not Modified answer from the server yields a nil Release
// and nil error with the input etag passed through unchanged. On error the
// Release is nil and the etag is empty.
func (c *Client) Latest(ctx context.Context, etag string) (*Release, string, error) {
	r, newEtag, err := c.Download(ctx, latestDataPath, etag)
	if err != nil {
		return nil, emptyEtag, err
	}
	if r == nil {
		return nil, etag, nil // Not modified.
	}
	defer func() {
		// Drain before closing so the connection can be reused.
		_, _ = io.ReadAll(r)
		_ = r.Close()
	}()

	release, err := ReadArchive(r)
	if err != nil {
		return nil, emptyEtag, err
	}

	return release, newEtag, nil
}

// Download is a wrapper around DefaultClient.Download.
func Download(ctx context.Context, path, etag string) (io.ReadCloser, string, error) {
	return DefaultClient.Download(ctx, path, etag)
}

// Download fetches the resource at the given path relative to the IANA data
// server's time-zones directory, sending the etag as an If-None-Match header
// when non-empty.
//
// On success the io.ReadCloser is the [http.Response.Body]; the caller must
// read it fully and close it, or the underlying connection cannot be reused.
// A 304 Not Modified answer yields a nil reader and nil error with the input
// etag passed through; any status other than 200 and 304 is an error, and on
// error the reader is nil and the etag empty. Cancellation and deadlines
// follow ctx.
func (c *Client) Download(ctx context.Context, path, etag string) (io.ReadCloser, string, error) {
	u, err := url.JoinPath(baseURL, path)
	if err != nil {
		return nil, emptyEtag, fmt.Errorf("join URL: %w", err)
	}
	r, etag, err := c.downloadIfNoneMatch(ctx, u, etag)
	if err != nil {
		return nil, etag, err
	}
	return r, etag, nil
}

// downloadIfNoneMatch issues the conditional GET behind [Client.Download]
// and implements its contract for the response body, status codes and etag.
func (c *Client) downloadIfNoneMatch(ctx context.Context, url, etag string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, emptyEtag, fmt.Errorf("create request for %q: %w", url, err)
	}

	if etag != emptyEtag {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, emptyEtag, fmt.Errorf("GET %q: %w", url, err)
	}

	if resp.StatusCode != http.StatusOK {
		// Not every status carries a body, but draining before closing
		// never hurts and keeps the connection reusable.
		_, _ = io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		// Not modified: the resource still matches the ETag we sent.
		if resp.StatusCode == http.StatusNotModified {
			return nil, etag, nil
		}

		return nil, emptyEtag, fmt.Errorf("response for %q: unexpected status: %s", url, resp.Status)
	}

	// The caller closes the body.
	return resp.Body, resp.Header.Get("etag"), nil
}
