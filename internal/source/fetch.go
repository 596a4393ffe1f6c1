package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/dqs/internal/ingest"
	"github.com/wonny/dqs/pkg/httputil"
	"github.com/wonny/dqs/pkg/logger"
)

// maxIndexBytes bounds HTML index pages
const maxIndexBytes = 4 << 20

// Fetcher loads remote CSV files
type Fetcher struct {
	client   *httputil.Client
	maxBytes int64
	logger   *logger.Logger
}

// NewFetcher creates a fetcher. maxBytes bounds each downloaded file.
func NewFetcher(client *httputil.Client, maxBytes int64, log *logger.Logger) *Fetcher {
	return &Fetcher{
		client:   client,
		maxBytes: maxBytes,
		logger:   log.WithComponent("source"),
	}
}

// IsRemote reports whether location is an http(s) URL
func IsRemote(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetch downloads a CSV and loads it into a table. Missing resources and
// oversized bodies surface as ingest errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, opts ingest.LoadOptions) (ingest.Table, error) {
	data, err := f.client.Download(ctx, rawURL, f.maxBytes)
	if err != nil {
		var statusErr *httputil.StatusError
		switch {
		case errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusNotFound || statusErr.StatusCode == http.StatusGone):
			return ingest.Table{}, &ingest.IngestError{Op: "fetch", Source: rawURL, Err: ingest.ErrSourceMissing}
		case errors.Is(err, httputil.ErrTooLarge):
			return ingest.Table{}, &ingest.IngestError{Op: "fetch", Source: rawURL, Err: err}
		default:
			return ingest.Table{}, fmt.Errorf("fetch %s: %w", rawURL, err)
		}
	}

	f.logger.WithFields(map[string]interface{}{
		"url":   rawURL,
		"bytes": len(data),
	}).Debug("Fetched remote CSV")

	return ingest.LoadReader(bytes.NewReader(data), rawURL, opts)
}

// DiscoverLinks returns the absolute URLs of .csv links on an HTML index
// page, in document order without duplicates.
func (f *Fetcher) DiscoverLinks(ctx context.Context, indexURL string) ([]string, error) {
	base, err := url.Parse(indexURL)
	if err != nil {
		return nil, fmt.Errorf("parse index url: %w", err)
	}

	page, err := f.client.Download(ctx, indexURL, maxIndexBytes)
	if err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}

	seen := make(map[string]bool)
	links := make([]string, 0)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		if !strings.EqualFold(path.Ext(abs.Path), ".csv") {
			return
		}
		abs.Fragment = ""
		link := abs.String()
		if seen[link] {
			return
		}
		seen[link] = true
		links = append(links, link)
	})

	f.logger.WithFields(map[string]interface{}{
		"index": indexURL,
		"links": len(links),
	}).Info("Discovered CSV links")

	return links, nil
}
