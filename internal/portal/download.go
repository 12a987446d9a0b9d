// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/course-engine/internal/httputil"
	"github.com/pdiddy/course-engine/internal/sniff"
	"github.com/pdiddy/course-engine/pkg/types"
)

// Recorder receives a notification for every file that lands on disk.
// Implementations persist the download history; a nil Recorder disables
// recording.
type Recorder interface {
	RecordDownload(path, courseID, unit, category string, size int64) error
}

// Downloader drives the per-unit download loop for one course.
type Downloader struct {
	client  *Client
	sniffer types.SnifferConfig
	delay   time.Duration
	rec     Recorder
	w       io.Writer
}

// NewDownloader wires a downloader over an authenticated client. Progress
// lines are written to w.
func NewDownloader(client *Client, sniffer types.SnifferConfig, rec Recorder, w io.Writer) *Downloader {
	return &Downloader{
		client:  client,
		sniffer: sniffer,
		delay:   client.cfg.DownloadDelay,
		rec:     rec,
		w:       w,
	}
}

// DownloadCourse downloads the selected units and categories of a course
// into baseDir. Unit selection is 1-based; out-of-range indices are skipped
// with a warning. It returns the number of files written.
//
// Layout: <baseDir>/Unit_<n>/<NN>_<class>/<category>/<seq>.<class>.<ext>,
// where <seq> is a counter continuous across all classes of the unit.
func (d *Downloader) DownloadCourse(ctx context.Context, course types.Course, units []int, categoryIDs []string, baseDir string) (int, error) {
	allUnits, err := d.client.Units(ctx, course.ID)
	if err != nil {
		return 0, fmt.Errorf("listing units: %w", err)
	}

	total := 0
	for _, unitIdx := range units {
		if unitIdx < 1 || unitIdx > len(allUnits) {
			fmt.Fprintf(d.w, "skipped: unit %d not found\n", unitIdx)
			continue
		}
		unit := allUnits[unitIdx-1]
		fmt.Fprintf(d.w, "Unit %d: %s\n", unitIdx, unit.Name)

		n, err := d.downloadUnit(ctx, course, unitIdx, unit, categoryIDs, baseDir)
		total += n
		if err != nil {
			return total, err
		}
	}
	fmt.Fprintf(d.w, "Downloaded %d files\n", total)
	return total, nil
}

func (d *Downloader) downloadUnit(ctx context.Context, course types.Course, unitIdx int, unit types.Unit, categoryIDs []string, baseDir string) (int, error) {
	classes, err := d.client.Classes(ctx, unit.ID)
	if err != nil {
		return 0, fmt.Errorf("listing classes for unit %d: %w", unitIdx, err)
	}

	unitDir := filepath.Join(baseDir, fmt.Sprintf("Unit_%d", unitIdx))
	if err := os.MkdirAll(unitDir, 0o755); err != nil {
		return 0, err
	}

	// Sequence counter is continuous across all classes of the unit, so
	// filenames merge back into lecture order later.
	seq := 1
	total := 0

	for classIdx, cls := range classes {
		fmt.Fprintf(d.w, "[%d/%d] %s\n", classIdx+1, len(classes), cls.Name)
		safeName := safeClassName(cls.Name)
		classDir := fmt.Sprintf("%02d_%s", classIdx+1, safeName)

		for _, catID := range categoryIDs {
			category, ok := types.Categories[catID]
			if !ok {
				return total, fmt.Errorf("unknown category id %q", catID)
			}
			links, err := d.client.ResourceLinks(ctx, course.ID, cls.ID, catID)
			if err != nil {
				return total, fmt.Errorf("resolving %s for %s: %w", category, cls.Name, err)
			}
			if len(links) == 0 {
				continue
			}

			dir := filepath.Join(unitDir, classDir, category)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return total, err
			}

			for _, link := range links {
				written, path, err := d.fetchOne(ctx, link, dir, seq, safeName)
				if err != nil {
					return total, err
				}
				if !written {
					continue
				}
				info, err := os.Stat(path)
				if err != nil {
					return total, err
				}
				fmt.Fprintf(d.w, "downloaded: %s (%d bytes)\n", filepath.Base(path), info.Size())
				if d.rec != nil {
					if err := d.rec.RecordDownload(path, course.ID, unit.Name, category, info.Size()); err != nil {
						return total, fmt.Errorf("recording download: %w", err)
					}
				}
				seq++
				total++

				if d.delay > 0 {
					select {
					case <-ctx.Done():
						return total, ctx.Err()
					case <-time.After(d.delay):
					}
				}
			}
		}
	}
	return total, nil
}

// fetchOne writes one resource into dir. Empty responses are discarded.
// After the write, the magic-byte sniffer decides the real extension and
// renames the file when the portal's content type lied.
func (d *Downloader) fetchOne(ctx context.Context, link types.ResourceLink, dir string, seq int, safeName string) (written bool, path string, err error) {
	var body []byte
	ext := ".pdf"

	if link.Direct() {
		body = link.Content
	} else {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, link.URL, nil)
		if err != nil {
			return false, "", err
		}
		req.Header.Set("User-Agent", d.client.cfg.UserAgent)
		req.Header.Set("Referer", d.client.cfg.BaseURL+"/s/studentProfilePESU")

		resp, err := httputil.DoWithRetry(ctx, d.client.http, req, 0)
		if err != nil {
			return false, "", fmt.Errorf("fetching %s: %w", link.URL, err)
		}
		body, err = io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return false, "", fmt.Errorf("reading %s: %w", link.URL, err)
		}
		if e := extFromContentType(resp.Header.Get("Content-Type")); e != "" {
			ext = e
		} else if name := FilenameFromDisposition(resp.Header.Get("Content-Disposition")); name != "" {
			if e := strings.ToLower(filepath.Ext(name)); e != "" {
				ext = e
			}
		}
	}

	if len(body) == 0 {
		fmt.Fprintf(d.w, "skipped: %d.%s%s (empty file)\n", seq, safeName, ext)
		return false, "", nil
	}

	path = filepath.Join(dir, fmt.Sprintf("%d.%s%s", seq, safeName, ext))
	tmp := path + ".part"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return false, "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return false, "", err
	}

	// Trust the bytes over the headers.
	kind := sniff.Classify(path, d.sniffer)
	final, err := sniff.Normalize(path, kind)
	if err != nil {
		return false, "", err
	}
	return true, final, nil
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9 _-]`)

// safeClassName turns a class display name into a filesystem-safe stem:
// punctuation becomes underscores, runs of whitespace collapse to single
// underscores, and the result is capped at 60 characters.
func safeClassName(name string) string {
	s := unsafeNameChars.ReplaceAllString(name, "_")
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		s = s[:60]
	}
	return strings.Join(strings.Fields(s), "_")
}

// extFromContentType maps office MIME types to extensions. Unknown types
// return "" and the caller keeps its default.
func extFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "application/vnd.openxmlformats") && strings.Contains(ct, "presentation"):
		return ".pptx"
	case strings.Contains(ct, "application/vnd.openxmlformats") && strings.Contains(ct, "word"):
		return ".docx"
	case strings.Contains(ct, "application/vnd.openxmlformats") && strings.Contains(ct, "sheet"):
		return ".xlsx"
	case strings.Contains(ct, "application/vnd.ms-powerpoint"):
		return ".ppt"
	case strings.Contains(ct, "application/msword"):
		return ".doc"
	case strings.Contains(ct, "application/pdf"):
		return ".pdf"
	}
	return ""
}

// filenameDispPattern matches RFC 6266 style Content-Disposition filenames,
// including the UTF-8 extended form.
var filenameDispPattern = regexp.MustCompile(`filename\*?=["']?(?:UTF-8'')?([^"';\n]+)`)

// FilenameFromDisposition extracts the server-suggested filename from a
// Content-Disposition header, or "" when absent.
func FilenameFromDisposition(header string) string {
	m := filenameDispPattern.FindStringSubmatch(header)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
