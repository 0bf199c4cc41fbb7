package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/domain"
	"github.com/aussiebroadwan/fileshare/pkg/httpx"
	"github.com/aussiebroadwan/fileshare/pkg/slogx"
)

const (
	streamChunk   = 8 << 10
	downloadChunk = 64 << 10

	// maxOpenRange caps "bytes=N-" so players fetch media progressively.
	maxOpenRange = 1 << 20
)

var errRangeNotSatisfiable = errors.New("range not satisfiable")

// byteRange is an inclusive span of a file.
type byteRange struct {
	start, end int64
}

func (b byteRange) length() int64 { return b.end - b.start + 1 }

// parseRange interprets a single byte range against size. ok is false when
// the header is absent, malformed or asks for several ranges; the caller
// then sends the whole body.
func parseRange(header string, size int64) (rng byteRange, ok bool, err error) {
	spec, found := strings.CutPrefix(strings.TrimSpace(header), "bytes=")
	if !found || strings.Contains(spec, ",") {
		return byteRange{}, false, nil
	}
	first, last, found := strings.Cut(spec, "-")
	if !found {
		return byteRange{}, false, nil
	}
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)

	if first == "" {
		n, err := strconv.ParseInt(last, 10, 64)
		if err != nil || n <= 0 {
			return byteRange{}, false, nil
		}
		if size == 0 {
			return byteRange{}, true, errRangeNotSatisfiable
		}
		return byteRange{start: max(size-n, 0), end: size - 1}, true, nil
	}

	start, err := strconv.ParseInt(first, 10, 64)
	if err != nil || start < 0 {
		return byteRange{}, false, nil
	}
	if start >= size {
		return byteRange{}, true, errRangeNotSatisfiable
	}

	end := start + maxOpenRange - 1
	if last != "" {
		end, err = strconv.ParseInt(last, 10, 64)
		if err != nil || end < start {
			return byteRange{}, false, nil
		}
	}
	return byteRange{start: start, end: min(end, size-1)}, true, nil
}

// sendStream serves range capable media.
func sendStream(w http.ResponseWriter, r *http.Request, f io.ReadSeeker, fi domain.FileInfo) {
	h := w.Header()
	h.Set("Content-Type", fi.ContentType)
	h.Set("Accept-Ranges", "bytes")
	h.Set("Cache-Control", "public, max-age=3600")
	h.Del("Pragma")
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Range")

	rng, ok, err := parseRange(r.Header.Get("Range"), fi.Size)
	switch {
	case err != nil:
		h.Set("Content-Range", fmt.Sprintf("bytes */%d", fi.Size))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return
	case !ok:
		h.Set("Content-Length", strconv.FormatInt(fi.Size, 10))
		w.WriteHeader(http.StatusOK)
		copyBody(w, r, f, fi.Size, streamChunk)
		return
	}

	if _, err := f.Seek(rng.start, io.SeekStart); err != nil {
		slogx.FromContext(r.Context()).Error("seek failed", "path", fi.Path, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rng.start, rng.end, fi.Size))
	h.Set("Content-Length", strconv.FormatInt(rng.length(), 10))
	w.WriteHeader(http.StatusPartialContent)
	copyBody(w, r, f, rng.length(), streamChunk)
}

// sendWhole serves a file inline in one response.
func sendWhole(w http.ResponseWriter, r *http.Request, f io.Reader, fi domain.FileInfo) {
	w.Header().Set("Content-Type", fi.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(fi.Size, 10))
	w.WriteHeader(http.StatusOK)
	copyBody(w, r, f, fi.Size, streamChunk)
}

// sendDownload serves a file as an attachment. Empty files are allowed.
func sendDownload(w http.ResponseWriter, r *http.Request, f io.Reader, fi domain.FileInfo) {
	name := strings.ReplaceAll(fi.Name, `"`, `\"`)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Header().Set("Content-Length", strconv.FormatInt(fi.Size, 10))
	w.WriteHeader(http.StatusOK)
	copyBody(w, r, f, fi.Size, downloadChunk)
}

// copyBody copies n bytes of src in reads of at most chunk bytes. HEAD
// requests get no body. A client hanging up mid transfer is only logged at
// debug level.
func copyBody(w http.ResponseWriter, r *http.Request, src io.Reader, n int64, chunk int) {
	if r.Method == http.MethodHead || n == 0 {
		return
	}

	// Hide io.ReaderFrom so the transfer really moves in chunk sized reads.
	dst := struct{ io.Writer }{w}
	_, err := io.CopyBuffer(dst, io.LimitReader(src, n), make([]byte, chunk))
	if err == nil {
		return
	}

	log := slogx.FromContext(r.Context())
	if httpx.IsClientDisconnect(err) || r.Context().Err() != nil {
		log.Debug("client disconnected", "error", err)
		return
	}
	log.Warn("transfer aborted", "error", err)
}
