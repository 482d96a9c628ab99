package core

// streaming.go provides the reader stack used to pull a dataset file:
//
//   - FingerprintReader: hashes the raw file bytes (xxhash64) while they are read
//   - NewTextReader: strips a UTF-8/UTF-16 BOM and replaces invalid UTF-8
//     with U+FFFD, so CSV files exported by Windows spreadsheets parse cleanly
//
// The fingerprint always covers the bytes on disk, before any decoding.

import (
	"encoding/hex"
	"io"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FingerprintReader wraps an io.Reader and hashes everything read through it.
type FingerprintReader struct {
	reader    io.Reader
	digest    *xxhash.Digest
	BytesRead int64
}

// NewFingerprintReader creates a hashing reader over r.
func NewFingerprintReader(r io.Reader) *FingerprintReader {
	return &FingerprintReader{reader: r, digest: xxhash.New()}
}

// Read implements io.Reader.
func (f *FingerprintReader) Read(p []byte) (int, error) {
	n, err := f.reader.Read(p)
	if n > 0 {
		f.digest.Write(p[:n])
		f.BytesRead += int64(n)
	}
	return n, err
}

// Sum returns the hex fingerprint of the bytes read so far.
func (f *FingerprintReader) Sum() string {
	return hex.EncodeToString(f.digest.Sum(nil))
}

// NewTextReader decodes r as UTF-8 text. A leading BOM is removed (UTF-16
// BOMs switch decoding to UTF-16) and invalid sequences become U+FFFD.
func NewTextReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}
