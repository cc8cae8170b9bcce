package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	errUnsupportedEncoding = errors.New("unsupported Content-Encoding")
	errBodyTooLarge        = errors.New("request body too large")
)

// readBody drains the request body, honoring gzip and zstd content encodings.
// Log shippers routinely compress their payloads, so the relay accepts the
// same encodings a Graylog input would.
//
// limit caps the decoded payload, not just the wire bytes: a small compressed
// request can expand to an arbitrarily large one, so the decompressed stream
// gets the same bound. The caller is expected to have capped the wire bytes
// with http.MaxBytesReader already.
func readBody(r *http.Request, limit int64) ([]byte, error) {
	var reader io.Reader = r.Body

	switch strings.ToLower(r.Header.Get("Content-Encoding")) {
	case "", "identity":
	case "gzip":
		zr, err := gzip.NewReader(reader)
		if err != nil {
			return nil, fmt.Errorf("gzip body: %w", err)
		}
		defer zr.Close()
		reader = zr
	case "zstd":
		zr, err := zstd.NewReader(reader)
		if err != nil {
			return nil, fmt.Errorf("zstd body: %w", err)
		}
		defer zr.Close()
		reader = zr
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedEncoding, r.Header.Get("Content-Encoding"))
	}

	body, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, errBodyTooLarge
	}
	return body, nil
}
