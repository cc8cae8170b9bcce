package forward

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"

	relay "github.com/damianharouff/gl-json-to-gelf"
)

// Result is the remote side's answer, reported without interpretation.
type Result struct {
	Ok         bool
	StatusCode int
	Body       string
}

// Forwarder delivers one GELF record per call to a Graylog GELF HTTP input.
// No retries, no buffering; a failed call is reported once to the caller.
type Forwarder struct {
	// Client is used for the outbound POST. Nil means http.DefaultClient;
	// no timeout is imposed beyond the transport's own, so the request
	// lifecycle is bounded by the caller's context.
	Client *http.Client
}

// Send POSTs the record to http://{host}:{port}/gelf and returns the remote
// status and body text. Empty host or port is a ConfigError. Ok means the
// remote answered 2xx; a non-2xx answer is not an error here, the caller
// decides what a rejection means.
func (f *Forwarder) Send(ctx context.Context, rec *relay.Record, host, port string) (Result, error) {
	if host == "" {
		return Result{}, &relay.ConfigError{Setting: "GRAYLOG_HOST"}
	}
	if port == "" {
		return Result{}, &relay.ConfigError{Setting: "GRAYLOG_PORT"}
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return Result{}, fmt.Errorf("encoding GELF record: %w", err)
	}

	url := "http://" + net.JoinHostPort(host, port) + "/gelf"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("posting to graylog: %w", err)
	}
	defer res.Body.Close()

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return Result{}, fmt.Errorf("reading graylog response: %w", err)
	}

	return Result{
		Ok:         res.StatusCode >= 200 && res.StatusCode < 300,
		StatusCode: res.StatusCode,
		Body:       string(respBody),
	}, nil
}
