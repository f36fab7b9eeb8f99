package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/teranos/wbwatch/errors"
)

// RequestDoer exposes c as a Doer for clients that build their own
// *http.Request, such as the Telegram bot API. The request body is buffered
// so each attempt resends it, and the request context bounds the retries.
func (c *RetryClient) RequestDoer() Doer {
	return requestDoer{client: c}
}

type requestDoer struct {
	client *RetryClient
}

func (d requestDoer) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, errors.Wrap(err, "failed to read request body")
		}
		body = data
	}

	resp, err := d.client.Do(req.Context(), req.Method, req.URL.String(), body, req.Header)
	if err != nil {
		return nil, err
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		StatusCode:    resp.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        resp.Header,
		Body:          io.NopCloser(bytes.NewReader(resp.Body)),
		ContentLength: int64(len(resp.Body)),
		Request:       req,
	}, nil
}
