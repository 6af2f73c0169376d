package llm

import (
	"bytes"
	"io"
	"net/http"
)

// recordingTransport keeps the status and body of the last response so that
// SDK-backed adapters can report the raw payload when decoding fails. One
// instance serves exactly one Generate call.
type recordingTransport struct {
	base   http.RoundTripper
	status int
	body   []byte
}

func newRecordingClient(base *http.Client) (*http.Client, *recordingTransport) {
	rt := &recordingTransport{base: http.DefaultTransport}
	hc := &http.Client{}
	if base != nil {
		if base.Transport != nil {
			rt.base = base.Transport
		}
		hc.Timeout = base.Timeout
		hc.CheckRedirect = base.CheckRedirect
		hc.Jar = base.Jar
	}
	hc.Transport = rt
	return hc, rt
}

func (t *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	t.status = resp.StatusCode
	t.body = body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}
