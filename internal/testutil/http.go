package testutil

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"sync"
)

// Transport is an http.RoundTripper that answers every request with a canned
// response or error and records what it was asked for.
type Transport struct {
	Status int   // defaults to 200
	Body   []byte
	Err    error // returned instead of a response when set

	mu       sync.Mutex
	requests []*http.Request
}

// RoundTrip implements http.RoundTripper.
func (f *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	if f.Err != nil {
		return nil, f.Err
	}

	status := f.Status
	if status == 0 {
		status = http.StatusOK
	}

	return &http.Response{
		StatusCode:    status,
		Status:        strconv.Itoa(status) + " " + http.StatusText(status),
		Header:        http.Header{"Content-Length": []string{strconv.Itoa(len(f.Body))}},
		Body:          io.NopCloser(bytes.NewReader(f.Body)),
		ContentLength: int64(len(f.Body)),
		Request:       req,
	}, nil
}

// Client returns an *http.Client that uses the transport.
func (f *Transport) Client() *http.Client {
	return &http.Client{Transport: f}
}

// Requests returns the requests seen so far.
func (f *Transport) Requests() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*http.Request(nil), f.requests...)
}
