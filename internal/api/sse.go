package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/pkg/errors"
)

// Event is a single server-sent event frame.
type Event struct {
	Name string
	Data []byte
}

// Stream reads server-sent events off an open response body.
// Recv blocks until the next frame; Close aborts the request and
// makes any blocked Recv return.
type Stream struct {
	resp   *http.Response
	reader *bufio.Reader
	cancel context.CancelFunc

	closeOnce sync.Once
	closed    chan struct{}
}

// stream opens a streaming request and returns once headers arrive.
// The stream is bounded by ctx, not by the client timeout.
func (c *Client) stream(ctx context.Context, method, path string, body any) (*Stream, error) {
	ctx, cancel := context.WithCancel(ctx)

	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			cancel()
			return nil, errors.Wrap(err, "marshaling request")
		}
		reader = bytes.NewReader(bodyBytes)
	}

	req, err := c.newRequest(ctx, method, path, nil, reader)
	if err != nil {
		cancel()
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "opening stream")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		resp.Body.Close()
		cancel()
		return nil, parseError(resp.StatusCode, respBody)
	}

	return &Stream{
		resp:   resp,
		reader: bufio.NewReader(resp.Body),
		cancel: cancel,
		closed: make(chan struct{}),
	}, nil
}

// Recv returns the next event. io.EOF signals a clean end of stream.
func (s *Stream) Recv() (*Event, error) {
	event := &Event{Name: "message"}
	var data [][]byte

	for {
		select {
		case <-s.closed:
			return nil, io.EOF
		default:
		}

		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF && len(data) > 0 {
				event.Data = bytes.Join(data, []byte("\n"))
				return event, nil
			}
			return nil, err
		}

		line = bytes.TrimRight(line, "\r\n")
		switch {
		case len(line) == 0:
			// Blank line terminates a frame.
			if len(data) == 0 {
				continue
			}
			event.Data = bytes.Join(data, []byte("\n"))
			return event, nil
		case bytes.HasPrefix(line, []byte(":")):
			// Comment, usually a keepalive.
		case bytes.HasPrefix(line, []byte("event:")):
			event.Name = string(bytes.TrimSpace(line[len("event:"):]))
		case bytes.HasPrefix(line, []byte("data:")):
			data = append(data, bytes.TrimSpace(line[len("data:"):]))
		}
	}
}

// Close aborts the stream. Safe to call more than once and while a
// Recv is blocked.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.cancel()
		s.resp.Body.Close()
	})
	return nil
}
