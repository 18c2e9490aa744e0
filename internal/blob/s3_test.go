package blob

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeS3 serves the subset of the S3 REST API the adapter uses.
type fakeS3 struct {
	mu    sync.Mutex
	state map[string]fakeObject
}

type fakeObject struct {
	body        []byte
	contentType string
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2" {
		return f.list(req.URL.Query().Get("prefix")), nil
	}
	switch req.Method {
	case http.MethodHead, http.MethodGet:
		obj, ok := f.state[key]
		if !ok {
			return respond(http.StatusNotFound, nil, http.Header{"Content-Type": {"application/xml"}},
				[]byte(`<?xml version="1.0"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`), req.Method == http.MethodHead), nil
		}
		header := http.Header{
			"Content-Length": {strconv.Itoa(len(obj.body))},
			"Content-Type":   {obj.contentType},
			"Etag":           {`"etag123"`},
			"Last-Modified":  {time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Format(http.TimeFormat)},
		}
		return respond(http.StatusOK, nil, header, obj.body, req.Method == http.MethodHead), nil
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if req.Header.Get("X-Amz-Decoded-Content-Length") != "" {
			body = decodeAWSChunked(body)
		}
		f.state[key] = fakeObject{body: body, contentType: req.Header.Get("Content-Type")}
		return respond(http.StatusOK, nil, http.Header{"Etag": {`"etag123"`}}, nil, false), nil
	case http.MethodDelete:
		delete(f.state, key)
		return respond(http.StatusNoContent, nil, http.Header{}, nil, false), nil
	}
	return respond(http.StatusNotImplemented, nil, http.Header{}, nil, false), nil
}

func (f *fakeS3) list(prefix string) *http.Response {
	keys := make([]string, 0, len(f.state))
	for k := range f.state {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
	for _, k := range keys {
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2024-01-01T00:00:00Z</LastModified></Contents>", k, len(f.state[k].body))
	}
	b.WriteString("</ListBucketResult>")
	return respond(http.StatusOK, nil, http.Header{"Content-Type": {"application/xml"}}, []byte(b.String()), false)
}

func respond(status int, _ *http.Request, header http.Header, body []byte, headOnly bool) *http.Response {
	if headOnly {
		body = nil
	}
	return &http.Response{StatusCode: status, Header: header, Body: io.NopCloser(bytes.NewReader(body)), ContentLength: int64(len(body))}
}

// decodeAWSChunked strips aws-chunked framing: <hex-size>[;ext]\r\n<data>\r\n ... 0\r\n[trailers]\r\n.
func decodeAWSChunked(b []byte) []byte {
	r := bufio.NewReader(bytes.NewReader(b))
	var out []byte
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return out
		}
		sizeField := strings.TrimSpace(strings.SplitN(line, ";", 2)[0])
		size, err := strconv.ParseInt(sizeField, 16, 64)
		if err != nil || size == 0 {
			return out
		}
		chunk := make([]byte, size)
		if _, err := io.ReadFull(r, chunk); err != nil {
			return out
		}
		out = append(out, chunk...)
		_, _ = r.ReadString('\n')
	}
}

func TestS3StoreContract(t *testing.T) {
	fake := &fakeS3{state: map[string]fakeObject{}}
	store, err := NewS3(context.Background(), S3Config{
		Bucket:          "park-snapshots",
		Region:          "us-east-1",
		Endpoint:        "https://s3.test.local",
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		PathStyle:       true,
		HTTPClient:      &http.Client{Transport: fake},
	})
	if err != nil {
		t.Fatalf("new s3: %v", err)
	}
	if store.Driver() != DriverS3 {
		t.Fatalf("unexpected driver %s", store.Driver())
	}
	exerciseStore(t, store)
}
