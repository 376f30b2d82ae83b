package wire

import (
	"bytes"
	"net/url"
	"strings"
	"testing"
)

func TestWriteRequestSimpleGet(t *testing.T) {
	var buf bytes.Buffer
	err := WriteRequest(&buf, "", &Request{Method: MethodGet, Path: "/containers/json"})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "GET "+apiPrefix+"/containers/json HTTP/1.1\r\n") {
		t.Fatalf("unexpected request line: %q", out)
	}
	if !strings.HasSuffix(out, "\r\n\r\n") {
		t.Fatalf("expected header block terminator, got %q", out)
	}
}

// TestWriteRequestGetExactBytes pins the full wire form of a bodyless GET:
// request line, merged host header, blank line, nothing else.
func TestWriteRequestGetExactBytes(t *testing.T) {
	var buf bytes.Buffer
	err := WriteRequest(&buf, "docker.com", &Request{Method: MethodGet, Path: "/path"})
	if err != nil {
		t.Fatal(err)
	}
	want := "GET /v1.46/path HTTP/1.1\r\nhost: docker.com\r\n\r\n"
	if buf.String() != want {
		t.Fatalf("wire bytes:\ngot  %q\nwant %q", buf.String(), want)
	}
}

// TestWriteRequestPostJSONExactBytes pins the full wire form of a POST with
// a JSON body: name-transformed keys, chunked framing with hex length, and
// the terminal empty chunk.
func TestWriteRequestPostJSONExactBytes(t *testing.T) {
	var buf bytes.Buffer
	body := map[string]any{"foo": 42}
	err := WriteRequest(&buf, "docker.com", &Request{Method: MethodPost, Path: "/path", Body: body})
	if err != nil {
		t.Fatal(err)
	}
	want := "POST /v1.46/path HTTP/1.1\r\n" +
		"transfer-encoding: chunked\r\n" +
		"content-type: application/json; charset=utf-8\r\n" +
		"host: docker.com\r\n" +
		"\r\n" +
		"a\r\n{\"Foo\":42}\r\n0\r\n\r\n"
	if buf.String() != want {
		t.Fatalf("wire bytes:\ngot  %q\nwant %q", buf.String(), want)
	}
}

func TestWriteRequestMergesHostHeader(t *testing.T) {
	var buf bytes.Buffer
	err := WriteRequest(&buf, "docker", &Request{Method: MethodGet, Path: "/info"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "host: docker\r\n") {
		t.Fatalf("expected merged host header, got %q", buf.String())
	}
}

func TestWriteRequestRespectsCallerHostHeader(t *testing.T) {
	var buf bytes.Buffer
	hdr := Header{}
	hdr.Set("host", "custom")
	err := WriteRequest(&buf, "docker", &Request{Method: MethodGet, Path: "/info", Header: hdr})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "host: docker\r\n") {
		t.Fatalf("caller-supplied host header was overwritten: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "host: custom\r\n") {
		t.Fatalf("expected caller host header preserved, got %q", buf.String())
	}
}

func TestWriteRequestQueryParamsPreserveOrder(t *testing.T) {
	var buf bytes.Buffer
	q := Query{}
	q.Add("all", true)
	q.Add("since", "abc123")
	err := WriteRequest(&buf, "", &Request{Method: MethodGet, Path: "/containers/json", Query: q})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "?all=true&since=abc123 ") {
		t.Fatalf("unexpected query encoding: %q", buf.String())
	}
}

func TestWriteRequestJSONBodyAppliesNameTransform(t *testing.T) {
	var buf bytes.Buffer
	body := map[string]any{"host-config": map[string]any{"network-mode": "bridge"}}
	err := WriteRequest(&buf, "", &Request{Method: MethodPost, Path: "/containers/create", Body: body})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "transfer-encoding: chunked\r\n") {
		t.Fatalf("expected chunked transfer-encoding, got %q", out)
	}
	if !strings.Contains(out, `"HostConfig"`) || !strings.Contains(out, `"NetworkMode"`) {
		t.Fatalf("expected body keys transformed to Docker style, got %q", out)
	}
}

func TestWriteRequestFiltersQueryParamNotTransformed(t *testing.T) {
	var buf bytes.Buffer
	q := Query{}
	q.Add("filters", map[string]any{"label": []any{"com.example=1"}})
	err := WriteRequest(&buf, "", &Request{Method: MethodGet, Path: "/containers/json", Query: q})
	if err != nil {
		t.Fatal(err)
	}
	// "label" must remain literal: the to-Docker transform applies only to
	// JSON request bodies, never to query parameter values.
	decoded := mustQueryUnescape(t, buf.String())
	if !strings.Contains(decoded, `"label"`) {
		t.Fatalf("expected literal \"label\" key in filters query, got %q", decoded)
	}
	if strings.Contains(decoded, `"Label"`) {
		t.Fatalf("filters query value was incorrectly name-transformed: %q", decoded)
	}
}

// TestWriteRequestHeaderOrderMatchesInsertion pins the exact byte sequence
// of the header block: the merged transfer-encoding and content-type
// headers (set while preparing the body) must precede the merged host
// header (set afterward), since Header preserves insertion order rather
// than sorting or hashing its fields.
func TestWriteRequestHeaderOrderMatchesInsertion(t *testing.T) {
	var buf bytes.Buffer
	body := map[string]any{"foo": "bar"}
	err := WriteRequest(&buf, "docker", &Request{Method: MethodPost, Path: "/x", Body: body})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	headerBlock := out[strings.Index(out, "\r\n")+2:]
	headerBlock = headerBlock[:strings.Index(headerBlock, "\r\n\r\n")+4]
	wantOrder := "transfer-encoding: chunked\r\n" +
		"content-type: application/json; charset=utf-8\r\n" +
		"host: docker\r\n" +
		"\r\n"
	if headerBlock != wantOrder {
		t.Fatalf("header block order:\ngot  %q\nwant %q", headerBlock, wantOrder)
	}
}

func mustQueryUnescape(t *testing.T, requestLine string) string {
	t.Helper()
	start := strings.Index(requestLine, "filters=")
	if start < 0 {
		t.Fatalf("no filters param found in %q", requestLine)
	}
	start += len("filters=")
	end := strings.IndexAny(requestLine[start:], " &")
	if end < 0 {
		end = len(requestLine) - start
	}
	decoded, err := url.QueryUnescape(requestLine[start : start+end])
	if err != nil {
		t.Fatal(err)
	}
	return decoded
}
