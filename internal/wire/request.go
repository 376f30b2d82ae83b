package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/asdine/dockhttp/internal/names"
)

// apiPrefix is prepended to every request path; the client targets one
// fixed API version rather than negotiating with the daemon.
const apiPrefix = "/v1.46"

// Method is an HTTP method recognized by this client.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
	MethodHead   Method = "HEAD"
)

// QueryParam is one entry of an ordered query-parameter mapping. Value is
// one of string, an integer/float, or any JSON-serializable structure.
type QueryParam struct {
	Key   string
	Value any
}

// Query is an ordered sequence of query parameters in caller-controlled
// order. Each entry is emitted once as key=value; a slice or map value is
// JSON-encoded rather than expanded into repeated keys. Add does not
// de-duplicate, so adding the same key twice emits it twice.
type Query []QueryParam

// Add appends a parameter, preserving insertion order.
func (q *Query) Add(key string, value any) {
	*q = append(*q, QueryParam{Key: key, Value: value})
}

// Request describes an HTTP request prior to transmission.
type Request struct {
	Method Method
	Path   string
	Query  Query
	Header Header
	Body   any // nil, map/slice (JSON), string, []byte, or io.Reader

	// ExpectJSONSeq marks the response body as a sequence of concatenated
	// JSON values (image pull's streaming variant) rather than one document.
	ExpectJSONSeq bool
}

// WriteRequest serializes req onto w, merging in a "host" header derived
// from host only if the caller did not already set one.
func WriteRequest(w io.Writer, host string, req *Request) error {
	method := req.Method
	if method == "" {
		method = MethodGet
	}

	line, err := buildRequestLine(string(method), req.Path, req.Query)
	if err != nil {
		return errors.Wrap(err, "wire: building request line")
	}
	if _, err := io.WriteString(w, line); err != nil {
		return errors.Wrap(err, "wire: writing request line")
	}

	hdr := req.Header
	if hdr == nil {
		hdr = Header{}
	} else {
		hdr = hdr.Clone()
	}

	bodyReader, err := prepareBody(&hdr, req.Body)
	if err != nil {
		return errors.Wrap(err, "wire: preparing request body")
	}

	if !hdr.Has("host") && host != "" {
		hdr.Set("host", host)
	}

	if err := writeHeaderBlock(w, hdr); err != nil {
		return errors.Wrap(err, "wire: writing headers")
	}

	if bodyReader == nil {
		return nil
	}

	cw := newChunkedWriter(w)
	if _, err := io.Copy(cw, bodyReader); err != nil {
		return errors.Wrap(err, "wire: writing chunked body")
	}
	return errors.Wrap(cw.Close(), "wire: closing chunked body")
}

// writeHeaderBlock writes one "key: value\r\n" line per field in hdr, in
// the order the fields were set, then the blank line that terminates the
// header block.
func writeHeaderBlock(w io.Writer, hdr Header) error {
	for _, f := range hdr {
		if _, err := fmt.Fprintf(w, "%s: %s\r\n", f.Key, f.Value); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\r\n")
	return err
}

// prepareBody normalizes the request body into a chunked-ready io.Reader and
// sets transfer-encoding/content-type headers accordingly. A nil body leaves
// headers untouched and returns a nil reader.
func prepareBody(hdr *Header, body any) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	hdr.Set("transfer-encoding", "chunked")

	switch v := body.(type) {
	case string:
		return strings.NewReader(v), nil
	case []byte:
		return bytes.NewReader(v), nil
	case io.Reader:
		return v, nil
	default:
		hdr.Set("content-type", "application/json; charset=utf-8")
		transformed := names.ToDocker(toJSONValue(v))
		encoded, err := json.Marshal(transformed)
		if err != nil {
			return nil, errors.Wrap(err, "encoding JSON body")
		}
		return strings.NewReader(string(encoded)), nil
	}
}

// toJSONValue round-trips arbitrary Go structs through encoding/json so
// names.ToDocker can walk a generic map[string]any/[]any tree regardless of
// whether the caller passed a struct, map, or slice.
func toJSONValue(v any) any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	if a, ok := v.([]any); ok {
		return a
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

func buildRequestLine(method, path string, q Query) (string, error) {
	var sb strings.Builder
	sb.WriteString(method)
	sb.WriteByte(' ')
	sb.WriteString(apiPrefix)
	sb.WriteString(path)

	if len(q) > 0 {
		sb.WriteByte('?')
		for i, p := range q {
			if i > 0 {
				sb.WriteByte('&')
			}
			val, err := encodeQueryValue(p.Value)
			if err != nil {
				return "", err
			}
			sb.WriteString(url.QueryEscape(p.Key))
			sb.WriteByte('=')
			sb.WriteString(val)
		}
	}
	sb.WriteString(" HTTP/1.1\r\n")
	return sb.String(), nil
}

// encodeQueryValue renders a query parameter value the way Docker expects
// it: scalars in their natural string form, anything else as compact JSON.
func encodeQueryValue(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return url.QueryEscape(val), nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	default:
		// The to-Docker name transform applies to JSON request bodies only,
		// never to query parameter values (e.g. "filters" keys like "label"
		// stay literal here).
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", errors.Wrap(err, "encoding query value")
		}
		return url.QueryEscape(string(encoded)), nil
	}
}
