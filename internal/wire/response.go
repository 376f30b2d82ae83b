package wire

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/asdine/dockhttp/internal/names"
)

// StatusSwitchingProtocols is the status a successful attach/exec upgrade
// handshake returns.
const StatusSwitchingProtocols = 101

// Response is a parsed HTTP response. Body is one of: a decoded JSON value
// (map[string]any/[]any/scalar), a string (text/plain), a []byte (any other
// content-type), a []any of decoded JSON values (image pull's
// concatenated-JSON variant), or nil when StatusCode is 101 or the response
// genuinely has no body.
type Response struct {
	StatusCode int
	Header     Header
	Body       any
}

// ReadResponse parses a status line, headers, and body off br. Docker's
// trailing-empty-chunk quirk is absorbed by the chunked reader; the quirk's
// sibling case — a leaked "0\r\n" status line left over from a prior
// response's quirk — is absorbed here by retrying once.
func ReadResponse(br *bufio.Reader, expectSequence bool) (*Response, error) {
	status, _, err := readStatusLine(br)
	if err != nil {
		return nil, errors.Wrap(err, "wire: reading status line")
	}

	hdr, err := readHeaders(br)
	if err != nil {
		return nil, errors.Wrap(err, "wire: reading headers")
	}

	resp := &Response{StatusCode: status, Header: hdr}

	if status == StatusSwitchingProtocols {
		return resp, nil
	}

	bodyReader, err := selectBodyReader(br, hdr)
	if err != nil {
		return nil, errors.Wrap(err, "wire: selecting body reader")
	}
	defer bodyReader.Close()

	body, err := decodeBody(bodyReader, hdr, expectSequence)
	if err != nil {
		return nil, errors.Wrap(err, "wire: decoding body")
	}
	// A JSON decoder stops at the end of the value; drain the rest of the
	// body so the stream lands past its framing (and the daemon's quirk).
	if _, err := io.Copy(io.Discard, bodyReader); err != nil {
		return nil, errors.Wrap(err, "wire: draining body")
	}
	resp.Body = body
	return resp, nil
}

// readStatusLine parses "HTTP/1.1 <status> <reason>\r\n", retrying once if
// the line is a leaked "0" from a prior response's trailing empty chunk.
func readStatusLine(br *bufio.Reader) (int, string, error) {
	for attempt := 0; attempt < 2; attempt++ {
		line, err := readCRLFLine(br, 2048)
		if err != nil {
			return 0, "", err
		}
		trimmed := strings.TrimSpace(string(line))
		if trimmed == "0" {
			// Leaked empty-chunk prefix: "0\r\n" already consumed by
			// readCRLFLine above; the quirk's second "\r\n" is the next line.
			if _, err := readCRLFLine(br, 2); err != nil {
				return 0, "", err
			}
			continue
		}
		parts := strings.SplitN(trimmed, " ", 3)
		if len(parts) < 2 || !strings.HasPrefix(parts[0], "HTTP/") {
			return 0, "", errors.Wrapf(ErrProtocol, "malformed status line %q", trimmed)
		}
		code, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, "", errors.Wrapf(ErrProtocol, "malformed status code %q", parts[1])
		}
		reason := ""
		if len(parts) == 3 {
			reason = parts[2]
		}
		return code, reason, nil
	}
	return 0, "", errors.Wrap(ErrProtocol, "too many leaked empty-chunk prefixes")
}

func readHeaders(br *bufio.Reader) (Header, error) {
	hdr := Header{}
	for {
		line, err := readCRLFLine(br, 8192)
		if err != nil {
			return nil, err
		}
		if len(line) == 0 {
			return hdr, nil
		}
		colon := indexByte(line, ':')
		if colon < 0 {
			return nil, errors.Wrapf(ErrProtocol, "malformed header line %q", line)
		}
		key := strings.TrimSpace(string(line[:colon]))
		val := strings.TrimSpace(string(line[colon+1:]))
		hdr.Set(key, val)
	}
}

func selectBodyReader(br *bufio.Reader, hdr Header) (io.ReadCloser, error) {
	var base io.Reader
	if strings.EqualFold(hdr.Get("transfer-encoding"), "chunked") {
		base = newChunkedReader(br)
	} else {
		n, _ := strconv.ParseInt(hdr.Get("content-length"), 10, 64)
		base = newLengthReader(br, n)
	}

	if strings.EqualFold(hdr.Get("content-encoding"), "gzip") {
		gz, err := gzip.NewReader(base)
		if err != nil {
			return nil, errors.Wrap(err, "opening gzip body")
		}
		return gz, nil
	}
	return io.NopCloser(base), nil
}

// decodeBody chooses a decoder by content-type: JSON is transformed back
// into caller-style names, text/plain is returned as a string, and anything
// else is returned as raw bytes.
func decodeBody(r io.Reader, hdr Header, expectSequence bool) (any, error) {
	ct := hdr.Get("content-type")
	mediaType := ct
	if semi := strings.IndexByte(ct, ';'); semi >= 0 {
		mediaType = ct[:semi]
	}
	mediaType = strings.TrimSpace(mediaType)

	switch {
	case mediaType == "application/json" && expectSequence:
		return decodeJSONSequence(r)
	case mediaType == "application/json":
		var v any
		dec := json.NewDecoder(r)
		if err := dec.Decode(&v); err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, err
		}
		return names.FromDocker(v), nil
	case mediaType == "text/plain":
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	default:
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			return nil, nil
		}
		return raw, nil
	}
}

// decodeJSONSequence reads a sequence of JSON values, one per line, the
// streaming progress format image pull responds with.
func decodeJSONSequence(r io.Reader) ([]any, error) {
	dec := json.NewDecoder(r)
	var out []any
	for {
		var v any
		err := dec.Decode(&v)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, names.FromDocker(v))
	}
}

// UnexpectedStatusError carries the full response for diagnostics,
// including any decoded "message" field.
type UnexpectedStatusError struct {
	Response *Response
}

func (e *UnexpectedStatusError) Error() string {
	msg := extractMessage(e.Response.Body)
	if msg != "" {
		return "wire: unexpected status " + strconv.Itoa(e.Response.StatusCode) + ": " + msg
	}
	return "wire: unexpected status " + strconv.Itoa(e.Response.StatusCode)
}

func extractMessage(body any) string {
	m, ok := body.(map[string]any)
	if !ok {
		return ""
	}
	if msg, ok := m["message"].(string); ok {
		return msg
	}
	return ""
}

// AssertStatus validates resp.StatusCode against accept, raising an
// *UnexpectedStatusError carrying the full response on mismatch.
func AssertStatus(resp *Response, accept func(int) bool) error {
	if accept(resp.StatusCode) {
		return nil
	}
	return &UnexpectedStatusError{Response: resp}
}

// StatusIn returns an accept predicate matching any of the given codes.
func StatusIn(codes ...int) func(int) bool {
	return func(code int) bool {
		for _, c := range codes {
			if c == code {
				return true
			}
		}
		return false
	}
}
