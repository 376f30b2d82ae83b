package dockhttp

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// decodeInto re-marshals a generic decoded-JSON tree (as produced by
// internal/wire's response decoder, already passed through the Docker
// name transform) into a concrete Go struct. The facade is mechanical
// URL/JSON glue; this is its one shared primitive.
func decodeInto(body any, out any) error {
	if out == nil {
		return nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "dockhttp: re-marshaling response body")
	}
	return errors.Wrap(json.Unmarshal(raw, out), "dockhttp: decoding response body")
}

// filtersToJSON mirrors the shape Docker's API expects for a "filters"
// query parameter: a JSON object whose values are arrays of strings.
func filtersToJSON(filters map[string][]string) map[string]any {
	out := make(map[string]any, len(filters))
	for k, v := range filters {
		vals := make([]any, len(v))
		for i, s := range v {
			vals[i] = s
		}
		out[k] = vals
	}
	return out
}

// endpointRequest runs req through SimpleRequest (dialing a short-lived
// connection when conn is nil) and asserts the response status is one of
// accept, wrapping any failure with the endpoint name for diagnostics.
func (c *Client) endpointRequest(ctx context.Context, conn *Connection, name string, req *Request, accept func(int) bool) (*Response, error) {
	resp, err := c.SimpleRequest(ctx, conn, req)
	if err != nil {
		return nil, errors.Wrapf(err, "dockhttp: %s", name)
	}
	if err := AssertStatus(resp, accept); err != nil {
		return nil, errors.Wrapf(err, "dockhttp: %s", name)
	}
	return resp, nil
}
