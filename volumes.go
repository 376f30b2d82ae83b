package dockhttp

import "context"

// Volume mirrors one entry of GET /volumes.
type Volume struct {
	Name       string            `json:"name"`
	Driver     string            `json:"driver"`
	Mountpoint string            `json:"mountpoint"`
	Labels     map[string]string `json:"labels"`
}

// VolumeListOptions configures GET /volumes.
type VolumeListOptions struct {
	Filters map[string][]string
}

// VolumeList lists volumes known to the daemon.
func (c *Client) VolumeList(ctx context.Context, conn *Connection, opts VolumeListOptions) ([]Volume, error) {
	var q Query
	if len(opts.Filters) > 0 {
		q.Add("filters", filtersToJSON(opts.Filters))
	}

	resp, err := c.endpointRequest(ctx, conn, "VolumeList", &Request{
		Method: MethodGet,
		Path:   "/volumes",
		Query:  q,
	}, StatusIn(200))
	if err != nil {
		return nil, err
	}
	var out struct {
		Volumes []Volume `json:"volumes"`
	}
	if err := decodeInto(resp.Body, &out); err != nil {
		return nil, err
	}
	return out.Volumes, nil
}

// VolumeCreateOptions configures POST /volumes/create.
type VolumeCreateOptions struct {
	Name   string
	Driver string
	Labels map[string]string
}

// VolumeCreate creates a named volume.
func (c *Client) VolumeCreate(ctx context.Context, conn *Connection, opts VolumeCreateOptions) (*Volume, error) {
	body := map[string]any{
		"name":   opts.Name,
		"driver": opts.Driver,
	}
	if len(opts.Labels) > 0 {
		body["labels"] = opts.Labels
	}

	resp, err := c.endpointRequest(ctx, conn, "VolumeCreate", &Request{
		Method: MethodPost,
		Path:   "/volumes/create",
		Body:   body,
	}, StatusIn(201))
	if err != nil {
		return nil, err
	}
	var v Volume
	if err := decodeInto(resp.Body, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// VolumeInspect returns detailed information about one volume.
func (c *Client) VolumeInspect(ctx context.Context, conn *Connection, name string) (*Volume, error) {
	resp, err := c.endpointRequest(ctx, conn, "VolumeInspect", &Request{
		Method: MethodGet,
		Path:   "/volumes/" + name,
	}, StatusIn(200))
	if err != nil {
		return nil, err
	}
	var v Volume
	if err := decodeInto(resp.Body, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// VolumeRemove removes a volume.
func (c *Client) VolumeRemove(ctx context.Context, conn *Connection, name string, force bool) error {
	var q Query
	if force {
		q.Add("force", true)
	}
	_, err := c.endpointRequest(ctx, conn, "VolumeRemove", &Request{
		Method: MethodDelete,
		Path:   "/volumes/" + name,
		Query:  q,
	}, StatusIn(204))
	return err
}
