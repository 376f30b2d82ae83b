package dockhttp

import "context"

// Network mirrors one entry of GET /networks, including the Containers
// opaque subtree (container-id-keyed, preserved verbatim rather than
// name-transformed since its inner keys are daemon-assigned, not schema).
type Network struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Driver     string            `json:"driver"`
	Labels     map[string]string `json:"Labels"`
	Containers map[string]any    `json:"Containers"`
	Options    map[string]string `json:"options"`
}

// NetworkCreateOptions configures POST /networks/create.
type NetworkCreateOptions struct {
	Name   string
	Driver string
	Labels map[string]string
}

// NetworkList lists networks known to the daemon.
func (c *Client) NetworkList(ctx context.Context, conn *Connection) ([]Network, error) {
	resp, err := c.endpointRequest(ctx, conn, "NetworkList", &Request{
		Method: MethodGet,
		Path:   "/networks",
	}, StatusIn(200))
	if err != nil {
		return nil, err
	}
	var nets []Network
	if err := decodeInto(resp.Body, &nets); err != nil {
		return nil, err
	}
	return nets, nil
}

// NetworkCreate creates a network and returns its id.
func (c *Client) NetworkCreate(ctx context.Context, conn *Connection, opts NetworkCreateOptions) (string, error) {
	body := map[string]any{
		"name":   opts.Name,
		"driver": opts.Driver,
	}
	if len(opts.Labels) > 0 {
		body["labels"] = opts.Labels
	}

	resp, err := c.endpointRequest(ctx, conn, "NetworkCreate", &Request{
		Method: MethodPost,
		Path:   "/networks/create",
		Body:   body,
	}, StatusIn(201))
	if err != nil {
		return "", err
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := decodeInto(resp.Body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// NetworkInspect returns detailed network information; its Containers
// field is the opaque container-id-keyed subtree C5 preserves verbatim.
func (c *Client) NetworkInspect(ctx context.Context, conn *Connection, id string) (*Network, error) {
	resp, err := c.endpointRequest(ctx, conn, "NetworkInspect", &Request{
		Method: MethodGet,
		Path:   "/networks/" + id,
	}, StatusIn(200))
	if err != nil {
		return nil, err
	}
	var n Network
	if err := decodeInto(resp.Body, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// NetworkRemove removes a network.
func (c *Client) NetworkRemove(ctx context.Context, conn *Connection, id string) error {
	_, err := c.endpointRequest(ctx, conn, "NetworkRemove", &Request{
		Method: MethodDelete,
		Path:   "/networks/" + id,
	}, StatusIn(204))
	return err
}

// NetworkConnect attaches containerID to a network.
func (c *Client) NetworkConnect(ctx context.Context, conn *Connection, networkID, containerID string) error {
	_, err := c.endpointRequest(ctx, conn, "NetworkConnect", &Request{
		Method: MethodPost,
		Path:   "/networks/" + networkID + "/connect",
		Body:   map[string]any{"container": containerID},
	}, StatusIn(200))
	return err
}

// NetworkDisconnect detaches containerID from a network.
func (c *Client) NetworkDisconnect(ctx context.Context, conn *Connection, networkID, containerID string, force bool) error {
	_, err := c.endpointRequest(ctx, conn, "NetworkDisconnect", &Request{
		Method: MethodPost,
		Path:   "/networks/" + networkID + "/disconnect",
		Body:   map[string]any{"container": containerID, "force": force},
	}, StatusIn(200))
	return err
}
