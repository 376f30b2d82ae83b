package dockhttp

import "context"

// ExecCreateOptions configures POST /containers/{id}/exec.
type ExecCreateOptions struct {
	Cmd          []string
	Env          []string
	AttachStdin  bool
	AttachStdout bool
	AttachStderr bool
	Tty          bool
}

// ExecCreate registers a new exec instance against a running container and
// returns its id. The instance does not start running until ExecStart is
// called.
func (c *Client) ExecCreate(ctx context.Context, conn *Connection, containerID string, opts ExecCreateOptions) (string, error) {
	body := map[string]any{
		"cmd":           opts.Cmd,
		"env":           opts.Env,
		"attach-stdin":  opts.AttachStdin,
		"attach-stdout": opts.AttachStdout,
		"attach-stderr": opts.AttachStderr,
		"tty":           opts.Tty,
	}

	resp, err := c.endpointRequest(ctx, conn, "ExecCreate", &Request{
		Method: MethodPost,
		Path:   "/containers/" + containerID + "/exec",
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

// ExecDetail mirrors GET /exec/{id}/json.
type ExecDetail struct {
	ID       string `json:"id"`
	Running  bool   `json:"running"`
	ExitCode int    `json:"exit-code"`
}

// ExecInspect returns an exec instance's current state.
func (c *Client) ExecInspect(ctx context.Context, conn *Connection, id string) (*ExecDetail, error) {
	resp, err := c.endpointRequest(ctx, conn, "ExecInspect", &Request{
		Method: MethodGet,
		Path:   "/exec/" + id + "/json",
	}, StatusIn(200))
	if err != nil {
		return nil, err
	}
	var d ExecDetail
	if err := decodeInto(resp.Body, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ExecStartOptions configures POST /exec/{id}/start.
type ExecStartOptions struct {
	Tty    bool
	Stderr StderrMode
}

// ExecStart starts a previously-created exec instance, cloning conn and
// upgrading the clone into a StreamSession carrying its output (and stdin,
// if the instance was created with AttachStdin); conn itself stays usable,
// same as with ContainerAttach. The caller must eventually Close the
// returned session.
func (c *Client) ExecStart(ctx context.Context, conn *Connection, id string, opts ExecStartOptions) (*StreamSession, error) {
	upgradeConn, err := conn.Clone(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"detach": false,
		"tty":    opts.Tty,
	}

	session, err := Upgrade(ctx, c, upgradeConn, &Request{
		Method: MethodPost,
		Path:   "/exec/" + id + "/start",
		Body:   body,
	}, UpgradeOptions{Stdin: true, Stdout: true, Stderr: opts.Stderr})
	if err != nil {
		_ = upgradeConn.Close()
		return nil, err
	}
	return session, nil
}

// ExecStartDetached starts an exec instance in detached mode: the daemon
// runs it to completion without ever upgrading the connection, so this
// call returns as soon as the plain JSON response arrives, unlike
// ExecStart's protocol upgrade.
func (c *Client) ExecStartDetached(ctx context.Context, conn *Connection, id string) error {
	body := map[string]any{
		"detach": true,
	}
	_, err := c.endpointRequest(ctx, conn, "ExecStartDetached", &Request{
		Method: MethodPost,
		Path:   "/exec/" + id + "/start",
		Body:   body,
	}, StatusIn(200))
	return err
}
