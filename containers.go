package dockhttp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"

	"github.com/docker/go-units"
	"github.com/pkg/errors"

	"github.com/asdine/dockhttp/internal/names"
)

// Container mirrors one entry of GET /containers/json.
type Container struct {
	ID     string            `json:"id"`
	Names  []string          `json:"names"`
	Image  string            `json:"image"`
	State  string            `json:"state"`
	Status string            `json:"status"`
	Labels map[string]string `json:"Labels"`
}

// ContainerDetail mirrors GET /containers/{id}/json.
type ContainerDetail struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State struct {
		Status  string `json:"status"`
		Running bool   `json:"running"`
		Pid     int    `json:"pid"`
	} `json:"state"`
}

// HostConfig is the subset of Docker's HostConfig this client exposes for
// container creation. Memory/MemorySwap accept human-readable strings
// ("512m", "2g") parsed with docker/go-units.
type HostConfig struct {
	Memory      string
	MemorySwap  string
	NetworkMode string
}

func (h HostConfig) toWire() (map[string]any, error) {
	out := map[string]any{}
	if h.Memory != "" {
		n, err := units.RAMInBytes(h.Memory)
		if err != nil {
			return nil, err
		}
		out["memory"] = n
	}
	if h.MemorySwap != "" {
		n, err := units.RAMInBytes(h.MemorySwap)
		if err != nil {
			return nil, err
		}
		out["memory-swap"] = n
	}
	if h.NetworkMode != "" {
		out["network-mode"] = h.NetworkMode
	}
	return out, nil
}

// ContainerCreateOptions configures POST /containers/create.
type ContainerCreateOptions struct {
	Name       string
	Image      string
	Cmd        []string
	Env        []string
	Labels     map[string]string
	HostConfig HostConfig
}

// ContainerCreate creates a container and returns its id.
func (c *Client) ContainerCreate(ctx context.Context, conn *Connection, opts ContainerCreateOptions) (string, error) {
	hostConfig, err := opts.HostConfig.toWire()
	if err != nil {
		return "", err
	}

	body := map[string]any{
		"image":       opts.Image,
		"cmd":         opts.Cmd,
		"env":         opts.Env,
		"labels":      opts.Labels,
		"host-config": hostConfig,
	}

	var q Query
	if opts.Name != "" {
		q.Add("name", opts.Name)
	}

	resp, err := c.endpointRequest(ctx, conn, "ContainerCreate", &Request{
		Method: MethodPost,
		Path:   "/containers/create",
		Query:  q,
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

// ContainerListOptions configures GET /containers/json.
type ContainerListOptions struct {
	All     bool
	Filters map[string][]string
}

// ContainerList lists containers known to the daemon.
func (c *Client) ContainerList(ctx context.Context, conn *Connection, opts ContainerListOptions) ([]Container, error) {
	var q Query
	if opts.All {
		q.Add("all", true)
	}
	if len(opts.Filters) > 0 {
		q.Add("filters", filtersToJSON(opts.Filters))
	}

	resp, err := c.endpointRequest(ctx, conn, "ContainerList", &Request{
		Method: MethodGet,
		Path:   "/containers/json",
		Query:  q,
	}, StatusIn(200))
	if err != nil {
		return nil, err
	}
	var containers []Container
	if err := decodeInto(resp.Body, &containers); err != nil {
		return nil, err
	}
	return containers, nil
}

// ContainerInspect returns detailed container information.
func (c *Client) ContainerInspect(ctx context.Context, conn *Connection, id string) (*ContainerDetail, error) {
	resp, err := c.endpointRequest(ctx, conn, "ContainerInspect", &Request{
		Method: MethodGet,
		Path:   "/containers/" + id + "/json",
	}, StatusIn(200))
	if err != nil {
		return nil, err
	}
	var d ContainerDetail
	if err := decodeInto(resp.Body, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// StartResult distinguishes an actual start from a no-op restart of an
// already-running container, mapped from the daemon's 204/304 pair.
type StartResult int

const (
	Started StartResult = iota
	AlreadyStarted
)

// ContainerStart starts a container.
func (c *Client) ContainerStart(ctx context.Context, conn *Connection, id string) (StartResult, error) {
	resp, err := c.endpointRequest(ctx, conn, "ContainerStart", &Request{
		Method: MethodPost,
		Path:   "/containers/" + id + "/start",
	}, StatusIn(204, 304))
	if err != nil {
		return 0, err
	}
	if resp.StatusCode == 304 {
		return AlreadyStarted, nil
	}
	return Started, nil
}

// ContainerStop stops a container, waiting up to timeoutSeconds (0 means
// the daemon's default) before sending SIGKILL.
func (c *Client) ContainerStop(ctx context.Context, conn *Connection, id string, timeoutSeconds int) error {
	var q Query
	if timeoutSeconds > 0 {
		q.Add("t", timeoutSeconds)
	}
	_, err := c.endpointRequest(ctx, conn, "ContainerStop", &Request{
		Method: MethodPost,
		Path:   "/containers/" + id + "/stop",
		Query:  q,
	}, StatusIn(204, 304))
	return err
}

// ContainerKill sends signal (default SIGKILL) to a container.
func (c *Client) ContainerKill(ctx context.Context, conn *Connection, id, signal string) error {
	var q Query
	if signal != "" {
		q.Add("signal", signal)
	}
	_, err := c.endpointRequest(ctx, conn, "ContainerKill", &Request{
		Method: MethodPost,
		Path:   "/containers/" + id + "/kill",
		Query:  q,
	}, StatusIn(204))
	return err
}

// ContainerRestart restarts a container.
func (c *Client) ContainerRestart(ctx context.Context, conn *Connection, id string, timeoutSeconds int) error {
	var q Query
	if timeoutSeconds > 0 {
		q.Add("t", timeoutSeconds)
	}
	_, err := c.endpointRequest(ctx, conn, "ContainerRestart", &Request{
		Method: MethodPost,
		Path:   "/containers/" + id + "/restart",
		Query:  q,
	}, StatusIn(204))
	return err
}

// ContainerWait blocks until a container stops and returns its exit code.
func (c *Client) ContainerWait(ctx context.Context, conn *Connection, id string) (int, error) {
	resp, err := c.endpointRequest(ctx, conn, "ContainerWait", &Request{
		Method: MethodPost,
		Path:   "/containers/" + id + "/wait",
	}, StatusIn(200))
	if err != nil {
		return 0, err
	}
	var out struct {
		StatusCode int `json:"status-code"`
	}
	if err := decodeInto(resp.Body, &out); err != nil {
		return 0, err
	}
	return out.StatusCode, nil
}

// ContainerRemoveOptions configures DELETE /containers/{id}.
type ContainerRemoveOptions struct {
	Force         bool
	RemoveVolumes bool
}

// ContainerRemove removes a container.
func (c *Client) ContainerRemove(ctx context.Context, conn *Connection, id string, opts ContainerRemoveOptions) error {
	var q Query
	if opts.Force {
		q.Add("force", true)
	}
	if opts.RemoveVolumes {
		q.Add("v", true)
	}
	_, err := c.endpointRequest(ctx, conn, "ContainerRemove", &Request{
		Method: MethodDelete,
		Path:   "/containers/" + id,
		Query:  q,
	}, StatusIn(204))
	return err
}

// ContainerPrune removes all stopped containers.
func (c *Client) ContainerPrune(ctx context.Context, conn *Connection) error {
	_, err := c.endpointRequest(ctx, conn, "ContainerPrune", &Request{
		Method: MethodPost,
		Path:   "/containers/prune",
	}, StatusIn(200))
	return err
}

// ContainerAttachOptions configures POST /containers/{id}/attach.
type ContainerAttachOptions struct {
	Stdin  bool
	Stdout bool
	Stderr StderrMode
	Stream bool
}

// ContainerAttach upgrades a fresh cloned connection into a StreamSession
// carrying the container's stdout/stderr and, if requested, stdin. The
// caller must eventually Close the returned session.
func (c *Client) ContainerAttach(ctx context.Context, conn *Connection, id string, opts ContainerAttachOptions) (*StreamSession, error) {
	upgradeConn, err := conn.Clone(ctx)
	if err != nil {
		return nil, err
	}

	q := Query{}
	q.Add("stream", opts.Stream)
	if opts.Stdin {
		q.Add("stdin", true)
	}
	if opts.Stdout {
		q.Add("stdout", true)
	}
	if opts.Stderr != StderrNone {
		q.Add("stderr", true)
	}

	session, err := Upgrade(ctx, c, upgradeConn, &Request{
		Method: MethodPost,
		Path:   "/containers/" + id + "/attach",
		Query:  q,
	}, UpgradeOptions{Stdin: opts.Stdin, Stdout: opts.Stdout, Stderr: opts.Stderr})
	if err != nil {
		_ = upgradeConn.Close()
		return nil, err
	}
	return session, nil
}

// ContainerArchive reads a tar archive of path from a container's
// filesystem (GET /containers/{id}/archive), along with the same path-stat
// metadata a HEAD request would return; the daemon sets the
// X-Docker-Container-Path-Stat header on both methods.
func (c *Client) ContainerArchive(ctx context.Context, conn *Connection, id, path string) (io.Reader, *PathStat, error) {
	resp, err := c.endpointRequest(ctx, conn, "ContainerArchive", &Request{
		Method: MethodGet,
		Path:   "/containers/" + id + "/archive",
		Query:  Query{{Key: "path", Value: path}},
	}, StatusIn(200))
	if err != nil {
		return nil, nil, err
	}
	stat, err := parsePathStatHeader(resp.Header)
	if err != nil {
		return nil, nil, err
	}
	raw, _ := resp.Body.([]byte)
	return bytes.NewReader(raw), stat, nil
}

// ContainerExtractToDir writes data as a tar archive into path inside a
// container's filesystem (PUT /containers/{id}/archive).
func (c *Client) ContainerExtractToDir(ctx context.Context, conn *Connection, id, path string, data io.Reader) error {
	_, err := c.endpointRequest(ctx, conn, "ContainerExtractToDir", &Request{
		Method: MethodPut,
		Path:   "/containers/" + id + "/archive",
		Query:  Query{{Key: "path", Value: path}},
		Body:   data,
	}, StatusIn(200))
	return err
}

// PathStat mirrors the X-Docker-Container-Path-Stat header Docker returns
// from a HEAD archive-info request.
type PathStat struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Mode uint32 `json:"mode"`
}

// ContainerStatPath returns metadata about path inside a container's
// filesystem without reading its contents (HEAD /containers/{id}/archive).
// A HEAD response carries no body; the stat itself travels in the
// X-Docker-Container-Path-Stat header as base64-encoded JSON.
func (c *Client) ContainerStatPath(ctx context.Context, conn *Connection, id, path string) (*PathStat, error) {
	resp, err := c.endpointRequest(ctx, conn, "ContainerStatPath", &Request{
		Method: MethodHead,
		Path:   "/containers/" + id + "/archive",
		Query:  Query{{Key: "path", Value: path}},
	}, StatusIn(200))
	if err != nil {
		return nil, err
	}
	return parsePathStatHeader(resp.Header)
}

// parsePathStatHeader decodes the X-Docker-Container-Path-Stat header both
// ContainerStatPath and ContainerArchive rely on: base64-encoded JSON in
// Docker's CamelCase wire style, run through the same name transform as any
// other response body.
func parsePathStatHeader(hdr Header) (*PathStat, error) {
	encoded := hdr.Get("x-docker-container-path-stat")
	if encoded == "" {
		return nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Wrap(err, "dockhttp: decoding path-stat header")
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.Wrap(err, "dockhttp: parsing path-stat header")
	}
	var stat PathStat
	if err := decodeInto(names.FromDocker(v), &stat); err != nil {
		return nil, err
	}
	return &stat, nil
}

// ContainerChange is one entry of GET /containers/{id}/changes.
type ContainerChange struct {
	Path string `json:"path"`
	Kind int    `json:"kind"`
}

// ContainerChanges lists filesystem changes since the container's image.
func (c *Client) ContainerChanges(ctx context.Context, conn *Connection, id string) ([]ContainerChange, error) {
	resp, err := c.endpointRequest(ctx, conn, "ContainerChanges", &Request{
		Method: MethodGet,
		Path:   "/containers/" + id + "/changes",
	}, StatusIn(200))
	if err != nil {
		return nil, err
	}
	var changes []ContainerChange
	if err := decodeInto(resp.Body, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}
