package dockhttp

import "context"

// SystemInfo mirrors the subset of Docker's /info response this client
// surfaces.
type SystemInfo struct {
	ID                string `json:"id"`
	Containers        int    `json:"containers"`
	ContainersRunning int    `json:"containers-running"`
	Images            int    `json:"images"`
	ServerVersion     string `json:"server-version"`
	OperatingSystem   string `json:"operating-system"`
	Architecture      string `json:"architecture"`
}

// VersionInfo mirrors Docker's /version response.
type VersionInfo struct {
	Version       string `json:"version"`
	APIVersion    string `json:"api-version"`
	MinAPIVersion string `json:"min-api-version"`
	GitCommit     string `json:"git-commit"`
	GoVersion     string `json:"go-version"`
	Os            string `json:"os"`
	Arch          string `json:"arch"`
}

// Info returns daemon-wide system information (GET /info).
func (c *Client) Info(ctx context.Context, conn *Connection) (*SystemInfo, error) {
	resp, err := c.endpointRequest(ctx, conn, "Info", &Request{
		Method: MethodGet,
		Path:   "/info",
	}, StatusIn(200))
	if err != nil {
		return nil, err
	}
	var info SystemInfo
	if err := decodeInto(resp.Body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Version returns the daemon's version metadata (GET /version).
func (c *Client) Version(ctx context.Context, conn *Connection) (*VersionInfo, error) {
	resp, err := c.endpointRequest(ctx, conn, "Version", &Request{
		Method: MethodGet,
		Path:   "/version",
	}, StatusIn(200))
	if err != nil {
		return nil, err
	}
	var v VersionInfo
	if err := decodeInto(resp.Body, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
