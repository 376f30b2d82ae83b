package dockhttp

import "context"

// Image mirrors one entry of GET /images/json.
type Image struct {
	ID          string            `json:"id"`
	RepoTags    []string          `json:"repo-tags"`
	RepoDigests []string          `json:"repo-digests"`
	Size        int64             `json:"size"`
	Labels      map[string]string `json:"labels"`
}

// ImageDetail mirrors GET /images/{id}/json.
type ImageDetail struct {
	ID     string `json:"id"`
	Parent string `json:"parent"`
	Size   int64  `json:"size"`
}

// PullEvent is one JSON object from the image-pull streaming body, a
// sequence of concatenated JSON values rather than a single JSON document.
type PullEvent struct {
	Status         string         `json:"status"`
	ID             string         `json:"id"`
	ProgressDetail map[string]any `json:"progress-detail"`
}

// ImageListOptions configures GET /images/json.
type ImageListOptions struct {
	All     bool
	Filters map[string][]string
}

// ImageList lists images known to the daemon.
func (c *Client) ImageList(ctx context.Context, conn *Connection, opts ImageListOptions) ([]Image, error) {
	var q Query
	if opts.All {
		q.Add("all", true)
	}
	if len(opts.Filters) > 0 {
		q.Add("filters", filtersToJSON(opts.Filters))
	}

	resp, err := c.endpointRequest(ctx, conn, "ImageList", &Request{
		Method: MethodGet,
		Path:   "/images/json",
		Query:  q,
	}, StatusIn(200))
	if err != nil {
		return nil, err
	}
	var images []Image
	if err := decodeInto(resp.Body, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// ImageInspect returns detailed information about one image.
func (c *Client) ImageInspect(ctx context.Context, conn *Connection, id string) (*ImageDetail, error) {
	resp, err := c.endpointRequest(ctx, conn, "ImageInspect", &Request{
		Method: MethodGet,
		Path:   "/images/" + id + "/json",
	}, StatusIn(200))
	if err != nil {
		return nil, err
	}
	var detail ImageDetail
	if err := decodeInto(resp.Body, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ImageRemoveOptions configures DELETE /images/{id}.
type ImageRemoveOptions struct {
	Force   bool
	NoPrune bool
}

// ImageRemove removes an image.
func (c *Client) ImageRemove(ctx context.Context, conn *Connection, id string, opts ImageRemoveOptions) error {
	var q Query
	if opts.Force {
		q.Add("force", true)
	}
	if opts.NoPrune {
		q.Add("noprune", true)
	}
	_, err := c.endpointRequest(ctx, conn, "ImageRemove", &Request{
		Method: MethodDelete,
		Path:   "/images/" + id,
		Query:  q,
	}, StatusIn(200))
	return err
}

// ImagePullOptions configures POST /images/create.
type ImagePullOptions struct {
	Tag string
}

// ImagePull pulls ref from its registry, reading the entire concatenated-
// JSON event sequence before returning. The client never partially drains
// this body: an incomplete read would cancel the pull server-side, so the
// sequence is decoded to completion by internal/wire.ReadResponse before
// ImagePull returns at all.
func (c *Client) ImagePull(ctx context.Context, conn *Connection, ref string, opts ImagePullOptions) ([]PullEvent, error) {
	q := Query{{Key: "fromImage", Value: ref}}
	if opts.Tag != "" {
		q.Add("tag", opts.Tag)
	}

	resp, err := c.endpointRequest(ctx, conn, "ImagePull", &Request{
		Method:        MethodPost,
		Path:          "/images/create",
		Query:         q,
		ExpectJSONSeq: true,
	}, StatusIn(200))
	if err != nil {
		return nil, err
	}

	events, _ := resp.Body.([]any)
	out := make([]PullEvent, 0, len(events))
	for _, e := range events {
		var pe PullEvent
		if err := decodeInto(e, &pe); err != nil {
			return nil, err
		}
		out = append(out, pe)
	}
	return out, nil
}
