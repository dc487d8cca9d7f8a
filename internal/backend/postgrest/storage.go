package postgrest

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"novelhub/internal/backend"
)

func objectPath(bucket, name string) string {
	return storagePrefix + "/object/" + url.PathEscape(bucket) + "/" + url.PathEscape(name)
}

func (c *Client) Upload(ctx context.Context, bucket, name string, body io.Reader, opts backend.UploadOptions) error {
	header := http.Header{}
	if opts.ContentType != "" {
		header.Set("Content-Type", opts.ContentType)
	}
	if opts.CacheControl != "" {
		header.Set("Cache-Control", "max-age="+opts.CacheControl)
	}
	header.Set("x-upsert", strconv.FormatBool(opts.Upsert))

	resp, err := c.do(ctx, request{
		operation: "storage:upload:" + bucket,
		method:    http.MethodPost,
		path:      objectPath(bucket, name),
		header:    header,
		body:      body,
	})
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil)
}

// PublicURL is computed locally; public buckets serve objects under
// /object/public without a token.
func (c *Client) PublicURL(bucket, name string) string {
	return c.baseURL + storagePrefix + "/object/public/" + url.PathEscape(bucket) + "/" + url.PathEscape(name)
}

func (c *Client) Remove(ctx context.Context, bucket string, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	body, err := jsonBody(map[string][]string{"prefixes": names})
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, request{
		operation: "storage:remove:" + bucket,
		method:    http.MethodDelete,
		path:      storagePrefix + "/object/" + url.PathEscape(bucket),
		body:      body,
	})
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil)
}
