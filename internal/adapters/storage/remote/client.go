package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hylla/taskboard/internal/app"
)

// maxResponseBytes caps how much of a response body is decoded.
const maxResponseBytes = 8 << 20

// client speaks the record service's table API for one project.
type client struct {
	cfg  Config
	http *http.Client
}

func (c *client) tablePath(table string, rest ...string) string {
	parts := append([]string{"v1", "projects", url.PathEscape(c.cfg.ProjectID), "tables", url.PathEscape(table), "records"}, rest...)
	return c.cfg.Endpoint + "/" + strings.Join(parts, "/")
}

func (c *client) fetch(ctx context.Context, table string, q queryRequest) ([]json.RawMessage, error) {
	resp, err := c.do(ctx, http.MethodPost, c.tablePath(table, "query"), q)
	if err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		return nil, err
	}
	if !hasData(resp.Data) {
		return nil, nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(resp.Data, &rows); err != nil {
		return nil, fmt.Errorf("decode %s records: %w", table, err)
	}
	return rows, nil
}

func (c *client) fetchOne(ctx context.Context, table string, id int64, q queryRequest) (json.RawMessage, error) {
	resp, err := c.do(ctx, http.MethodPost, c.tablePath(table, fmt.Sprint(id), "query"), q)
	if err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		return nil, err
	}
	if !hasData(resp.Data) {
		return nil, app.ErrNotFound
	}
	return resp.Data, nil
}

func (c *client) mutate(ctx context.Context, method, table string, body any) (recordResult, error) {
	resp, err := c.do(ctx, method, c.tablePath(table), body)
	if err != nil {
		return recordResult{}, err
	}
	return resp.firstResult()
}

// do sends one JSON request and decodes the envelope. Non-2xx answers that
// still carry an envelope are returned as that envelope's failure, except 404
// which always reports app.ErrNotFound.
func (c *client) do(ctx context.Context, method, target string, body any) (response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return response{}, fmt.Errorf("encode remote request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
	if err != nil {
		return response{}, fmt.Errorf("build remote request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.PublicKey)

	res, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return response{}, ctxErr
		}
		return response{}, errors.Join(app.ErrBackendUnavailable, fmt.Errorf("%s %s: %w", method, target, err))
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return response{}, fmt.Errorf("read remote response: %w", err)
	}
	var out response
	decodeErr := json.Unmarshal(raw, &out)
	if res.StatusCode == http.StatusNotFound {
		if msg := strings.TrimSpace(out.Message); decodeErr == nil && msg != "" {
			return response{}, errors.Join(app.ErrNotFound, fmt.Errorf("%s %s: %s", method, target, msg))
		}
		return response{}, app.ErrNotFound
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		if decodeErr == nil && !out.Success && strings.TrimSpace(out.Message) != "" {
			return out, nil
		}
		if res.StatusCode >= http.StatusInternalServerError {
			return response{}, errors.Join(app.ErrBackendUnavailable, fmt.Errorf("%s %s: %s", method, target, res.Status))
		}
		return response{}, fmt.Errorf("%s %s: %s", method, target, res.Status)
	}
	if decodeErr != nil {
		return response{}, fmt.Errorf("decode remote response: %w", decodeErr)
	}
	return out, nil
}
