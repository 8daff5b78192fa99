package http

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2024/11/6 20:39
 * @file: http_client.go
 * @description: http client
 */

// Client calls a qaboard server and unwraps the unified response.
type Client struct {
	c *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	return &Client{c: c}
}

// Get fetches path and decodes the detail field into out.
func (cl *Client) Get(ctx context.Context, path string, out any) error {
	return cl.do(ctx, "GET", path, nil, out)
}

// Post sends body to path and decodes the detail field into out.
func (cl *Client) Post(ctx context.Context, path string, body, out any) error {
	return cl.do(ctx, "POST", path, body, out)
}

func (cl *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rep struct {
		Code   int             `json:"code"`
		Msg    string          `json:"msg"`
		Detail json.RawMessage `json:"detail"`
	}

	req := cl.c.R().SetContext(ctx).SetResult(&rep).SetError(&rep)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() || rep.Code != Success.Code {
		return fmt.Errorf("%s %s: status %d, code %d: %s", method, path, resp.StatusCode(), rep.Code, rep.Msg)
	}
	if out == nil || len(rep.Detail) == 0 {
		return nil
	}
	return sonic.Unmarshal(rep.Detail, out)
}
