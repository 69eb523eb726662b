package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// Endpoint 路径，均相对于 BaseURL。
const (
	SegmentsPath = "/segments"
	AthletesPath = "/athletes"
	StarredPath  = "/segments/starred"
)

// maxBodyBytes 限制单次响应读取上限，starred 列表也远小于该值。
const maxBodyBytes = 8 << 20

// SegmentPath 返回单个分段的请求路径。
func SegmentPath(segmentID string) string {
	return SegmentsPath + "/" + segmentID
}

// AthleteStarredPath 返回指定运动员收藏分段的请求路径。
func AthleteStarredPath(athleteID string) string {
	return AthletesPath + "/" + athleteID + StarredPath
}

// Client 负责构造带 access_token 的 URL、执行 GET 并解码 JSON。
type Client struct {
	http    *http.Client
	baseURL *url.URL
}

// NewClient 基于共享 http.Client 与 API 根地址构造客户端。
func NewClient(httpClient *http.Client, baseURL string) (*Client, error) {
	if httpClient == nil {
		return nil, errors.New("http client is required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid base url: %s", baseURL)
	}
	return &Client{http: httpClient, baseURL: parsed}, nil
}

// URL 拼接 endpoint 路径与 access_token 查询参数。
func (c *Client) URL(endpoint, token string) string {
	u := *c.baseURL
	u.Path = path.Join(c.baseURL.Path, endpoint)
	u.RawPath = ""
	q := url.Values{}
	q.Set("access_token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// GetJSON 执行一次 GET 并将响应体解码到 out。失败时返回 *Error。
func (c *Client) GetJSON(ctx context.Context, endpoint, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(endpoint, token), nil)
	if err != nil {
		return &Error{Kind: KindTransport, Op: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Op: endpoint, Err: redactToken(err)}
	}
	defer resp.Body.Close()

	if kind, failed := classifyStatus(resp.StatusCode); failed {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &Error{Kind: kind, Op: endpoint, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &Error{Kind: KindTransport, Op: endpoint, Status: resp.StatusCode, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: KindMalformed, Op: endpoint, Status: resp.StatusCode, Err: err}
	}
	return nil
}

func classifyStatus(status int) (Kind, bool) {
	switch {
	case status >= 200 && status < 300:
		return "", false
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized, true
	case status == http.StatusNotFound:
		return KindNotFound, true
	default:
		return KindStatus, true
	}
}

// redactToken 去掉 *url.Error 中携带的完整 URL，避免令牌进入日志。
func redactToken(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
