package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chhengkhim/Junior-project-sub002/pkg/metrics"

	"github.com/pkg/errors"
)

// Inbound 浏览器发来的请求中代理关心的部分
type Inbound struct {
	Method        string
	SubPath       string // 通配符之后的路径，不含前导斜杠
	RawQuery      string
	ContentType   string
	Authorization string
	ContentLength int64
	Body          io.Reader
}

// Outbound 回传给浏览器的响应
type Outbound struct {
	Status int
	Body   []byte // 总是合法 JSON
	Raw    bool   // 上游响应不是 JSON，已包装为 {"raw": ...}
}

// ProxyService 把请求转发到后端 API
type ProxyService interface {
	Forward(ctx context.Context, in Inbound) (*Outbound, error)
}

type proxyService struct {
	baseURL string
	client  *http.Client
	metrics *metrics.MetricsCollector
}

// NewProxyService baseURL 为后端 API 根地址，例如 https://api.mindspeak.xyz/api
func NewProxyService(baseURL string, client *http.Client, mc *metrics.MetricsCollector) ProxyService {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &proxyService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		metrics: mc,
	}
}

// IsMultipart 判断是否为 multipart 表单
func IsMultipart(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "multipart/form-data")
}

// HasBody 只有 POST/PUT/PATCH 转发请求体
func HasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// UpstreamURL 拼接上游地址，每个路径段单独转义
func (s *proxyService) UpstreamURL(subPath, rawQuery string) string {
	segments := strings.Split(strings.Trim(subPath, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	u := s.baseURL + "/" + strings.Join(segments, "/")
	if rawQuery != "" {
		u += "?" + rawQuery
	}
	return u
}

func (s *proxyService) Forward(ctx context.Context, in Inbound) (*Outbound, error) {
	req, err := s.buildRequest(ctx, in)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordUpstreamError(in.Method)
		}
		return nil, errors.Wrapf(err, "forward %s %s", in.Method, in.SubPath)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordUpstreamError(in.Method)
		}
		return nil, errors.Wrap(err, "read upstream body")
	}
	if s.metrics != nil {
		s.metrics.RecordUpstream(in.Method, resp.StatusCode, time.Since(start))
	}

	out := &Outbound{Status: resp.StatusCode}
	if trimmed := bytes.TrimSpace(text); len(trimmed) > 0 && json.Valid(trimmed) {
		out.Body = trimmed
		return out, nil
	}

	wrapped, err := json.Marshal(map[string]string{"raw": string(text)})
	if err != nil {
		return nil, errors.Wrap(err, "wrap raw upstream body")
	}
	if s.metrics != nil {
		s.metrics.RecordNonJSON()
	}
	out.Body = wrapped
	out.Raw = true
	return out, nil
}

func (s *proxyService) buildRequest(ctx context.Context, in Inbound) (*http.Request, error) {
	var (
		body          io.Reader
		contentType   string
		contentLength int64 = -1
	)

	if HasBody(in.Method) {
		if IsMultipart(in.ContentType) {
			// 原样转发，保留 boundary
			body = in.Body
			contentType = in.ContentType
			contentLength = in.ContentLength
		} else {
			payload, err := reencodeJSON(in.Body)
			if err != nil {
				return nil, err
			}
			body = bytes.NewReader(payload)
			contentType = "application/json"
			contentLength = int64(len(payload))
		}
	}

	req, err := http.NewRequestWithContext(ctx, in.Method, s.UpstreamURL(in.SubPath, in.RawQuery), body)
	if err != nil {
		return nil, errors.Wrap(err, "build upstream request")
	}
	if body != nil && contentLength >= 0 {
		req.ContentLength = contentLength
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if in.Authorization != "" {
		req.Header.Set("Authorization", in.Authorization)
	}
	return req, nil
}

// reencodeJSON 解析失败（含空请求体）时返回 {}
func reencodeJSON(r io.Reader) ([]byte, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read inbound body")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil || buf.Len() == 0 {
		return []byte("{}"), nil
	}
	return buf.Bytes(), nil
}
