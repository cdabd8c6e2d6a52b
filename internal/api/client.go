package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"flight_booker/internal/metrics"

	"github.com/sirupsen/logrus"
)

// DefaultPageSize - размер страницы списка бронирований по умолчанию.
const DefaultPageSize = 5

// maxErrorBody ограничивает тело ответа, которое сохраняем для диагностики.
const maxErrorBody = 4 << 10

// Client ходит в удалённый API бронирований. Никаких ретраев и собственных таймаутов:
// отмена и дедлайны задаются через ctx вызывающей стороной.
type Client struct {
	baseURL   *url.URL
	authToken string
	http      *http.Client
	logger    logrus.FieldLogger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(baseURL, authToken string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:   u,
		authToken: authToken,
		http:      &http.Client{},
		logger:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// endpoint собирает URL и всегда добавляет authToken в query.
func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = u.Path + path
	if query == nil {
		query = url.Values{}
	}
	query.Set("authToken", c.authToken)
	u.RawQuery = query.Encode()
	return u.String()
}

// do выполняет запрос и возвращает тело успешного ответа.
// Любая ошибка транспорта или не-2xx статус превращается в *RemoteFailure.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, 0, &RemoteFailure{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return nil, 0, &RemoteFailure{Op: op, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveRemoteCall(op, 0, time.Since(start))
		return nil, 0, &RemoteFailure{Op: op, Err: err}
	}
	defer resp.Body.Close()

	metrics.ObserveRemoteCall(op, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		rf := &RemoteFailure{
			Op:     op,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(raw)),
			Err:    fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
		c.logger.WithFields(logrus.Fields{
			"op":     op,
			"status": resp.StatusCode,
		}).Debug("remote call failed")
		return nil, resp.StatusCode, rf
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &RemoteFailure{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	return b, resp.StatusCode, nil
}
