// Package storage deletes client images kept in Supabase Storage.
package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"time-report-go/internal/resilience"
	"time-report-go/pkg/logger"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const serviceName = "storage"

var (
	ErrInvalidURL    = errors.New("url does not point into the storage bucket")
	ErrNotConfigured = errors.New("storage not configured")
)

var tracer = otel.Tracer("storage")

type Config struct {
	BaseURL    string
	ServiceKey string
	Bucket     string
	Resilience resilience.Config
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	serviceKey string
	bucket     string
	cfg        resilience.Config
	cb         *gobreaker.CircuitBreaker
	log        logger.Logger
}

func NewClient(httpClient *http.Client, cfg Config, log logger.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = logger.Nop()
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey: cfg.ServiceKey,
		bucket:     cfg.Bucket,
		cfg:        cfg.Resilience,
		log:        log,
	}
	c.cb = resilience.NewCircuitBreaker(serviceName, func(name string, from, to gobreaker.State) {
		c.log.Warn("storage.breaker: state changed", "name", name, "from", from.String(), "to", to.String())
	})
	return c
}

// KeyFromURL extracts the object key from a public object URL of the form
// {base}/storage/v1/object/public/{bucket}/{key}.
func (c *Client) KeyFromURL(rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Path == "" {
		return "", ErrInvalidURL
	}

	base, err := url.Parse(c.baseURL)
	if err != nil || !strings.EqualFold(parsed.Host, base.Host) {
		return "", ErrInvalidURL
	}

	prefix := "/storage/v1/object/public/" + c.bucket + "/"
	if !strings.HasPrefix(parsed.Path, prefix) {
		return "", ErrInvalidURL
	}

	key := strings.TrimPrefix(parsed.Path, prefix)
	if key == "" || strings.Contains(key, "..") {
		return "", ErrInvalidURL
	}
	return key, nil
}

// Delete removes one object. A missing object counts as deleted.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c.baseURL == "" || c.serviceKey == "" || c.bucket == "" {
		return ErrNotConfigured
	}

	ctx, span := tracer.Start(ctx, "storage.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("storage.key", key))

	endpoint := c.baseURL + "/storage/v1/object/" + url.PathEscape(c.bucket) + "/" + escapeKey(key)

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
			if err != nil {
				return resilience.Permanent(err)
			}
			req.Header.Set("Authorization", "Bearer "+c.serviceKey)
			req.Header.Set("apikey", c.serviceKey)

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusNotFound:
				c.log.Debug("storage.delete: object already gone", "key", key)
				return nil
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return nil
			}

			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			statusErr := &resilience.StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
			if !statusErr.Retryable() {
				return resilience.Permanent(statusErr)
			}
			return statusErr
		})
	})
	if err != nil {
		span.RecordError(err)
		return &resilience.ExternalServiceError{Service: serviceName, Err: err}
	}
	return nil
}

// DeleteByURL deletes the object behind a public URL. URLs outside the
// bucket hold nothing of ours and are left alone.
func (c *Client) DeleteByURL(ctx context.Context, rawURL string) error {
	key, err := c.KeyFromURL(rawURL)
	if errors.Is(err, ErrInvalidURL) {
		c.log.Debug("storage.delete: url outside bucket, nothing to delete", "url", rawURL)
		return nil
	}
	if err != nil {
		return err
	}
	return c.Delete(ctx, key)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
