package registry

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/iotedge-devcomp/internal/config"
	apperrors "github.com/jrsteele09/iotedge-devcomp/internal/errors"
)

const (
	moduleName    = "iotedge-devcomp/registry"
	moduleVersion = "v1.0.0"

	requestIDHeader = "x-ms-client-request-id"
)

var _ Registry = (*Client)(nil)

// Client calls the IoT hub registry REST API with a shared-access signature.
type Client struct {
	endpoint   string
	apiVersion string
	pageSize   int
	pipeline   runtime.Pipeline
	hostName   string
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*clientOptions)

type clientOptions struct {
	endpoint  string
	transport policy.Transporter
	nowTime   func() time.Time
}

// WithEndpoint sends requests to endpoint instead of https://<HostName>. The
// signature still covers HostName.
func WithEndpoint(endpoint string) ClientOption {
	return func(o *clientOptions) {
		o.endpoint = endpoint
	}
}

// WithTransport replaces the HTTP transport.
func WithTransport(transport policy.Transporter) ClientOption {
	return func(o *clientOptions) {
		o.transport = transport
	}
}

// WithNowTime sets the clock used for signature expiry (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ClientOption {
	return func(o *clientOptions) {
		o.nowTime = nowFunc
	}
}

// NewClient creates a registry client for the hub in cs.
func NewClient(cs ConnectionString, cfg config.RegistryConfig, options ...ClientOption) (*Client, error) {
	if err := cs.Validate(); err != nil {
		return nil, err
	}

	opts := clientOptions{
		endpoint: "https://" + cs.HostName,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(&opts)
	}

	// Fail now rather than on the first request.
	if _, err := SharedAccessSignature(cs.HostName, cs.SharedAccessKeyName, cs.SharedAccessKey, opts.nowTime()); err != nil {
		return nil, err
	}

	sas := &sasPolicy{
		resource: cs.HostName,
		keyName:  cs.SharedAccessKeyName,
		key:      cs.SharedAccessKey,
		ttl:      cfg.GetSASTokenTTL(),
		nowTime:  opts.nowTime,
	}

	clientOpts := &policy.ClientOptions{
		Retry:     policy.RetryOptions{MaxRetries: -1},
		Transport: opts.transport,
	}

	return &Client{
		endpoint:   opts.endpoint,
		apiVersion: cfg.GetRegistryAPIVersion(),
		pageSize:   cfg.GetRegistryPageSize(),
		hostName:   cs.HostName,
		pipeline: runtime.NewPipeline(moduleName, moduleVersion, runtime.PipelineOptions{
			PerCall: []policy.Policy{sas},
		}, clientOpts),
	}, nil
}

// NewFactory returns a Factory producing Clients configured by cfg.
func NewFactory(cfg config.RegistryConfig, options ...ClientOption) Factory {
	return func(cs ConnectionString) (Registry, error) {
		return NewClient(cs, cfg, options...)
	}
}

// ListDeviceIDs returns the ids of up to the configured page size of devices
// in registry order.
func (c *Client) ListDeviceIDs(ctx context.Context) ([]string, error) {
	query := url.Values{}
	query.Set("top", strconv.Itoa(c.pageSize))

	resp, err := c.get(ctx, runtime.JoinPaths(c.endpoint, "devices"), query)
	if err != nil {
		return nil, errors.Wrapf(err, "[registry ListDeviceIDs] %s", c.hostName)
	}

	var devices []Device
	if err := runtime.UnmarshalAsJSON(resp, &devices); err != nil {
		return nil, errors.Wrap(err, "[registry ListDeviceIDs] decode")
	}

	ids := make([]string, 0, len(devices))
	for _, d := range devices {
		ids = append(ids, d.DeviceID)
	}
	log.Debug().Str("hub", c.hostName).Int("count", len(ids)).Msg("listed devices")
	return ids, nil
}

// GetDevice fetches one device identity. An unknown id wraps ErrNotFound.
func (c *Client) GetDevice(ctx context.Context, deviceID string) (*Device, error) {
	if deviceID == "" {
		return nil, errors.New("[registry GetDevice] device id is required")
	}

	resp, err := c.get(ctx, runtime.JoinPaths(c.endpoint, "devices", url.PathEscape(deviceID)), url.Values{})
	if err != nil {
		return nil, errors.Wrapf(err, "[registry GetDevice] %s", deviceID)
	}

	var device Device
	if err := runtime.UnmarshalAsJSON(resp, &device); err != nil {
		return nil, errors.Wrap(err, "[registry GetDevice] decode")
	}
	return &device, nil
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values) (*http.Response, error) {
	req, err := runtime.NewRequest(ctx, http.MethodGet, endpoint)
	if err != nil {
		return nil, err
	}
	query.Set("api-version", c.apiVersion)
	req.Raw().URL.RawQuery = query.Encode()
	req.Raw().Header.Set("Accept", "application/json")

	resp, err := c.pipeline.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrNotFound, runtime.NewResponseError(resp))
	}
	if !runtime.HasStatusCode(resp, http.StatusOK) {
		return nil, runtime.NewResponseError(resp)
	}
	return resp, nil
}

// sasPolicy signs each request and tags it with a client request id.
type sasPolicy struct {
	resource string
	keyName  string
	key      string
	ttl      time.Duration
	nowTime  func() time.Time
}

func (p *sasPolicy) Do(req *policy.Request) (*http.Response, error) {
	token, err := SharedAccessSignature(p.resource, p.keyName, p.key, p.nowTime().Add(p.ttl))
	if err != nil {
		return nil, err
	}
	req.Raw().Header.Set("Authorization", token)
	if req.Raw().Header.Get(requestIDHeader) == "" {
		req.Raw().Header.Set(requestIDHeader, uuid.NewString())
	}
	return req.Next()
}
