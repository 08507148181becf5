// Package caclient implements sslboot.CaClient over net/http. The state
// machine is the sole authority over whether a given request verifies the
// peer; this package only carries out that decision.
package caclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/hashicorp/go-hclog"
)

// Client is a CaClient backed by net/http. The CaClient interface's
// verifyPeer argument carries no certificate material, so Client is handed
// a TrustedCAs func at construction time and calls it fresh on every
// request where verifyPeer is true; the state machine remains the sole
// authority over whether a request is verified at all.
type Client struct {
	BaseURL    string
	Logger     hclog.Logger
	Timeout    time.Duration
	MaxRetries uint64

	// TrustedCAs returns the current CA pool to verify against. Called
	// only when a request has verify_peer = true.
	TrustedCAs func() (*x509.CertPool, error)
}

// New constructs a Client targeting baseURL (the CA service's base URL,
// e.g. "https://ca.example.com:8140"). trustedCAs is consulted for every
// request with verify_peer = true.
func New(baseURL string, logger hclog.Logger, trustedCAs func() (*x509.CertPool, error)) *Client {
	return &Client{
		BaseURL:    baseURL,
		Logger:     logger,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		TrustedCAs: trustedCAs,
	}
}

func (c *Client) GetCACertificates(ctx context.Context, verifyPeer bool) (int, []byte, error) {
	return c.do(ctx, http.MethodGet, "/puppet-ca/v1/certificate/ca", nil, verifyPeer)
}

func (c *Client) GetCRLs(ctx context.Context, verifyPeer bool) (int, []byte, error) {
	return c.do(ctx, http.MethodGet, "/puppet-ca/v1/certificate_revocation_list/ca", nil, verifyPeer)
}

func (c *Client) PutCSR(ctx context.Context, certname string, der []byte, verifyPeer bool) (int, []byte, error) {
	path := fmt.Sprintf("/puppet-ca/v1/certificate_request/%s", certname)
	return c.do(ctx, http.MethodPut, path, der, verifyPeer)
}

func (c *Client) GetClientCertificate(ctx context.Context, certname string, verifyPeer bool) (int, []byte, error) {
	path := fmt.Sprintf("/puppet-ca/v1/certificate/%s", certname)
	return c.do(ctx, http.MethodGet, path, nil, verifyPeer)
}

// do issues a single request, retrying only transport-level failures
// (connection refused, timeout, DNS) with a bounded constant backoff. A
// response that was actually received, even a non-2xx one, is handed
// back to the caller immediately -- classifying that status is the
// state machine's job, not this client's.
func (c *Client) do(ctx context.Context, method, path string, body []byte, verifyPeer bool) (int, []byte, error) {
	var pool *x509.CertPool
	if verifyPeer {
		var err error
		pool, err = c.TrustedCAs()
		if err != nil {
			return 0, nil, fmt.Errorf("loading trusted CA pool: %w", err)
		}
	}
	httpClient := c.httpClient(verifyPeer, pool)

	var status int
	var respBody []byte

	operation := func() error {
		req, err := newRequest(ctx, method, c.BaseURL+path, body)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			c.Logger.Warn("CA request failed, will retry", "method", method, "path", path, "error", err)
			return err
		}
		defer resp.Body.Close()

		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("reading response body: %w", err))
		}
		status = resp.StatusCode
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), c.MaxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return 0, nil, err
	}

	return status, respBody, nil
}

func newRequest(ctx context.Context, method, url string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/pkcs10")
	}
	return req, nil
}

func (c *Client) httpClient(verifyPeer bool, pool *x509.CertPool) *http.Client {
	return &http.Client{
		Timeout: c.Timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: !verifyPeer,
				RootCAs:            pool,
			},
		},
	}
}
