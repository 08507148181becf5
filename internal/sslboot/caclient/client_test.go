package caclient

import (
	"context"
	"crypto/x509"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

func noPool() (*x509.CertPool, error) { return x509.NewCertPool(), nil }

func TestGetCACertificates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/puppet-ca/v1/certificate/ca", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("PEM"))
	}))
	defer server.Close()

	c := New(server.URL, hclog.NewNullLogger(), noPool)
	status, body, err := c.GetCACertificates(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "PEM", string(body))
}

func TestGetCACertificates404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := New(server.URL, hclog.NewNullLogger(), noPool)
	status, _, err := c.GetCACertificates(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, status)
}

func TestPutCSRSendsBody(t *testing.T) {
	var gotMethod string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotBody = make([]byte, r.ContentLength)
		r.Body.Read(gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New(server.URL, hclog.NewNullLogger(), noPool)
	status, _, err := c.PutCSR(context.Background(), "agent.local", []byte("csr-der"), false)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, http.MethodPut, gotMethod)
	require.Equal(t, "csr-der", string(gotBody))
}

func TestGetClientCertificateUsesTrustedCAs(t *testing.T) {
	var called bool
	trustedCAs := func() (*x509.CertPool, error) {
		called = true
		return x509.NewCertPool(), nil
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New(server.URL, hclog.NewNullLogger(), trustedCAs)
	_, _, err := c.GetClientCertificate(context.Background(), "agent.local", true)
	require.NoError(t, err)
	require.True(t, called)
}
