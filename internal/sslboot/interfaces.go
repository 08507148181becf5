package sslboot

//go:generate mockgen -source ./interfaces.go -destination ./mocks/mocks.go -package mocks CaClient,CertProvider

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
)

// CaClient is the HTTP collaborator consumed by the state machine. The
// verifyPeer argument is the sole authority for whether the transport
// validates the server's certificate against the current Context --
// callers never make that decision themselves.
type CaClient interface {
	GetCACertificates(ctx context.Context, verifyPeer bool) (status int, body []byte, err error)
	GetCRLs(ctx context.Context, verifyPeer bool) (status int, body []byte, err error)
	PutCSR(ctx context.Context, certname string, der []byte, verifyPeer bool) (status int, body []byte, err error)
	GetClientCertificate(ctx context.Context, certname string, verifyPeer bool) (status int, body []byte, err error)
}

// CertProvider owns all on-disk trust material. Its writes are atomic so a
// reader never observes a half-written file. A load_* call returns a nil/
// empty result (never an error) when nothing is persisted; a file that
// exists but cannot be read or parsed is returned as an error, and that is
// always fatal.
type CertProvider interface {
	LoadCACerts() ([]*x509.Certificate, error)
	SaveCACerts([]*x509.Certificate) error

	LoadCRLs() ([]*x509.RevocationList, error)
	SaveCRLs([]*x509.RevocationList) error

	LoadPrivateKey() (*rsa.PrivateKey, error)
	SavePrivateKey(*rsa.PrivateKey) error

	LoadClientCert() (cert *x509.Certificate, der []byte, err error)
	SaveClientCert(cert *x509.Certificate, der []byte) error

	SaveRequest(certname string, csrDER []byte) error
}
