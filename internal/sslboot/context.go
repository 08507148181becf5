package sslboot

import (
	"crypto/rsa"
	"crypto/x509"
)

// Context is the accumulating trust material gathered by the pipeline.
// It is immutable once a state completes -- every state produces a new
// Context rather than mutating its predecessor.
type Context struct {
	CACerts    []*x509.Certificate
	CRLs       []*x509.RevocationList
	PrivateKey *rsa.PrivateKey
	ClientCert *x509.Certificate

	// ClientCertDER is retained alongside ClientCert so a finished pipeline
	// can hand back the exact bytes CertProvider persisted.
	ClientCertDER []byte

	// VerifyPeer is true whenever CACerts is non-empty and matches the
	// loaded material. It is false only for the bootstrap CA-download
	// request itself.
	VerifyPeer bool
}

// empty returns the zero-value starting Context for a pipeline run.
func empty() *Context {
	return &Context{}
}

// withCACerts returns a new Context with the CA chain populated and peer
// verification turned on for all subsequent requests.
func (c *Context) withCACerts(certs []*x509.Certificate) *Context {
	next := *c
	next.CACerts = certs
	next.VerifyPeer = len(certs) > 0
	return &next
}

// withCRLs returns a new Context with the CRL chain populated.
func (c *Context) withCRLs(crls []*x509.RevocationList) *Context {
	next := *c
	next.CRLs = crls
	return &next
}

// withPrivateKey returns a new Context carrying the private key forward.
func (c *Context) withPrivateKey(key *rsa.PrivateKey) *Context {
	next := *c
	next.PrivateKey = key
	return &next
}

// withClientCert returns a new, terminal Context carrying the signed
// client certificate.
func (c *Context) withClientCert(cert *x509.Certificate, der []byte) *Context {
	next := *c
	next.ClientCert = cert
	next.ClientCertDER = der
	return &next
}

// revoked reports whether cert appears on any loaded CRL.
func (c *Context) revoked(cert *x509.Certificate) bool {
	for _, crl := range c.CRLs {
		for _, entry := range crl.RevokedCertificateEntries {
			if entry.SerialNumber != nil && cert.SerialNumber != nil &&
				entry.SerialNumber.Cmp(cert.SerialNumber) == 0 {
				return true
			}
		}
	}
	return false
}
