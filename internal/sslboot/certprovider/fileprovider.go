// Package certprovider implements sslboot.CertProvider over the local
// filesystem: the on-disk key/cert store the state machine delegates to
// rather than managing itself.
package certprovider

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	caCertFile  = "ca.pem"
	crlFile     = "crl.pem"
	keyFile     = "private_key.pem"
	certFile    = "certificate.pem"
	requestFile = "certificate_request.pem"
)

// FileProvider persists trust material under a single directory, one flat
// file per artifact.
type FileProvider struct {
	Dir string
}

// New constructs a FileProvider rooted at dir. The directory must already
// exist; FileProvider never creates it -- that's a deployment concern.
func New(dir string) *FileProvider {
	return &FileProvider{Dir: dir}
}

func (p *FileProvider) path(name string) string {
	return filepath.Join(p.Dir, name)
}

func (p *FileProvider) LoadCACerts() ([]*x509.Certificate, error) {
	raw, ok, err := readFile(p.path(caCertFile))
	if err != nil || !ok {
		return nil, err
	}
	return parseCertificates(raw)
}

func (p *FileProvider) SaveCACerts(certs []*x509.Certificate) error {
	return p.writeAtomic(caCertFile, encodeCertificates(certs))
}

func (p *FileProvider) LoadCRLs() ([]*x509.RevocationList, error) {
	raw, ok, err := readFile(p.path(crlFile))
	if err != nil || !ok {
		return nil, err
	}
	return parseCRLs(raw)
}

func (p *FileProvider) SaveCRLs(crls []*x509.RevocationList) error {
	return p.writeAtomic(crlFile, encodeCRLs(crls))
}

func (p *FileProvider) LoadPrivateKey() (*rsa.PrivateKey, error) {
	raw, ok, err := readFile(p.path(keyFile))
	if err != nil || !ok {
		return nil, err
	}
	block, _ := pem.Decode(raw)
	if block == nil || block.Type != "RSA PRIVATE KEY" {
		return nil, fmt.Errorf("no PEM-encoded RSA private key found in %s", p.path(keyFile))
	}
	return x509.ParsePKCS1PrivateKey(block.Bytes)
}

func (p *FileProvider) SavePrivateKey(key *rsa.PrivateKey) error {
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	return p.writeAtomicMode(keyFile, pem.EncodeToMemory(block), 0600)
}

func (p *FileProvider) LoadClientCert() (*x509.Certificate, []byte, error) {
	raw, ok, err := readFile(p.path(certFile))
	if err != nil || !ok {
		return nil, nil, err
	}
	block, _ := pem.Decode(raw)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, nil, fmt.Errorf("no PEM-encoded certificate found in %s", p.path(certFile))
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, nil, err
	}
	return cert, block.Bytes, nil
}

func (p *FileProvider) SaveClientCert(cert *x509.Certificate, der []byte) error {
	block := &pem.Block{Type: "CERTIFICATE", Bytes: der}
	return p.writeAtomic(certFile, pem.EncodeToMemory(block))
}

// TrustPool returns an x509.CertPool built from the currently persisted
// CA chain, suitable for caclient.New's trustedCAs callback. It re-reads
// the chain from disk on every call so a rotated CA takes effect on the
// next request without restarting the process.
func (p *FileProvider) TrustPool() (*x509.CertPool, error) {
	certs, err := p.LoadCACerts()
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	for _, cert := range certs {
		pool.AddCert(cert)
	}
	return pool, nil
}

func (p *FileProvider) SaveRequest(certname string, csrDER []byte) error {
	block := &pem.Block{Type: "CERTIFICATE REQUEST", Bytes: csrDER}
	return p.writeAtomic(requestFile, pem.EncodeToMemory(block))
}

// readFile returns (nil, false, nil) when path does not exist -- an absent
// file is the sentinel every Load* call returns, never an error.
func readFile(path string) ([]byte, bool, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// writeAtomic writes data to a uniquely-named temp file in the same
// directory as name, then renames it into place, so a concurrent reader
// never observes a partially-written file.
func (p *FileProvider) writeAtomic(name string, data []byte) error {
	return p.writeAtomicMode(name, data, 0644)
}

func (p *FileProvider) writeAtomicMode(name string, data []byte, mode os.FileMode) error {
	target := p.path(name)
	tmp := target + "." + uuid.New().String() + ".tmp"

	if err := os.WriteFile(tmp, data, mode); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming %s to %s: %w", tmp, target, err)
	}
	return nil
}

func parseCertificates(raw []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	rest := raw
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("no PEM-encoded certificates found")
	}
	return certs, nil
}

func encodeCertificates(certs []*x509.Certificate) []byte {
	var out []byte
	for _, cert := range certs {
		out = append(out, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})...)
	}
	return out
}

func parseCRLs(raw []byte) ([]*x509.RevocationList, error) {
	var crls []*x509.RevocationList
	rest := raw
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "X509 CRL" {
			continue
		}
		crl, err := x509.ParseRevocationList(block.Bytes)
		if err != nil {
			return nil, err
		}
		crls = append(crls, crl)
	}
	if len(crls) == 0 {
		return nil, fmt.Errorf("no PEM-encoded CRLs found")
	}
	return crls, nil
}

func encodeCRLs(crls []*x509.RevocationList) []byte {
	var out []byte
	for _, crl := range crls {
		out = append(out, pem.EncodeToMemory(&pem.Block{Type: "X509 CRL", Bytes: crl.Raw})...)
	}
	return out
}
