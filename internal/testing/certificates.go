// Package testing provides certificate fixtures shared by sslboot's test
// suite: a self-signed CA plus signed leaf certificates, generated fresh
// for each test process so no fixture files need to be checked in.
package testing

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"time"
)

// CertificateInfo wraps the generated material for one certificate.
type CertificateInfo struct {
	Cert            *x509.Certificate
	CertBytes       []byte
	PrivateKey      *rsa.PrivateKey
	PrivateKeyBytes []byte
}

// GenerateCertificateOptions describes how to generate a certificate.
type GenerateCertificateOptions struct {
	CA           *CertificateInfo
	IsCA         bool
	CommonName   string
	ExtraSANs    []string
	ExtraIPs     []net.IP
	Expiration   time.Time
	Bits         int
	SerialNumber *big.Int
}

// GenerateSignedCertificate generates a certificate per options, self-signed
// when options.CA is nil.
func GenerateSignedCertificate(options GenerateCertificateOptions) (*CertificateInfo, error) {
	bits := options.Bits
	if bits == 0 {
		bits = 2048
	}
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, err
	}

	usage := x509.KeyUsageDigitalSignature
	if options.IsCA {
		usage = x509.KeyUsageCertSign | x509.KeyUsageCRLSign
	}

	expiration := options.Expiration
	if expiration.IsZero() {
		expiration = time.Now().AddDate(10, 0, 0)
	}

	serial := options.SerialNumber
	if serial == nil {
		serial = big.NewInt(1)
	}

	cert := &x509.Certificate{
		SerialNumber: serial,
		DNSNames:     options.ExtraSANs,
		Subject:      pkix.Name{CommonName: options.CommonName},
		IsCA:         options.IsCA,
		IPAddresses:  options.ExtraIPs,
		NotBefore:    time.Now().Add(-10 * time.Minute),
		NotAfter:     expiration,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth, x509.ExtKeyUsageServerAuth},
		KeyUsage:     usage,
		BasicConstraintsValid: true,
	}

	caCert := cert
	caPrivateKey := privateKey
	if options.CA != nil {
		caCert = options.CA.Cert
		caPrivateKey = options.CA.PrivateKey
	}

	data, err := x509.CreateCertificate(rand.Reader, cert, caCert, &privateKey.PublicKey, caPrivateKey)
	if err != nil {
		return nil, err
	}

	var certificatePEM, privateKeyPEM bytes.Buffer
	if err := pem.Encode(&certificatePEM, &pem.Block{Type: "CERTIFICATE", Bytes: data}); err != nil {
		return nil, err
	}
	if err := pem.Encode(&privateKeyPEM, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privateKey)}); err != nil {
		return nil, err
	}

	parsed, err := x509.ParseCertificate(data)
	if err != nil {
		return nil, err
	}

	return &CertificateInfo{
		Cert:            parsed,
		CertBytes:       certificatePEM.Bytes(),
		PrivateKey:      privateKey,
		PrivateKeyBytes: privateKeyPEM.Bytes(),
	}, nil
}

// GenerateCRL builds a PEM-encoded CRL signed by ca, optionally revoking
// the given certificates.
func GenerateCRL(ca *CertificateInfo, revoked ...*x509.Certificate) ([]byte, error) {
	var entries []x509.RevocationListEntry
	for _, cert := range revoked {
		entries = append(entries, x509.RevocationListEntry{
			SerialNumber:   cert.SerialNumber,
			RevocationTime: time.Now(),
		})
	}

	template := &x509.RevocationList{
		Number:                    big.NewInt(1),
		ThisUpdate:                time.Now().Add(-time.Minute),
		NextUpdate:                time.Now().AddDate(0, 0, 7),
		RevokedCertificateEntries: entries,
	}

	der, err := x509.CreateRevocationList(rand.Reader, template, ca.Cert, ca.PrivateKey)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := pem.Encode(&out, &pem.Block{Type: "X509 CRL", Bytes: der}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
