package sslboot

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"time"
)

func generateKey(bits int) (*rsa.PrivateKey, error) {
	if bits == 0 {
		bits = 4096
	}
	return rsa.GenerateKey(rand.Reader, bits)
}

// publicKeysEqual reports whether cert was issued for key: the Done state
// requires the client certificate's public key to match the private key.
func publicKeysEqual(cert *x509.Certificate, key *rsa.PrivateKey) bool {
	certPub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok || key == nil {
		return false
	}
	return certPub.E == key.PublicKey.E && certPub.N.Cmp(key.PublicKey.N) == 0
}

func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
