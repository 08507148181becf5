package sslboot

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"regexp"

	"github.com/jcharaoui/puppet/internal/metrics"
	"github.com/jcharaoui/puppet/internal/sslboot/csr"
)

// alreadyHasCertPattern matches 400-body substrings treated as
// success-equivalent: the request was already satisfied by a prior
// submission.
var alreadyHasCertPattern = regexp.MustCompile(`already has a (requested|signed|revoked) certificate`)

// needCACertsState establishes the CA chain.
type needCACertsState struct{}

func (needCACertsState) name() string { return "NeedCACerts" }

func (needCACertsState) next(ctx context.Context, m *Machine, sc *Context) (state, *Context, error) {
	cached, err := m.CertProvider.LoadCACerts()
	if err != nil {
		return nil, nil, newError(ParseErrorKind, "loading local CA certificates", err)
	}
	if len(cached) > 0 {
		return needCRLsState{}, sc.withCACerts(cached), nil
	}

	metrics.Registry.IncrCounter(metrics.CACertificateFetches, 1)
	status, body, err := m.CaClient.GetCACertificates(ctx, false)
	if err != nil {
		return nil, nil, newError(NetworkErrorKind, "Could not download CA certificate", err)
	}
	if status == 404 {
		return nil, nil, newError(NetworkErrorKind, "CA certificate is missing from the server", nil)
	}
	if status < 200 || status >= 300 {
		return nil, nil, newError(NetworkErrorKind, fmt.Sprintf("Could not download CA certificate: %s", httpReason(status)), nil)
	}

	certs, err := parsePEMCertificates(body)
	if err != nil {
		return nil, nil, newError(ParseErrorKind, "parsing downloaded CA certificate", err)
	}

	if err := m.CertProvider.SaveCACerts(certs); err != nil {
		return nil, nil, newError(IOErrorKind, "persisting CA certificates", err)
	}

	return needCRLsState{}, sc.withCACerts(certs), nil
}

// needCRLsState establishes the CRL chain.
type needCRLsState struct{}

func (needCRLsState) name() string { return "NeedCRLs" }

func (needCRLsState) next(ctx context.Context, m *Machine, sc *Context) (state, *Context, error) {
	if !m.Config.CertificateRevocation {
		return needKeyState{}, sc, nil
	}

	cached, err := m.CertProvider.LoadCRLs()
	if err != nil {
		return nil, nil, newError(ParseErrorKind, "loading local CRLs", err)
	}
	if len(cached) > 0 {
		return needKeyState{}, sc.withCRLs(cached), nil
	}

	metrics.Registry.IncrCounter(metrics.CRLFetches, 1)
	status, body, err := m.CaClient.GetCRLs(ctx, sc.VerifyPeer)
	if err != nil {
		return nil, nil, newError(NetworkErrorKind, "Could not download CRL", err)
	}
	if status == 404 {
		return nil, nil, newError(NetworkErrorKind, "CRL is missing from the server", nil)
	}
	if status < 200 || status >= 300 {
		return nil, nil, newError(NetworkErrorKind, fmt.Sprintf("Could not download CRL: %s", httpReason(status)), nil)
	}

	crls, err := parsePEMCRLs(body)
	if err != nil {
		return nil, nil, newError(ParseErrorKind, "parsing downloaded CRL", err)
	}

	if err := m.CertProvider.SaveCRLs(crls); err != nil {
		return nil, nil, newError(IOErrorKind, "persisting CRLs", err)
	}

	return needKeyState{}, sc.withCRLs(crls), nil
}

// needKeyState establishes the agent's private key.
type needKeyState struct{}

func (needKeyState) name() string { return "NeedKey" }

func (needKeyState) next(ctx context.Context, m *Machine, sc *Context) (state, *Context, error) {
	key, err := m.CertProvider.LoadPrivateKey()
	if err != nil {
		return nil, nil, newError(CryptoErrorKind, "loading local private key", err)
	}

	if key == nil {
		key, err = generateKey(m.Config.KeySize)
		if err != nil {
			return nil, nil, newError(CryptoErrorKind, "generating private key", err)
		}
		if err := m.CertProvider.SavePrivateKey(key); err != nil {
			return nil, nil, newError(IOErrorKind, "persisting private key", err)
		}
	}

	sc = sc.withPrivateKey(key)

	cert, der, err := m.CertProvider.LoadClientCert()
	if err != nil {
		return nil, nil, newError(ParseErrorKind, "loading local client certificate", err)
	}
	if cert == nil {
		return needSubmitCSRState{}, sc, nil
	}

	if !publicKeysEqual(cert, key) {
		return nil, nil, newError(VerificationErrorKind,
			fmt.Sprintf("The certificate for '%s' does not match its private key", cert.Subject), nil)
	}

	return doneState{}, sc.withClientCert(cert, der), nil
}

// needSubmitCSRState builds and uploads the certificate signing request.
type needSubmitCSRState struct{}

func (needSubmitCSRState) name() string { return "NeedSubmitCSR" }

func (needSubmitCSRState) next(ctx context.Context, m *Machine, sc *Context) (state, *Context, error) {
	altNames, err := csr.ParseAltNames(m.Config.DNSAltNames)
	if err != nil {
		return nil, nil, newError(ConfigErrorKind, "parsing dns_alt_names", err)
	}
	altNames = csr.WithCertnameAltName(altNames, m.Config.Certname)

	req := csr.Request{
		Certname:          m.Config.Certname,
		AltNames:          altNames,
		CustomAttributes:  m.CSRAttrs.CustomAttributes,
		ExtensionRequests: m.CSRAttrs.ExtensionRequests,
	}

	der, err := csr.Build(req, sc.PrivateKey)
	if err != nil {
		return nil, nil, newError(CryptoErrorKind, "building certificate signing request", err)
	}

	if err := m.CertProvider.SaveRequest(m.Config.Certname, der); err != nil {
		return nil, nil, newError(IOErrorKind, "persisting certificate signing request", err)
	}

	metrics.Registry.IncrCounter(metrics.CSRSubmissions, 1)
	status, body, err := m.CaClient.PutCSR(ctx, m.Config.Certname, der, sc.VerifyPeer)
	if err != nil {
		return nil, nil, newError(NetworkErrorKind, "Failed to submit the CSR", err)
	}

	if status >= 200 && status < 300 {
		return needCertState{}, sc, nil
	}
	if status == 400 && alreadyHasCertPattern.Match(body) {
		return needCertState{}, sc, nil
	}

	return nil, nil, newError(NetworkErrorKind, fmt.Sprintf("Failed to submit the CSR, HTTP response was %d", status), nil)
}

// needCertState retrieves the signed client certificate.
type needCertState struct{}

func (needCertState) name() string { return "NeedCert" }

func (needCertState) next(ctx context.Context, m *Machine, sc *Context) (state, *Context, error) {
	metrics.Registry.IncrCounter(metrics.ClientCertificateFetch, 1)
	status, body, err := m.CaClient.GetClientCertificate(ctx, m.Config.Certname, sc.VerifyPeer)
	if err != nil {
		return nil, nil, newError(NetworkErrorKind, "retrieving client certificate", err)
	}
	if status != 200 {
		m.Logger.Info("client certificate not yet available", "status", status)
		return waitState{}, sc, nil
	}

	cert, err := parsePEMCertificate(body)
	if err != nil {
		m.Logger.Warn("failed to parse client certificate from server, will retry", "error", err)
		return waitState{}, sc, nil
	}

	if !publicKeysEqual(cert, sc.PrivateKey) {
		m.Logger.Warn("client certificate public key does not match private key", "subject", cert.Subject.String())
		return waitState{}, sc, nil
	}

	if sc.revoked(cert) {
		m.Logger.Warn("client certificate is revoked", "subject", cert.Subject.String())
		return waitState{}, sc, nil
	}

	if err := m.CertProvider.SaveClientCert(cert, cert.Raw); err != nil {
		return nil, nil, newError(IOErrorKind, "persisting client certificate", err)
	}

	return doneState{}, sc.withClientCert(cert, cert.Raw), nil
}

// waitState delays and restarts, or requests exit.
type waitState struct{}

func (waitState) name() string { return "Wait" }

func (waitState) next(ctx context.Context, m *Machine, sc *Context) (state, *Context, error) {
	metrics.Registry.IncrCounter(metrics.WaitLoopsEntered, 1)

	if m.Config.WaitForCert == 0 {
		fmt.Fprintf(m.stdout, "Couldn't fetch certificate from CA server; you might still need to sign this agent's certificate (%s). Exiting now because the waitforcert setting is set to 0.\n", m.Config.Certname)
		return nil, nil, errExitRequested
	}

	m.Logger.Info(fmt.Sprintf("Will try again in %d seconds.", m.Config.WaitForCert))
	if err := m.sleep(ctx, secondsToDuration(m.Config.WaitForCert)); err != nil {
		return nil, nil, fmt.Errorf("sslboot: canceled while waiting: %w", err)
	}

	return needCACertsState{}, empty(), nil
}

// doneState is terminal.
type doneState struct{}

func (doneState) name() string { return "Done" }

func (doneState) next(ctx context.Context, m *Machine, sc *Context) (state, *Context, error) {
	panic("sslboot: next() invoked on the terminal Done state")
}

func parsePEMCertificates(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	rest := data
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

func parsePEMCertificate(data []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, fmt.Errorf("no PEM-encoded certificate found")
	}
	return x509.ParseCertificate(block.Bytes)
}

func parsePEMCRLs(data []byte) ([]*x509.RevocationList, error) {
	var crls []*x509.RevocationList
	rest := data
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

func httpReason(status int) string {
	switch status {
	case 500:
		return "Internal Server Error"
	case 503:
		return "Service Unavailable"
	case 403:
		return "Forbidden"
	default:
		return fmt.Sprintf("HTTP response was %d", status)
	}
}
