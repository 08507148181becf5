// Package csr builds and signs the PKCS#10 certificate signing request:
// subject CN, subject alternative names, custom attributes, and extension
// requests.
//
// crypto/x509.CreateCertificateRequest only honors its deprecated
// Attributes field for legacy SET-of-SET-of-RDN style attributes and
// can't express an arbitrary OID -> UTF8String attribute, so this package
// builds the CertificationRequest ASN.1 structure directly with
// encoding/asn1, following the same tbsCertificateRequest/RawAttributes
// shape the standard library itself uses internally.
package csr

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"net"
	"sort"
	"strings"
)

// extensionRequestOID is the pkcs-9-at-extensionRequest attribute used to
// smuggle X.509 extensions (including subjectAltName) into a CSR.
var extensionRequestOID = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 14}

// subjectAltNameOID is the standard X.509 subjectAltName extension.
var subjectAltNameOID = asn1.ObjectIdentifier{2, 5, 29, 17}

// sha256WithRSAOID identifies the signature algorithm used to sign every
// request this package builds.
var sha256WithRSAOID = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 11}

// AltName is a single parsed entry from the dns_alt_names configuration.
type AltName struct {
	Type  string // "DNS" or "IP"
	Value string
}

func (a AltName) key() string { return a.Type + ":" + a.Value }

// Request describes the inputs needed to build a signing request.
type Request struct {
	Certname          string
	AltNames          []AltName
	CustomAttributes  map[string]string
	ExtensionRequests map[string]string
}

// ParseAltNames parses the comma-separated dns_alt_names configuration
// value: each entry is TYPE:VALUE where TYPE is DNS or IP; bare entries
// default to DNS.
func ParseAltNames(raw string) ([]AltName, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var names []AltName
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		typ := "DNS"
		value := entry
		if idx := strings.Index(entry, ":"); idx >= 0 {
			candidate := strings.ToUpper(entry[:idx])
			if candidate == "DNS" || candidate == "IP" {
				typ = candidate
				value = entry[idx+1:]
			}
		}

		if typ == "IP" && net.ParseIP(value) == nil {
			return nil, fmt.Errorf("invalid IP alt name %q", entry)
		}

		names = append(names, AltName{Type: typ, Value: value})
	}
	return names, nil
}

// WithCertnameAltName appends certname as a DNS alt name, deduplicated
// against names already present.
func WithCertnameAltName(names []AltName, certname string) []AltName {
	target := AltName{Type: "DNS", Value: certname}
	for _, n := range names {
		if n.key() == target.key() {
			return names
		}
	}
	return append(names, target)
}

// Build constructs and signs a DER-encoded CSR for req using key.
func Build(req Request, key *rsa.PrivateKey) ([]byte, error) {
	subject := pkix.Name{CommonName: req.Certname}
	rdn, err := asn1.Marshal(subject.ToRDNSequence())
	if err != nil {
		return nil, fmt.Errorf("marshaling subject: %w", err)
	}

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("marshaling public key: %w", err)
	}

	attrs, err := buildAttributes(req)
	if err != nil {
		return nil, err
	}

	tbs := certificateRequestInfo{
		Version:       0,
		Subject:       asn1.RawValue{FullBytes: rdn},
		PublicKey:     asn1.RawValue{FullBytes: pubDER},
		RawAttributes: attrs,
	}
	tbsDER, err := asn1.Marshal(tbs)
	if err != nil {
		return nil, fmt.Errorf("marshaling certificate request info: %w", err)
	}

	hashed := sha256.Sum256(tbsDER)
	signature, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, hashed[:])
	if err != nil {
		return nil, fmt.Errorf("signing certificate request: %w", err)
	}

	out := certificateRequest{
		TBSCSR: asn1.RawValue{FullBytes: tbsDER},
		SignatureAlgorithm: algorithmIdentifier{
			Algorithm:  sha256WithRSAOID,
			Parameters: asn1.RawValue{Tag: asn1.TagNull},
		},
		Signature: asn1.BitString{Bytes: signature, BitLength: len(signature) * 8},
	}
	return asn1.Marshal(out)
}

// certificateRequestInfo mirrors PKCS#10's CertificationRequestInfo.
type certificateRequestInfo struct {
	Version       int
	Subject       asn1.RawValue
	PublicKey     asn1.RawValue
	RawAttributes []asn1.RawValue `asn1:"tag:0"`
}

type algorithmIdentifier struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters asn1.RawValue `asn1:"optional"`
}

type certificateRequest struct {
	TBSCSR             asn1.RawValue
	SignatureAlgorithm algorithmIdentifier
	Signature          asn1.BitString
}

// attribute mirrors PKCS#10's Attribute ::= SEQUENCE { type OID, values
// SET OF ANY }.
type attribute struct {
	Type   asn1.ObjectIdentifier
	Values []asn1.RawValue `asn1:"set"`
}

func buildAttributes(req Request) ([]asn1.RawValue, error) {
	var rawAttrs []asn1.RawValue

	// custom_attributes: one Attribute per OID, its single value a
	// UTF8String, emitted directly in the CSR's attribute set.
	for _, oid := range sortedKeys(req.CustomAttributes) {
		value := req.CustomAttributes[oid]
		parsedOID, err := parseOID(oid)
		if err != nil {
			return nil, fmt.Errorf("custom attribute %q: %w", oid, err)
		}
		valueDER, err := asn1.MarshalWithParams(value, "utf8")
		if err != nil {
			return nil, fmt.Errorf("custom attribute %q: encoding value: %w", oid, err)
		}
		a := attribute{
			Type:   parsedOID,
			Values: []asn1.RawValue{{FullBytes: valueDER}},
		}
		der, err := asn1.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("custom attribute %q: %w", oid, err)
		}
		rawAttrs = append(rawAttrs, asn1.RawValue{FullBytes: der})
	}

	// extensionRequest: one Attribute whose single value is the SEQUENCE
	// OF Extension containing the subjectAltName extension (built from
	// req.AltNames) plus any configured extension_requests.
	extensions, err := buildExtensions(req)
	if err != nil {
		return nil, err
	}
	if len(extensions) > 0 {
		extSeqDER, err := asn1.Marshal(extensions)
		if err != nil {
			return nil, fmt.Errorf("marshaling extensionRequest: %w", err)
		}
		a := attribute{
			Type:   extensionRequestOID,
			Values: []asn1.RawValue{{FullBytes: extSeqDER}},
		}
		der, err := asn1.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("marshaling extensionRequest attribute: %w", err)
		}
		rawAttrs = append(rawAttrs, asn1.RawValue{FullBytes: der})
	}

	return rawAttrs, nil
}

func buildExtensions(req Request) ([]pkix.Extension, error) {
	var extensions []pkix.Extension

	if len(req.AltNames) > 0 {
		sanDER, err := marshalSubjectAltNames(req.AltNames)
		if err != nil {
			return nil, fmt.Errorf("marshaling subjectAltName: %w", err)
		}
		extensions = append(extensions, pkix.Extension{Id: subjectAltNameOID, Value: sanDER})
	}

	for _, oid := range sortedKeys(req.ExtensionRequests) {
		value := req.ExtensionRequests[oid]
		parsedOID, err := parseOID(oid)
		if err != nil {
			return nil, fmt.Errorf("extension request %q: %w", oid, err)
		}
		extensions = append(extensions, pkix.Extension{Id: parsedOID, Value: []byte(value)})
	}

	return extensions, nil
}

// marshalSubjectAltNames encodes names as a GeneralNames SEQUENCE, the
// same shape crypto/x509 produces for the subjectAltName extension.
func marshalSubjectAltNames(names []AltName) ([]byte, error) {
	var rawValues []asn1.RawValue
	for _, name := range names {
		switch name.Type {
		case "DNS":
			rawValues = append(rawValues, asn1.RawValue{
				Class: asn1.ClassContextSpecific,
				Tag:   2, // dNSName
				Bytes: []byte(name.Value),
			})
		case "IP":
			ip := net.ParseIP(name.Value)
			if ip == nil {
				return nil, fmt.Errorf("invalid IP alt name %q", name.Value)
			}
			if v4 := ip.To4(); v4 != nil {
				ip = v4
			}
			rawValues = append(rawValues, asn1.RawValue{
				Class: asn1.ClassContextSpecific,
				Tag:   7, // iPAddress
				Bytes: ip,
			})
		default:
			return nil, fmt.Errorf("unsupported alt name type %q", name.Type)
		}
	}
	return asn1.Marshal(rawValues)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseOID parses a dotted-decimal OID string, the format the
// CSR-attributes document uses for both custom_attributes and
// extension_requests keys.
func ParseOID(dotted string) (asn1.ObjectIdentifier, error) {
	return parseOID(dotted)
}

func parseOID(dotted string) (asn1.ObjectIdentifier, error) {
	var oid asn1.ObjectIdentifier
	for _, part := range strings.Split(dotted, ".") {
		if part == "" {
			return nil, fmt.Errorf("empty component in %q", dotted)
		}
		var n int
		for _, r := range part {
			if r < '0' || r > '9' {
				return nil, fmt.Errorf("non-numeric component in %q", dotted)
			}
			n = n*10 + int(r-'0')
		}
		oid = append(oid, n)
	}
	if len(oid) < 2 {
		return nil, fmt.Errorf("oid %q must have at least two components", dotted)
	}
	return oid, nil
}
