package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/jcharaoui/puppet/internal/sslboot/csr"
)

// CSRAttributes is the decoded form of the CSR-attributes document: a
// key-value document with two optional top-level keys, each mapping an
// OID string to a UTF8 value.
type CSRAttributes struct {
	CustomAttributes  map[string]string `yaml:"custom_attributes"`
	ExtensionRequests map[string]string `yaml:"extension_requests"`
}

// LoadCSRAttributes reads and validates the CSR-attributes document at
// path. A missing file is not an error -- it yields an empty document, the
// same way CertProvider's load_* calls return an absent sentinel instead
// of failing. Malformed OIDs are aggregated into a single error via
// go-multierror.
func LoadCSRAttributes(path string) (*CSRAttributes, error) {
	if path == "" {
		return &CSRAttributes{}, nil
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &CSRAttributes{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csr attributes %s: %w", path, err)
	}

	var attrs CSRAttributes
	if err := yaml.Unmarshal(raw, &attrs); err != nil {
		return nil, fmt.Errorf("parsing csr attributes %s: %w", path, err)
	}

	if err := attrs.validate(); err != nil {
		return nil, err
	}

	return &attrs, nil
}

func (a *CSRAttributes) validate() error {
	var errs *multierror.Error
	for oid := range a.CustomAttributes {
		if _, err := csr.ParseOID(oid); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("custom_attributes: invalid oid %q: %w", oid, err))
		}
	}
	for oid := range a.ExtensionRequests {
		if _, err := csr.ParseOID(oid); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("extension_requests: invalid oid %q: %w", oid, err))
		}
	}
	return errs.ErrorOrNil()
}
