// Package config loads the read-only configuration inputs the bootstrap
// pipeline needs: the agent identity and CA-server settings, and the
// separate CSR-attributes document.
package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const (
	DefaultKeySize      = 4096
	DefaultWaitForCert  = 120
	DefaultSSLDir       = "/etc/puppetlabs/puppet/ssl"
	DefaultCSRAttrsPath = "/etc/puppetlabs/puppet/csr_attributes.yaml"
)

// Config carries the read-only settings the bootstrap pipeline reads as
// configuration inputs.
type Config struct {
	Certname              string `mapstructure:"certname" yaml:"certname"`
	CAServerURL           string `mapstructure:"ca_server" yaml:"ca_server"`
	DNSAltNames           string `mapstructure:"dns_alt_names" yaml:"dns_alt_names"`
	CSRAttributesPath     string `mapstructure:"csr_attributes" yaml:"csr_attributes"`
	CertificateRevocation bool   `mapstructure:"certificate_revocation" yaml:"certificate_revocation"`
	WaitForCert           int    `mapstructure:"waitforcert" yaml:"waitforcert"`
	KeySize               int    `mapstructure:"keylength" yaml:"keylength"`
	SSLDir                string `mapstructure:"ssldir" yaml:"ssldir"`
}

// Defaults returns a Config populated with the same defaults the real
// agent ships, prior to any document or flag overrides being applied.
func Defaults() *Config {
	return &Config{
		CertificateRevocation: true,
		WaitForCert:           DefaultWaitForCert,
		KeySize:               DefaultKeySize,
		SSLDir:                DefaultSSLDir,
		CSRAttributesPath:     DefaultCSRAttrsPath,
	}
}

// Load reads a YAML configuration document at path and decodes it onto
// Defaults() with mapstructure: unknown keys in the document are ignored
// rather than erroring, since the document may carry settings outside this
// program's concern (it's the same file layout as the full agent config).
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var document map[string]interface{}
	if err := yaml.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("building config decoder: %w", err)
	}
	if err := decoder.Decode(document); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}

	return cfg, nil
}
