// Package status implements the `status` CLI command: a read-only
// inspection of persisted trust material, making no network calls.
package status

import (
	"crypto/x509"
	"flag"
	"fmt"
	"time"

	"github.com/mitchellh/cli"

	"github.com/jcharaoui/puppet/internal/config"
	"github.com/jcharaoui/puppet/internal/sslboot/certprovider"
)

// Command reports what CertProvider currently has persisted, without
// driving the state machine or contacting the CA.
type Command struct {
	UI cli.Ui

	flags      *flag.FlagSet
	configPath string
}

func New(ui cli.Ui) *Command {
	c := &Command{UI: ui}
	c.flags = flag.NewFlagSet("status", flag.ContinueOnError)
	c.flags.StringVar(&c.configPath, "config", "", "path to the agent configuration document")
	return c
}

func (c *Command) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		return 1
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		c.UI.Error(fmt.Sprintf("loading configuration: %v", err))
		return 1
	}

	provider := certprovider.New(cfg.SSLDir)

	caCerts, err := provider.LoadCACerts()
	if err != nil {
		c.UI.Error(fmt.Sprintf("CA certificates: %v", err))
	} else {
		c.UI.Output(describeCACerts(caCerts))
	}

	crls, err := provider.LoadCRLs()
	if err != nil {
		c.UI.Error(fmt.Sprintf("CRLs: %v", err))
	} else if cfg.CertificateRevocation {
		c.UI.Output(describeCRLs(crls))
	} else {
		c.UI.Output("CRLs: revocation checking disabled")
	}

	key, err := provider.LoadPrivateKey()
	if err != nil {
		c.UI.Error(fmt.Sprintf("private key: %v", err))
	} else if key == nil {
		c.UI.Output("private key: not present")
	} else {
		c.UI.Output(fmt.Sprintf("private key: present (%d bits)", key.N.BitLen()))
	}

	cert, _, err := provider.LoadClientCert()
	if err != nil {
		c.UI.Error(fmt.Sprintf("client certificate: %v", err))
		return 1
	}
	if cert == nil {
		c.UI.Output("client certificate: not present")
		return 0
	}
	c.UI.Output(fmt.Sprintf("client certificate: %s (expires %s)", cert.Subject, cert.NotAfter.Format(time.RFC3339)))
	return 0
}

func describeCACerts(certs []*x509.Certificate) string {
	if len(certs) == 0 {
		return "CA certificates: not present"
	}
	return fmt.Sprintf("CA certificates: %d in chain, leaf %s", len(certs), certs[0].Subject)
}

func describeCRLs(crls []*x509.RevocationList) string {
	if len(crls) == 0 {
		return "CRLs: not present"
	}
	return fmt.Sprintf("CRLs: %d loaded", len(crls))
}

func (c *Command) Synopsis() string {
	return "Reports locally persisted trust material without contacting the CA"
}

func (c *Command) Help() string {
	return `Usage: puppet status [options]

  Reports what trust material is currently persisted: CA certificates,
  CRLs, the private key, and the client certificate. Makes no network
  calls.

Options:

  -config=<path>  Path to the agent configuration document.
`
}
