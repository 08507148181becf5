// Package bootstrap implements the `bootstrap` CLI command: it drives
// the sslboot state machine to completion against a live CA server.
package bootstrap

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mitchellh/cli"
	"golang.org/x/sync/errgroup"

	"github.com/jcharaoui/puppet/internal/common"
	"github.com/jcharaoui/puppet/internal/config"
	"github.com/jcharaoui/puppet/internal/metrics"
	"github.com/jcharaoui/puppet/internal/sslboot"
	"github.com/jcharaoui/puppet/internal/sslboot/caclient"
	"github.com/jcharaoui/puppet/internal/sslboot/certprovider"
)

// Command runs EnsureClientCertificate against the configured CA server,
// blocking (subject to waitforcert) until a signed client certificate is
// obtained or a fatal condition is raised.
type Command struct {
	UI cli.Ui

	flags       *flag.FlagSet
	configPath  string
	logLevel    string
	logJSON     bool
	caOnly      bool
	metricsAddr string
}

func New(ui cli.Ui) *Command {
	c := &Command{UI: ui}
	c.flags = flag.NewFlagSet("bootstrap", flag.ContinueOnError)
	c.flags.StringVar(&c.configPath, "config", "", "path to the agent configuration document")
	c.flags.StringVar(&c.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	c.flags.BoolVar(&c.logJSON, "log-json", false, "emit logs as JSON")
	c.flags.BoolVar(&c.caOnly, "ca-only", false, "stop once the CA chain (and CRLs) are established, without requesting a client certificate")
	c.flags.StringVar(&c.metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on, e.g. :9090 (disabled if empty)")
	return c
}

func (c *Command) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		return 1
	}

	logger := common.CreateLogger(os.Stderr, c.logLevel, c.logJSON, "bootstrap")

	cfg, err := config.Load(c.configPath)
	if err != nil {
		c.UI.Error(fmt.Sprintf("loading configuration: %v", err))
		return 1
	}

	csrAttrs, err := config.LoadCSRAttributes(cfg.CSRAttributesPath)
	if err != nil {
		c.UI.Error(fmt.Sprintf("loading csr attributes: %v", err))
		return 1
	}

	if err := os.MkdirAll(cfg.SSLDir, 0700); err != nil {
		c.UI.Error(fmt.Sprintf("creating ssl directory: %v", err))
		return 1
	}

	provider := certprovider.New(cfg.SSLDir)
	client := caclient.New(cfg.CAServerURL, logger.Named("caclient"), provider.TrustPool)

	machine := sslboot.New(client, provider, logger, cfg, csrAttrs)

	ctx, cancel := contextWithSignals()
	defer cancel()

	// The metrics server and the bootstrap pipeline run as siblings under
	// one errgroup: a fatal failure in either cancels gctx, which tears the
	// other down instead of leaking a goroutine past Run's return.
	g, gctx := errgroup.WithContext(ctx)

	var result *sslboot.Context
	g.Go(func() error {
		if c.metricsAddr == "" {
			return nil
		}
		if err := metrics.RunServer(gctx, logger.Named("metrics"), c.metricsAddr); err != nil {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		r, err := runMachine(gctx, machine, c.caOnly)
		result = r
		return err
	})

	if err := g.Wait(); err != nil {
		if sslboot.IsExitRequested(err) {
			return 1
		}
		c.UI.Error(fmt.Sprintf("bootstrap failed: %v", err))
		return 1
	}

	if result.ClientCert != nil {
		c.UI.Output(fmt.Sprintf("Certificate for %q has been signed and saved to %s", cfg.Certname, cfg.SSLDir))
	} else {
		c.UI.Output(fmt.Sprintf("CA trust material established in %s", cfg.SSLDir))
	}
	return 0
}

func runMachine(ctx context.Context, m *sslboot.Machine, caOnly bool) (*sslboot.Context, error) {
	if caOnly {
		return m.EnsureCaCertificates(ctx)
	}
	return m.EnsureClientCertificate(ctx)
}

func contextWithSignals() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func (c *Command) Synopsis() string {
	return "Acquires CA trust material and a signed client certificate"
}

func (c *Command) Help() string {
	return `Usage: puppet bootstrap [options]

  Runs the SSL bootstrap pipeline: fetches the CA certificate chain and
  CRLs, generates a private key if one isn't already present, submits a
  certificate signing request, and polls until the request is signed.

Options:

  -config=<path>        Path to the agent configuration document.
  -log-level=<level>    Log level (trace, debug, info, warn, error).
  -log-json             Emit logs as JSON.
  -ca-only              Stop once the CA chain is established.
  -metrics-addr=<addr>  Serve Prometheus metrics on addr (e.g. :9090).
`
}
