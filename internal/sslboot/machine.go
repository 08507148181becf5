// Package sslboot implements the SSL bootstrap state machine: the
// sequencing logic that acquires the trust anchors, private key, and
// signed client certificate an agent needs before talking to its control
// plane over mutually-authenticated TLS.
package sslboot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"

	"github.com/jcharaoui/puppet/internal/config"
	gmetrics "github.com/jcharaoui/puppet/internal/metrics"
)

// errExitRequested is returned out of Wait when waitforcert is 0 and no
// signed certificate is available. Only the CLI layer translates this
// into os.Exit(1); the library never calls os.Exit itself.
var errExitRequested = errors.New("sslboot: exit requested by Wait")

// IsExitRequested reports whether err is the sentinel Wait returns when
// waitforcert is 0. Callers (the CLI) use this to decide whether to exit
// with status 1 instead of treating the run as failed.
func IsExitRequested(err error) bool {
	return errors.Is(err, errExitRequested)
}

// state is the tagged-variant node of the pipeline: each implementation
// handles exactly one bootstrap concern and returns the next state to
// run along with the Context it produced.
type state interface {
	name() string
	next(ctx context.Context, m *Machine, sc *Context) (state, *Context, error)
}

// Machine drives the bootstrap state machine. It is single-use: construct
// one per bootstrap attempt.
type Machine struct {
	CaClient     CaClient
	CertProvider CertProvider
	Logger       hclog.Logger
	Config       *config.Config
	CSRAttrs     *config.CSRAttributes

	// stdout is where Wait prints its waitforcert=0 message; overridable
	// in tests.
	stdout *os.File
	// sleep is overridable in tests so the Wait delay doesn't need to run
	// in real time.
	sleep func(ctx context.Context, d time.Duration) error
}

// New constructs a Machine ready to run. logger, config and csrAttrs must
// not be nil.
func New(caClient CaClient, certProvider CertProvider, logger hclog.Logger, cfg *config.Config, csrAttrs *config.CSRAttributes) *Machine {
	return &Machine{
		CaClient:     caClient,
		CertProvider: certProvider,
		Logger:       logger,
		Config:       cfg,
		CSRAttrs:     csrAttrs,
		stdout:       os.Stdout,
		sleep:        sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EnsureCaCertificates runs the pipeline until the CA chain (and, unless
// disabled, the CRL chain) have been established, returning the partial
// Context. It never submits a CSR or contacts the certificate endpoint.
func (m *Machine) EnsureCaCertificates(ctx context.Context) (*Context, error) {
	return m.run(ctx, func(s state) bool {
		_, isNeedKey := s.(needKeyState)
		return isNeedKey
	})
}

// EnsureClientCertificate runs the full pipeline through to a signed
// client certificate.
func (m *Machine) EnsureClientCertificate(ctx context.Context) (*Context, error) {
	return m.run(ctx, func(s state) bool {
		_, isDone := s.(doneState)
		return isDone
	})
}

func (m *Machine) run(ctx context.Context, terminal func(state) bool) (*Context, error) {
	current := state(needCACertsState{})
	sc := empty()

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("sslboot: canceled: %w", err)
		}

		if terminal(current) {
			return sc, nil
		}

		m.Logger.Trace("entering state", "state", current.name())
		gmetrics.Registry.SetGauge(gmetrics.BootstrapState, stateOrdinal(current))

		next, nextCtx, err := current.next(ctx, m, sc)
		if err != nil {
			if IsExitRequested(err) {
				return sc, err
			}
			var sslErr *Error
			kind := Kind(-1)
			if errors.As(err, &sslErr) {
				kind = sslErr.Kind
			}
			gmetrics.Registry.IncrCounterWithLabels(gmetrics.FatalErrors, 1, []metrics.Label{
				{Name: "kind", Value: kind.String()},
			})
			return nil, err
		}
		current = next
		sc = nextCtx
	}
}

func stateOrdinal(s state) float32 {
	switch s.(type) {
	case needCACertsState:
		return 0
	case needCRLsState:
		return 1
	case needKeyState:
		return 2
	case needSubmitCSRState:
		return 3
	case needCertState:
		return 4
	case waitState:
		return 5
	case doneState:
		return 6
	default:
		return -1
	}
}
