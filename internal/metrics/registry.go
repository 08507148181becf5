package metrics

import (
	"github.com/armon/go-metrics"
	"github.com/armon/go-metrics/prometheus"
)

var (
	CACertificateFetches   = []string{"ca_certificate_fetches"}
	CRLFetches             = []string{"crl_fetches"}
	CSRSubmissions         = []string{"csr_submissions"}
	ClientCertificateFetch = []string{"client_certificate_fetches"}
	WaitLoopsEntered       = []string{"wait_loops_entered"}
	FatalErrors            = []string{"fatal_errors"}
	BootstrapState         = []string{"bootstrap_state"}
)

// Registry is the process-wide metric sink for the bootstrap pipeline: an
// armon/go-metrics sink wrapped in a Prometheus exporter so `/metrics`
// exposes the same counters the agent updates internally.
var Registry metrics.MetricSink

func init() {
	sink, err := prometheus.NewPrometheusSinkFrom(prometheus.PrometheusOpts{
		GaugeDefinitions: []prometheus.GaugeDefinition{{
			Name: BootstrapState,
			Help: "The numeric identifier of the bootstrap state machine's current state",
		}},
		CounterDefinitions: []prometheus.CounterDefinition{{
			Name: CACertificateFetches,
			Help: "The number of times the CA certificate chain was downloaded from the CA server",
		}, {
			Name: CRLFetches,
			Help: "The number of times the CRL chain was downloaded from the CA server",
		}, {
			Name: CSRSubmissions,
			Help: "The number of certificate signing requests submitted to the CA",
		}, {
			Name: ClientCertificateFetch,
			Help: "The number of attempts to fetch the signed client certificate",
		}, {
			Name: WaitLoopsEntered,
			Help: "The number of times the state machine entered the Wait state",
		}, {
			Name: FatalErrors,
			Help: "The number of fatal errors raised by the bootstrap pipeline, labeled by kind",
		}},
	})
	if err != nil {
		panic(err)
	}
	Registry = sink
}
