// Package metrics exposes estuary's counters through docker/go-metrics,
// the way the registry's metrics package namespaces its own.
package metrics

import "github.com/docker/go-metrics"

// NamespacePrefix is the namespace prefix every estuary metric is
// registered under.
const NamespacePrefix = "estuary"

var (
	// PublishNamespace covers the publish pipeline: envelope decode,
	// manifest validation, artifact writes, index commits.
	PublishNamespace = metrics.NewNamespace(NamespacePrefix, "publish", nil)

	// TransportNamespace covers the smart transport server.
	TransportNamespace = metrics.NewNamespace(NamespacePrefix, "transport", nil)
)

var (
	publishTotal = PublishNamespace.NewLabeledCounter("requests", "Number of publish requests by outcome", "outcome")

	uploadPackTotal = TransportNamespace.NewCounter("upload_pack_total", "Number of upload-pack requests served")
)

func init() {
	metrics.Register(PublishNamespace)
	metrics.Register(TransportNamespace)
}

// ObservePublish records the outcome of a publish request: "success" or
// an errcode Value such as "VERSION_EXISTS".
func ObservePublish(outcome string) {
	publishTotal.WithValues(outcome).Inc(1)
}

// ObserveUploadPack records one served upload-pack request.
func ObserveUploadPack() {
	uploadPackTotal.Inc(1)
}
