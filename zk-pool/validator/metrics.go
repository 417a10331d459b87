package validator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "zkpool"
	subsystem        = "validator"
)

var (
	proofVerifySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "proof_verify_seconds",
			Help:      "Time spent verifying Groth16 proofs",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"result"},
	)
)

func observeVerify(d time.Duration, ok bool) {
	result := "valid"
	if !ok {
		result = "invalid"
	}
	proofVerifySeconds.WithLabelValues(result).Observe(d.Seconds())
}
