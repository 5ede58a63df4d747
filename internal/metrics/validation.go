package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Validation-engine Prometheus metrics. Standalone package so services and
// HTTP packages can both record without import cycles.

var (
	ValidationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "keywarden_validations_total",
		Help: "Credential validations by kind (api_key|license) and outcome",
	}, []string{"kind", "outcome"})

	ActivationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "keywarden_activations_created_total",
		Help: "New device activations granted",
	})

	LockoutsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "keywarden_account_lockouts_total",
		Help: "Accounts transitioned to locked",
	})

	LoginFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "keywarden_login_failures_total",
		Help: "Failed password authentications, unknown accounts included",
	})
)

// Register registers all engine metrics on the given registry (or the
// default if nil). AlreadyRegistered is tolerated so tests can re-register.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		ValidationsTotal, ActivationsTotal, LockoutsTotal, LoginFailuresTotal,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
