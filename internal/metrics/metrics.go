package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Service 业务指标集合
type Service struct {
	CertificatesRecorded prometheus.Counter
	SubmissionFailures   *prometheus.CounterVec
	VerificationLookups  *prometheus.CounterVec
	AllowListRefreshes   prometheus.Counter
}

// New 创建并注册指标
// reg 为 nil 时使用默认 Registerer（测试传入独立的 Registry 避免重复注册）
func New(reg prometheus.Registerer) *Service {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	s := &Service{
		CertificatesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "certledger_certificates_recorded_total",
			Help: "Number of certificates successfully recorded on chain.",
		}),
		SubmissionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "certledger_submission_failures_total",
			Help: "Number of failed certificate submissions by failure kind.",
		}, []string{"kind"}),
		VerificationLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "certledger_verification_lookups_total",
			Help: "Number of certificate verification lookups by outcome.",
		}, []string{"outcome"}),
		AllowListRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "certledger_allowlist_refreshes_total",
			Help: "Number of wallet allow list refreshes from the secret source.",
		}),
	}

	reg.MustRegister(
		s.CertificatesRecorded,
		s.SubmissionFailures,
		s.VerificationLookups,
		s.AllowListRefreshes,
	)

	return s
}
