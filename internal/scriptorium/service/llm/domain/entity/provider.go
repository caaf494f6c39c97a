package entity

import "time"

// HealthStatus is the prober's view of a provider.
type HealthStatus string

const (
	HealthUnknown     HealthStatus = "unknown"
	HealthHealthy     HealthStatus = "healthy"
	HealthDegraded    HealthStatus = "degraded"
	HealthUnavailable HealthStatus = "unavailable"
)

// ProviderDescriptor identifies a configured provider binding.
type ProviderDescriptor struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Endpoint string `json:"endpoint"`
	Model    string `json:"model"`
}

// ProviderHealth is the mutable health record kept per provider.
type ProviderHealth struct {
	Status              HealthStatus `json:"status"`
	LatencyMs           int64        `json:"latencyMs,omitempty"`
	ConsecutiveFailures int          `json:"consecutiveFailures,omitempty"`
	LastChecked         time.Time    `json:"lastChecked,omitempty"`
	LastError           string       `json:"lastError,omitempty"`
}

// ProviderStatus is the read-model joining descriptor and health.
type ProviderStatus struct {
	ProviderDescriptor
	Health ProviderHealth `json:"health"`
}
