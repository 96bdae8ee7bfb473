package constants

import "time"

var CacheTTL = struct {
	WorldList     time.Duration
	WorldMeta     time.Duration
	Description   time.Duration
	CharacterList time.Duration
}{
	WorldList:     5 * time.Minute,
	WorldMeta:     20 * time.Minute,
	Description:   60 * time.Minute,
	CharacterList: 5 * time.Minute,
}

var HTTPConfig = struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestBody int64
}{
	ReadTimeout:    10 * time.Second,
	WriteTimeout:   30 * time.Second,
	IdleTimeout:    60 * time.Second,
	MaxRequestBody: 1 << 20, // 1 MiB
}

var EnhancerConfig = struct {
	Timeout        time.Duration
	MaxInputLength int
}{
	Timeout:        60 * time.Second,
	MaxInputLength: 8000,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,
	ResetTimeout:        30 * time.Second,
	RateLimitTimeout:    1 * time.Hour,
	HealthCheckInterval: 10 * time.Minute,
	HealthCheckTimeout:  10 * time.Second,
}

var StorageConfig = struct {
	ListConcurrency int
}{
	ListConcurrency: 8,
}

var WebSocketConfig = struct {
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	SendBufferSize int
}{
	WriteTimeout:   10 * time.Second,
	PingInterval:   30 * time.Second,
	SendBufferSize: 16,
}
