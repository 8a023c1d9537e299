package models

import "time"

// DetectionType enumerates the recognised blocking mechanisms.
type DetectionType string

const (
	DetectionCloudflare       DetectionType = "cloudflare"
	DetectionAWSWAF           DetectionType = "aws_waf"
	DetectionRateLimit        DetectionType = "rate_limit"
	DetectionIPBlock          DetectionType = "ip_block"
	DetectionCaptcha          DetectionType = "captcha"
	DetectionJSChallenge      DetectionType = "js_challenge"
	DetectionRedirectLoop     DetectionType = "redirect_loop"
	DetectionPlatformSpecific DetectionType = "platform_specific"
	DetectionNone             DetectionType = "none"
)

// DetectionResult is the structured verdict for one fetch attempt.
// Invariant: IsBlocked is false exactly when DetectionType is DetectionNone.
type DetectionResult struct {
	IsBlocked       bool
	DetectionType   DetectionType
	Confidence      float64
	Platform        string
	ResponseCode    int
	ResponseTime    time.Duration
	Timestamp       time.Time
	SuggestedAction string
	Details         map[string]string
}

// WatchState enumerates terminal and transient states of a retry sequence.
type WatchState string

const (
	StateAttempting  WatchState = "attempting"
	StateClassifying WatchState = "classifying"
	StateBackoff     WatchState = "backoff"
	StateSucceeded   WatchState = "succeeded"
	StateExhausted   WatchState = "exhausted"
)

// Target identifies one monitored product page.
type Target struct {
	Platform string            `yaml:"platform" json:"platform"`
	URL      string            `yaml:"url" json:"url"`
	Headers  map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// WatchOutcome summarises a completed retry sequence for a target.
type WatchOutcome struct {
	WatchID         string
	State           WatchState
	Detection       DetectionResult
	Payload         string
	Attempts        int
	NetworkFailures int
	Err             error
}
