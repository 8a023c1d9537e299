package detect

import (
	"strconv"
	"strings"
	"time"

	"github.com/pricewatch/pricewatch-guard/internal/models"
)

// Response carries the raw outcome of one fetch attempt.
type Response struct {
	StatusCode int
	Body       string
	Elapsed    time.Duration
	Platform   string
	Redirects  int
	FinalURL   string
}

// DefaultRedirectThreshold is the redirect count beyond which a response
// is treated as a redirect loop.
const DefaultRedirectThreshold = 5

var blockStatusCodes = map[int]struct{}{403: {}, 429: {}, 503: {}}

// Challenge phrase tables, matched case-insensitively against the body.
var (
	captchaPhrases = []string{
		"captcha",
		"recaptcha",
		"hcaptcha",
		"verify you are human",
		"i'm not a robot",
	}
	cloudflarePhrases = []string{
		"cloudflare",
		"cf-ray",
		"checking your browser",
		"just a moment",
		"attention required",
	}
	awsWAFPhrases = []string{
		"aws waf",
		"awswaf",
		"request blocked",
	}
	jsChallengePhrases = []string{
		"enable javascript",
		"javascript is required",
		"javascript and cookies",
		"challenge-platform",
	}
	genericBlockPhrases = []string{
		"access denied",
		"unusual traffic",
		"automated access",
		"bot detected",
		"too many requests",
		"temporarily blocked",
		"robot check",
	}
)

var suggestedActions = map[models.DetectionType]string{
	models.DetectionRateLimit:        "Increase the delay between checks for this platform",
	models.DetectionIPBlock:          "Rotate the outbound IP or route through a proxy",
	models.DetectionCaptcha:          "Manual captcha intervention required",
	models.DetectionCloudflare:       "Enable browser-like headers and cookie persistence",
	models.DetectionAWSWAF:           "Randomize request headers and slow the request rate",
	models.DetectionJSChallenge:      "Switch to a fetch path that executes JavaScript",
	models.DetectionRedirectLoop:     "Clear session state and retry with fresh cookies",
	models.DetectionPlatformSpecific: "Review platform-specific countermeasures",
}

// Classifier turns a raw response into a DetectionResult. Pure aside
// from reading the injected clock.
type Classifier struct {
	now               func() time.Time
	redirectThreshold int
}

// NewClassifier creates a classifier with default thresholds.
func NewClassifier() *Classifier {
	return &Classifier{now: time.Now, redirectThreshold: DefaultRedirectThreshold}
}

// Classify evaluates block signals and picks the detection type by a
// fixed priority order when multiple signals match.
func (c *Classifier) Classify(resp Response) models.DetectionResult {
	body := strings.ToLower(resp.Body)

	_, statusBlocked := blockStatusCodes[resp.StatusCode]
	captchaHits := matchPhrases(body, captchaPhrases)
	cloudflareHits := matchPhrases(body, cloudflarePhrases)
	awsHits := matchPhrases(body, awsWAFPhrases)
	jsHits := matchPhrases(body, jsChallengePhrases)
	genericHits := matchPhrases(body, genericBlockPhrases)

	phraseHits := len(captchaHits) + len(cloudflareHits) + len(awsHits) + len(jsHits) + len(genericHits)
	redirectLoop := resp.Redirects > c.redirectThreshold

	blocked := statusBlocked || phraseHits > 0 || redirectLoop
	if !blocked {
		return models.DetectionResult{
			IsBlocked:     false,
			DetectionType: models.DetectionNone,
			Confidence:    0,
			Platform:      resp.Platform,
			ResponseCode:  resp.StatusCode,
			ResponseTime:  resp.Elapsed,
			Timestamp:     c.now(),
		}
	}

	var detType models.DetectionType
	switch {
	case resp.StatusCode == 429:
		detType = models.DetectionRateLimit
	case resp.StatusCode == 403 && phraseHits == 0:
		detType = models.DetectionIPBlock
	case len(captchaHits) > 0:
		detType = models.DetectionCaptcha
	case len(cloudflareHits) > 0:
		detType = models.DetectionCloudflare
	case len(awsHits) > 0:
		detType = models.DetectionAWSWAF
	case len(jsHits) > 0:
		detType = models.DetectionJSChallenge
	case redirectLoop:
		detType = models.DetectionRedirectLoop
	default:
		detType = models.DetectionPlatformSpecific
	}

	signals := 0
	if statusBlocked {
		signals++
	}
	if phraseHits > 3 {
		signals += 3
	} else {
		signals += phraseHits
	}
	if redirectLoop {
		signals++
	}

	details := map[string]string{
		"statusCode": strconv.Itoa(resp.StatusCode),
	}
	matched := make([]string, 0, phraseHits)
	matched = append(matched, captchaHits...)
	matched = append(matched, cloudflareHits...)
	matched = append(matched, awsHits...)
	matched = append(matched, jsHits...)
	matched = append(matched, genericHits...)
	if len(matched) > 0 {
		details["matchedPhrases"] = strings.Join(matched, ",")
	}
	if resp.Redirects > 0 {
		details["redirects"] = strconv.Itoa(resp.Redirects)
	}

	return models.DetectionResult{
		IsBlocked:       true,
		DetectionType:   detType,
		Confidence:      confidenceFromSignals(signals),
		Platform:        resp.Platform,
		ResponseCode:    resp.StatusCode,
		ResponseTime:    resp.Elapsed,
		Timestamp:       c.now(),
		SuggestedAction: suggestedActions[detType],
		Details:         details,
	}
}

// confidenceFromSignals maps corroborating signal count onto [0,1],
// monotonically increasing.
func confidenceFromSignals(signals int) float64 {
	conf := 0.25 + 0.15*float64(signals)
	if conf > 1 {
		return 1
	}
	if conf < 0 {
		return 0
	}
	return conf
}

func matchPhrases(body string, phrases []string) []string {
	var hits []string
	for _, p := range phrases {
		if strings.Contains(body, p) {
			hits = append(hits, p)
		}
	}
	return hits
}
