package catalog

import "github.com/pricewatch/pricewatch-guard/internal/models"

// defaultDefinitions is the built-in remediation catalog. User overlays
// may replace or extend these entries by id.
func defaultDefinitions() []models.SolutionDefinition {
	return []models.SolutionDefinition{
		{
			ID:                       "increase_delays",
			Name:                     "Increase request delays",
			Description:              "Raise the minimum delay between checks so traffic looks less automated.",
			Category:                 "timing",
			Priority:                 models.PriorityHigh,
			DetectionTypes:           []models.DetectionType{models.DetectionRateLimit, models.DetectionAWSWAF},
			CanAutoApply:             true,
			EstimatedEffectiveness:   85,
			ImplementationComplexity: models.ComplexitySimple,
			RiskLevel:                models.RiskLow,
			Platforms:                []string{models.PlatformAny},
		},
		{
			ID:                       "aggressive_backoff",
			Name:                     "Aggressive backoff",
			Description:              "Double the backoff multiplier after any blocked attempt.",
			Category:                 "timing",
			Priority:                 models.PriorityMedium,
			DetectionTypes:           []models.DetectionType{models.DetectionRateLimit},
			CanAutoApply:             true,
			EstimatedEffectiveness:   75,
			ImplementationComplexity: models.ComplexitySimple,
			RiskLevel:                models.RiskLow,
			Conflicts:                []string{"increase_delays"},
			Platforms:                []string{models.PlatformAny},
		},
		{
			ID:                       "reduce_check_frequency",
			Name:                     "Reduce check frequency",
			Description:              "Check each product less often to stay under rate thresholds.",
			Category:                 "timing",
			Priority:                 models.PriorityMedium,
			DetectionTypes:           []models.DetectionType{models.DetectionRateLimit, models.DetectionIPBlock},
			CanAutoApply:             true,
			EstimatedEffectiveness:   70,
			ImplementationComplexity: models.ComplexitySimple,
			RiskLevel:                models.RiskLow,
			Platforms:                []string{models.PlatformAny},
		},
		{
			ID:                       "rotate_user_agents",
			Name:                     "Rotate user agents",
			Description:              "Cycle realistic browser user-agent strings per request.",
			Category:                 "fingerprint",
			Priority:                 models.PriorityHigh,
			DetectionTypes:           []models.DetectionType{models.DetectionCloudflare, models.DetectionPlatformSpecific},
			CanAutoApply:             true,
			EstimatedEffectiveness:   80,
			ImplementationComplexity: models.ComplexityModerate,
			RiskLevel:                models.RiskMedium,
			Platforms:                []string{models.PlatformAny},
		},
		{
			ID:                       "randomize_headers",
			Name:                     "Randomize request headers",
			Description:              "Vary accept-language, ordering, and optional headers between requests.",
			Category:                 "fingerprint",
			Priority:                 models.PriorityMedium,
			DetectionTypes:           []models.DetectionType{models.DetectionCloudflare, models.DetectionAWSWAF},
			CanAutoApply:             true,
			EstimatedEffectiveness:   65,
			ImplementationComplexity: models.ComplexityModerate,
			RiskLevel:                models.RiskLow,
			Dependencies:             []string{"rotate_user_agents"},
			Platforms:                []string{models.PlatformAny},
		},
		{
			ID:                       "upgrade_tls_fingerprint",
			Name:                     "Upgrade TLS fingerprint",
			Description:              "Present a browser-equivalent TLS client hello.",
			Category:                 "fingerprint",
			Priority:                 models.PriorityHigh,
			DetectionTypes:           []models.DetectionType{models.DetectionCloudflare, models.DetectionAWSWAF},
			EstimatedEffectiveness:   75,
			ImplementationComplexity: models.ComplexityComplex,
			RequiresRestart:          true,
			RiskLevel:                models.RiskMedium,
			Environment:              models.EnvironmentDesktop,
			Platforms:                []string{models.PlatformAny},
		},
		{
			ID:                       "use_proxy_rotation",
			Name:                     "Use proxy rotation",
			Description:              "Route requests through a rotating residential proxy pool.",
			Category:                 "network",
			Priority:                 models.PriorityCritical,
			DetectionTypes:           []models.DetectionType{models.DetectionIPBlock, models.DetectionCloudflare},
			RequiresUserInteraction:  true,
			EstimatedEffectiveness:   90,
			ImplementationComplexity: models.ComplexityComplex,
			RiskLevel:                models.RiskHigh,
			Platforms:                []string{models.PlatformAny},
		},
		{
			ID:                       "enable_cookie_persistence",
			Name:                     "Enable cookie persistence",
			Description:              "Keep session cookies between checks so challenges are not re-issued.",
			Category:                 "session",
			Priority:                 models.PriorityMedium,
			DetectionTypes:           []models.DetectionType{models.DetectionCloudflare, models.DetectionJSChallenge},
			CanAutoApply:             true,
			EstimatedEffectiveness:   60,
			ImplementationComplexity: models.ComplexitySimple,
			RiskLevel:                models.RiskLow,
			Platforms:                []string{models.PlatformAny},
		},
		{
			ID:                       "clear_session_state",
			Name:                     "Clear session state",
			Description:              "Drop cookies and cached redirects to escape poisoned sessions.",
			Category:                 "session",
			Priority:                 models.PriorityLow,
			DetectionTypes:           []models.DetectionType{models.DetectionRedirectLoop},
			CanAutoApply:             true,
			EstimatedEffectiveness:   55,
			ImplementationComplexity: models.ComplexitySimple,
			RiskLevel:                models.RiskLow,
			Conflicts:                []string{"enable_cookie_persistence"},
			Platforms:                []string{models.PlatformAny},
		},
		{
			ID:                       "solve_captcha_manually",
			Name:                     "Solve captcha manually",
			Description:              "Open the challenge page and let the user complete the captcha.",
			Category:                 "manual",
			Priority:                 models.PriorityCritical,
			DetectionTypes:           []models.DetectionType{models.DetectionCaptcha},
			RequiresUserInteraction:  true,
			EstimatedEffectiveness:   95,
			ImplementationComplexity: models.ComplexitySimple,
			RiskLevel:                models.RiskLow,
			Environment:              models.EnvironmentDesktop,
			Platforms:                []string{models.PlatformAny},
		},
		{
			ID:                       "use_mobile_endpoint",
			Name:                     "Use mobile endpoint",
			Description:              "Fetch the mobile site variant, which often carries lighter defenses.",
			Category:                 "endpoint",
			Priority:                 models.PriorityHigh,
			DetectionTypes:           []models.DetectionType{models.DetectionPlatformSpecific, models.DetectionJSChallenge},
			EstimatedEffectiveness:   70,
			ImplementationComplexity: models.ComplexityComplex,
			RiskLevel:                models.RiskMedium,
			Platforms:                []string{"amazon"},
		},
		{
			ID:                       "pause_platform",
			Name:                     "Pause platform checks",
			Description:              "Stop checking the platform for a cool-down window.",
			Category:                 "timing",
			Priority:                 models.PriorityLow,
			DetectionTypes:           []models.DetectionType{models.DetectionIPBlock, models.DetectionCaptcha},
			CanAutoApply:             true,
			EstimatedEffectiveness:   50,
			ImplementationComplexity: models.ComplexitySimple,
			RiskLevel:                models.RiskLow,
			Platforms:                []string{models.PlatformAny},
		},
	}
}
