package service

import (
	"fmt"
	"strings"

	codegen "github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/safety/domain/entity"
)

const (
	baseScore      = 100
	errorPenalty   = 15
	warningPenalty = 5
)

// Validator screens scripts against the policy deny tables and lint checks.
type Validator interface {
	// Validate inspects content under the given policy. The report's Allowed
	// field is false when any finding is policy-blocking.
	Validate(content string, platform codegen.Platform, policy entity.Policy) *codegen.ValidationReport
}

type validator struct{}

// NewValidator creates the rule-table validator.
func NewValidator() Validator {
	return &validator{}
}

func (v *validator) Validate(content string, platform codegen.Platform, policy entity.Policy) *codegen.ValidationReport {
	report := &codegen.ValidationReport{Allowed: true, Score: baseScore}

	lines := strings.Split(content, "\n")
	for _, rule := range rulesFor(platform) {
		for i, line := range lines {
			match := rule.pattern.FindString(line)
			if match == "" {
				continue
			}
			if rule.never || !policy.Permits(rule.minPolicy) {
				report.Allowed = false
				report.Issues = append(report.Issues, codegen.Issue{
					Severity: codegen.SeverityError,
					Message:  blockMessage(rule, policy, match),
					Line:     i + 1,
				})
			} else {
				report.Issues = append(report.Issues, codegen.Issue{
					Severity: codegen.SeverityWarning,
					Message:  fmt.Sprintf("%s (matched %q, permitted by policy %s)", rule.message, match, policy),
					Line:     i + 1,
				})
			}
			break
		}
	}

	v.lint(content, platform, report)

	for _, issue := range report.Issues {
		if issue.Severity == codegen.SeverityError {
			report.Score -= errorPenalty
		} else {
			report.Score -= warningPenalty
		}
	}
	if report.Score < 0 {
		report.Score = 0
	}
	return report
}

// blockMessage cites the rule and the text it matched so a denial names the
// offending construct.
func blockMessage(rule denyRule, policy entity.Policy, match string) string {
	if rule.never {
		return fmt.Sprintf("%s (matched %q) is never permitted", rule.message, match)
	}
	return fmt.Sprintf("%s (matched %q) requires policy %s or above (request policy: %s)",
		rule.message, match, rule.minPolicy, policy)
}

// lint adds structural quality findings. These never block execution.
func (v *validator) lint(content string, platform codegen.Platform, report *codegen.ValidationReport) {
	switch platform {
	case codegen.PlatformBash:
		if !strings.HasPrefix(content, "#!") {
			report.Issues = append(report.Issues, codegen.Issue{
				Severity: codegen.SeverityWarning,
				Message:  "missing shebang line",
				Line:     1,
			})
			report.Recommendations = append(report.Recommendations, "Start the script with #!/usr/bin/env bash")
		}
		if !strings.Contains(content, "set -e") {
			report.Issues = append(report.Issues, codegen.Issue{
				Severity: codegen.SeverityWarning,
				Message:  "no fail-fast option set",
			})
			report.Recommendations = append(report.Recommendations, "Add set -euo pipefail near the top")
		}
	case codegen.PlatformPowerShell:
		if !strings.Contains(strings.ToLower(content), "try") {
			report.Issues = append(report.Issues, codegen.Issue{
				Severity: codegen.SeverityWarning,
				Message:  "no try/catch error handling",
			})
			report.Recommendations = append(report.Recommendations, "Wrap risky operations in try/catch and exit non-zero on failure")
		}
	case codegen.PlatformAppleScript:
		if !strings.Contains(strings.ToLower(content), "try") {
			report.Issues = append(report.Issues, codegen.Issue{
				Severity: codegen.SeverityWarning,
				Message:  "no try block error handling",
			})
			report.Recommendations = append(report.Recommendations, "Wrap operations in a try block and surface errors to the user")
		}
	}
}
