package template

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/entity"
)

func TestMatch_BackupRequest(t *testing.T) {
	tmpl, score, ok := Match("please backup my files")
	require.True(t, ok)
	assert.Equal(t, "backup", tmpl.Name)
	assert.GreaterOrEqual(t, score, MatchThreshold)
}

func TestMatch_MonitorRequest(t *testing.T) {
	tmpl, _, ok := Match("check cpu and memory usage")
	require.True(t, ok)
	assert.Equal(t, "monitor", tmpl.Name)
}

func TestMatch_ServiceRestart(t *testing.T) {
	tmpl, _, ok := Match("restart the service")
	require.True(t, ok)
	assert.Equal(t, "service-restart", tmpl.Name)
}

func TestMatch_NoMatchBelowThreshold(t *testing.T) {
	_, score, ok := Match("compose a sonnet about the moon using iambic pentameter")
	assert.False(t, ok)
	assert.Less(t, score, MatchThreshold)
}

func TestMatch_EmptyRequest(t *testing.T) {
	_, _, ok := Match("")
	assert.False(t, ok)
}

func TestGenerate_BashSkeleton(t *testing.T) {
	script := Generate("backup my files", entity.PlatformBash)

	assert.Equal(t, entity.PlatformBash, script.Platform)
	assert.Equal(t, "backup.sh", script.Filename)
	assert.Equal(t, entity.SourceTemplate, script.Source)
	assert.True(t, strings.HasPrefix(script.Content, "#!/usr/bin/env bash"))
	assert.Contains(t, script.Content, "set -euo pipefail")
	assert.Contains(t, script.Content, "trap cleanup EXIT")
	assert.Contains(t, script.Content, "# Step 1:")
}

func TestGenerate_PowerShellSkeleton(t *testing.T) {
	script := Generate("create a user account", entity.PlatformPowerShell)

	assert.Equal(t, "user-creation.ps1", script.Filename)
	assert.Contains(t, script.Content, "param(")
	assert.Contains(t, script.Content, "try {")
	assert.Contains(t, script.Content, "exit 1")
}

func TestGenerate_AppleScriptSkeleton(t *testing.T) {
	script := Generate("open the website in my browser", entity.PlatformAppleScript)

	assert.Equal(t, "browser-automation.applescript", script.Filename)
	assert.Contains(t, script.Content, "on run")
	assert.Contains(t, script.Content, "on error errMsg")
	assert.Contains(t, script.Content, "end run")
}

func TestGenerate_GenericFallbackNeverFails(t *testing.T) {
	script := Generate("do something entirely unforeseen", entity.PlatformBash)

	require.NotNil(t, script)
	assert.Equal(t, "task.sh", script.Filename)
	assert.Contains(t, script.Content, "Perform the requested work")
	assert.NotEmpty(t, script.Documentation)
}
