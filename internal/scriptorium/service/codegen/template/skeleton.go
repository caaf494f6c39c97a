package template

import (
	"fmt"
	"strings"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/entity"
)

// Generate builds a deterministic script for the request. It never fails:
// when no template matches, a generic skeleton scoped to the request is
// produced instead.
func Generate(request string, platform entity.Platform) *entity.Script {
	tmpl, _, ok := Match(request)
	name := "task"
	summary := "Scripted task: " + strings.TrimSpace(request)
	steps := []string{
		"Parse and validate inputs",
		"Perform the requested work",
		"Report the outcome",
	}
	if ok {
		name = tmpl.Name
		summary = tmpl.Summary
		steps = tmpl.Steps
	}

	var content string
	switch platform {
	case entity.PlatformPowerShell:
		content = renderPowerShell(summary, steps)
	case entity.PlatformAppleScript:
		content = renderAppleScript(summary, steps)
	default:
		content = renderBash(summary, steps)
	}

	doc := summary + ". Generated from the builtin template catalog; review and adjust the marked steps before use."
	return &entity.Script{
		Platform:      platform,
		Filename:      name + platform.Extension(),
		Content:       content,
		Documentation: doc,
		Source:        entity.SourceTemplate,
	}
}

func renderPowerShell(summary string, steps []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", summary)
	sb.WriteString("param(\n    [switch]$WhatIf\n)\n\n")
	sb.WriteString("try {\n")
	for i, step := range steps {
		fmt.Fprintf(&sb, "    # Step %d: %s\n", i+1, step)
		fmt.Fprintf(&sb, "    Write-Host \"Step %d: %s\"\n", i+1, step)
		if i < len(steps)-1 {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n    Write-Host \"Done.\"\n")
	sb.WriteString("} catch {\n")
	sb.WriteString("    Write-Error \"Failed: $_\"\n")
	sb.WriteString("    exit 1\n")
	sb.WriteString("}\n")
	return sb.String()
}

func renderAppleScript(summary string, steps []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "-- %s\n\n", summary)
	sb.WriteString("on run\n")
	sb.WriteString("\ttry\n")
	for i, step := range steps {
		fmt.Fprintf(&sb, "\t\t-- Step %d: %s\n", i+1, step)
	}
	sb.WriteString("\t\tdisplay notification \"Done.\" with title \"Automation\"\n")
	sb.WriteString("\ton error errMsg\n")
	sb.WriteString("\t\tdisplay dialog \"Failed: \" & errMsg buttons {\"OK\"} default button 1\n")
	sb.WriteString("\t\terror errMsg\n")
	sb.WriteString("\tend try\n")
	sb.WriteString("end run\n")
	return sb.String()
}

func renderBash(summary string, steps []string) string {
	var sb strings.Builder
	sb.WriteString("#!/usr/bin/env bash\n")
	fmt.Fprintf(&sb, "# %s\n\n", summary)
	sb.WriteString("set -euo pipefail\n\n")
	sb.WriteString("print_status() {\n    echo \"[$(date '+%H:%M:%S')] $1\"\n}\n\n")
	sb.WriteString("cleanup() {\n    :\n}\ntrap cleanup EXIT\n\n")
	for i, step := range steps {
		fmt.Fprintf(&sb, "# Step %d: %s\n", i+1, step)
		fmt.Fprintf(&sb, "print_status \"Step %d: %s\"\n", i+1, step)
		if i < len(steps)-1 {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\nprint_status \"Done.\"\n")
	return sb.String()
}
