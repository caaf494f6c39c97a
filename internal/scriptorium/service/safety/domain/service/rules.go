package service

import (
	"regexp"

	codegen "github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/safety/domain/entity"
)

// denyRule blocks a pattern unless the request's policy grants MinPolicy.
// A nil MinPolicy marker is expressed with the never constant: the pattern
// is blocked at every tier.
type denyRule struct {
	pattern *regexp.Regexp
	message string

	// minPolicy is the lowest tier allowed to run the matched construct.
	// never means no tier may run it.
	minPolicy entity.Policy
	never     bool
}

// Rules are checked in order; the first tier decision wins per finding but
// every match is reported.
var bashRules = []denyRule{
	{pattern: regexp.MustCompile(`(?i)rm\s+(-[a-z]*r[a-z]*f|-[a-z]*f[a-z]*r)[a-z]*\s+/(\s|$|")`), message: "recursive delete of the filesystem root", never: true},
	{pattern: regexp.MustCompile(`(?i)mkfs(\.[a-z0-9]+)?\s`), message: "filesystem format command", never: true},
	{pattern: regexp.MustCompile(`(?i)dd\s+if=.*of=/dev/`), message: "raw write to a block device", never: true},
	{pattern: regexp.MustCompile(`:\(\)\s*\{\s*:\|:\s*&\s*\}\s*;?\s*:`), message: "fork bomb", never: true},
	{pattern: regexp.MustCompile(`(?i)\b(shutdown|reboot|halt|poweroff)\b`), message: "host power control", minPolicy: entity.PolicyElevated},
	{pattern: regexp.MustCompile(`(?i)\brm\s+-[a-z]*r`), message: "recursive delete", minPolicy: entity.PolicyStandard},
	{pattern: regexp.MustCompile(`(?i)\bsudo\b`), message: "privilege escalation", minPolicy: entity.PolicyElevated},
	{pattern: regexp.MustCompile(`(?i)(curl|wget)[^\n|]*\|\s*(ba)?sh`), message: "piping a download into a shell", minPolicy: entity.PolicyElevated},
	{pattern: regexp.MustCompile(`(?i)chmod\s+(-[a-z]+\s+)*777`), message: "world-writable permissions", minPolicy: entity.PolicyStandard},
	{pattern: regexp.MustCompile(`(?i)>\s*/etc/`), message: "writing system configuration", minPolicy: entity.PolicyElevated},
}

var powershellRules = []denyRule{
	{pattern: regexp.MustCompile(`(?i)Remove-Item\s+[^\n]*-Recurse[^\n]*-Force[^\n]*(C:\\|\$env:SystemRoot|\$env:windir)`), message: "recursive forced delete of a system path", never: true},
	{pattern: regexp.MustCompile(`(?i)\bFormat-Volume\b`), message: "volume format command", never: true},
	{pattern: regexp.MustCompile(`(?i)\bClear-Disk\b`), message: "disk wipe command", never: true},
	{pattern: regexp.MustCompile(`(?i)\b(Stop-Computer|Restart-Computer)\b`), message: "host power control", minPolicy: entity.PolicyElevated},
	{pattern: regexp.MustCompile(`(?i)Remove-Item\s+[^\n]*-Recurse`), message: "recursive delete", minPolicy: entity.PolicyStandard},
	{pattern: regexp.MustCompile(`(?i)Invoke-Expression[^\n]*(Invoke-WebRequest|iwr|DownloadString)`), message: "executing downloaded code", minPolicy: entity.PolicyElevated},
	{pattern: regexp.MustCompile(`(?i)Set-ExecutionPolicy\s+(Unrestricted|Bypass)`), message: "disabling script execution policy", minPolicy: entity.PolicyElevated},
	{pattern: regexp.MustCompile(`(?i)\bStop-Service\b`), message: "stopping a service", minPolicy: entity.PolicyStandard},
	{pattern: regexp.MustCompile(`(?i)New-LocalUser|Add-LocalGroupMember`), message: "local account management", minPolicy: entity.PolicyElevated},
}

var applescriptRules = []denyRule{
	{pattern: regexp.MustCompile(`(?i)do shell script[^\n]*rm\s+-[a-z]*r[a-z]*f[^\n]*/`), message: "recursive delete through the shell bridge", never: true},
	{pattern: regexp.MustCompile(`(?i)with administrator privileges`), message: "administrator shell escalation", minPolicy: entity.PolicyElevated},
	{pattern: regexp.MustCompile(`(?i)tell application "System Events" to (shut down|restart)`), message: "host power control", minPolicy: entity.PolicyElevated},
	{pattern: regexp.MustCompile(`(?i)do shell script[^\n]*sudo`), message: "privilege escalation through the shell bridge", minPolicy: entity.PolicyElevated},
	{pattern: regexp.MustCompile(`(?i)delete every file`), message: "bulk file deletion", minPolicy: entity.PolicyStandard},
}

func rulesFor(platform codegen.Platform) []denyRule {
	switch platform {
	case codegen.PlatformPowerShell:
		return powershellRules
	case codegen.PlatformAppleScript:
		return applescriptRules
	default:
		return bashRules
	}
}
