package entity

import (
	"fmt"
	"strings"
)

// Platform identifies the scripting runtime a script targets.
type Platform string

const (
	PlatformPowerShell  Platform = "powershell"
	PlatformAppleScript Platform = "applescript"
	PlatformBash        Platform = "bash"
)

// ParsePlatform normalizes a user-supplied platform name.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "powershell", "pwsh", "ps1":
		return PlatformPowerShell, nil
	case "applescript", "osascript", "scpt":
		return PlatformAppleScript, nil
	case "bash", "sh", "shell":
		return PlatformBash, nil
	default:
		return "", fmt.Errorf("unsupported platform %q", s)
	}
}

// FenceTag returns the markdown code-fence language for the platform.
func (p Platform) FenceTag() string {
	return string(p)
}

// Extension returns the script file extension including the dot.
func (p Platform) Extension() string {
	switch p {
	case PlatformPowerShell:
		return ".ps1"
	case PlatformAppleScript:
		return ".applescript"
	default:
		return ".sh"
	}
}

// Interpreter returns the command and leading args used to run a script file.
// The script path is appended by the executor.
func (p Platform) Interpreter() (string, []string) {
	switch p {
	case PlatformPowerShell:
		return "pwsh", []string{"-NoProfile", "-ExecutionPolicy", "Bypass", "-File"}
	case PlatformAppleScript:
		return "osascript", nil
	default:
		return "bash", nil
	}
}

// CommentPrefix returns the single-line comment marker.
func (p Platform) CommentPrefix() string {
	if p == PlatformPowerShell {
		return "#"
	}
	if p == PlatformAppleScript {
		return "--"
	}
	return "#"
}

// ScriptSource says where a script's content came from.
type ScriptSource string

const (
	SourceLLM      ScriptSource = "llm"
	SourceTemplate ScriptSource = "template"
)

// Script is a generated artifact ready for review or execution.
type Script struct {
	Platform      Platform          `json:"platform"`
	Filename      string            `json:"filename"`
	Content       string            `json:"content"`
	Documentation string            `json:"documentation,omitempty"`
	Source        ScriptSource      `json:"source"`
	Safety        *ValidationReport `json:"safety,omitempty"`
}

// IssueSeverity grades a validation finding.
type IssueSeverity string

const (
	SeverityWarning IssueSeverity = "warning"
	SeverityError   IssueSeverity = "error"
)

// Issue is one validation finding.
type Issue struct {
	Severity IssueSeverity `json:"severity"`
	Message  string        `json:"message"`
	Line     int           `json:"line,omitempty"`
}

// ValidationReport is the outcome of safety and quality checks on a script.
type ValidationReport struct {
	// Allowed is false when the script must not run under the given policy.
	Allowed bool `json:"allowed"`

	// Score is 0-100, starting from 100 with deductions per finding.
	Score int `json:"score"`

	Issues          []Issue      `json:"issues,omitempty"`
	Recommendations []string     `json:"recommendations,omitempty"`
	Source          ScriptSource `json:"source,omitempty"`
}
