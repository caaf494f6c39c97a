package template

import (
	"regexp"
	"strings"
)

// MatchThreshold is the minimum Jaccard similarity between the request and a
// template's keyword set for the template to be chosen over the generic
// skeleton.
const MatchThreshold = 0.3

// Template is one deterministic script recipe.
type Template struct {
	Name     string
	Summary  string
	Keywords []string

	// Steps are the concrete actions the skeleton should carry out, rendered
	// as commented scaffolding in the platform's syntax.
	Steps []string
}

// Catalog returns the builtin recipes, covering the automation asks that show
// up constantly in operator chat.
func Catalog() []Template {
	return []Template{
		{
			Name:     "backup",
			Summary:  "Back up a directory to a timestamped archive",
			Keywords: []string{"backup", "archive", "copy", "save", "snapshot", "files"},
			Steps: []string{
				"Resolve the source directory and verify it exists",
				"Create the destination folder with a timestamp suffix",
				"Copy the files, preserving attributes",
				"Report the number of files copied and total size",
			},
		},
		{
			Name:     "monitor",
			Summary:  "Report system resource usage",
			Keywords: []string{"monitor", "cpu", "memory", "usage", "system", "health", "check", "status"},
			Steps: []string{
				"Sample CPU load and memory usage",
				"Sample disk usage for the main volume",
				"Print a one-line summary per resource",
				"Exit non-zero if any resource is above its threshold",
			},
		},
		{
			Name:     "user-creation",
			Summary:  "Create a local user account",
			Keywords: []string{"user", "account", "create", "add", "password", "group"},
			Steps: []string{
				"Validate the requested username",
				"Create the account with a temporary password",
				"Add the account to the requested groups",
				"Force a password change at next logon",
			},
		},
		{
			Name:     "file-processing",
			Summary:  "Process files in a directory matching a pattern",
			Keywords: []string{"file", "files", "process", "rename", "convert", "batch", "folder", "directory"},
			Steps: []string{
				"Enumerate files matching the pattern",
				"Apply the transformation to each file",
				"Keep a count of processed and skipped files",
				"Print the totals at the end",
			},
		},
		{
			Name:     "service-restart",
			Summary:  "Restart a service and verify it came back",
			Keywords: []string{"service", "restart", "stop", "start", "daemon", "process"},
			Steps: []string{
				"Stop the service and wait for it to exit",
				"Start the service",
				"Poll until the service reports running or a timeout elapses",
				"Exit non-zero if the service did not recover",
			},
		},
		{
			Name:     "browser-automation",
			Summary:  "Open pages in the default browser",
			Keywords: []string{"browser", "open", "url", "website", "page", "tab", "chrome", "safari"},
			Steps: []string{
				"Collect the target URLs",
				"Open each URL in the default browser",
				"Pause briefly between pages",
			},
		},
		{
			Name:     "disk-cleanup",
			Summary:  "Reclaim disk space from temp and cache locations",
			Keywords: []string{"disk", "cleanup", "clean", "space", "temp", "cache", "delete", "old"},
			Steps: []string{
				"Measure free space before cleanup",
				"Remove expired files from the temp locations",
				"Empty application cache directories older than the cutoff",
				"Report the space reclaimed",
			},
		},
	}
}

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// stopwords are filler tokens that would otherwise dilute the similarity.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "my": true, "me": true, "i": true,
	"to": true, "for": true, "of": true, "in": true, "on": true, "and": true,
	"with": true, "that": true, "this": true, "it": true, "is": true,
	"please": true, "script": true, "write": true, "make": true, "need": true,
	"want": true, "can": true, "you": true, "all": true, "some": true,
}

func tokenize(s string) map[string]bool {
	out := make(map[string]bool)
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(s), -1) {
		if !stopwords[tok] {
			out[tok] = true
		}
	}
	return out
}

// jaccard computes set similarity between request tokens and keywords.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if b[tok] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// Match finds the best template for a request. The boolean is false when no
// template clears the threshold.
func Match(request string) (*Template, float64, bool) {
	reqTokens := tokenize(request)

	var best *Template
	bestScore := 0.0
	for i := range catalogCache {
		t := &catalogCache[i]
		score := jaccard(reqTokens, t.keywordSet)
		if score > bestScore {
			best, bestScore = &t.Template, score
		}
	}
	if best == nil || bestScore < MatchThreshold {
		return nil, bestScore, false
	}
	return best, bestScore, true
}

type cachedTemplate struct {
	Template
	keywordSet map[string]bool
}

var catalogCache = func() []cachedTemplate {
	templates := Catalog()
	out := make([]cachedTemplate, len(templates))
	for i, t := range templates {
		set := make(map[string]bool, len(t.Keywords))
		for _, kw := range t.Keywords {
			set[kw] = true
		}
		out[i] = cachedTemplate{Template: t, keywordSet: set}
	}
	return out
}()
