package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/entity"
)

var fencePattern = regexp.MustCompile("(?s)```([a-zA-Z0-9_+-]*)[ \t]*\n(.*?)```")

// extractFenced pulls the script out of a model reply. It prefers a fence
// tagged with the platform's language, falls back to the first fence, and
// returns the remaining text as documentation.
func extractFenced(text string, platform entity.Platform) (code, doc string, ok bool) {
	matches := fencePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return "", "", false
	}

	chosen := matches[0]
	tag := platform.FenceTag()
	for _, m := range matches {
		if strings.EqualFold(text[m[2]:m[3]], tag) {
			chosen = m
			break
		}
	}

	code = text[chosen[4]:chosen[5]]
	doc = strings.TrimSpace(text[:chosen[0]] + text[chosen[1]:])
	return code, doc, true
}

// postprocess normalizes line endings, strips trailing whitespace, prepends
// a provenance header and guarantees a final newline.
func postprocess(code string, platform entity.Platform, request string, now time.Time) string {
	code = strings.ReplaceAll(code, "\r\n", "\n")
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	code = strings.Trim(strings.Join(lines, "\n"), "\n")

	prefix := platform.CommentPrefix()
	header := fmt.Sprintf("%s %s\n%s Generated %s\n",
		prefix, strings.TrimSpace(request), prefix, now.UTC().Format(time.RFC3339))

	// A bash shebang has to stay on line one.
	if platform == entity.PlatformBash && strings.HasPrefix(code, "#!") {
		if idx := strings.Index(code, "\n"); idx >= 0 {
			return code[:idx+1] + header + code[idx+1:] + "\n"
		}
		return code + "\n" + header
	}
	return header + code + "\n"
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

const maxSlugLen = 40

// filenameFor derives a short slug filename from the request text.
func filenameFor(request string, platform entity.Platform) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(request), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		slug = "script"
	}
	return slug + platform.Extension()
}
