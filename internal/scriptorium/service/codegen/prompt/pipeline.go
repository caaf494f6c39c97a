package prompt

import (
	"context"
	"sort"
	"strings"

	"github.com/kiosk404/scrivener/pkg/logger"
)

// Pipeline assembles the system prompt from registered sections.
type Pipeline struct {
	sections []PromptSection
	sorted   bool
}

// NewPipeline creates a pipeline pre-loaded with the builtin sections.
func NewPipeline() *Pipeline {
	p := &Pipeline{}
	p.RegisterSection(&personaSection{})
	p.RegisterSection(&channelSection{})
	p.RegisterSection(&platformSection{})
	p.RegisterSection(&qualitySection{})
	p.RegisterSection(&outputFormatSection{})
	return p
}

// RegisterSection adds a PromptSection to the pipeline.
// Sections are sorted by Priority before first assembly.
func (p *Pipeline) RegisterSection(s PromptSection) {
	p.sections = append(p.sections, s)
	p.sorted = false
}

func (p *Pipeline) ensureSorted() {
	if p.sorted {
		return
	}
	sort.Slice(p.sections, func(i, j int) bool {
		return p.sections[i].Priority() < p.sections[j].Priority()
	})
	p.sorted = true
}

// Assemble renders every enabled section in priority order.
// Individual section failures are logged and skipped.
func (p *Pipeline) Assemble(ctx context.Context, pc *PromptContext) (string, error) {
	p.ensureSorted()

	var buf strings.Builder
	for _, section := range p.sections {
		if !section.Enabled(ctx, pc) {
			continue
		}
		text, err := section.Render(ctx, pc)
		if err != nil {
			logger.Warn("[Prompt] section %q render failed: %v", section.Name(), err)
			continue
		}
		if text == "" {
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n\n")
	}

	return strings.TrimRight(buf.String(), "\n"), nil
}

// SectionCount returns the number of registered sections.
func (p *Pipeline) SectionCount() int {
	return len(p.sections)
}
