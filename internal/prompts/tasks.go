package prompts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// defaultTemplates are the built-in task prompts per post type. The {sector}
// placeholder is filled by Prompt.
var defaultTemplates = map[string]string{
	"morning": "Create an engaging morning options post. " +
		"FIRST call get_market_context to see what's moving today. " +
		"Pick a timely opportunity based on movers or upcoming earnings. " +
		"Focus on income strategies (covered calls, CSPs). " +
		"Use an attention-grabbing hook. Cross-post to Twitter and Threads.",
	"eod": "Create an end-of-day momentum post. " +
		"FIRST call get_market_context to see today's biggest movers. " +
		"Pick a stock that made a significant move today. " +
		"Focus on directional plays capturing momentum. " +
		"Use an attention-grabbing hook. Cross-post to Twitter and Threads.",
	"volatility": "Create a high IV premium-selling post. " +
		"FIRST call get_market_context to find elevated IV stocks. " +
		"Pick the best premium selling opportunity. " +
		"Explain why IV is high (earnings, event) and how to profit. " +
		"Use an attention-grabbing hook. Cross-post to Twitter and Threads.",
	"sector": "Create a sector-focused post for {sector}. " +
		"FIRST call get_market_context to see sector performance. " +
		"Find the best opportunity within the sector. " +
		"Use an attention-grabbing hook. Cross-post to Twitter and Threads.",
}

// TaskTemplates resolves post types to task prompts.
type TaskTemplates struct {
	templates map[string]string
}

// DefaultTaskTemplates returns the built-in template set.
func DefaultTaskTemplates() *TaskTemplates {
	templates := make(map[string]string, len(defaultTemplates))
	for k, v := range defaultTemplates {
		templates[k] = v
	}
	return &TaskTemplates{templates: templates}
}

// LoadTaskTemplates reads template overrides from a TOML file of
// postType = "prompt" pairs. Types not present in the file keep their
// built-in prompt.
func LoadTaskTemplates(path string) (*TaskTemplates, error) {
	overrides := make(map[string]string)
	if _, err := toml.DecodeFile(path, &overrides); err != nil {
		return nil, fmt.Errorf("load task templates: %w", err)
	}

	t := DefaultTaskTemplates()
	for postType, prompt := range overrides {
		if strings.TrimSpace(prompt) == "" {
			return nil, fmt.Errorf("load task templates: empty prompt for %q", postType)
		}
		t.templates[postType] = prompt
	}
	return t, nil
}

// Prompt returns the task prompt for a post type, falling back to the
// morning template for unknown types. A non-empty sector fills the {sector}
// placeholder.
func (t *TaskTemplates) Prompt(postType, sector string) string {
	template, ok := t.templates[postType]
	if !ok {
		template = t.templates["morning"]
	}
	if sector != "" {
		template = strings.ReplaceAll(template, "{sector}", sector)
	}
	return template
}

// Types lists the known post types, sorted.
func (t *TaskTemplates) Types() []string {
	types := make([]string, 0, len(t.templates))
	for postType := range t.templates {
		types = append(types, postType)
	}
	sort.Strings(types)
	return types
}
