package dispatch

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var keywordsYAML []byte

type keywordRule struct {
	Action   Action   `yaml:"action"`
	Reply    string   `yaml:"reply"`
	Keywords []string `yaml:"keywords"`
}

var keywordRules = mustLoadKeywordRules()

func mustLoadKeywordRules() []keywordRule {
	var rules []keywordRule
	if err := yaml.Unmarshal(keywordsYAML, &rules); err != nil {
		panic(fmt.Sprintf("dispatch: invalid keyword table: %v", err))
	}
	return rules
}

// localClassify is the deterministic fallback: a coarse substring match
// against the embedded keyword table, in table order.
func localClassify(text string) Classification {
	lowered := strings.ToLower(text)
	for _, rule := range keywordRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lowered, strings.ToLower(kw)) {
				return Classification{Action: rule.Action, Reply: rule.Reply}
			}
		}
	}
	return Classification{Action: ActionNone, Reply: "네, 어떻게 도와드릴까요?"}
}
