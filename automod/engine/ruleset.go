package engine

import (
	"context"
	"fmt"

	"github.com/bluesky-social/labelbot/automod/post"
)

// Rules return zero or more labels for a post. A nil or empty result means "no opinion". An error also means "no opinion", and gets logged.
type RuleFunc = func(ctx context.Context, p *post.Post) ([]string, error)

type RuleKind int

const (
	// Labels accumulate, and evaluation continues with the next rule.
	Additive RuleKind = iota
	// Any labels from this rule are the complete result, and no further rules are run.
	Terminal
)

func (k RuleKind) String() string {
	switch k {
	case Additive:
		return "additive"
	case Terminal:
		return "terminal"
	default:
		return fmt.Sprintf("RuleKind(%d)", int(k))
	}
}

type Rule struct {
	Name string
	Kind RuleKind
	Func RuleFunc
}

// Holds the ordered list of rules to run against each post. Order is priority: earlier rules run first.
type RuleSet struct {
	Rules []Rule
}

// Names of all rules, in evaluation order.
func (r *RuleSet) Names() []string {
	out := make([]string, 0, len(r.Rules))
	for _, rule := range r.Rules {
		out = append(out, rule.Name)
	}
	return out
}

// Runs a single rule, converting any panic in to an error.
func (rule *Rule) call(ctx context.Context, p *post.Post) (labels []string, err error) {
	// similar to an HTTP server, we want to recover any panics from rule execution
	defer func() {
		if r := recover(); r != nil {
			labels = nil
			err = fmt.Errorf("rule panic: %v", r)
		}
	}()
	if rule.Func == nil {
		return nil, nil
	}
	return rule.Func(ctx, p)
}
