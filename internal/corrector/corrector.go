// Package corrector turns a failed command into a ranked list of fixes by
// running every enabled rule against it.
package corrector

import (
	"fmt"
	"runtime/debug"
	"sort"

	"go.uber.org/zap"

	"oops/internal/model"
	"oops/internal/rules"
)

// Policy is the resolved view of user settings the Corrector consults.
type Policy interface {
	// IsRuleEnabled applies exclusion, explicit enablement and the ALL
	// setting to a rule.
	IsRuleEnabled(name string, enabledByDefault bool) bool
	// RulePriority returns the configured priority for name, or def.
	RulePriority(name string, def int) int
}

// defaultPolicy enables every rule that is on by default, at its own priority.
type defaultPolicy struct{}

func (defaultPolicy) IsRuleEnabled(_ string, enabledByDefault bool) bool { return enabledByDefault }
func (defaultPolicy) RulePriority(_ string, def int) int                 { return def }

// RuleFault records a panic raised inside a rule.
type RuleFault struct {
	Rule  string
	Phase string // "match" or "propose"
	Value any
	Stack []byte
}

func (f *RuleFault) Error() string {
	return fmt.Sprintf("rule %s panicked during %s: %v", f.Rule, f.Phase, f.Value)
}

// guard calls fn and converts a panic into a RuleFault.
func guard[T any](rule, phase string, fn func() T) (result T, fault *RuleFault) {
	defer func() {
		if v := recover(); v != nil {
			fault = &RuleFault{Rule: rule, Phase: phase, Value: v, Stack: debug.Stack()}
		}
	}()
	return fn(), nil
}

// EnabledRule is a rule together with the priority it runs at.
type EnabledRule struct {
	rules.Rule
	EffectivePriority int
}

// Corrector runs a rule catalog against commands. It keeps no state between
// calls.
type Corrector struct {
	catalog []rules.Rule
	policy  Policy
	logger  *zap.Logger
}

// New returns a Corrector over catalog. A nil policy enables the rules that
// are on by default; a nil logger discards logs.
func New(catalog []rules.Rule, policy Policy, logger *zap.Logger) *Corrector {
	if policy == nil {
		policy = defaultPolicy{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Corrector{catalog: catalog, policy: policy, logger: logger}
}

// EnabledRules returns the rules the policy turns on, ordered by effective
// priority. Rules with equal priority keep their catalog order.
func (c *Corrector) EnabledRules() []EnabledRule {
	var enabled []EnabledRule
	for _, r := range c.catalog {
		if !c.policy.IsRuleEnabled(r.Name(), r.EnabledByDefault()) {
			continue
		}
		enabled = append(enabled, EnabledRule{
			Rule:              r,
			EffectivePriority: c.policy.RulePriority(r.Name(), r.Priority()),
		})
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].EffectivePriority < enabled[j].EffectivePriority
	})
	return enabled
}

// GetCorrectedCommands returns the organized fixes for cmd. The result is
// never nil; an empty slice means no rule had a fix.
func (c *Corrector) GetCorrectedCommands(cmd *model.Command) []model.CorrectedCommand {
	candidates := []model.CorrectedCommand{}
	for _, r := range c.EnabledRules() {
		if !c.isMatch(r, cmd) {
			continue
		}
		candidates = append(candidates, c.correctedFromRule(r, cmd)...)
	}
	return Organize(candidates)
}

func (c *Corrector) isMatch(r EnabledRule, cmd *model.Command) bool {
	if r.RequiresOutput() && !cmd.HasOutput() {
		c.logger.Debug("Skipping rule without output", zap.String("rule", r.Name()))
		return false
	}
	matched, fault := guard(r.Name(), "match", func() bool {
		return r.Match(cmd)
	})
	if fault != nil {
		c.logFault(fault)
		return false
	}
	if matched {
		c.logger.Debug("Rule matched", zap.String("rule", r.Name()))
	}
	return matched
}

// correctedFromRule turns a matched rule's proposals into candidates. The
// proposal at index i gets priority (i+1) times the rule's priority.
func (c *Corrector) correctedFromRule(r EnabledRule, cmd *model.Command) []model.CorrectedCommand {
	scripts, fault := guard(r.Name(), "propose", func() []string {
		return r.NewCommands(cmd)
	})
	if fault != nil {
		c.logFault(fault)
		return nil
	}

	corrected := make([]model.CorrectedCommand, 0, len(scripts))
	for i, script := range scripts {
		corrected = append(corrected, model.CorrectedCommand{
			Script:   script,
			RuleName: r.Name(),
			Priority: (i + 1) * r.EffectivePriority,
		})
	}
	return corrected
}

// logFault records a rule fault for --debug runs only; a failing rule
// never surfaces to the user.
func (c *Corrector) logFault(f *RuleFault) {
	c.logger.Debug("Rule failed",
		zap.String("rule", f.Rule),
		zap.String("phase", f.Phase),
		zap.Any("panic", f.Value),
		zap.ByteString("stack", f.Stack),
	)
}

// Organize sorts candidates by priority and drops repeats of the same
// script from the same rule, keeping the first one seen.
func Organize(candidates []model.CorrectedCommand) []model.CorrectedCommand {
	sorted := make([]model.CorrectedCommand, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})

	type key struct{ script, rule string }
	seen := make(map[key]bool, len(sorted))
	organized := make([]model.CorrectedCommand, 0, len(sorted))
	for _, cc := range sorted {
		k := key{cc.Script, cc.RuleName}
		if seen[k] {
			continue
		}
		seen[k] = true
		organized = append(organized, cc)
	}
	return organized
}
