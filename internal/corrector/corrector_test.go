package corrector

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"oops/internal/logging"
	"oops/internal/model"
	"oops/internal/rules"
)

// fakeRule is a configurable Rule for exercising the orchestration.
type fakeRule struct {
	name           string
	priority       int
	disabled       bool
	requiresOutput bool
	match          func(*model.Command) bool
	fixes          func(*model.Command) []string
	matchCalls     *int
}

func (r fakeRule) Name() string           { return r.name }
func (r fakeRule) Priority() int          { return r.priority }
func (r fakeRule) EnabledByDefault() bool { return !r.disabled }
func (r fakeRule) RequiresOutput() bool   { return r.requiresOutput }

func (r fakeRule) Match(cmd *model.Command) bool {
	if r.matchCalls != nil {
		*r.matchCalls++
	}
	if r.match == nil {
		return true
	}
	return r.match(cmd)
}

func (r fakeRule) NewCommands(cmd *model.Command) []string {
	if r.fixes == nil {
		return nil
	}
	return r.fixes(cmd)
}

func fixed(scripts ...string) func(*model.Command) []string {
	return func(*model.Command) []string { return scripts }
}

// fakePolicy mirrors the settings semantics: exclusion wins, then explicit
// enablement, then ALL with the rule default.
type fakePolicy struct {
	all      bool
	enabled  map[string]bool
	excluded map[string]bool
	priority map[string]int
}

func (p fakePolicy) IsRuleEnabled(name string, enabledByDefault bool) bool {
	if p.excluded[name] {
		return false
	}
	return p.enabled[name] || (p.all && enabledByDefault)
}

func (p fakePolicy) RulePriority(name string, def int) int {
	if v, ok := p.priority[name]; ok {
		return v
	}
	return def
}

func names(enabled []EnabledRule) []string {
	out := make([]string, len(enabled))
	for i, r := range enabled {
		out[i] = r.Name()
	}
	return out
}

func TestEnabledRulesFilterAndOrder(t *testing.T) {
	catalog := []rules.Rule{
		fakeRule{name: "a", priority: 1000},
		fakeRule{name: "b", priority: 500},
		fakeRule{name: "c", priority: 1000},
		fakeRule{name: "off", priority: 10, disabled: true},
		fakeRule{name: "optin", priority: 1000, disabled: true},
		fakeRule{name: "excluded", priority: 1},
	}
	policy := fakePolicy{
		all:      true,
		enabled:  map[string]bool{"optin": true, "excluded": true},
		excluded: map[string]bool{"excluded": true},
		priority: map[string]int{"c": 100},
	}

	got := New(catalog, policy, nil).EnabledRules()
	assert.Equal(t, []string{"c", "b", "a", "optin"}, names(got))
	assert.Equal(t, 100, got[0].EffectivePriority)
}

func TestEnabledRulesStableForEqualPriority(t *testing.T) {
	var catalog []rules.Rule
	want := []string{"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7"}
	for _, n := range want {
		catalog = append(catalog, fakeRule{name: n, priority: rules.DefaultPriority})
	}
	assert.Equal(t, want, names(New(catalog, nil, nil).EnabledRules()))
}

func TestEnabledRulesWithoutAll(t *testing.T) {
	catalog := []rules.Rule{fakeRule{name: "a"}, fakeRule{name: "b"}}
	policy := fakePolicy{enabled: map[string]bool{"b": true}}
	assert.Equal(t, []string{"b"}, names(New(catalog, policy, nil).EnabledRules()))
}

func TestOrganize(t *testing.T) {
	in := []model.CorrectedCommand{
		{Script: "fix1", RuleName: "r1", Priority: 100},
		{Script: "fix1", RuleName: "r1", Priority: 200},
		{Script: "fix2", RuleName: "r2", Priority: 150},
	}
	want := []model.CorrectedCommand{
		{Script: "fix1", RuleName: "r1", Priority: 100},
		{Script: "fix2", RuleName: "r2", Priority: 150},
	}
	if diff := cmp.Diff(want, Organize(in)); diff != "" {
		t.Errorf("Organize() mismatch (-want +got):\n%s", diff)
	}
}

func TestOrganizeKeepsSameScriptFromDifferentRules(t *testing.T) {
	in := []model.CorrectedCommand{
		{Script: "ls", RuleName: "b", Priority: 300},
		{Script: "ls", RuleName: "a", Priority: 300},
		{Script: "ls -la", RuleName: "a", Priority: 100},
		{Script: "ls", RuleName: "b", Priority: 50},
	}
	want := []model.CorrectedCommand{
		{Script: "ls", RuleName: "b", Priority: 50},
		{Script: "ls -la", RuleName: "a", Priority: 100},
		{Script: "ls", RuleName: "a", Priority: 300},
	}
	if diff := cmp.Diff(want, Organize(in)); diff != "" {
		t.Errorf("Organize() mismatch (-want +got):\n%s", diff)
	}
	assert.NotNil(t, Organize(nil))
}

func TestCandidatePriorityScaling(t *testing.T) {
	catalog := []rules.Rule{
		fakeRule{name: "multi", priority: 1000, fixes: fixed("one", "two", "three")},
		fakeRule{name: "single", priority: 1500, fixes: fixed("other")},
	}
	got := New(catalog, nil, nil).GetCorrectedCommands(model.NewCommand("x"))
	want := []model.CorrectedCommand{
		{Script: "one", RuleName: "multi", Priority: 1000},
		{Script: "other", RuleName: "single", Priority: 1500},
		{Script: "two", RuleName: "multi", Priority: 2000},
		{Script: "three", RuleName: "multi", Priority: 3000},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetCorrectedCommands() mismatch (-want +got):\n%s", diff)
	}
}

func faultyCatalog() []rules.Rule {
	return []rules.Rule{
		fakeRule{name: "panics", priority: 1, match: func(*model.Command) bool {
			var parts []string
			return parts[3] == "boom"
		}},
		fakeRule{name: "bad_proposal", priority: 2, fixes: func(*model.Command) []string {
			panic("no fixes today")
		}},
		fakeRule{name: "healthy", priority: 3, fixes: fixed("fixed")},
	}
}

func TestFaultIsolation(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	got := New(faultyCatalog(), nil, zap.New(core)).GetCorrectedCommands(model.NewCommand("x"))
	require.Len(t, got, 1)
	assert.Equal(t, "healthy", got[0].RuleName)

	faults := logs.FilterMessage("Rule failed").All()
	require.Len(t, faults, 2)
	first := faults[0].ContextMap()
	assert.Equal(t, zapcore.DebugLevel, faults[0].Level)
	assert.Equal(t, "panics", first["rule"])
	assert.Equal(t, "match", first["phase"])
	assert.Contains(t, first["stack"], "goroutine")
	second := faults[1].ContextMap()
	assert.Equal(t, "bad_proposal", second["rule"])
	assert.Equal(t, "propose", second["phase"])
}

func TestFaultSilentWithoutDebug(t *testing.T) {
	quiet, err := logging.New(false)
	require.NoError(t, err)
	assert.False(t, quiet.Core().Enabled(zapcore.DebugLevel))

	// Same threshold as the non-debug logger, observed instead of written.
	core, logs := observer.New(zapcore.WarnLevel)
	got := New(faultyCatalog(), nil, zap.New(core)).GetCorrectedCommands(model.NewCommand("x"))
	require.Len(t, got, 1)
	assert.Zero(t, logs.Len())
}

func TestOutputGating(t *testing.T) {
	calls := 0
	catalog := []rules.Rule{
		fakeRule{name: "needs_output", requiresOutput: true, matchCalls: &calls, fixes: fixed("nope")},
	}
	c := New(catalog, nil, nil)

	got := c.GetCorrectedCommands(model.NewCommand("x"))
	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.Zero(t, calls)

	got = c.GetCorrectedCommands(model.NewCommandWithOutput("x", ""))
	assert.Len(t, got, 1)
	assert.Equal(t, 1, calls)
}

func TestGuard(t *testing.T) {
	v, fault := guard("r", "match", func() int { return 7 })
	assert.Equal(t, 7, v)
	assert.Nil(t, fault)

	_, fault = guard("r", "propose", func() int { panic("bad") })
	require.NotNil(t, fault)
	assert.Equal(t, "rule r panicked during propose: bad", fault.Error())
	assert.NotEmpty(t, fault.Stack)
}

func builtinCorrector() *Corrector {
	return New(rules.Builtin(rules.Options{}), fakePolicy{all: true}, nil)
}

func TestEndToEndCdParent(t *testing.T) {
	got := builtinCorrector().GetCorrectedCommands(model.NewCommand("cd.."))
	want := []model.CorrectedCommand{{Script: "cd ..", RuleName: "cd_parent", Priority: rules.DefaultPriority}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestEndToEndGitTypo(t *testing.T) {
	cmd := model.NewCommandWithOutput("git psuh origin main",
		"git: 'psuh' is not a git command. See 'git --help'.\n\nThe most similar command is\n\tpush\n")
	got := builtinCorrector().GetCorrectedCommands(cmd)
	require.NotEmpty(t, got)
	assert.Equal(t, "git push origin main", got[0].Script)
	assert.Equal(t, "git_not_command", got[0].RuleName)
}

func TestEndToEndPermissionDenied(t *testing.T) {
	cmd := model.NewCommandWithOutput("cat /etc/shadow", "Permission denied")
	got := builtinCorrector().GetCorrectedCommands(cmd)
	assert.Contains(t, got, model.CorrectedCommand{Script: "sudo cat /etc/shadow", RuleName: "sudo", Priority: rules.DefaultPriority})
}
