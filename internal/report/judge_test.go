package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dotverify/internal/harness"
)

func passed() *harness.Verdict {
	return &harness.Verdict{Scenario: "s", Success: true}
}

func failed(phase harness.Phase, cause string) *harness.Verdict {
	return &harness.Verdict{Scenario: "s", Phase: phase, Cause: cause}
}

func TestExpectSuccess(t *testing.T) {
	t.Parallel()

	assert.True(t, ExpectSuccess("s", passed()).Passed)

	o := ExpectSuccess("s", failed(harness.PhasePost, "name3 is not a link"))
	assert.False(t, o.Passed)
	assert.Empty(t, o.Message)
}

func TestExpectFailure(t *testing.T) {
	t.Parallel()

	want := harness.Expectation{Phase: harness.PhaseRun, Cause: "exit status 1"}

	tests := []struct {
		name    string
		verdict *harness.Verdict
		passed  bool
		message string
	}{
		{"same cause", failed(harness.PhaseRun, "exit status 1"), true, ""},
		{"same cause other phase", failed(harness.PhasePost, "exit status 1"), true, ""},
		{"different cause", failed(harness.PhaseRun, "exit status 2"), false, WrongError},
		{"no failure", passed(), false, NotRaised},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			o := ExpectFailure("s", tt.verdict, want)
			assert.Equal(t, tt.passed, o.Passed)
			assert.Equal(t, tt.message, o.Message)
		})
	}
}

func TestJudge(t *testing.T) {
	t.Parallel()

	assert.True(t, Judge("s", passed(), harness.Expectation{Success: true}).Passed)
	assert.False(t, Judge("s", passed(), harness.Expectation{Cause: "x"}).Passed)
	assert.True(t, Judge("s", failed(harness.PhasePre, "x"), harness.Expectation{Cause: "x"}).Passed)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize([]Outcome{{Passed: true}, {Passed: false}, {Passed: true}})
	assert.Equal(t, Summary{Passed: 2, Failed: 1}, s)
	assert.False(t, s.OK())
	assert.True(t, Summarize(nil).OK())
}
