package verify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFailureMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		f    Failure
		want string
	}{
		{Failure{Kind: NotADirectory, Path: "a"}, "a is not a directory"},
		{Failure{Kind: NotAFile, Path: "a/f"}, "a/f is not a file"},
		{Failure{Kind: NotALink, Path: "name3"}, "name3 is not a link"},
		{Failure{Kind: PermissionMismatch, Path: "a", Expected: "755", Actual: "700"}, "a has permission 700, expected 755"},
		{Failure{Kind: OwnerMismatch, Path: "a", Expected: "root"}, "a is not owned by root user"},
		{Failure{Kind: GroupMismatch, Path: "a", Expected: "normal"}, "a is not owned by normal group"},
		{Failure{Kind: ContentMismatch, Path: "a/f"}, "a/f has wrong content"},
		{Failure{Kind: TargetMismatch, Path: "l", Expected: "/x", Actual: "/y"}, "l should point to /x, but points to /y"},
	}

	for _, tt := range tests {
		t.Run(tt.f.Kind.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.f.Error())
		})
	}
}

func TestKind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "NotALink", NotALink.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestAsFailure(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("post: %w", &Failure{Kind: NotALink, Path: "x"})
	f, ok := AsFailure(wrapped)
	assert.True(t, ok)
	assert.Equal(t, NotALink, f.Kind)

	_, ok = AsFailure(fmt.Errorf("plain"))
	assert.False(t, ok)
}
