package tree

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPermission(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mode fs.FileMode
		want Permission
	}{
		{"dir_755", fs.ModeDir | 0755, "755"},
		{"file_644", 0644, "644"},
		{"private", 0600, "600"},
		{"leading_zero_digit", 0044, "044"},
		{"none", 0, "000"},
		{"setuid_dropped", fs.ModeSetuid | 0755, "755"},
		{"sticky_dropped", fs.ModeSticky | 0777, "777"},
		{"symlink", fs.ModeSymlink | 0777, "777"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatPermission(tt.mode))
		})
	}
}

func TestParsePermission(t *testing.T) {
	t.Parallel()

	valid := map[string]Permission{
		"644":   "644",
		"0644":  "644",
		"0o755": "755",
		" 700 ": "700",
		"000":   "000",
	}
	for in, want := range valid {
		got, err := ParsePermission(in)
		require.NoError(t, err, "ParsePermission(%q)", in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"", "64", "6444", "648", "rwx", "1755"} {
		_, err := ParsePermission(in)
		assert.Error(t, err, "ParsePermission(%q) should fail", in)
	}
}

func TestOwnerClass(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Privileged, ClassOf(0))
	assert.Equal(t, Normal, ClassOf(1000))
	assert.Equal(t, "root", Privileged.String())
	assert.Equal(t, "normal", Normal.String())

	o := Ownership{OwnedByRoot: true}
	assert.Equal(t, Privileged, o.UserClass())
	assert.Equal(t, Normal, o.GroupClass())
}

func TestDigest(t *testing.T) {
	t.Parallel()

	// md5("") and md5("hello\n")
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", DigestBytes(nil))
	assert.Equal(t, "b1946ac92492d2347c6235b4d2611184", DigestBytes([]byte("hello\n")))

	assert.True(t, IsDigest("b1946ac92492d2347c6235b4d2611184"))
	assert.False(t, IsDigest("B1946AC92492D2347C6235B4D2611184"), "uppercase is rejected")
	assert.False(t, IsDigest("b1946ac9"), "short digest is rejected")
	assert.False(t, IsDigest("g1946ac92492d2347c6235b4d2611184"), "non-hex is rejected")
}
