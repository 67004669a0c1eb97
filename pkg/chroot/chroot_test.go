package chroot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PrefixDerivation(t *testing.T) {
	tests := []struct {
		name           string
		host           string
		expectedPrefix string
		errorExpected  bool
	}{
		{
			name:           "no chroot",
			host:           "cluster1:2181",
			expectedPrefix: "",
		},
		{
			name:           "single level chroot",
			host:           "cluster1:2181/appA",
			expectedPrefix: "/appA",
		},
		{
			name:           "nested chroot",
			host:           "cluster1:2181/apps/appA",
			expectedPrefix: "/apps/appA",
		},
		{
			name:           "server list with chroot",
			host:           "zk1:2181,zk2:2181,zk3:2181/appA",
			expectedPrefix: "/appA",
		},
		{
			name:          "trailing slash",
			host:          "cluster1:2181/",
			errorExpected: true,
		},
		{
			name:          "trailing slash after chroot",
			host:          "cluster1:2181/appA/",
			errorExpected: true,
		},
		{
			name:          "empty host",
			host:          "",
			errorExpected: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r, err := New(test.host)
			if test.errorExpected {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expectedPrefix, r.Prefix())
			assert.Equal(t, test.expectedPrefix != "", r.Chrooted())
		})
	}
}

func TestStrip(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		path     string
		expected string
	}{
		{
			name:     "path under the prefix",
			host:     "cluster1:2181/appA",
			path:     "/appA/node1",
			expected: "/node1",
		},
		{
			name:     "path outside the prefix",
			host:     "cluster1:2181/appA",
			path:     "/other",
			expected: "/other",
		},
		{
			name:     "sibling namespace sharing the prefix text",
			host:     "cluster1:2181/appA",
			path:     "/appA2/node1",
			expected: "/appA2/node1",
		},
		{
			name:     "exactly the chroot root",
			host:     "cluster1:2181/appA",
			path:     "/appA",
			expected: "/",
		},
		{
			name:     "empty path",
			host:     "cluster1:2181/appA",
			path:     "",
			expected: "",
		},
		{
			name:     "not chrooted",
			host:     "cluster1:2181",
			path:     "/appA/node1",
			expected: "/appA/node1",
		},
		{
			name:     "nested chroot",
			host:     "cluster1:2181/apps/appA",
			path:     "/apps/appA/node1",
			expected: "/node1",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r, err := New(test.host)
			require.NoError(t, err)
			assert.Equal(t, test.expected, r.Strip(test.path))
		})
	}
}
