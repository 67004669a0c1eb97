// Package chroot rewrites paths for sessions that are scoped to a virtual
// sub-namespace. The C binding embeds the chroot prefix in the paths it
// returns; other bindings never do. We strip the prefix so callers see the
// same paths no matter which binding sits underneath.
package chroot

import (
	"fmt"
	"strings"
)

// Rewriter knows the chroot prefix of one connection. The prefix is derived
// from the host string once at construction, since the host never changes.
type Rewriter struct {
	prefix string
}

// New derives the chroot prefix from the configured host string. Everything
// from the first '/' onward is the prefix; a host with no '/' is not chrooted.
// A host ending in '/' is rejected, since the server would refuse the session.
func New(host string) (*Rewriter, error) {
	if host == "" {
		return nil, fmt.Errorf("host string is empty")
	}
	if strings.HasSuffix(host, "/") {
		return nil, fmt.Errorf("host string [%s] must not end with '/'", host)
	}
	prefix := ""
	if i := strings.Index(host, "/"); i >= 0 {
		prefix = host[i:]
	}
	return &Rewriter{prefix: prefix}, nil
}

// Prefix returns the chroot prefix, or the empty string when the session is
// not chrooted.
func (r *Rewriter) Prefix() string {
	return r.prefix
}

// Chrooted reports whether the session is scoped to a sub-namespace.
func (r *Rewriter) Chrooted() bool {
	return r.prefix != ""
}

// Strip removes the chroot prefix from a path returned by the handle. Paths
// that are empty or that don't start with the prefix come back unchanged.
func (r *Rewriter) Strip(path string) string {
	if r.prefix == "" || path == "" {
		return path
	}
	if !strings.HasPrefix(path, r.prefix) {
		return path
	}
	stripped := path[len(r.prefix):]
	if stripped == "" {
		// The path was exactly the chroot root.
		return "/"
	}
	if !strings.HasPrefix(stripped, "/") {
		// Prefix match on a sibling like "/appA2" when the chroot is "/appA".
		return path
	}
	return stripped
}
