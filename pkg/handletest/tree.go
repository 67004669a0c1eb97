package handletest

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mikekulinski/zkconn/pkg/handle"
)

var (
	ErrNoNode     = errors.New("zkconn: node does not exist")
	ErrNodeExists = errors.New("zkconn: node already exists")
	ErrBadVersion = errors.New("zkconn: version conflict")
	ErrNotEmpty   = errors.New("zkconn: node has children")
	ErrNoChildren = errors.New("zkconn: ephemeral nodes may not have children")
)

type node struct {
	name     string
	data     []byte
	acl      []handle.ACL
	children map[string]*node

	version  int32
	cversion int32
	aversion int32

	czxid int64
	mzxid int64
	ctime int64
	mtime int64

	// ephemeralOwner is the session id of the creating session for ephemeral
	// nodes, zero otherwise.
	ephemeralOwner int64
	nextSequential int
}

func newNode(name string, data []byte, acl []handle.ACL, owner int64, zxid int64) *node {
	now := time.Now().UnixMilli()
	return &node{
		name: name,
		data: data,
		acl:  acl,
		// Init the children to an empty map instead of nil to avoid panics
		// when writing to a nil map.
		children:       map[string]*node{},
		czxid:          zxid,
		mzxid:          zxid,
		ctime:          now,
		mtime:          now,
		ephemeralOwner: owner,
	}
}

func (n *node) stat() *handle.Stat {
	return &handle.Stat{
		Czxid:          n.czxid,
		Mzxid:          n.mzxid,
		Ctime:          n.ctime,
		Mtime:          n.mtime,
		Version:        n.version,
		Cversion:       n.cversion,
		Aversion:       n.aversion,
		EphemeralOwner: n.ephemeralOwner,
		DataLength:     int32(len(n.data)),
		NumChildren:    int32(len(n.children)),
	}
}

// Tree is the in-memory znode store behind the fake handles. One Tree plays
// the role of the ensemble: it outlives any individual handle, so data
// survives a reopen the way it would against a real server.
type Tree struct {
	mu   sync.RWMutex
	root *node
	zxid int64
}

func NewTree() *Tree {
	return &Tree{root: newNode("", nil, handle.WorldACL(handle.PermAll), 0, 0)}
}

// validatePath verifies that a path is absolute and well formed.
func validatePath(path string) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("path does not start at the root")
	}
	if path == "/" {
		return nil
	}
	if strings.HasSuffix(path, "/") {
		return fmt.Errorf("path should end in a node name, not '/'")
	}
	for _, name := range strings.Split(path, "/")[1:] {
		if name == "" {
			return fmt.Errorf("path contains an empty node name")
		}
	}
	return nil
}

func splitPathIntoNodeNames(path string) []string {
	if path == "/" {
		return nil
	}
	// Since we have a leading /, the first element of the split is empty.
	return strings.Split(path, "/")[1:]
}

// findNode searches down the tree and returns the node named by names, or nil
// if any step is missing. Callers hold the tree lock.
func findNode(start *node, names []string) *node {
	n := start
	for _, name := range names {
		child, ok := n.children[name]
		if !ok {
			return nil
		}
		n = child
	}
	return n
}

// isValidVersion implements the conditional check for write operations: -1
// skips the check, anything else must match exactly.
func isValidVersion(expected, actual int32) bool {
	return expected == -1 || expected == actual
}

// Create adds a znode and returns the path actually created, which differs
// from the requested one for sequential nodes.
func (t *Tree) Create(path string, data []byte, flags int32, acl []handle.ACL, owner int64) (string, error) {
	if err := validatePath(path); err != nil {
		return "", err
	}
	if path == "/" {
		return "", ErrNodeExists
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	names := splitPathIntoNodeNames(path)
	parent := findNode(t.root, names[:len(names)-1])
	if parent == nil {
		return "", fmt.Errorf("%w: missing ancestor of [%s]", ErrNoNode, path)
	}
	if parent.ephemeralOwner != 0 {
		return "", ErrNoChildren
	}

	newName := names[len(names)-1]
	if flags&handle.FlagSequential != 0 {
		newName = fmt.Sprintf("%s%010d", newName, parent.nextSequential)
	}
	if _, ok := parent.children[newName]; ok {
		return "", fmt.Errorf("%w: [%s] at [%s]", ErrNodeExists, newName, path)
	}

	t.zxid++
	var ephemeralOwner int64
	if flags&handle.FlagEphemeral != 0 {
		ephemeralOwner = owner
	}
	if len(acl) == 0 {
		acl = handle.WorldACL(handle.PermAll)
	}
	parent.children[newName] = newNode(newName, data, acl, ephemeralOwner, t.zxid)
	if flags&handle.FlagSequential != 0 {
		parent.nextSequential++
	}
	parent.cversion++

	return newFullName(newName, names[:len(names)-1]), nil
}

// EnsurePath creates any missing nodes along path as plain persistent nodes,
// the way an operator provisions a chroot before pointing clients at it.
// Nodes that already exist are left untouched.
func (t *Tree) EnsurePath(path string) error {
	if err := validatePath(path); err != nil {
		return err
	}
	full := ""
	for _, name := range splitPathIntoNodeNames(path) {
		full += "/" + name
		if _, err := t.Create(full, nil, 0, nil, 0); err != nil && !errors.Is(err, ErrNodeExists) {
			return err
		}
	}
	return nil
}

func newFullName(nodeName string, ancestors []string) string {
	if len(ancestors) == 0 {
		return "/" + nodeName
	}
	return "/" + strings.Join(ancestors, "/") + "/" + nodeName
}

// Delete removes a leaf znode if the version matches.
func (t *Tree) Delete(path string, version int32) error {
	if err := validatePath(path); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	names := splitPathIntoNodeNames(path)
	parent := findNode(t.root, names[:len(names)-1])
	if parent == nil {
		return fmt.Errorf("%w: missing ancestor of [%s]", ErrNoNode, path)
	}
	name := names[len(names)-1]
	n, ok := parent.children[name]
	if !ok {
		return fmt.Errorf("%w: [%s]", ErrNoNode, path)
	}
	if !isValidVersion(version, n.version) {
		return fmt.Errorf("%w: expected [%d], actual [%d]", ErrBadVersion, version, n.version)
	}
	if len(n.children) > 0 {
		return ErrNotEmpty
	}
	delete(parent.children, name)
	parent.cversion++
	t.zxid++
	return nil
}

// Get returns the data and metadata of a znode.
func (t *Tree) Get(path string) ([]byte, *handle.Stat, error) {
	if err := validatePath(path); err != nil {
		return nil, nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	n := findNode(t.root, splitPathIntoNodeNames(path))
	if n == nil {
		return nil, nil, fmt.Errorf("%w: [%s]", ErrNoNode, path)
	}
	return n.data, n.stat(), nil
}

// Set writes data to a znode if the version matches.
func (t *Tree) Set(path string, data []byte, version int32) (*handle.Stat, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	n := findNode(t.root, splitPathIntoNodeNames(path))
	if n == nil {
		return nil, fmt.Errorf("%w: [%s]", ErrNoNode, path)
	}
	if !isValidVersion(version, n.version) {
		return nil, fmt.Errorf("%w: expected [%d], actual [%d]", ErrBadVersion, version, n.version)
	}
	n.data = data
	n.version++
	t.zxid++
	n.mzxid = t.zxid
	n.mtime = time.Now().UnixMilli()
	return n.stat(), nil
}

// Exists reports whether a znode exists.
func (t *Tree) Exists(path string) (bool, *handle.Stat, error) {
	if err := validatePath(path); err != nil {
		return false, nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	n := findNode(t.root, splitPathIntoNodeNames(path))
	if n == nil {
		return false, nil, nil
	}
	return true, n.stat(), nil
}

// Children returns the sorted child names of a znode.
func (t *Tree) Children(path string) ([]string, *handle.Stat, error) {
	if err := validatePath(path); err != nil {
		return nil, nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	n := findNode(t.root, splitPathIntoNodeNames(path))
	if n == nil {
		return nil, nil, fmt.Errorf("%w: [%s]", ErrNoNode, path)
	}
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, n.stat(), nil
}

// GetACL returns the ACL of a znode.
func (t *Tree) GetACL(path string) ([]handle.ACL, *handle.Stat, error) {
	if err := validatePath(path); err != nil {
		return nil, nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	n := findNode(t.root, splitPathIntoNodeNames(path))
	if n == nil {
		return nil, nil, fmt.Errorf("%w: [%s]", ErrNoNode, path)
	}
	return n.acl, n.stat(), nil
}

// SetACL replaces the ACL of a znode if the ACL version matches.
func (t *Tree) SetACL(path string, acl []handle.ACL, version int32) (*handle.Stat, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	n := findNode(t.root, splitPathIntoNodeNames(path))
	if n == nil {
		return nil, fmt.Errorf("%w: [%s]", ErrNoNode, path)
	}
	if !isValidVersion(version, n.aversion) {
		return nil, fmt.Errorf("%w: expected [%d], actual [%d]", ErrBadVersion, version, n.aversion)
	}
	n.acl = acl
	n.aversion++
	return n.stat(), nil
}

// DeleteEphemerals removes every ephemeral znode owned by the given session.
// The real server does this when a session dies.
func (t *Tree) DeleteEphemerals(sessionID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	deleteEphemerals(t.root, sessionID)
}

func deleteEphemerals(n *node, sessionID int64) {
	for name, child := range n.children {
		if child.ephemeralOwner == sessionID {
			// Ephemeral nodes cannot have children, safe to drop outright.
			delete(n.children, name)
			n.cversion++
			continue
		}
		deleteEphemerals(child, sessionID)
	}
}
