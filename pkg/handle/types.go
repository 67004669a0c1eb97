package handle

// ClientID identifies one session to the ensemble. A client that still holds
// the id and password of a live session can reattach to it after losing its
// connection, which is how session state survives a server failover.
type ClientID struct {
	SessionID int64
	Passwd    []byte
}

// Stat is the metadata the server tracks for every znode.
type Stat struct {
	// Czxid and Mzxid are the transaction ids of the create and of the last
	// modification of this znode.
	Czxid int64
	Mzxid int64
	// Ctime and Mtime are in milliseconds since the epoch.
	Ctime int64
	Mtime int64
	// Version counts data writes, Cversion child-list changes, and Aversion
	// ACL changes.
	Version  int32
	Cversion int32
	Aversion int32
	// EphemeralOwner is the session id of the owner if the znode is
	// ephemeral, and zero otherwise.
	EphemeralOwner int64
	DataLength     int32
	NumChildren    int32
	Pzxid          int64
}

// Permission bits for ACL entries.
const (
	PermRead   int32 = 1 << iota // can read data and list children
	PermWrite                    // can write data
	PermCreate                   // can create children
	PermDelete                   // can delete children
	PermAdmin                    // can set ACLs
	PermAll    = PermRead | PermWrite | PermCreate | PermDelete | PermAdmin
)

// ACL is a single access control entry on a znode.
type ACL struct {
	Perms  int32
	Scheme string
	ID     string
}

// WorldACL returns an ACL list granting perms to everyone.
func WorldACL(perms int32) []ACL {
	return []ACL{{Perms: perms, Scheme: "world", ID: "anyone"}}
}

// Flags for Create.
const (
	FlagEphemeral int32 = 1 << iota
	FlagSequential
)
