package handle

// EventType says what kind of notification an event carries. The values match
// the coordination service's wire-level event types; EventSession is the
// pseudo-type used for connection state changes.
type EventType int32

const (
	EventNodeCreated         EventType = 1
	EventNodeDeleted         EventType = 2
	EventNodeDataChanged     EventType = 3
	EventNodeChildrenChanged EventType = 4
	EventSession             EventType = -1
	EventNotWatching         EventType = -2
)

func (t EventType) String() string {
	switch t {
	case EventNodeCreated:
		return "node_created"
	case EventNodeDeleted:
		return "node_deleted"
	case EventNodeDataChanged:
		return "node_data_changed"
	case EventNodeChildrenChanged:
		return "node_children_changed"
	case EventSession:
		return "session"
	case EventNotWatching:
		return "not_watching"
	default:
		return "unknown"
	}
}

// Event is a single notification posted by a handle onto the event queue. For
// session events Path is empty and RequestID is the reserved global id. For
// watch notifications Path is the absolute server-side path, chroot prefix
// included, so the dispatch layer has to rewrite it before delivery.
type Event struct {
	Type      EventType
	State     State
	Path      string
	RequestID int64
	Err       error
}
