package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mikekulinski/zkconn/pkg/handle"
	mock_handle "github.com/mikekulinski/zkconn/pkg/handle/mocks"
	"github.com/mikekulinski/zkconn/pkg/handletest"
	"github.com/mikekulinski/zkconn/pkg/watch"
)

// recordingWatcher is a comparable watcher that buffers deliveries.
type recordingWatcher struct {
	events chan handle.Event
}

func newRecordingWatcher() *recordingWatcher {
	return &recordingWatcher{events: make(chan handle.Event, 16)}
}

func (w *recordingWatcher) Process(ev handle.Event) {
	w.events <- ev
}

func newTestConnection(t *testing.T, host string, opts ...Option) (*Connection, *handletest.Ensemble) {
	t.Helper()
	ensemble := handletest.NewEnsemble()
	conn, err := New(host, append([]Option{WithProvider(ensemble.Provider())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, ensemble
}

func TestNew_RejectsTrailingSlashHost(t *testing.T) {
	providerCalled := false
	provider := func(host string, sink handle.EventSink) (handle.Handle, error) {
		providerCalled = true
		return nil, fmt.Errorf("should never get here")
	}

	tests := []struct {
		name string
		host string
	}{
		{
			name: "bare trailing slash",
			host: "cluster1:2181/",
		},
		{
			name: "chrooted trailing slash",
			host: "cluster1:2181/appA/",
		},
		{
			name: "empty",
			host: "",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			conn, err := New(test.host, WithProvider(provider))
			assert.Error(t, err)
			assert.Nil(t, conn)
			assert.False(t, providerCalled, "no handle may be created for a bad host")
		})
	}
}

func TestNew_ConnectFailurePropagates(t *testing.T) {
	ensemble := handletest.NewEnsemble()
	connectErr := errors.New("no route to ensemble")
	ensemble.FailConnects(connectErr)

	conn, err := New("cluster1:2181", WithProvider(ensemble.Provider()))
	assert.ErrorIs(t, err, connectErr)
	assert.Nil(t, conn)
}

func TestConnection_DelegatedOperations(t *testing.T) {
	conn, _ := newTestConnection(t, "cluster1:2181")

	created, err := conn.Create("/zoo", []byte("secrets"), 0, handle.WorldACL(handle.PermAll))
	require.NoError(t, err)
	assert.Equal(t, "/zoo", created)

	exists, st, err := conn.Exists("/zoo")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, int32(0), st.Version)

	data, _, err := conn.Get("/zoo")
	require.NoError(t, err)
	assert.Equal(t, []byte("secrets"), data)

	st, err = conn.Set("/zoo", []byte("more secrets"), 0)
	require.NoError(t, err)
	assert.Equal(t, int32(1), st.Version)

	_, err = conn.Create("/zoo/giraffe", nil, 0, nil)
	require.NoError(t, err)
	children, _, err := conn.Children("/zoo")
	require.NoError(t, err)
	assert.Equal(t, []string{"giraffe"}, children)

	acl, _, err := conn.GetACL("/zoo")
	require.NoError(t, err)
	assert.Equal(t, handle.WorldACL(handle.PermAll), acl)

	_, err = conn.SetACL("/zoo", handle.WorldACL(handle.PermRead), 0)
	require.NoError(t, err)

	_, err = conn.Sync("/zoo")
	require.NoError(t, err)

	require.NoError(t, conn.Delete("/zoo/giraffe", -1))
	require.NoError(t, conn.Delete("/zoo", -1))
}

func TestConnection_CreateStripsChroot(t *testing.T) {
	conn, ensemble := newTestConnection(t, "cluster1:2181/appA")

	created, err := conn.Create("/node1", []byte("hello"), 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "/node1", created)

	// The handle stored the node under the full server-side path.
	exists, _, err := ensemble.Tree().Exists("/appA/node1")
	require.NoError(t, err)
	assert.True(t, exists)

	// And reads through the connection resolve back into the namespace.
	data, _, err := conn.Get("/node1")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}

func TestConnection_SessionIdentity(t *testing.T) {
	conn, _ := newTestConnection(t, "cluster1:2181")

	id, err := conn.SessionID()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	passwd, err := conn.SessionPasswd()
	require.NoError(t, err)
	assert.Len(t, passwd, 16)

	// A reopen establishes a brand new session.
	_, err = conn.Reopen(time.Second, nil)
	require.NoError(t, err)
	id, err = conn.SessionID()
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
}

func TestReopen_RejectsDifferentWatcher(t *testing.T) {
	def := newRecordingWatcher()
	conn, ensemble := newTestConnection(t, "cluster1:2181", WithWatcher(def))
	require.Len(t, ensemble.Handles(), 1)

	_, err := conn.Reopen(time.Second, newRecordingWatcher())
	assert.ErrorIs(t, err, ErrWatcherMismatch)
	// The handle must be untouched by the failed reopen.
	assert.Len(t, ensemble.Handles(), 1)
	assert.False(t, ensemble.Current().Closed())

	// Passing the configured watcher (or nil) is fine.
	_, err = conn.Reopen(time.Second, def)
	assert.NoError(t, err)
	assert.Len(t, ensemble.Handles(), 2)
}

func TestReopen_ReplacesHandleAndClosesOld(t *testing.T) {
	conn, ensemble := newTestConnection(t, "cluster1:2181")

	st, err := conn.Reopen(time.Second, nil)
	require.NoError(t, err)
	assert.Equal(t, handle.StateConnected, st)

	handles := ensemble.Handles()
	require.Len(t, handles, 2)
	assert.True(t, handles[0].Closed())
	assert.False(t, handles[1].Closed())
	assert.True(t, conn.Connected())
}

func TestReopen_ClearsPerRequestWatchers(t *testing.T) {
	def := newRecordingWatcher()
	conn, _ := newTestConnection(t, "cluster1:2181", WithWatcher(def))

	require.NoError(t, conn.RegisterWatcher(7, newRecordingWatcher(), nil))
	require.NoError(t, conn.RegisterWatcher(8, newRecordingWatcher(), nil))
	require.Equal(t, 3, conn.Watchers().Len())

	_, err := conn.Reopen(time.Second, nil)
	require.NoError(t, err)

	// Exactly the reseeded global entry remains.
	assert.Equal(t, 1, conn.Watchers().Len())
	g, ok := conn.Watchers().Global()
	require.True(t, ok)
	assert.True(t, watch.Same(def, g))
}

func TestState_ClosedFastPathSkipsHandle(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockHandle := mock_handle.NewMockHandle(ctrl)
	provider := func(host string, sink handle.EventSink) (handle.Handle, error) {
		return mockHandle, nil
	}

	mockHandle.EXPECT().WaitUntilConnected(gomock.Any()).Return(nil)
	mockHandle.EXPECT().State().Return(handle.StateConnected)
	conn, err := New("cluster1:2181", WithProvider(provider))
	require.NoError(t, err)

	mockHandle.EXPECT().Closed().Return(false)
	mockHandle.EXPECT().Close().Return(nil)
	require.NoError(t, conn.Close())

	// No State expectation is set on the mock: any delegation here would
	// fail the test.
	assert.Equal(t, handle.StateClosed, conn.State())
	assert.True(t, conn.Closed())
}

func TestStatePredicates(t *testing.T) {
	conn, ensemble := newTestConnection(t, "cluster1:2181")

	assert.True(t, conn.Connected())
	assert.True(t, conn.Running())
	assert.False(t, conn.Connecting())
	assert.False(t, conn.Associating())

	ensemble.Current().SetState(handle.StateConnecting)
	assert.False(t, conn.Connected())
	assert.True(t, conn.Connecting())
	assert.True(t, conn.Running())

	ensemble.Current().SetState(handle.StateAssociating)
	assert.True(t, conn.Associating())

	ensemble.Current().SetState(handle.StateExpired)
	assert.False(t, conn.Running())

	require.NoError(t, conn.Close())
	assert.False(t, conn.Connected())
	assert.False(t, conn.Running())
}

func TestAssertOpen(t *testing.T) {
	tests := []struct {
		name          string
		state         handle.State
		expectedError error
	}{
		{
			name:  "connected",
			state: handle.StateConnected,
		},
		{
			name:          "expired",
			state:         handle.StateExpired,
			expectedError: ErrSessionExpired,
		},
		{
			name:          "connecting",
			state:         handle.StateConnecting,
			expectedError: ErrNotConnected,
		},
		{
			name:          "auth failed",
			state:         handle.StateAuthFailed,
			expectedError: ErrNotConnected,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			conn, ensemble := newTestConnection(t, "cluster1:2181")
			ensemble.Current().SetState(test.state)

			err := conn.AssertOpen()
			if test.expectedError != nil {
				assert.ErrorIs(t, err, test.expectedError)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAssertOpen_Closed(t *testing.T) {
	conn, _ := newTestConnection(t, "cluster1:2181")
	require.NoError(t, conn.Close())
	assert.ErrorIs(t, conn.AssertOpen(), ErrConnectionClosed)
}

func TestFork_PoisonsConnectionUntilReopen(t *testing.T) {
	pid := 100
	var mu sync.Mutex
	pidFn := func() int {
		mu.Lock()
		defer mu.Unlock()
		return pid
	}

	conn, ensemble := newTestConnection(t, "cluster1:2181", WithPIDSource(pidFn))

	_, err := conn.Create("/before", nil, 0, nil)
	require.NoError(t, err)

	// Simulate the fork: the connection now lives in a child process.
	mu.Lock()
	pid = 101
	mu.Unlock()

	_, _, err = conn.Get("/before")
	assert.ErrorIs(t, err, ErrInheritedConnection)
	assert.ErrorIs(t, conn.AssertOpen(), ErrInheritedConnection)
	_, _, err = conn.Children("/")
	assert.ErrorIs(t, err, ErrInheritedConnection)

	// Reopen runs post-fork recovery and revives the connection.
	_, err = conn.Reopen(time.Second, nil)
	require.NoError(t, err)
	require.Len(t, ensemble.Handles(), 2)

	_, _, err = conn.Get("/before")
	assert.NoError(t, err)
	assert.NoError(t, conn.AssertOpen())
}

func TestClose_BlocksUntilHandleClosed(t *testing.T) {
	ensemble := handletest.NewEnsemble()
	conn, err := New("cluster1:2181", WithProvider(ensemble.Provider()))
	require.NoError(t, err)

	require.NoError(t, conn.Close())

	assert.True(t, conn.Closed())
	assert.True(t, ensemble.Current().Closed())
	assert.False(t, conn.dispatcher.Alive())
	assert.Equal(t, handle.StateClosed, conn.State())

	// Guarded operations refuse to run afterwards.
	_, _, err = conn.Get("/x")
	assert.ErrorIs(t, err, ErrConnectionClosed)
}

func TestForceClose_SkipsDispatcherShutdown(t *testing.T) {
	ensemble := handletest.NewEnsemble()
	conn, err := New("cluster1:2181", WithProvider(ensemble.Provider()))
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.ForceClose())

	assert.True(t, conn.Closed())
	assert.True(t, ensemble.Current().Closed())
	// The dispatch goroutine keeps running; only the handle went away.
	assert.True(t, conn.dispatcher.Alive())
}

func TestReopen_AfterClose(t *testing.T) {
	conn, ensemble := newTestConnection(t, "cluster1:2181")

	_, err := conn.Create("/persistent", nil, 0, nil)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	st, err := conn.Reopen(time.Second, nil)
	require.NoError(t, err)
	assert.Equal(t, handle.StateConnected, st)
	assert.False(t, conn.Closed())

	// Data on the ensemble survived the close/reopen cycle.
	exists, _, err := conn.Exists("/persistent")
	require.NoError(t, err)
	assert.True(t, exists)
	require.Len(t, ensemble.Handles(), 2)
}

func TestSetDefaultGlobalWatcher(t *testing.T) {
	first := newRecordingWatcher()
	conn, _ := newTestConnection(t, "cluster1:2181", WithWatcher(first))

	second := newRecordingWatcher()
	conn.SetDefaultGlobalWatcher(second)

	g, ok := conn.Watchers().Global()
	require.True(t, ok)
	assert.True(t, watch.Same(second, g))

	// The replacement sticks across a reopen.
	_, err := conn.Reopen(time.Second, nil)
	require.NoError(t, err)
	g, ok = conn.Watchers().Global()
	require.True(t, ok)
	assert.True(t, watch.Same(second, g))
}

// TestConcurrentRPCsDuringReopen exercises the swap atomicity contract: RPCs
// racing a reopen either run against the old handle or block and run against
// the new one, but never observe a torn handle reference.
func TestConcurrentRPCsDuringReopen(t *testing.T) {
	conn, _ := newTestConnection(t, "cluster1:2181")
	_, err := conn.Create("/contended", nil, 0, nil)
	require.NoError(t, err)

	const callers = 8
	const callsPerCaller = 50

	var wg sync.WaitGroup
	errs := make(chan error, callers*callsPerCaller+10)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < callsPerCaller; j++ {
				if _, _, err := conn.Exists("/contended"); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 5; j++ {
			if _, err := conn.Reopen(time.Second, nil); err != nil {
				errs <- err
			}
		}
	}()

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("unexpected error during concurrent reopen: %v", err)
	}
}
