package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markus41/flowcanvas/internal/canvas/core"
	"github.com/markus41/flowcanvas/internal/canvas/store"
)

func TestCreateAndGet(t *testing.T) {
	m := NewManager()
	sess := m.Create()
	require.NotEmpty(t, sess.ID)
	require.NotNil(t, sess.Store)

	got, err := m.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	_, err = m.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	m := NewManager()
	sess := m.Create()

	require.NoError(t, m.Delete(sess.ID))
	_, err := m.Get(sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, m.Delete(sess.ID), ErrNotFound)
}

func TestList(t *testing.T) {
	m := NewManager()
	first := m.Create()
	second := m.Create()

	sessions := m.List()
	require.Len(t, sessions, 2)
	ids := []string{sessions[0].ID, sessions[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
	assert.False(t, sessions[1].Created.Before(sessions[0].Created))
}

func TestSubscribeReceivesStoreEvents(t *testing.T) {
	m := NewManager()
	sess := m.Create()

	subID, events, err := m.Subscribe(sess.ID)
	require.NoError(t, err)
	defer m.Unsubscribe(sess.ID, subID)

	sess.Store.AddNode(core.Node{ID: "a", Type: "task"})

	select {
	case e := <-events:
		assert.Equal(t, store.EventNodeAdded, e.Type)
		assert.Equal(t, "a", e.NodeID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestSubscribeUnknownSession(t *testing.T) {
	m := NewManager()
	_, _, err := m.Subscribe("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	m := NewManager()
	sess := m.Create()
	subID, events, err := m.Subscribe(sess.ID)
	require.NoError(t, err)

	m.Unsubscribe(sess.ID, subID)

	_, open := <-events
	assert.False(t, open)
}

func TestDeleteClosesSubscribers(t *testing.T) {
	m := NewManager()
	sess := m.Create()
	_, events, err := m.Subscribe(sess.ID)
	require.NoError(t, err)

	require.NoError(t, m.Delete(sess.ID))

	_, open := <-events
	assert.False(t, open)
}

func TestHistoryLimitPropagates(t *testing.T) {
	m := NewManager(WithHistoryLimit(2))
	sess := m.Create()

	for i := 0; i < 5; i++ {
		sess.Store.AddNode(core.Node{ID: string(rune('a' + i)), Type: "task"})
	}

	undos := 0
	for sess.Store.Undo() {
		undos++
	}
	assert.Equal(t, 2, undos)
}
