// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teambrain/knowledgesync/pkg/types"
)

func TestSubscribeFiresOnAdd(t *testing.T) {
	store := newTestStore(t)

	var got []types.Entry
	store.Subscribe("Docker", func(e types.Entry) {
		got = append(got, e)
	})

	added, err := store.Add("docker build cache misses on COPY", AddOptions{
		Topics: []string{"docker", "caching"},
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, added.ID, got[0].ID)
	assert.Equal(t, added.Content, got[0].Content)

	// A non-matching topic stays quiet.
	_, err = store.Add("unrelated note about scheduling", AddOptions{Topics: []string{"cron"}})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSubscribeFiresOnUpdate(t *testing.T) {
	store := newTestStore(t)

	added, err := store.Add("initial content here", AddOptions{Topics: []string{"watched"}})
	require.NoError(t, err)

	var fired int
	store.Subscribe("watched", func(types.Entry) { fired++ })

	_, err = store.Update(added.ID, UpdateOptions{Content: "revised content here"})
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
}

func TestSubscribeMultipleTopicsOneEntry(t *testing.T) {
	store := newTestStore(t)

	var fired []string
	store.Subscribe("alpha", func(types.Entry) { fired = append(fired, "alpha") })
	store.Subscribe("beta", func(types.Entry) { fired = append(fired, "beta") })

	_, err := store.Add("touches both topics at once", AddOptions{Topics: []string{"alpha", "beta"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "beta"}, fired, "one invocation per matching subscription")
}

func TestUnsubscribe(t *testing.T) {
	store := newTestStore(t)

	var fired int
	token := store.Subscribe("topic", func(types.Entry) { fired++ })

	assert.True(t, store.Unsubscribe("topic", token))
	assert.False(t, store.Unsubscribe("topic", token), "second removal finds nothing")
	assert.False(t, store.Unsubscribe("other", token))

	_, err := store.Add("should not notify anyone", AddOptions{Topics: []string{"topic"}})
	require.NoError(t, err)
	assert.Zero(t, fired)
}

func TestPanickingCallbackIsIsolated(t *testing.T) {
	store := newTestStore(t)

	var survived int
	store.Subscribe("topic", func(types.Entry) { panic("subscriber bug") })
	store.Subscribe("topic", func(types.Entry) { survived++ })

	added, err := store.Add("dispatch continues past the panic", AddOptions{Topics: []string{"topic"}})
	require.NoError(t, err)

	assert.Equal(t, 1, survived)
	_, err = store.Get(added.ID)
	assert.NoError(t, err, "the mutation itself is unaffected")
}

func TestCallbackMayReenterStore(t *testing.T) {
	store := newTestStore(t)

	store.Subscribe("trigger", func(e types.Entry) {
		if _, err := store.Get(e.ID); err != nil {
			t.Errorf("reentrant Get: %v", err)
		}
	})

	_, err := store.Add("callbacks run after the lock is released", AddOptions{Topics: []string{"trigger"}})
	require.NoError(t, err)
}

func TestCallbackReceivesIndependentCopy(t *testing.T) {
	store := newTestStore(t)

	store.Subscribe("copy", func(e types.Entry) {
		e.Topics[0] = "mutated"
		e.Content = "mutated"
	})

	added, err := store.Add("the stored entry must not change", AddOptions{Topics: []string{"copy"}})
	require.NoError(t, err)

	got, err := store.Get(added.ID)
	require.NoError(t, err)
	assert.Equal(t, "the stored entry must not change", got.Content)
	assert.Equal(t, []string{"copy"}, got.Topics)
}
