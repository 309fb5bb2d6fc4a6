package actions

import (
	"testing"
	"time"

	"github.com/nfrund/parley/internal/chat"
	"github.com/stretchr/testify/assert"
)

func TestCanonicalKey(t *testing.T) {
	a := &EvalContext{Settings: chat.Settings{"b": 1, "a": true}}
	b := &EvalContext{Settings: chat.Settings{"a": true, "b": 1}}

	ka, ok := canonicalKey(a)
	assert.True(t, ok)
	kb, _ := canonicalKey(b)
	assert.Equal(t, ka, kb, "map insertion order does not affect the key")

	kc, _ := canonicalKey(&EvalContext{Settings: chat.Settings{"a": false, "b": 1}})
	assert.NotEqual(t, ka, kc)
}

func TestCanonicalKey_Unserializable(t *testing.T) {
	_, ok := canonicalKey(&EvalContext{Settings: chat.Settings{"fn": func() {}}})
	assert.False(t, ok)
}

func TestConditionMemo_UnserializableRunsUncached(t *testing.T) {
	calls := 0
	m := newConditionMemo(func(*EvalContext) bool {
		calls++
		return true
	}, time.Minute, time.Now)

	ec := &EvalContext{Settings: chat.Settings{"ch": make(chan int)}}
	assert.True(t, m.eval(ec))
	assert.True(t, m.eval(ec))
	assert.Equal(t, 2, calls)
}

func TestConditionMemo_SweepsExpired(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := newConditionMemo(func(*EvalContext) bool { return true }, time.Second, clock.Now)

	for i := 0; i < sweepThreshold; i++ {
		m.eval(&EvalContext{Settings: chat.Settings{"i": i}})
	}
	assert.Len(t, m.entries, sweepThreshold)

	clock.Advance(2 * time.Second)
	m.eval(&EvalContext{Settings: chat.Settings{"fresh": true}})
	assert.Len(t, m.entries, 1)
}
