package chain

import (
	"testing"

	"github.com/r3e-network/nft-runtime/ledger"
	"github.com/stretchr/testify/assert"
)

type recordingHousekeeper struct {
	calls []BlockNumber
}

func (r *recordingHousekeeper) OnInitialize(ctx *Context, now BlockNumber) {
	r.calls = append(r.calls, now)
	ctx.Events.Emit(NewEvent("test", "Ticked", map[string]any{"block": now}))
}

func TestDispatcherAdvanceToRunsHousekeepersInOrderAndDrainsEvents(t *testing.T) {
	ctx := NewContext(ledger.NewInMemory(), nil, "")
	first := &recordingHousekeeper{}
	second := &recordingHousekeeper{}
	d := NewDispatcher(ctx, first, second)

	events := d.AdvanceTo(5)

	assert.Equal(t, []BlockNumber{5}, first.calls)
	assert.Equal(t, []BlockNumber{5}, second.calls)
	assert.Equal(t, BlockNumber(5), ctx.Now())
	assert.Len(t, events, 2)

	// events are drained, not retained across calls
	more := d.AdvanceTo(6)
	assert.Len(t, more, 2)
	assert.Equal(t, []BlockNumber{5, 6}, first.calls)
}
