package combat

import "errors"

const (
	// DefaultMaxSlots is the capacity of a fresh buffer.
	DefaultMaxSlots = 3
	// MaxSlotCap is the most slots flow can grow a buffer to.
	MaxSlotCap = 6
	// FlowThreshold is the flow needed to grow the buffer by one slot.
	FlowThreshold = 3
)

// ErrBufferFull is returned by Enqueue when every slot is taken.
var ErrBufferFull = errors.New("combat buffer full")

// Buffer is an entity's queue of pre-planned combat actions.
//
// Invariant: len(Actions) <= MaxSlots <= MaxSlotCap.
type Buffer struct {
	Actions   []QueuedAction
	MaxSlots  int
	Executing bool
	Building  bool
	Flow      int
	Malware   []ActionKind
	// Current is the action being resolved while Executing.
	Current *QueuedAction
}

// NewBuffer returns an empty buffer with DefaultMaxSlots.
func NewBuffer() *Buffer {
	return &Buffer{MaxSlots: DefaultMaxSlots}
}

// Enqueue appends a to the queue.
//
// Postcondition: Returns ErrBufferFull and leaves the queue unchanged when full.
func (b *Buffer) Enqueue(a QueuedAction) error {
	if len(b.Actions) >= b.MaxSlots {
		return ErrBufferFull
	}
	b.Actions = append(b.Actions, a)
	return nil
}

// Dequeue removes and returns the head of the queue.
func (b *Buffer) Dequeue() (QueuedAction, bool) {
	if len(b.Actions) == 0 {
		return QueuedAction{}, false
	}
	head := b.Actions[0]
	b.Actions = b.Actions[1:]
	return head, true
}

// Clear empties the queue. Malware, flow and capacity are kept.
func (b *Buffer) Clear() {
	b.Actions = nil
	b.Current = nil
}

// Snapshot returns a copy of the queued actions.
func (b *Buffer) Snapshot() []QueuedAction {
	out := make([]QueuedAction, len(b.Actions))
	copy(out, b.Actions)
	return out
}

// GainFlow records one successful defensive reaction.
//
// Postcondition: When flow reaches FlowThreshold it resets to zero and
// MaxSlots grows by one up to MaxSlotCap. Returns true when a slot was added.
func (b *Buffer) GainFlow() bool {
	b.Flow++
	if b.Flow < FlowThreshold {
		return false
	}
	b.Flow = 0
	if b.MaxSlots >= MaxSlotCap {
		return false
	}
	b.MaxSlots++
	return true
}

// InjectMalware adds k to the malware list once.
func (b *Buffer) InjectMalware(k ActionKind) {
	if b.HasMalware(k) {
		return
	}
	b.Malware = append(b.Malware, k)
}

// HasMalware reports whether k has been injected.
func (b *Buffer) HasMalware(k ActionKind) bool {
	for _, m := range b.Malware {
		if m == k {
			return true
		}
	}
	return false
}

// ClearMalware removes every injected failure.
func (b *Buffer) ClearMalware() {
	b.Malware = nil
}

// Scramble replaces every queued action with a STUMBLE.
//
// Postcondition: Returns the number of actions corrupted.
func (b *Buffer) Scramble() int {
	for i := range b.Actions {
		b.Actions[i] = QueuedAction{Kind: ActionStumble}
	}
	return len(b.Actions)
}

// ResetCapacity returns the buffer to its starting capacity and flow.
func (b *Buffer) ResetCapacity() {
	b.MaxSlots = DefaultMaxSlots
	b.Flow = 0
	if len(b.Actions) > b.MaxSlots {
		b.Actions = b.Actions[:b.MaxSlots]
	}
}
