package queuemanager

import (
	"github.com/sttelite/queue-manager/region"
)

// Manager carves one fixed 2048-byte region into up to 64 independent FIFO
// byte queues. Queues grow and shrink dynamically by pulling 8-byte blocks
// from a shared free list inside the region; a queue descriptor is only two
// bytes because the head and tail cursors live packed inside the tail block's
// metadata byte rather than in the descriptor.
//
// The Manager assumes a single caller context. Misuse does not produce error
// values: resource exhaustion and illegal operations invoke the configured
// fault callbacks, which never return.
type Manager struct {
	region             *region.Region
	logger             Logger
	onOutOfMemory      func()
	onIllegalOperation func()
	stats              Stats

	isVerbose bool
}

// Handle identifies one live queue. It wraps the byte offset of the queue's
// descriptor inside the region and is only meaningful for the Manager that
// issued it. The zero Handle is never valid.
type Handle struct {
	offset int
}

// NewManager initializes a new instance of Manager. When config carries no
// region a private one is allocated. The region itself is set up lazily on
// the first CreateQueue, so a Manager over garbage-filled host memory is fine
// as long as queues are created before anything else.
func NewManager(config Config) *Manager {
	data := config.Region
	if data == nil {
		data = new([region.Size]byte)
	}

	return &Manager{
		region:             region.New(data),
		logger:             newLogger(config.Logger),
		onOutOfMemory:      config.OnOutOfMemory,
		onIllegalOperation: config.OnIllegalOperation,
		isVerbose:          config.Verbose,
	}
}

// CreateQueue allocates the lowest-indexed free queue slot and returns its
// handle. Invokes the out-of-memory fault when all 64 slots are taken.
func (m *Manager) CreateQueue() Handle {
	m.initIfNeeded()

	slot, ok := m.region.FindFreeSlot()
	if !ok {
		m.outOfMemory()
	}

	m.region.MarkSlot(slot)
	m.region.SetQueueHead(slot, region.NullIndex)
	m.region.SetQueueTail(slot, region.NullIndex)

	m.stats.QueuesCreated++
	if m.isVerbose {
		m.logger.Printf("created queue in slot %d", slot)
	}

	return Handle{offset: region.TableOffset + slot*region.SlotSize}
}

// DestroyQueue releases every block of the queue's chain back to the free
// list, clears the descriptor and frees the slot. The handle is dead
// afterwards; passing it to any operation is an illegal operation.
func (m *Manager) DestroyQueue(q Handle) {
	slot := m.validate(q)

	current := m.region.QueueHead(slot)
	tail := m.region.QueueTail(slot)

	for current != region.NullIndex {
		next := uint8(region.NullIndex)
		if current != tail {
			next = m.region.BlockMeta(current)
		}
		m.region.FreeBlock(current)
		current = next
	}

	m.region.SetQueueHead(slot, region.NullIndex)
	m.region.SetQueueTail(slot, region.NullIndex)
	m.region.ClearSlot(slot)

	m.stats.QueuesDestroyed++
	if m.isVerbose {
		m.logger.Printf("destroyed queue in slot %d", slot)
	}
}

// EnqueueByte appends b to the queue. Invokes the out-of-memory fault when a
// new block is needed and the free list is empty.
func (m *Manager) EnqueueByte(q Handle, b byte) {
	slot := m.validate(q)

	if m.region.QueueHead(slot) == region.NullIndex {
		blk := m.allocBlock()
		m.region.SetBlockByte(blk, 0, b)
		m.region.SetBlockMeta(blk, region.PackOffsets(0, 1))
		m.region.SetQueueHead(slot, blk)
		m.region.SetQueueTail(slot, blk)
		m.stats.EnqueuedBytes++
		return
	}

	tail := m.region.QueueTail(slot)
	meta := m.region.BlockMeta(tail)
	headOff := region.UnpackHeadOff(meta)
	tailOff := region.UnpackTailOff(meta)

	if tailOff < region.BlockPayload {
		m.region.SetBlockByte(tail, tailOff, b)
		m.region.SetBlockMeta(tail, region.PackOffsets(headOff, tailOff+1))
	} else {
		blk := m.allocBlock()

		// The old tail turns into an interior block: its metadata byte becomes
		// the chain link, so the head cursor must be read out before the
		// overwrite and carried into the new tail's packed offsets.
		m.region.SetBlockMeta(tail, blk)

		m.region.SetBlockByte(blk, 0, b)
		m.region.SetBlockMeta(blk, region.PackOffsets(headOff, 1))
		m.region.SetQueueTail(slot, blk)
	}

	m.stats.EnqueuedBytes++
}

// DequeueByte removes and returns the oldest byte of the queue. Dequeueing
// from an empty queue is an illegal operation.
func (m *Manager) DequeueByte(q Handle) byte {
	slot := m.validate(q)

	head := m.region.QueueHead(slot)
	if head == region.NullIndex {
		m.illegalOperation()
	}
	tail := m.region.QueueTail(slot)

	meta := m.region.BlockMeta(tail)
	headOff := region.UnpackHeadOff(meta)
	tailOff := region.UnpackTailOff(meta)

	result := m.region.BlockByte(head, headOff)
	headOff++

	if headOff == region.BlockPayload {
		if head == tail {
			m.region.FreeBlock(head)
			m.region.SetQueueHead(slot, region.NullIndex)
			m.region.SetQueueTail(slot, region.NullIndex)
		} else {
			next := m.region.BlockMeta(head)
			m.region.FreeBlock(head)
			m.region.SetQueueHead(slot, next)
			m.region.SetBlockMeta(tail, region.PackOffsets(0, tailOff))
		}
	} else {
		m.region.SetBlockMeta(tail, region.PackOffsets(headOff, tailOff))

		// The dequeue that makes both cursors meet empties the queue; collapse
		// immediately, not on the following call.
		if head == tail && headOff == tailOff {
			m.region.FreeBlock(head)
			m.region.SetQueueHead(slot, region.NullIndex)
			m.region.SetQueueTail(slot, region.NullIndex)
		}
	}

	m.stats.DequeuedBytes++
	return result
}

// Stats returns a snapshot of the operation counters.
func (m *Manager) Stats() Stats {
	return m.stats
}

func (m *Manager) initIfNeeded() {
	if m.region.Initialized() {
		return
	}

	m.region.Init()
	if m.isVerbose {
		m.logger.Printf("region initialized: %d slots, %d blocks", region.MaxQueues, region.NumBlocks)
	}
}

// validate rejects a handle unless the system is initialized, the handle's
// offset addresses a slot inside the queue table on a slot boundary, and that
// slot is live in the bitmap. Returns the slot index.
func (m *Manager) validate(q Handle) int {
	if !m.region.Initialized() {
		m.illegalOperation()
	}

	off := q.offset
	if off < region.TableOffset || off >= region.TableEnd || (off-region.TableOffset)%region.SlotSize != 0 {
		m.illegalOperation()
	}

	slot := (off - region.TableOffset) / region.SlotSize
	if !m.region.SlotLive(slot) {
		m.illegalOperation()
	}

	return slot
}

func (m *Manager) allocBlock() uint8 {
	blk, ok := m.region.AllocBlock()
	if !ok {
		m.outOfMemory()
	}
	return blk
}

func (m *Manager) outOfMemory() {
	if m.onOutOfMemory != nil {
		m.onOutOfMemory()
	}
	// The callback contract says it must not return; enforce it if it does.
	panic(ErrOutOfMemory)
}

func (m *Manager) illegalOperation() {
	if m.onIllegalOperation != nil {
		m.onIllegalOperation()
	}
	panic(ErrIllegalOperation)
}
