package queuemanager

import (
	"testing"

	"github.com/sttelite/queue-manager/region"
)

func BenchmarkEnqueueDequeueSingleQueue(b *testing.B) {
	m := NewManager(Config{})
	q := m.CreateQueue()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.EnqueueByte(q, byte(i))
		m.DequeueByte(q)
	}
}

func BenchmarkEnqueueDequeueDeepQueue(b *testing.B) {
	m := NewManager(Config{})
	q := m.CreateQueue()

	// keep a backlog so every operation works on a multi-block chain
	for i := 0; i < 700; i++ {
		m.EnqueueByte(q, byte(i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.EnqueueByte(q, byte(i))
		m.DequeueByte(q)
	}
}

func BenchmarkEnqueueDequeueAcrossAllQueues(b *testing.B) {
	m := NewManager(Config{})
	queues := make([]Handle, region.MaxQueues)
	for i := range queues {
		queues[i] = m.CreateQueue()
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q := queues[i%len(queues)]
		m.EnqueueByte(q, byte(i))
		m.DequeueByte(q)
	}
}

func BenchmarkCreateDestroyQueue(b *testing.B) {
	m := NewManager(Config{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q := m.CreateQueue()
		m.DestroyQueue(q)
	}
}
