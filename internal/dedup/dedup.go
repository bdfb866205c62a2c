// Package dedup implements the bounded duplicate-advertisement filter
// (spec.md §4.3, C3): BLE advertisements for an unchanged measurement are
// frequently re-broadcast before the next sensor sample is ready, and the
// listener must not hand the same (MAC, sequence) pair to the gateway
// twice.
package dedup

const maxTracked = 16

// Filter remembers the last-seen measurement sequence number per MAC
// address, in a fixed-size ring of entries. It is intended for exclusive
// use by a single BLE-scan task (spec.md §9: "dedup and handoff are
// single-producer/single-consumer"), so it does no internal locking.
type Filter struct {
	macs  [maxTracked][6]byte
	seqs  [maxTracked]uint32
	used  [maxTracked]bool
	next  int // next slot to evict under LRU-free round-robin replacement
}

// New returns an empty Filter.
func New() *Filter {
	return &Filter{}
}

// Seen reports whether (mac, seq) has already been observed, and records
// it for future calls. When the MAC is not currently tracked and the
// table is full, the filter fails open: the slot is evicted
// round-robin and the new MAC is recorded, but the incoming sample is
// treated as unseen (never dropped for capacity reasons alone).
func (f *Filter) Seen(mac [6]byte, seq uint32) bool {
	for i := 0; i < maxTracked; i++ {
		if f.used[i] && f.macs[i] == mac {
			if f.seqs[i] == seq {
				return true
			}
			f.seqs[i] = seq
			return false
		}
	}

	// Not tracked yet: find a free slot, or evict round-robin.
	slot := -1
	for i := 0; i < maxTracked; i++ {
		if !f.used[i] {
			slot = i
			break
		}
	}
	if slot == -1 {
		slot = f.next
		f.next = (f.next + 1) % maxTracked
	}

	f.macs[slot] = mac
	f.seqs[slot] = seq
	f.used[slot] = true
	return false
}
