// Package cmdstore is the MAC engine's pending MAC-command store (C3):
// a bounded set of outgoing commands waiting to be packed into FOpts or
// an FPort-0 FRMPayload.
package cmdstore

import (
	lorawan "github.com/foldedtoad/lora-mac"
)

// Capacity is the maximum number of distinct commands the store can
// hold at once, keyed by CID.
const Capacity = 15

// Sticky commands survive RemoveNonSticky: they stay queued across
// transmit cycles until RemoveStickyAnswered drops them, since losing
// them would leave the network and device with mismatched settings.
var stickyCIDs = map[lorawan.CID]bool{
	lorawan.RXParamSetupAns:  true,
	lorawan.RXTimingSetupAns: true,
	lorawan.DLChannelAns:     true,
}

// IsSticky reports whether cid names a sticky answer command.
func IsSticky(cid lorawan.CID) bool {
	return stickyCIDs[cid]
}

type entry struct {
	cmd    lorawan.MACCommand
	sticky bool
	inUse  bool
}

// Store holds at most Capacity pending commands in a fixed backing
// array, indexed by slot rather than scanned linearly for a free
// position: Add looks the CID up in the index map first (replacing any
// existing entry for that CID) and only falls back to the first free
// slot for a genuinely new command.
type Store struct {
	arena   [Capacity]entry
	index   map[lorawan.CID]int
	onDirty func()
}

// New returns an empty Store. onDirty, if non-nil, is called after every
// mutation so the caller can mark its non-volatile image stale.
func New(onDirty func()) *Store {
	return &Store{index: make(map[lorawan.CID]int, Capacity), onDirty: onDirty}
}

func (s *Store) notify() {
	if s.onDirty != nil {
		s.onDirty()
	}
}

// Add inserts or replaces the command for its CID. It reports false
// without mutating the store when the store is full and cid is not
// already present.
func (s *Store) Add(cmd lorawan.MACCommand) bool {
	if slot, ok := s.index[cmd.CID]; ok {
		s.arena[slot] = entry{cmd: cmd, sticky: IsSticky(cmd.CID), inUse: true}
		s.notify()
		return true
	}

	for i := range s.arena {
		if !s.arena[i].inUse {
			s.arena[i] = entry{cmd: cmd, sticky: IsSticky(cmd.CID), inUse: true}
			s.index[cmd.CID] = i
			s.notify()
			return true
		}
	}
	return false
}

// Remove deletes the command for cid, if present.
func (s *Store) Remove(cid lorawan.CID) {
	slot, ok := s.index[cid]
	if !ok {
		return
	}
	s.arena[slot] = entry{}
	delete(s.index, cid)
	s.notify()
}

// Find returns the command for cid and whether it is present.
func (s *Store) Find(cid lorawan.CID) (lorawan.MACCommand, bool) {
	slot, ok := s.index[cid]
	if !ok {
		return lorawan.MACCommand{}, false
	}
	return s.arena[slot].cmd, true
}

// Count returns the number of pending commands.
func (s *Store) Count() int {
	return len(s.index)
}

// RemoveNonSticky drops every pending command that is not sticky. Called
// after a successful transmit cycle: non-sticky commands are one-shot,
// sticky ones wait for their answer.
func (s *Store) RemoveNonSticky() {
	for cid, slot := range s.index {
		if !s.arena[slot].sticky {
			s.arena[slot] = entry{}
			delete(s.index, cid)
		}
	}
	s.notify()
}

// RemoveStickyAnswered drops a sticky command once its answer has been
// observed in an uplink, by CID.
func (s *Store) RemoveStickyAnswered(cid lorawan.CID) {
	if slot, ok := s.index[cid]; ok && s.arena[slot].sticky {
		s.arena[slot] = entry{}
		delete(s.index, cid)
		s.notify()
	}
}

// Serialize marshals every pending command, stopping before the command
// that would push the result past maxBytes. From that command onward,
// every remaining command is dropped from the store rather than kept
// for a later cycle: a command that doesn't fit this cycle is no more
// likely to fit the next, and holding it would only let the store fill
// up with commands that can never be sent. Each command's own
// MarshalBinary already prefixes its CID byte, so the serialized size
// is the sum of (1 + payload size) over the commands actually included.
func (s *Store) Serialize(maxBytes int) ([]byte, error) {
	var out []byte
	dropping := false

	for i := range s.arena {
		if !s.arena[i].inUse {
			continue
		}
		if dropping {
			s.dropSlot(i)
			continue
		}

		b, err := s.arena[i].cmd.MarshalBinary()
		if err != nil {
			return nil, err
		}
		if len(out)+len(b) > maxBytes {
			dropping = true
			s.dropSlot(i)
			continue
		}
		out = append(out, b...)
	}

	if dropping {
		s.notify()
	}
	return out, nil
}

// dropSlot clears slot i and removes its CID from the index.
func (s *Store) dropSlot(i int) {
	delete(s.index, s.arena[i].cmd.CID)
	s.arena[i] = entry{}
}
