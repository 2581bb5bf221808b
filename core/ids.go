package core

// SlotID is a dense, sequence-local slot offset.
// It is strictly 32-bit so slot sets fit a 32-bit roaring bitmap; a single
// sequence therefore holds at most MaxSlotID+1 entities.
type SlotID uint32

// MaxSlotID is the maximum possible value for a SlotID.
const MaxSlotID = ^SlotID(0)
