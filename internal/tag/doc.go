// Package tag stores named, fixed-size values attached to entities.
//
// Dense tags keep one value per slot in a byte array that parallels a
// sequence, created on first write and pre-filled with the tag default.
// A roaring bitmap per block marks which slots hold an explicit value.
// Sparse tags keep only explicit values in a B-tree ordered by handle, so
// enumerating tagged entities is an in-order walk.
//
// The store reaches entity storage only through the Locator interface.
package tag
