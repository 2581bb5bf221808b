// Package topo holds canonical side numbering for the fixed-arity element
// types and the sense computation that matches a side against an element.
package topo
