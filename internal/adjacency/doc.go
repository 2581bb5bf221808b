// Package adjacency maintains vertex-to-element up-adjacency lists.
//
// Downward adjacency needs no index: it is read from connectivity. Upward
// queries (which elements use this vertex, which element has exactly these
// corners) go through the per-vertex lists kept here, which the database
// builds on first use and then updates on every element creation and
// deletion.
package adjacency
