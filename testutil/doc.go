// Package testutil provides testing utilities for meshgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides a deterministic random source and builders for small
// structured meshes.
//
// # Random Generation
//
//	rng := testutil.NewRNG(seed)
//	p := rng.Point(-1, 1)
//
// # Mesh Builders
//
// Builders work against any type with CreateVertex/CreateElement, so the
// root package tests and the skin tests share them:
//
//	m, err := testutil.StructuredHexGrid(db, 2, 2, 2) // 8 hexes, 27 vertices
package testutil
