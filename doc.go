// Package meshgo is an in-memory mesh entity database.
//
// A DB stores the entities of an unstructured finite-element mesh
// (vertices, edges, faces, volume elements and entity sets) in typed,
// contiguous sequences. Each entity is addressed by a 64-bit handle that
// packs its type and index, so entities of one type sort together and
// large collections compress to a few intervals in an hrange.Range.
//
// # Quick Start
//
//	db, err := meshgo.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v0, _ := db.CreateVertex(0, 0, 0)
//	v1, _ := db.CreateVertex(1, 0, 0)
//	v2, _ := db.CreateVertex(0, 1, 0)
//	tri, _ := db.CreateElement(handle.Tri, []handle.Handle{v0, v1, v2})
//
// # Tags
//
// Tags attach fixed-size values to entities. Dense tags keep one value per
// entity of each touched sequence; sparse tags keep only what was set.
//
//	temp, _ := db.CreateTag("temperature", 8, meshgo.Double, meshgo.Dense, nil)
//	_ = db.SetDouble(temp, v0, 293.15)
//
// # Topology
//
// Adjacencies answers up and down queries through a vertex-to-element
// index. FindSkin returns the boundary of a region, optionally creating the
// missing boundary sides:
//
//	res, err := db.FindSkin(db.EntitiesByType(handle.Hex), skin.WithCreateElements())
//
// # Configuration
//
// Options tune allocation, handle recycling, adjacency maintenance and a
// memory budget. A Config can also be loaded from YAML with LoadConfig.
//
// # Concurrency
//
// A DB is single-threaded. No operation blocks and no goroutines are
// started.
package meshgo
