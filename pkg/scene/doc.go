// Package scene defines the generated scene graph: positioned primitives,
// point lights and the cell grid they were placed on. A Graph is never
// mutated after generation; each configuration change produces a new one,
// and the old one is released through its arena.
package scene
