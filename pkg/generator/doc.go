// Package generator turns a shelf.Configuration into a scene.Graph.
//
// Generation runs in fixed stages: the configuration is normalized, the
// CarcassBuilder emits the five outer panels, the InteriorBuilder emits
// shelves and dividers together with the cell grid, the AddonBuilder places
// doors, lamps and hanger rails on that grid, and the Assembler collects
// everything into one disposable graph with its bounding box.
package generator
