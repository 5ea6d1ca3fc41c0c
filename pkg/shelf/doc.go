// Package shelf defines the shelving unit configuration: dimensions,
// structure counts, material and edge profile presets, and addon toggles.
// A Configuration is an immutable value; Normalize is the single gate
// every configuration passes before geometry is generated.
package shelf
