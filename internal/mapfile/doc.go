// Package mapfile provides platform-specific helpers for memory-mapping slab
// files read-write with a fixed reserved capacity.
package mapfile
