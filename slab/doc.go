// Package slab implements nested variable-length structures stored directly
// inside a host-resizable byte buffer, edited in place.
//
// Three containers are provided: a length-prefixed list of fixed-size items,
// a concatenation pair whose boundary is derived by decoding the first half,
// and an ordered map built from an index list plus a payload region. A
// structure's shape is described at runtime by composing Type values
// (Fixed, ListType, PairType, MapType, StructType); there is no code
// generation. All layouts are little-endian with no padding.
//
// Every insert or remove funnels through the arena package, which performs
// the byte move, negotiates the new length with the host capability, and
// fixes up every open view so handles held elsewhere in the call stack stay
// addressable. A rejected growth changes nothing.
package slab
