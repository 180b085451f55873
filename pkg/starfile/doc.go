// Package starfile reads and writes STAR files, the self-describing text tables used by
// RELION for particle poses.
//
// A file is a sequence of data blocks. A block is either a loop (named columns followed by
// whitespace separated rows) or a list of key/value pairs, which is represented as a block
// with a single row. Values are kept as strings; typed accessors convert on demand.
package starfile
