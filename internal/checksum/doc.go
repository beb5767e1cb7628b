// Package checksum computes the script checksums recorded in the script
// journal.
//
// Two forms are available. Raw hashes the content byte for byte. Normalized
// hashes the content after removing SQL comments, folding case and collapsing
// whitespace, so a script that was only reformatted keeps its checksum.
// Quoted literals ('...' and $tag$...$tag$) are preserved verbatim.
package checksum
