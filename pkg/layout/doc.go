// Package layout parses clock face layout files and formats them as
// OpenSCAD array literals.
//
// # File Format
//
// A layout file is plain text. The layout block is delimited by two sentinel
// lines; everything outside the block is ignored, so the file can carry
// notes or alternative layouts:
//
//	Notes about this clock.
//	<BEGIN>
//	12 .  .  1
//	11       2
//	<END>
//
// Each line inside the block is one [Row]. Rows are split on runs of
// whitespace, so alignment padding never produces empty tokens. Rows may have
// different lengths, and a blank line yields an empty row.
//
// # Output Format
//
// [Format] renders a [Layout] as a nested array of double-quoted strings,
// one row per line:
//
//	[
//	  ["12", ".", ".", "1"],
//	  ["11", "2"]
//	]
//
// The result is passed verbatim to OpenSCAD as the value of a -D define.
package layout
