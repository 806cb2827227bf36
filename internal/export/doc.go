// Package export turns a project tree into Therion th2 drawing lines.
//
// The output for a project is
//
//	encoding utf-8
//	scrap <name> <flags>
//		point <x> <y> <type> [-name <n>]
//		line <type> [-close on] [-id <id>]
//			<x> <y> | <x1> <y1> <x2> <y2> <x3> <y3>
//			[subtype <t>] [<segment settings>]
//			[size <n>]
//		endline
//		area <type> [-visibility off]
//			<border id>
//		endarea
//	endscrap
//
// with one scrap per layer, in document order. Canvas coordinates are y-down;
// drawing coordinates are y-up and rounded to two decimals.
//
// Exporting is a pure function of the tree except for ids generated for areas
// whose border line has none. Those come from an IDGenerator so callers can
// make output reproducible.
package export
