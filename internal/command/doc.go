// Package command turns comment text into typed governance commands.
//
// A command line has the form
//
//	/<keyword> <action> [<argument>]
//
// where keyword defaults to "adr". Lines following a command line, up to
// the next command line or the end of the comment, form the command body.
// Text before the first command line is ignored, so commands can follow a
// normal discussion paragraph.
//
// Parsing is all-or-nothing per comment: a single malformed command line
// makes Parse return a *ParseError and no commands.
package command
