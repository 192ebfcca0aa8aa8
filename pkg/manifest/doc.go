// Package manifest records which album pictures have already been saved.
//
// The manifest is a UTF-8 text file holding one picture identity per line.
// It only ever grows: entries are appended after a successful write and
// never rewritten, so an interrupted run leaves a valid file behind.
package manifest
