// Package status reads the "now playing" file.
//
// Reader.Read returns the file content with surrounding whitespace removed.
// Reader.ModTime returns the file's last-write time, which push loops use as
// a cheap change signal instead of hashing content. Both return wrapped I/O
// errors and never retry.
//
// ParseTrack splits content of the form "artist || title" into a Track.
// Bare content is the artist; fields after the title are dropped.
package status
