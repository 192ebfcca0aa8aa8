// Package discovery finds full-resolution Kidplan album pictures in page markup.
//
// Candidates are collected by several independent strategies (media
// attributes, responsive source sets, hyperlinks and a raw-text scan),
// normalized against the page URL, filtered to the album-picture CDN and
// upgraded by dropping the size parameter. The union is returned sorted.
package discovery
