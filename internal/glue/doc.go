// Package glue holds the markup layer of a document: an ordered, attributed
// element tree that parses from and serializes to FXML-style text.
//
// The tree keeps attribute order and child order exactly as held, so a
// document that was not edited serializes to the same bytes on every call.
// Elements belong to exactly one Document; attaching an element that already
// has a parent panics.
package glue
