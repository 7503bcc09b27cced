// Package fxom is the object model of a document: a typed overlay of node
// variants on top of a glue markup tree, kept in sync with it under every
// structural edit, plus the live objects instantiated from it.
//
// Node variants form a closed set. Objects (Instance, Intrinsic, Define,
// Script, Comment, Virtual) sit in collection properties; properties
// (PropertyT, PropertyC) belong to an owner object. Traversal goes through
// Collect and the Collector contract; edits go through the mutation methods,
// which update the markup and the node graph together and report the
// Position needed to put a node back exactly where it was.
//
// A Document is owned by one caller at a time. Nothing here locks.
package fxom
