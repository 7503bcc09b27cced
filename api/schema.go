// Package api holds the JSON export format of an fxom document.
package api

// Version of the export format.
const Version = "v1"

// Document is the export of one document.
type Document struct {
	Version string `json:"version"`
	// Location is the document URL, empty for unsaved documents.
	Location string   `json:"location,omitempty"`
	Imports  []string `json:"imports,omitempty"`
	Root     *Object  `json:"root,omitempty"`
}

// Object is one object node.
type Object struct {
	// Kind is instance, include, reference, copy, define, script, comment
	// or virtual.
	Kind       string `json:"kind"`
	Class      string `json:"class,omitempty"`
	ID         string `json:"id,omitempty"`
	Source     string `json:"source,omitempty"`
	Controller string `json:"controller,omitempty"`
	// Text is the body of scripts and comments.
	Text string `json:"text,omitempty"`
	Line int    `json:"line,omitempty"`
	// Error is the instantiation failure, if any.
	Error      string     `json:"error,omitempty"`
	Properties []Property `json:"properties,omitempty"`
}

// Property is either textual (Value) or a collection (Objects).
type Property struct {
	Name      string   `json:"name"`
	Value     string   `json:"value,omitempty"`
	ValueKind string   `json:"value_kind,omitempty"` // literal, expression, binding, handler, location, resource
	Attribute bool     `json:"attribute,omitempty"`
	Objects   []Object `json:"objects,omitempty"`
}
