// Package scheme parses kicad-project links into project references.
//
// A link has the form
//
//	kicad-project://<zip|git>?source=<percent-encoded http(s) URL>
//
// and is routed by the operating system to this application as its only
// argument. Links typed by hand skip the scheme wrapper; see Parser.ParseManual.
package scheme
