// Package policy defines the declarative rule model and rule sources for
// the temporal decision engine.
//
// # Rule Model
//
// A rule pairs tuple matchers (data type, sender, recipient) with temporal
// constraints (situation, emergency-override requirement, access window,
// temporal role, data freshness) and an action. Matchers accept a wildcard
// "*", an exact string, or a list of acceptable strings; undeclared fields
// always match.
//
// # Sources
//
// Rules reach the engine through the Source interface: a StaticSource for
// tests and embedded rule sets, or a FileSource that loads an ordered rule
// list from a YAML file and supports hot reload through an fsnotify-based
// watcher with debouncing.
//
// How rules are authored and persisted is out of scope; this package only
// defines how they are represented, loaded, and ordered.
package policy
