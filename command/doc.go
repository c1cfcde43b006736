// Package command declares command trees and dispatches token lists against
// them.
//
// A Builder registers commands and their arguments once at startup and
// produces an immutable Tree. Tree.Resolve walks the tokens down to a leaf
// and parses the remainder into a typed Invocation; Tree.Dispatch then runs
// the leaf's Action. Parsing is a pure function of the descriptors and the
// tokens.
package command
