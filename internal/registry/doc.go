// Package registry reads and writes the Resources table inside the
// artifact: a ResourceType -> Identifier mapping with at most one live
// entry per resource type.
//
// The table carries no uniqueness constraint, so Put replaces every
// existing row for the type within one transaction. Get returns the most
// recently written row when older tooling left duplicates behind.
package registry
