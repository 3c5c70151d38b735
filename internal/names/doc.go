// Package names canonicalizes entity name strings and provides the
// edit-distance comparison used for fuzzy name matching across the
// analysis pipeline.
package names
