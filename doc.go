// Package kiln is the Composition Root for the Kiln record builder.
//
// Kiln reads markup documents and builds records for one entity definition.
// Elements named after the entity declare records. The command elements
// (set, append, prefix, tag, add) wrap records in command scopes that apply
// to every record beneath them, and var declares variables visible to every
// value resolved in its subtree (${name}).
//
// Usage:
//
//	r, err := kiln.New(
//		kiln.WithSchemaFile("task.yaml"),
//		kiln.WithCacheDir(".kiln"),
//		kiln.WithLogger(logger),
//	)
//
//	// Build every record of the matched documents
//	records, err := r.ReadGlob(ctx, "docs/**/*.xml")
//
//	// Decode them into your own struct
//	tasks, err := kiln.DecodeAll[Task](records)
package kiln
