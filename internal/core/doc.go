// Package core provides the dataset ingestion, validation and caching logic.
//
// This package holds all domain logic independent of any transport. It is
// used by the HTTP server, the cartactl CLI and tests without modification.
//
// # Architecture
//
// Data flows leaf-first through four pieces:
//
//   - Loader: reads a .xlsx or .csv file into a [Table] of raw rows keyed by
//     canonical column names ([FileLoader], [Source]).
//   - Validator: checks the header once, then turns each row into a
//     [Record] or a [RowRejection] ([ValidateRows]).
//   - Cache: holds the current [Snapshot] and reloads it when the file
//     changes or the validity window ends ([Cache]).
//   - Service: the query facade used by callers ([Service]).
//
// # Snapshot Validity
//
// A snapshot is reused only while the dataset mtime equals the mtime seen
// at capture and the snapshot is younger than the window. Reads never take
// a lock; reloads are coalesced so that concurrent callers share a single
// read of the file.
//
//	cache := core.NewCache(core.NewFileLoader("data/cotas.xlsx"), core.CacheConfig{
//	    Window: time.Minute,
//	})
//	svc := core.NewService(cache)
//	list, err := svc.Records(ctx, "available")
//
// # Error Handling
//
// Load failures are typed: [ErrNotFound], [ErrUnsupportedFormat],
// [*SchemaError] and [*ReadError]. A failed load never replaces the
// published snapshot. Technical errors are mapped to user-facing messages
// with support codes by [MapError].
package core
