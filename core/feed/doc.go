// Package feed reads the authoritative inventory from an external source.
//
// A Source yields reconcile.Record values as a lazy iter.Seq2. Each call to FetchAll
// starts over from the first page; nothing is cached between calls.
//
// HTTPClient pages through a JSON endpoint of the form
//
//	GET {base_url}{path}?page=N&limit=M -> {"page":N,"limit":M,"total":T,"data":[...]}
//
// retrying each page on transient errors (network failures, timeouts, 429 and 5xx) with
// exponential backoff. Any page that cannot be read ends the sequence with an error
// wrapping ErrFeedUnavailable. FileSource serves the same records from a local YAML or
// JSON file and is used for offline runs.
//
// Prefetch decouples page fetching from the consumer with a bounded buffer.
package feed
