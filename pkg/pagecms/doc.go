// Package pagecms provides a small content-management core: named pages
// composed of an ordered list of typed content blocks, with CRUD and
// block-level mutation on top of pluggable persistence.
//
// It exposes a single Service interface backed by a Repository (memory,
// Postgres) chosen at construction time. Blocks form a tagged union with
// text and image variants; the union is serialized as {"type", "data"} and
// validated per variant at the service boundary. Page slugs are derived
// from names at write time and are unique across all pages; uniqueness is
// enforced by the repository's own constraint mechanism so that concurrent
// writers racing on the same slug resolve to exactly one winner.
//
// The companion imaging package implements the upload pipeline (sniff,
// resize, persist) over the same BlobStore abstraction used for serving
// images back.
package pagecms
