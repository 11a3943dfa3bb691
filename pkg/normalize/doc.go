// Package normalize turns untyped backend cells into canonical values.
//
// Rows arrive without schema knowledge, so every column is decoded by trying
// an ordered, dialect-specific chain of typed decoders. Each decoder answers
// with one of three outcomes (Decoded, Null, NotApplicable); the first
// Decoded answer wins, a Null answer is only honored once no decoder produced
// a value, and a dialect fallback renders whatever is left as text. A non-null
// cell that nothing can render fails the whole row.
//
// The engine is generic over the cell type so that each dialect can decode
// from its native representation (pgx raw bytes, database/sql scan values).
package normalize
