// Package ir holds the block document model shared by every other package.
//
// All other internal packages import ir; ir imports nothing internal.
//
// Key constraints:
//   - Fields and inputs are open maps; unknown kinds round-trip without loss
//   - Node keys the model does not interpret are kept verbatim in Node.Extra
//   - Number literals are kept as text, never coerced through float64
//   - Role and arity are properties of one document, derived by Observe
package ir
