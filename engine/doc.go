// Package engine implements the graph element store: slot allocation,
// value deduplication for atoms and links, back-link maintenance and
// snapshot encoding.
//
// The store is single-threaded by contract. Callers that share a Store
// across goroutines must serialize access externally; the store holds no
// locks of its own.
package engine
