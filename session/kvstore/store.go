// Package kvstore is the durable key-value persistence abstraction the
// session manager writes its persisted record through.
package kvstore

// Store is a synchronous key-value slot store with last-writer-wins
// semantics. A missing key is not an error: Get reports presence separately.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
}
