package interfaces

// LocalStore is a string key/value store standing in for browser local storage
type LocalStore interface {
	// GetItem returns the value and whether the key exists
	GetItem(key string) (string, bool, error)

	// SetItem stores a value
	SetItem(key, value string) error

	// RemoveItem deletes a key; removing a missing key is not an error
	RemoveItem(key string) error
}
