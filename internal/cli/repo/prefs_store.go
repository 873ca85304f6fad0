package repo

// PrefsStore is a small string key-value store for settings.
type PrefsStore interface {
	Get(key string) (string, bool)
	Put(key, value string) error
	// PutAll writes several keys at once.
	PutAll(values map[string]string) error
	Remove(keys ...string) error
}
