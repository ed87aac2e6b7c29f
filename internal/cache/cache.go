// Package cache keeps bounded in-memory state keyed by chat identity.
package cache

type Cache interface {
	Get(key interface{}) (interface{}, bool)
	Add(key, value interface{})
	Len() int
}
