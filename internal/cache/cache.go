package cache

import "time"

// Cache - абстракция над кешем ответов поиска.
// Реализация по умолчанию - memory.Cache.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Delete(key string)
}
