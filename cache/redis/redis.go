package redis

import (
	"errors"
	"fmt"

	"github.com/gomodule/redigo/redis"

	C "pulse/config"
)

// Key addresses a cached value as "<prefix>:scope:<scope>:<suffix>".
type Key struct {
	// Scope - source or service the value belongs to.
	Scope string
	// Prefix - cached entity, i.e marketing_data:aggregated.
	Prefix string
	// Suffix - optional variant of the entity.
	Suffix string
}

var (
	ErrorInvalidScope  = errors.New("invalid key scope")
	ErrorInvalidPrefix = errors.New("invalid key prefix")
	ErrorInvalidKey    = errors.New("invalid redis cache key")
	ErrorEmptyValue    = errors.New("empty cache key value")
)

func NewKey(scope, prefix, suffix string) (*Key, error) {
	key := &Key{Scope: scope, Prefix: prefix, Suffix: suffix}
	if _, err := key.Key(); err != nil {
		return nil, err
	}
	return key, nil
}

func (key *Key) Key() (string, error) {
	switch {
	case key == nil:
		return "", ErrorInvalidKey
	case key.Scope == "":
		return "", ErrorInvalidScope
	case key.Prefix == "":
		return "", ErrorInvalidPrefix
	}
	return fmt.Sprintf("%s:scope:%s:%s", key.Prefix, key.Scope, key.Suffix), nil
}

// do runs one command against the cache with the key as first argument.
func do(key *Key, command string, args ...interface{}) (interface{}, error) {
	cacheKey, err := key.Key()
	if err != nil {
		return nil, err
	}

	conn := C.GetCacheRedisConnection()
	defer conn.Close()

	return conn.Do(command, append([]interface{}{cacheKey}, args...)...)
}

// Set stores the value. Zero expiry keeps it until deleted.
func Set(key *Key, value string, expiryInSecs float64) error {
	if key == nil {
		return ErrorInvalidKey
	}
	if value == "" {
		return ErrorEmptyValue
	}

	args := []interface{}{value}
	if expiryInSecs > 0 {
		args = append(args, "EX", int64(expiryInSecs))
	}
	_, err := do(key, "SET", args...)
	return err
}

// Get returns redis.ErrNil when the key does not exist.
func Get(key *Key) (string, error) {
	return redis.String(do(key, "GET"))
}

func Del(key *Key) error {
	_, err := do(key, "DEL")
	return err
}

func IsNotFound(err error) bool {
	return errors.Is(err, redis.ErrNil)
}
