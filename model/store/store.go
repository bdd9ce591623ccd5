package store

import (
	"sync"

	C "pulse/config"
	"pulse/model"
	storeMemory "pulse/model/store/memory"
	storePostgres "pulse/model/store/postgres"
)

var (
	overrideStore model.Model
	memoryStore   *storeMemory.Memory
	storeLock     sync.Mutex
)

// GetStore - Decides on which model implementation to use by
// configuration and returns the store.
func GetStore() model.Model {
	storeLock.Lock()
	defer storeLock.Unlock()

	if overrideStore != nil {
		return overrideStore
	}

	if C.IsMemoryDatastore() {
		if memoryStore == nil {
			memoryStore = storeMemory.New()
		}
		return memoryStore
	}
	return storePostgres.GetStore()
}

// SetStore overrides the configured store. Passing nil restores it.
func SetStore(store model.Model) {
	storeLock.Lock()
	defer storeLock.Unlock()
	overrideStore = store
}
