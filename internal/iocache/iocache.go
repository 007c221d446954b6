// Package iocache persists uploaded worklogs, preferences and strain history.
package iocache

import (
	"sync"

	"github.com/huangsam/timesheet/internal/contract"
)

// StoreManagerImpl manages the snapshot and history stores.
type StoreManagerImpl struct {
	sync.RWMutex // Protects the store pointers during initialization
	snapshot     contract.SnapshotStore
	history      contract.HistoryStore
}

var _ contract.StoreManager = &StoreManagerImpl{} // Compile-time check

// NewStoreManager wraps already opened stores. Either may be nil.
func NewStoreManager(snapshot contract.SnapshotStore, history contract.HistoryStore) *StoreManagerImpl {
	return &StoreManagerImpl{snapshot: snapshot, history: history}
}

// GetSnapshotStore returns the snapshot store.
func (mgr *StoreManagerImpl) GetSnapshotStore() contract.SnapshotStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.snapshot
}

// GetHistoryStore returns the strain history store.
func (mgr *StoreManagerImpl) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
