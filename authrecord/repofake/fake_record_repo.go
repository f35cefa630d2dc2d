package repofake

import (
	"sync"

	"github.com/jrsteele09/iotedge-devcomp/authrecord"
)

var _ authrecord.Repo = (*FakeRecordRepo)(nil)

// FakeRecordRepo keeps the record in memory and counts saves. LoadErr, when
// set, is returned from every Load.
type FakeRecordRepo struct {
	record  *authrecord.Record
	saves   int
	LoadErr error
	lock    sync.RWMutex
}

func NewFakeRecordRepo(initial *authrecord.Record) *FakeRecordRepo {
	return &FakeRecordRepo{record: copyRecord(initial)}
}

func (fr *FakeRecordRepo) Load() (*authrecord.Record, error) {
	fr.lock.RLock()
	defer fr.lock.RUnlock()
	if fr.LoadErr != nil {
		return nil, fr.LoadErr
	}
	return copyRecord(fr.record), nil
}

func (fr *FakeRecordRepo) Save(record *authrecord.Record) error {
	fr.lock.Lock()
	defer fr.lock.Unlock()
	fr.record = copyRecord(record)
	fr.saves++
	return nil
}

func (fr *FakeRecordRepo) Delete() error {
	fr.lock.Lock()
	defer fr.lock.Unlock()
	fr.record = nil
	return nil
}

func (fr *FakeRecordRepo) Path() string {
	return "memory://record.json"
}

// Saves reports how many times Save was called.
func (fr *FakeRecordRepo) Saves() int {
	fr.lock.RLock()
	defer fr.lock.RUnlock()
	return fr.saves
}

func copyRecord(r *authrecord.Record) *authrecord.Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
