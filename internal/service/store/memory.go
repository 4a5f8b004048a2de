package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"abcost/internal/abc"
	"abcost/internal/model"
)

// ErrNoDataset 尚未上传任何数据集
var ErrNoDataset = errors.New("no dataset loaded")

// Dataset 一次上传对应的完整数据集
// 输入表与计算结果一起保存，重新上传即整体替换，不做跨次持久化。
type Dataset struct {
	ID         string
	FileName   string
	UploadedAt time.Time

	CostSheet  string
	EventSheet string

	Pools  []model.CostPool
	Events *model.EventTable
	Result *abc.Result
}

// MemoryStore 内存数据集存储
type MemoryStore struct {
	datasets  map[string]*Dataset
	currentID string
	mu        sync.RWMutex
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		datasets: make(map[string]*Dataset),
	}
}

// Put 保存数据集并置为当前
func (s *MemoryStore) Put(ds *Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.datasets[ds.ID] = ds
	s.currentID = ds.ID
}

// Get 按 ID 获取数据集
func (s *MemoryStore) Get(id string) (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[id]
	if !ok {
		return nil, errors.New("dataset not found")
	}
	return ds, nil
}

// Current 获取当前数据集
func (s *MemoryStore) Current() (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.currentID == "" {
		return nil, ErrNoDataset
	}
	ds, ok := s.datasets[s.currentID]
	if !ok {
		return nil, ErrNoDataset
	}
	return ds, nil
}

// SetCurrent 切换当前数据集
func (s *MemoryStore) SetCurrent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[id]; !ok {
		return errors.New("dataset not found")
	}
	s.currentID = id
	return nil
}

// List 获取全部数据集（按上传时间倒序）
func (s *MemoryStore) List() []*Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Dataset, 0, len(s.datasets))
	for _, ds := range s.datasets {
		result = append(result, ds)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UploadedAt.After(result[j].UploadedAt)
	})
	return result
}

// Count 获取数据集数量
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.datasets)
}

// Clear 清空所有数据集
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.datasets = make(map[string]*Dataset)
	s.currentID = ""
}
