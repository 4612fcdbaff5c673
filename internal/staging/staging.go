// Package staging 持有审批决定前的暂存申请。
// 只有获批的支付才会落库;新申请先暂存于此,进程重启即丢失(可接受,未提交数据)。
package staging

import (
	"sync"
	"time"
)

// Draft 暂存的支付申请草稿
// 字段与 PaymentModel 的业务字段一致,但没有持久 ID
type Draft struct {
	InitiatorID int64
	Amount      float64
	Currency    string
	Method      string
	Description string
	Category    string
	CreatedAt   time.Time
}

// Store 暂存区
// 以进程内唯一的时间戳派生 ID 为键,互斥锁保护,支持并发访问
type Store struct {
	mu     sync.Mutex
	drafts map[int64]*Draft
	lastID int64
}

// NewStore 创建暂存区
func NewStore() *Store {
	return &Store{drafts: make(map[int64]*Draft)}
}

// NextID 生成进程内唯一的草稿 ID
func (s *Store) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := time.Now().UnixNano()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Put 暂存草稿
func (s *Store) Put(id int64, draft *Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *draft
	s.drafts[id] = &copied
}

// Get 非破坏性读取(用于展示)
func (s *Store) Get(id int64) (*Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[id]
	if !ok {
		return nil, false
	}
	copied := *draft
	return &copied, true
}

// Pop 破坏性读取,审批/拒绝时调用
// 对同一 ID 的并发 Pop 只有一个调用者拿到草稿,其余得到 false
func (s *Store) Pop(id int64) (*Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[id]
	if !ok {
		return nil, false
	}
	delete(s.drafts, id)
	return draft, true
}

// IDs 列出当前暂存的草稿 ID
func (s *Store) IDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.drafts))
	for id := range s.drafts {
		ids = append(ids, id)
	}
	return ids
}

// Len 当前暂存数量
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}
