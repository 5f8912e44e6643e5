package weightsetup

import (
	"errors"
	"sync"
	"time"
)

// ErrSessionNotFound 会话不存在或已过期
var ErrSessionNotFound = errors.New("权重配置会话不存在或已过期")

// Registry 进程内的会话表，按空闲时长过期
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewRegistry 创建会话表；ttl ≤ 0 表示不过期
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Put 登记会话
func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Get 获取未过期的会话
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if r.expired(s) {
		r.Close(id)
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close 移除会话
func (r *Registry) Close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Sweep 清理全部过期会话，返回清理数量
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, s := range r.sessions {
		if r.expired(s) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Len 当前会话数
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) expired(s *Session) bool {
	if r.ttl <= 0 {
		return false
	}
	return r.now().Sub(s.idleSince()) > r.ttl
}
