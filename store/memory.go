package store

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/pizzakit/core"
)

// MemoryStore 是内存实现的 Store，用于测试/开发/原型。
// 支持 TTL（过期时间），但进程重启后数据丢失。
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string]*entry
	ttl   map[string]time.Time
	clean *time.Ticker

	done      chan struct{}
	closeOnce sync.Once
}

type entry struct {
	value []byte
	ttl   *time.Time
}

func NewMemoryStore() *MemoryStore {
	ms := &MemoryStore{
		data:  make(map[string]*entry),
		ttl:   make(map[string]time.Time),
		clean: time.NewTicker(10 * time.Second),
		done:  make(chan struct{}),
	}
	go ms.cleanup()
	return ms
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	if e.ttl != nil && time.Now().After(*e.ttl) {
		return nil, core.ErrStoreNotFound
	}
	return e.value, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := &entry{value: value}
	if len(ttl) > 0 && ttl[0] > 0 {
		expire := time.Now().Add(time.Duration(ttl[0]) * time.Second)
		e.ttl = &expire
		m.ttl[key] = expire
	}
	m.data[key] = e
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	delete(m.ttl, key)
	return nil
}

// Close 停止后台清扫协程。可重复调用。
func (m *MemoryStore) Close() error {
	m.clean.Stop()
	// Stop 不关闭 ticker 通道，需显式通知协程退出
	m.closeOnce.Do(func() { close(m.done) })
	return nil
}

func (m *MemoryStore) cleanup() {
	for {
		select {
		case <-m.done:
			return
		case <-m.clean.C:
			m.mu.Lock()
			now := time.Now()
			for k, expire := range m.ttl {
				if now.After(expire) {
					delete(m.data, k)
					delete(m.ttl, k)
				}
			}
			m.mu.Unlock()
		}
	}
}

var _ core.Store = (*MemoryStore)(nil)

// MemoryOrderStore 是内存实现的 OrderStore，用于测试/开发。
// ID 自增，读取按写入顺序返回。
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders []core.Order
	nextID int64
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{nextID: 1}
}

var _ core.OrderStore = (*MemoryOrderStore)(nil)

func (m *MemoryOrderStore) ReadAll(ctx context.Context) ([]core.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Order, len(m.orders))
	copy(out, m.orders)
	return out, nil
}

func (m *MemoryOrderStore) ReadByCustomer(ctx context.Context, customerID int64) ([]core.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Order, 0)
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MemoryOrderStore) Write(ctx context.Context, o *core.Order) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o.ID = m.nextID
	m.nextID++
	m.orders = append(m.orders, *o)
	return o.ID, nil
}

func (m *MemoryOrderStore) Update(ctx context.Context, id int64, patch core.OrderPatch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.orders {
		if m.orders[i].ID != id {
			continue
		}
		applyPatch(&m.orders[i], patch)
		return true, nil
	}
	return false, nil
}

func (m *MemoryOrderStore) Delete(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.orders {
		if m.orders[i].ID == id {
			m.orders = append(m.orders[:i], m.orders[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func applyPatch(o *core.Order, patch core.OrderPatch) {
	if patch.CustomerName != nil {
		o.CustomerName = *patch.CustomerName
	}
	if patch.CustomerPhone != nil {
		o.CustomerPhone = *patch.CustomerPhone
	}
	if patch.Item != nil {
		o.Item = *patch.Item
	}
	if patch.Ingredients != nil {
		o.Ingredients = *patch.Ingredients
	}
	if patch.Price != nil {
		o.Price = *patch.Price
	}
}
