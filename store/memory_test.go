package store

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/rushteam/pizzakit/core"
)

// TestMemoryStoreCRUD 测试内存 KV 的基础读写删
func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, core.ErrStoreNotFound) {
		t.Errorf("缺失 key 应返回 ErrStoreNotFound, got %v", err)
	}

	if err := s.Set(ctx, "popular:5:19", []byte("Calabresa")); err != nil {
		t.Fatalf("Set 失败: %v", err)
	}
	got, err := s.Get(ctx, "popular:5:19")
	if err != nil {
		t.Fatalf("Get 失败: %v", err)
	}
	if string(got) != "Calabresa" {
		t.Errorf("Get = %q, want Calabresa", got)
	}

	if err := s.Delete(ctx, "popular:5:19"); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}
	if _, err := s.Get(ctx, "popular:5:19"); !errors.Is(err, core.ErrStoreNotFound) {
		t.Errorf("删除后应返回 ErrStoreNotFound, got %v", err)
	}
}

// TestMemoryStoreTTL 测试带 TTL 的 key 过期后不可读
func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if err := s.Set(ctx, "short", []byte("v"), 1); err != nil {
		t.Fatalf("Set 失败: %v", err)
	}
	if _, err := s.Get(ctx, "short"); err != nil {
		t.Fatalf("过期前应可读: %v", err)
	}

	time.Sleep(1100 * time.Millisecond)
	if _, err := s.Get(ctx, "short"); !errors.Is(err, core.ErrStoreNotFound) {
		t.Errorf("过期后应返回 ErrStoreNotFound, got %v", err)
	}
}

// TestMemoryStoreClose 测试 Close 停掉后台清扫协程且可重复调用
func TestMemoryStoreClose(t *testing.T) {
	before := runtime.NumGoroutine()
	s := NewMemoryStore()

	if err := s.Close(); err != nil {
		t.Fatalf("Close 失败: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("重复 Close 应为空操作: %v", err)
	}

	// 清扫协程收到退出信号后应结束
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if runtime.NumGoroutine() <= before {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("Close 后清扫协程未退出：协程数 %d > %d", runtime.NumGoroutine(), before)
}

// TestMemoryOrderStore 测试内存订单仓储的完整生命周期
func TestMemoryOrderStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryOrderStore()

	o1 := core.Order{CustomerID: 1, CustomerName: "Ana", Item: "Margherita",
		Ingredients: "molho de tomate, mussarela, manjericão", Price: 32, PlacedAt: time.Now()}
	o2 := core.Order{CustomerID: 2, CustomerName: "Bruno", Item: "Calabresa",
		Ingredients: "molho de tomate, mussarela, calabresa, cebola", Price: 35, PlacedAt: time.Now()}

	id1, err := s.Write(ctx, &o1)
	if err != nil {
		t.Fatalf("写入订单失败: %v", err)
	}
	id2, _ := s.Write(ctx, &o2)
	if id1 != 1 || id2 != 2 {
		t.Errorf("订单 ID 应自增：got %d, %d", id1, id2)
	}

	all, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll 失败: %v", err)
	}
	if len(all) != 2 || all[0].Item != "Margherita" {
		t.Errorf("ReadAll 应按写入顺序返回 2 条订单，got %d", len(all))
	}

	mine, err := s.ReadByCustomer(ctx, 1)
	if err != nil {
		t.Fatalf("ReadByCustomer 失败: %v", err)
	}
	if len(mine) != 1 || mine[0].CustomerName != "Ana" {
		t.Errorf("顾客 1 应有 1 条订单，got %d", len(mine))
	}
}

// TestMemoryOrderStoreUpdate 测试部分更新与缺失订单的行为
func TestMemoryOrderStoreUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryOrderStore()
	o := core.Order{CustomerID: 1, CustomerName: "Ana", Item: "Margherita", Price: 32}
	id, _ := s.Write(ctx, &o)

	newItem := "Pepperoni"
	newPrice := 38.0
	ok, err := s.Update(ctx, id, core.OrderPatch{Item: &newItem, Price: &newPrice})
	if err != nil || !ok {
		t.Fatalf("Update = (%v, %v), want (true, nil)", ok, err)
	}

	all, _ := s.ReadAll(ctx)
	if all[0].Item != "Pepperoni" || all[0].Price != 38.0 {
		t.Errorf("更新后订单 = %+v, 字段未生效", all[0])
	}
	// 未出现在 patch 中的字段保持不变
	if all[0].CustomerName != "Ana" {
		t.Errorf("未更新字段应保持不变，got %q", all[0].CustomerName)
	}

	ok, err = s.Update(ctx, 999, core.OrderPatch{Item: &newItem})
	if err != nil || ok {
		t.Errorf("更新缺失订单应返回 (false, nil)，got (%v, %v)", ok, err)
	}
}

// TestMemoryOrderStoreDelete 测试删除与缺失订单的行为
func TestMemoryOrderStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryOrderStore()
	o := core.Order{CustomerID: 1, Item: "Margherita", Price: 32}
	id, _ := s.Write(ctx, &o)

	ok, err := s.Delete(ctx, id)
	if err != nil || !ok {
		t.Fatalf("Delete = (%v, %v), want (true, nil)", ok, err)
	}
	all, _ := s.ReadAll(ctx)
	if len(all) != 0 {
		t.Errorf("删除后订单数 = %d, want 0", len(all))
	}

	ok, err = s.Delete(ctx, id)
	if err != nil || ok {
		t.Errorf("重复删除应返回 (false, nil)，got (%v, %v)", ok, err)
	}
}
