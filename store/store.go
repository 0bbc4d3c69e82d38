package store

// 注意：此包只包含实现，接口定义在 core 包。
// 使用 core.Store（KV）和 core.OrderStore（订单持久化）接口。
//
// 示例：
//   var kv core.Store = NewMemoryStore()
//   var orders core.OrderStore = NewMemoryOrderStore()
