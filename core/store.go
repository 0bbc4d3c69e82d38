package core

import "context"

// OrderStore 是订单持久化协作方的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//   - 写入前须校验 Item 存在于菜单中（由调用方/服务层保证）
//   - 单语句写入，失败不留下不一致的部分状态
type OrderStore interface {
	// ReadAll 读取全部历史订单。
	ReadAll(ctx context.Context) ([]Order, error)

	// ReadByCustomer 读取指定顾客的历史订单。
	ReadByCustomer(ctx context.Context, customerID int64) ([]Order, error)

	// Write 写入一条订单，返回生成的订单 ID。
	Write(ctx context.Context, o *Order) (int64, error)

	// Update 按 OrderPatch 部分更新订单；订单不存在时返回 (false, nil)。
	Update(ctx context.Context, id int64, patch OrderPatch) (bool, error)

	// Delete 删除订单；订单不存在时返回 (false, nil)。
	Delete(ctx context.Context, id int64) (bool, error)
}

// Store 是通用 KV 存储的领域接口。
//
// 使用场景：
//   - 模型工件存储：训练产物整体替换式持久化
//   - 结果缓存：情境窗口热门统计等短 TTL 缓存
//
// 实现：
//   - store.MemoryStore 实现此接口
//   - store.RedisStore 实现此接口
type Store interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// Get 读取单个 key 的值
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入单个 key-value，ttl 以秒计（可选，0 表示不过期）
	Set(ctx context.Context, key string, value []byte, ttl ...int) error

	// Delete 删除单个 key
	Delete(ctx context.Context, key string) error

	// Close 关闭连接/释放资源
	Close() error
}

// Store 错误定义（使用统一的 DomainError）
var (
	// ErrStoreNotFound 表示 key 不存在
	ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

	// ErrOrderNotFound 表示订单不存在
	ErrOrderNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: order not found")
)
