package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/rushteam/pizzakit/core"
)

// PostgresConfig 是 PostgreSQL 连接配置。
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
}

// PostgresOrderStore 是 PostgreSQL 实现的 OrderStore。
// 所有写入都是单语句，失败不会留下不一致的部分状态。
type PostgresOrderStore struct {
	db *sql.DB
}

// NewPostgresOrderStore 建立 PostgreSQL 连接。
func NewPostgresOrderStore(cfg PostgresConfig) (*PostgresOrderStore, error) {
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresOrderStore{db: db}, nil
}

var _ core.OrderStore = (*PostgresOrderStore)(nil)

// Ping 验证数据库连接。
func (p *PostgresOrderStore) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close 关闭数据库连接。
func (p *PostgresOrderStore) Close() error {
	return p.db.Close()
}

// CreateTables 创建订单表（幂等）。
func (p *PostgresOrderStore) CreateTables(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL,
		customer_name VARCHAR(255) NOT NULL DEFAULT '',
		customer_phone VARCHAR(64) NOT NULL DEFAULT '',
		placed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		item VARCHAR(255) NOT NULL,
		ingredients TEXT NOT NULL,
		price NUMERIC(10,2) NOT NULL
	)`
	if _, err := p.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

const orderColumns = "id, customer_id, customer_name, customer_phone, placed_at, item, ingredients, price"

func (p *PostgresOrderStore) ReadAll(ctx context.Context) ([]core.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders ORDER BY id"
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read all orders: %w", err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (p *PostgresOrderStore) ReadByCustomer(ctx context.Context, customerID int64) ([]core.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE customer_id = $1 ORDER BY id"
	rows, err := p.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("read customer orders: %w", err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (p *PostgresOrderStore) Write(ctx context.Context, o *core.Order) (int64, error) {
	placedAt := o.PlacedAt
	if placedAt.IsZero() {
		placedAt = time.Now()
	}

	query := `INSERT INTO orders (customer_id, customer_name, customer_phone, placed_at, item, ingredients, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := p.db.QueryRowContext(ctx, query,
		o.CustomerID, o.CustomerName, o.CustomerPhone, placedAt, o.Item, o.Ingredients, o.Price,
	).Scan(&o.ID)
	if err != nil {
		return 0, fmt.Errorf("write order: %w", err)
	}
	o.PlacedAt = placedAt
	return o.ID, nil
}

func (p *PostgresOrderStore) Update(ctx context.Context, id int64, patch core.OrderPatch) (bool, error) {
	if patch.Empty() {
		return p.exists(ctx, id)
	}

	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	add := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.CustomerName != nil {
		add("customer_name", *patch.CustomerName)
	}
	if patch.CustomerPhone != nil {
		add("customer_phone", *patch.CustomerPhone)
	}
	if patch.Item != nil {
		add("item", *patch.Item)
	}
	if patch.Ingredients != nil {
		add("ingredients", *patch.Ingredients)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE orders SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))

	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update order: %w", err)
	}
	return n > 0, nil
}

func (p *PostgresOrderStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := p.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete order: %w", err)
	}
	return n > 0, nil
}

func (p *PostgresOrderStore) exists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := p.db.QueryRowContext(ctx, "SELECT 1 FROM orders WHERE id = $1", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check order: %w", err)
	}
	return true, nil
}

func scanOrders(rows *sql.Rows) ([]core.Order, error) {
	out := make([]core.Order, 0)
	for rows.Next() {
		var o core.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.CustomerPhone,
			&o.PlacedAt, &o.Item, &o.Ingredients, &o.Price); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return out, nil
}
