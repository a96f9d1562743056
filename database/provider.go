package database

import (
	"context"
	"fmt"

	"github.com/aivory/fitstudio/config"
	"gorm.io/gorm"
)

// Provider 显式构造的数据库句柄，通过依赖注入传递给各仓库和服务
type Provider struct {
	db *gorm.DB
}

// Open 建立连接并迁移表结构，返回可注入的 Provider
func Open(cfg *config.Config) (*Provider, error) {
	db, err := NewDB(cfg)
	if err != nil {
		return nil, err
	}

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return NewProvider(db), nil
}

// NewProvider 包装已建立的 gorm 连接（测试用）
func NewProvider(db *gorm.DB) *Provider {
	return &Provider{db: db}
}

// DB 返回底层数据库连接
func (p *Provider) DB() *gorm.DB {
	return p.db
}

// WithContext 返回带上下文的连接
func (p *Provider) WithContext(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx)
}

// Transaction 执行事务
func (p *Provider) Transaction(fn TxFunc) error {
	return p.db.Transaction(fn)
}

// TransactionWithContext 带上下文的事务
func (p *Provider) TransactionWithContext(ctx context.Context, fn TxFunc) error {
	return p.db.WithContext(ctx).Transaction(fn)
}

// Ping 检查连接可用性
func (p *Provider) Ping() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close 关闭底层连接
func (p *Provider) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
