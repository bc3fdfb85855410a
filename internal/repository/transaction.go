package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transaction 事务内的仓储视图，只暴露记录对战需要的仓储
type Transaction struct {
	tx *gorm.DB

	user         UserRepository
	match        MatchRepository
	defeatReason DefeatReasonRepository
}

// WithTransaction 在事务中执行fn，返回错误或panic时回滚
func (m *Manager) WithTransaction(ctx context.Context, fn func(tx *Transaction) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Transaction{tx: tx})
	})
}

// User 事务中的用户仓储
func (t *Transaction) User() UserRepository {
	if t.user == nil {
		t.user = NewUserRepository(t.tx)
	}
	return t.user
}

// Match 事务中的对战记录仓储
func (t *Transaction) Match() MatchRepository {
	if t.match == nil {
		t.match = NewMatchRepository(t.tx)
	}
	return t.match
}

// DefeatReason 事务中的败因仓储
func (t *Transaction) DefeatReason() DefeatReasonRepository {
	if t.defeatReason == nil {
		t.defeatReason = NewDefeatReasonRepository(t.tx)
	}
	return t.defeatReason
}
