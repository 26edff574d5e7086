package model

import (
	"database/sql/driver"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"server-staking-app/internal/pkg/generr"
)

// 用户表结构
type User struct {
	ID              uint64        `gorm:"column:id;primaryKey" json:"id"`
	ReferralStatus  ReferralChain `gorm:"column:referral_status;type:text;not null" json:"referral_status"` // 上级链，最近的邀请人在前
	CurrentReferral uint64        `gorm:"column:current_referral;not null;default:0" json:"current_referral"`
	CreatedAt       time.Time     `gorm:"column:created_at" json:"created_at"`
}

func (User) TableName() string { return "users" }

// 钱包表结构，balance 为版本化的 JSON 文档，见 balance.go
type Wallet struct {
	UserID    uint64    `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	Balance   string    `gorm:"column:balance;type:text;not null"`
	Version   int64     `gorm:"column:version;not null;default:0"` // 乐观锁版本号
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Wallet) TableName() string { return "wallets" }

type PositionStatus int8

const (
	PositionActive PositionStatus = 1
	PositionClosed PositionStatus = 2
)

// 质押记录
type StakingPosition struct {
	ID            uint64          `gorm:"column:id;primaryKey" json:"id"`
	UserID        uint64          `gorm:"column:user_id;index;not null" json:"user_id"`
	CurrencyID    string          `gorm:"column:cur_id;size:32;not null" json:"cur_id"`
	PlanID        uint64          `gorm:"column:plan_id;not null" json:"plan_id"`
	StakeAmount   decimal.Decimal `gorm:"column:stake_amt;type:decimal(36,18);not null" json:"stake_amt"`
	ReturnPerDay  decimal.Decimal `gorm:"column:return_perday;type:decimal(36,18);not null" json:"return_perday"`
	StartDate     time.Time       `gorm:"column:start_date;not null" json:"start_date"`
	EndDate       time.Time       `gorm:"column:end_date;not null" json:"end_date"`
	Status        PositionStatus  `gorm:"column:status;index;not null" json:"status"`
	LastAccruedOn string          `gorm:"column:last_accrued_on;size:10;not null;default:''" json:"last_accrued_on"` // 最近一次计息周期 YYYY-MM-DD
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (StakingPosition) TableName() string { return "staking_history" }

// 质押方案，只读
type Plan struct {
	PlanID     uint64          `gorm:"column:plan_id;primaryKey" json:"plan_id"`
	Duration   int             `gorm:"column:duration;not null" json:"duration"` // 月
	Percentage decimal.Decimal `gorm:"column:percentage;type:decimal(10,4);not null" json:"percentage"`
}

func (Plan) TableName() string { return "plans" }

// 层级奖励比例，只读
type LevelBonus struct {
	Level      int             `gorm:"column:level;primaryKey;autoIncrement:false" json:"level"`
	Percentage decimal.Decimal `gorm:"column:percentage;type:decimal(10,4);not null" json:"percentage"`
}

func (LevelBonus) TableName() string { return "level_bonus" }

// ReferralChain is the ancestor list captured at registration, nearest
// referrer first.
type ReferralChain []uint64

// Prepend returns a new chain with id in front of c.
func (c ReferralChain) Prepend(id uint64) ReferralChain {
	chain := make(ReferralChain, 0, len(c)+1)
	chain = append(chain, id)
	return append(chain, c...)
}

func (c ReferralChain) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	bs, err := json.Marshal([]uint64(c))
	if err != nil {
		return nil, err
	}
	return string(bs), nil
}

// Scan accepts both numeric and quoted ids; the legacy writer stored
// whatever the request body carried.
func (c *ReferralChain) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c = ReferralChain{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.Wrapf(generr.ErrDataCorruption, "referral chain of type %T", src)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		*c = ReferralChain{}
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return errors.Wrapf(generr.ErrDataCorruption, "referral chain %q: %v", raw, err)
	}
	chain := make(ReferralChain, 0, len(items))
	for _, item := range items {
		s := strings.Trim(string(item), `"`)
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return errors.Wrapf(generr.ErrDataCorruption, "referral chain item %s", item)
		}
		chain = append(chain, id)
	}
	*c = chain
	return nil
}
