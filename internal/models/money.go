package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// moneyScale 金额精度（分）
const moneyScale = 2

// Money 统一金额类型（保留 2 位小数）
// 所有金额计算都在 decimal 上完成，仅在展示边界转换为字符串。
type Money struct {
	decimal.Decimal
}

// ZeroMoney 返回 0 金额
func ZeroMoney() Money {
	return Money{Decimal: decimal.Zero}
}

// NewMoneyFromDecimal 从 decimal 创建金额
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(moneyScale)}
}

// NewMoney 从十进制字符串创建金额，例如 "19.90"
func NewMoney(raw string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return Money{}, fmt.Errorf("invalid money %q: %w", raw, err)
	}
	return NewMoneyFromDecimal(d), nil
}

// MustMoney 同 NewMoney，解析失败时 panic（仅用于常量与测试数据）
func MustMoney(raw string) Money {
	m, err := NewMoney(raw)
	if err != nil {
		panic(err)
	}
	return m
}

// Add 金额相加
func (m Money) Add(other Money) Money {
	return NewMoneyFromDecimal(m.Decimal.Add(other.Decimal))
}

// Sub 金额相减
func (m Money) Sub(other Money) Money {
	return NewMoneyFromDecimal(m.Decimal.Sub(other.Decimal))
}

// MulInt 单价 × 整数数量
func (m Money) MulInt(quantity int) Money {
	return NewMoneyFromDecimal(m.Decimal.Mul(decimal.NewFromInt(int64(quantity))))
}

// Equal 金额是否相等
func (m Money) Equal(other Money) bool {
	return m.Decimal.Round(moneyScale).Equal(other.Decimal.Round(moneyScale))
}

// IsNegative 是否为负数
func (m Money) IsNegative() bool {
	return m.Decimal.IsNegative()
}

// SumMoney 累加多个金额
func SumMoney(values ...Money) Money {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v.Decimal)
	}
	return NewMoneyFromDecimal(total)
}

// MarshalJSON 统一输出 2 位小数的字符串
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Decimal.Round(moneyScale).StringFixed(moneyScale))
}

// UnmarshalJSON 解析金额（字符串或数字）
// 数字按原始文本解析，不经过 float64。
func (m *Money) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "" || raw == "null" {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = s
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	m.Decimal = d.Round(moneyScale)
	return nil
}

// Value 用于数据库写入
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(moneyScale).StringFixed(moneyScale), nil
}

// Scan 用于数据库读取
func (m *Money) Scan(value interface{}) error {
	if err := m.Decimal.Scan(value); err != nil {
		return err
	}
	m.Decimal = m.Decimal.Round(moneyScale)
	return nil
}

// String 返回 2 位小数格式
func (m Money) String() string {
	return m.Decimal.Round(moneyScale).StringFixed(moneyScale)
}

// NullMoney 可空金额（原价、成本等可选字段）
type NullMoney struct {
	Money Money
	Valid bool
}

// NewNullMoney 创建有效的可空金额
func NewNullMoney(m Money) NullMoney {
	return NullMoney{Money: m, Valid: true}
}

// OrZero 为空时返回 0
func (n NullMoney) OrZero() Money {
	if !n.Valid {
		return ZeroMoney()
	}
	return n.Money
}

// MarshalJSON 为空时输出 null
func (n NullMoney) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return n.Money.MarshalJSON()
}

// UnmarshalJSON 解析可空金额
func (n *NullMoney) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "" || raw == "null" {
		n.Valid = false
		n.Money = Money{}
		return nil
	}
	if err := n.Money.UnmarshalJSON(b); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Value 用于数据库写入
func (n NullMoney) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Money.Value()
}

// Scan 用于数据库读取
func (n *NullMoney) Scan(value interface{}) error {
	if value == nil {
		n.Valid = false
		n.Money = Money{}
		return nil
	}
	if err := n.Money.Scan(value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}
