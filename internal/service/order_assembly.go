package service

import (
	"github.com/vanmart/internal/models"
)

// AssembledOrder 组装结果（不含持久化字段）
type AssembledOrder struct {
	Items         []models.OrderItem
	TotalAmount   models.Money
	GoodsCost     models.Money
	FreightAmount models.Money
}

// AssembleOrder 根据商品快照生成订单项与金额
// subtotal = price × qty；goods_cost = 单件成本 × qty；total = Σsubtotal + freight
func AssembleOrder(goods map[string]*models.Goods, lines []OrderLine, freight models.Money) (*AssembledOrder, error) {
	if freight.IsNegative() {
		return nil, ErrInvalidOrderItem.Detail("运费不能为负数")
	}
	items := make([]models.OrderItem, 0, len(lines))
	subtotals := make([]models.Money, 0, len(lines))
	costs := make([]models.Money, 0, len(lines))
	for _, line := range lines {
		g, ok := goods[line.GoodsID]
		if !ok || g == nil {
			return nil, ErrGoodsNotFound.Detail("商品不存在: %s", line.GoodsID)
		}
		if line.Quantity < 1 {
			return nil, ErrInvalidOrderItem
		}
		subtotal := g.Price.MulInt(line.Quantity)
		lineCost := g.UnitCost().MulInt(line.Quantity)
		items = append(items, models.OrderItem{
			GoodsID:       g.ID,
			GoodsName:     g.Name,
			GoodsImage:    g.ImageURL,
			Specification: g.Specification,
			Price:         g.Price,
			Quantity:      line.Quantity,
			Subtotal:      subtotal,
			GoodsCost:     lineCost,
		})
		subtotals = append(subtotals, subtotal)
		costs = append(costs, lineCost)
	}
	return &AssembledOrder{
		Items:         items,
		TotalAmount:   models.SumMoney(subtotals...).Add(freight),
		GoodsCost:     models.SumMoney(costs...),
		FreightAmount: freight,
	}, nil
}
