package service

import (
	"strings"

	"github.com/vanmart/internal/constants"
	"github.com/vanmart/internal/models"
)

// OrderLine 下单行（商品 + 数量）
type OrderLine struct {
	GoodsID  string
	Quantity int
}

// PurchasedQuantityFunc 查询买家在本活动内对指定商品的已购数量（不含已取消订单）
type PurchasedQuantityFunc func(goodsIDs []string) (map[string]int, error)

// MergeOrderLines 校验并合并重复商品的下单行，保持首次出现的顺序
func MergeOrderLines(lines []OrderLine) ([]OrderLine, error) {
	if len(lines) == 0 {
		return nil, ErrInvalidOrderItem.Detail("订单至少包含一件商品")
	}
	merged := make([]OrderLine, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, line := range lines {
		goodsID := strings.TrimSpace(line.GoodsID)
		if goodsID == "" || line.Quantity < 1 {
			return nil, ErrInvalidOrderItem
		}
		if pos, ok := index[goodsID]; ok {
			merged[pos].Quantity += line.Quantity
			continue
		}
		index[goodsID] = len(merged)
		merged = append(merged, OrderLine{GoodsID: goodsID, Quantity: line.Quantity})
	}
	return merged, nil
}

// CheckEntitlement 逐行校验库存与限购，返回 nil 表示允许
// 任一行拒绝即整体拒绝；本函数不产生任何写操作。
func CheckEntitlement(goods map[string]*models.Goods, lines []OrderLine, purchased PurchasedQuantityFunc) error {
	var prior map[string]int
	for _, line := range lines {
		g, ok := goods[line.GoodsID]
		if !ok || g == nil {
			return ErrGoodsNotFound.Detail("商品不存在: %s", line.GoodsID)
		}
		if g.Status != "" && g.Status != constants.GoodsStatusOnSale {
			return ErrGoodsNotFound.Detail("商品 %s 已下架", g.Name)
		}
		if line.Quantity > g.Stock {
			return ErrInsufficientStock.Detail("商品 %s 库存不足，当前库存 %d", g.Name, g.Stock)
		}
		if !g.HasPurchaseLimit() {
			continue
		}
		if prior == nil {
			loaded, err := loadPriorQuantities(goods, lines, purchased)
			if err != nil {
				return err
			}
			prior = loaded
		}
		limit := *g.PurchaseLimit
		already := prior[g.ID]
		if already+line.Quantity > limit {
			return ErrPurchaseLimitExceeded.Detail("商品 %s 每人限购 %d 件，您已购买 %d 件", g.Name, limit, already)
		}
	}
	return nil
}

// loadPriorQuantities 一次性查询所有限购商品的已购数量
func loadPriorQuantities(goods map[string]*models.Goods, lines []OrderLine, purchased PurchasedQuantityFunc) (map[string]int, error) {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if g, ok := goods[line.GoodsID]; ok && g != nil && g.HasPurchaseLimit() {
			ids = append(ids, g.ID)
		}
	}
	if purchased == nil {
		return map[string]int{}, nil
	}
	result, err := purchased(ids)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = map[string]int{}
	}
	return result, nil
}
