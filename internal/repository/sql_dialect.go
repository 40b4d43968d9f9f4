package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

func likeOperatorByDialect(dialect string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return "ILIKE"
	default:
		return "LIKE"
	}
}

// containsCondition 构建模糊匹配条件，兼容 sqlite 与 postgres。
func containsCondition(db *gorm.DB, column string) string {
	return containsConditionByDialect(dbDialectName(db), column)
}

func containsConditionByDialect(dialect, column string) string {
	return fmt.Sprintf("%s %s ? ESCAPE '\\'", strings.TrimSpace(column), likeOperatorByDialect(dialect))
}

// containsArg 转义 LIKE 通配符并包裹 %。
func containsArg(keyword string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.TrimSpace(keyword)) + "%"
}
