package repository

import (
	"sort"
	"strconv"
	"strings"
)

// buildSetClause строит SET часть UPDATE из карты колонка -> значение.
// Ключи сортируются, чтобы запрос был детерминированным. Имена колонок
// приходят только из кода сервисов, не от клиента.
func buildSetClause(updates map[string]interface{}) (string, []interface{}) {
	fields := make([]string, 0, len(updates))
	for field := range updates {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	args := make([]interface{}, 0, len(fields))
	for i, field := range fields {
		parts = append(parts, field+" = $"+strconv.Itoa(i+1))
		args = append(args, updates[field])
	}

	return strings.Join(parts, ", "), args
}
