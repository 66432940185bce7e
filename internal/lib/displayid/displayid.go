// Package displayid форматирует и разбирает человекочитаемые идентификаторы пациентов.
package displayid

import (
	"fmt"
	"strconv"
	"strings"
)

// Prefix общий префикс идентификаторов пациентов.
const Prefix = "PAT"

// Format возвращает идентификатор вида PAT001. Ширина не ограничена сверху: PAT1000, PAT12345.
func Format(seq int64) string {
	return fmt.Sprintf("%s%03d", Prefix, seq)
}

// Parse возвращает порядковый номер из идентификатора, созданного Format.
func Parse(id string) (int64, error) {
	const op = "displayid.Parse"
	digits, ok := strings.CutPrefix(id, Prefix)
	if !ok || digits == "" {
		return 0, fmt.Errorf("%s: %q has no %s prefix", op, id, Prefix)
	}
	seq, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || seq <= 0 {
		return 0, fmt.Errorf("%s: %q is not a valid display id", op, id)
	}
	return seq, nil
}
