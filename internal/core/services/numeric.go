package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"wynn-raid-parser/internal/domain"
)

// groupingReplacer удаляет разделители разрядов: запятые, пробелы, апострофы, подчеркивания.
var groupingReplacer = strings.NewReplacer(",", "", " ", "", "\u00a0", "", "\u202f", "", "'", "", "_", "")

// plainDecimalRegexp допускает только цифры с необязательной дробной частью.
var plainDecimalRegexp = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

var (
	one      = decimal.NewFromInt(1)
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

// NormalizeShorthand превращает строку вида "12.3k", "1,500" или "2.5m" в целое число.
// Суффикс k умножает на тысячу, m - на миллион; остаток меньше единицы отбрасывается.
// Дробная часть без суффикса недопустима: "1.500" - это ошибка, а не 1.
func NormalizeShorthand(text string) (int64, error) {
	s := groupingReplacer.Replace(strings.TrimSpace(text))

	multiplier := one
	if n := len(s); n > 0 {
		switch s[n-1] {
		case 'k', 'K':
			multiplier = thousand
			s = s[:n-1]
		case 'm', 'M':
			multiplier = million
			s = s[:n-1]
		}
	}

	if !plainDecimalRegexp.MatchString(s) || (multiplier.Equal(one) && strings.Contains(s, ".")) {
		return 0, fmt.Errorf("%w: %q", domain.ErrMalformedNumber, text)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", domain.ErrMalformedNumber, text, err)
	}

	value := d.Mul(multiplier).Truncate(0)
	if value.GreaterThan(maxInt64) {
		return 0, fmt.Errorf("%w: %q overflows int64", domain.ErrMalformedNumber, text)
	}
	return value.IntPart(), nil
}

// ParseOptionalInt разбирает целое число; для пустой строки возвращает def.
func ParseOptionalInt(text string, def int) (int, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", domain.ErrMalformedNumber, text, err)
	}
	return v, nil
}
