// Package shortlink кодирует id рецепта в короткий токен для ссылок вида /s/{token}.
package shortlink

import (
	"errors"
	"fmt"
	"math"
)

const (
	base  = 23
	first = 'a'
	last  = first + base - 1 // 'w'
)

var ErrInvalidArgument = errors.New("shortlink: invalid argument")

// Encode переводит id в base-23 (алфавит a..w, старший разряд первым).
// Ноль кодируется одной цифрой "a".
func Encode(id int64) (string, error) {
	if id < 0 {
		return "", fmt.Errorf("%w: negative id %d", ErrInvalidArgument, id)
	}
	if id == 0 {
		return string(rune(first)), nil
	}

	var buf [14]byte // 23^14 > 2^63
	i := len(buf)
	for id > 0 {
		i--
		buf[i] = byte(first + id%base)
		id /= base
	}
	return string(buf[i:]), nil
}

// Decode — обратное преобразование.
func Decode(token string) (int64, error) {
	if token == "" {
		return 0, fmt.Errorf("%w: empty token", ErrInvalidArgument)
	}
	var n int64
	for i := 0; i < len(token); i++ {
		c := token[i]
		if c < first || c > last {
			return 0, fmt.Errorf("%w: symbol %q at %d", ErrInvalidArgument, c, i)
		}
		d := int64(c - first)
		if n > (math.MaxInt64-d)/base {
			return 0, fmt.Errorf("%w: token %q overflows int64", ErrInvalidArgument, token)
		}
		n = n*base + d
	}
	return n, nil
}
