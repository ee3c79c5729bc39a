package blurhash

import "fmt"

const base83Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz#$%*+,-.:;=?@[]^_{|}~"

// base83Index maps a byte to its alphabet position, -1 if absent.
var base83Index [256]int8

func init() {
	for i := range base83Index {
		base83Index[i] = -1
	}
	for i := 0; i < len(base83Chars); i++ {
		base83Index[base83Chars[i]] = int8(i)
	}
}

// EncodeBase83 renders value as exactly digits base83 characters,
// most significant first.
func EncodeBase83(value, digits int) (string, error) {
	buf, err := AppendBase83(make([]byte, 0, digits), value, digits)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// AppendBase83 appends the digits-wide base83 form of value to dst.
func AppendBase83(dst []byte, value, digits int) ([]byte, error) {
	if digits < 1 {
		return dst, fmt.Errorf("%w: %d digits", ErrValueOverflow, digits)
	}
	if value < 0 || value > maxBase83(digits) {
		return dst, fmt.Errorf("%w: %d in %d digits", ErrValueOverflow, value, digits)
	}
	divisor := 1
	for i := 1; i < digits; i++ {
		divisor *= 83
	}
	for ; divisor > 0; divisor /= 83 {
		dst = append(dst, base83Chars[(value/divisor)%83])
	}
	return dst, nil
}

// DecodeBase83 folds s left to right into an integer.
func DecodeBase83(s string) (int, error) {
	v := 0
	for i := 0; i < len(s); i++ {
		d := base83Index[s[i]]
		if d < 0 {
			return 0, fmt.Errorf("%w: %q at offset %d", ErrInvalidCharacter, s[i], i)
		}
		v = v*83 + int(d)
	}
	return v, nil
}

// maxBase83 returns 83^digits - 1, saturating well before int overflow.
func maxBase83(digits int) int {
	const limit = 1 << 53
	m := 1
	for i := 0; i < digits; i++ {
		if m > limit/83 {
			return limit
		}
		m *= 83
	}
	return m - 1
}
