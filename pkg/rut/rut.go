// Package rut handles Chilean RUT identifiers (body + modulo 11 check digit).
package rut

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrFormat     = errors.New("rut: malformed value")
	ErrCheckDigit = errors.New("rut: check digit mismatch")
)

// Normalize strips dots and spaces and returns "BODY-DV" with an upper-case K.
func Normalize(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer(".", "", " ", "").Replace(s)

	var body, dv string
	if i := strings.LastIndex(s, "-"); i >= 0 {
		body, dv = s[:i], s[i+1:]
	} else if len(s) > 1 {
		body, dv = s[:len(s)-1], s[len(s)-1:]
	}
	if len(body) < 1 || len(body) > 9 || len(dv) != 1 {
		return "", ErrFormat
	}
	for i := 0; i < len(body); i++ {
		if body[i] < '0' || body[i] > '9' {
			return "", ErrFormat
		}
	}
	body = strings.TrimLeft(body, "0")
	if body == "" {
		return "", ErrFormat
	}
	return body + "-" + dv, nil
}

// CheckDigit computes the modulo 11 verifier for a numeric body.
func CheckDigit(body string) string {
	sum, factor := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}
	switch r := 11 - sum%11; r {
	case 11:
		return "0"
	case 10:
		return "K"
	default:
		return strconv.Itoa(r)
	}
}

// Validate normalizes raw and checks its verifier digit.
func Validate(raw string) (string, error) {
	n, err := Normalize(raw)
	if err != nil {
		return "", err
	}
	i := strings.LastIndex(n, "-")
	if CheckDigit(n[:i]) != n[i+1:] {
		return "", ErrCheckDigit
	}
	return n, nil
}
