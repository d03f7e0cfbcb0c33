// Package jsunpack evaluates Dean Edwards style packed javascript,
// the eval(function(p,a,c,k,e,d){...}) blobs many embed pages hide their sources in.
package jsunpack

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dop251/goja"
)

// ErrNotPacked is returned when the source holds no packed script.
var ErrNotPacked = errors.New("no packed script found")

var packedRegex = regexp.MustCompile(`eval\(\s*function\s*\(\s*p\s*,\s*a\s*,\s*c\s*,\s*k\s*,\s*e\s*,\s*(?:r|d)\s*\)`)

// IsPacked reports whether src contains a packed script.
func IsPacked(src string) bool {
	return packedRegex.MatchString(src)
}

// Unpack evaluates the first packed script in src and returns the code it hides.
// The evaluation is interrupted when ctx is done.
func Unpack(ctx context.Context, src string) (string, error) {
	all, err := unpack(ctx, src, 1)
	if err != nil {
		return "", err
	}

	return all[0], nil
}

// UnpackAll evaluates every packed script in src, in order.
func UnpackAll(ctx context.Context, src string) ([]string, error) {
	return unpack(ctx, src, -1)
}

func unpack(ctx context.Context, src string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	locations := packedRegex.FindAllStringIndex(src, limit)
	if len(locations) == 0 {
		return nil, ErrNotPacked
	}

	unpacked := make([]string, 0, len(locations))
	for _, loc := range locations {
		// skip "eval" to land on the opening paren
		expr, err := enclosed(src, loc[0]+len("eval"))
		if err != nil {
			return nil, err
		}

		code, err := evaluate(ctx, expr)
		if err != nil {
			return nil, err
		}

		unpacked = append(unpacked, code)
	}

	return unpacked, nil
}

// enclosed returns the text between the paren at open and its match,
// ignoring parens inside string literals.
func enclosed(src string, open int) (string, error) {
	if open >= len(src) || src[open] != '(' {
		return "", fmt.Errorf("jsunpack: expected ( at offset %d", open)
	}

	var (
		depth int
		quote byte
	)

	for i := open; i < len(src); i++ {
		c := src[i]

		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'', '`':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return src[open+1 : i], nil
			}
		}
	}

	return "", fmt.Errorf("jsunpack: unbalanced parentheses after offset %d", open)
}

func evaluate(ctx context.Context, expr string) (string, error) {
	vm := goja.New()

	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	value, err := vm.RunString("(" + expr + ")")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		return "", fmt.Errorf("jsunpack: %w", err)
	}

	if goja.IsUndefined(value) || goja.IsNull(value) {
		return "", fmt.Errorf("jsunpack: packed script returned nothing")
	}

	return strings.TrimSpace(value.String()), nil
}
