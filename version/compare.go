package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Compare compares two dotted versions, ignoring a "v" prefix and any
// pre-release suffix. Missing components count as zero.
// It returns 1 if a > b, -1 if a < b and 0 if they are equal.
func Compare(a, b string) (int, error) {
	parse := func(s string) ([3]int, error) {
		var v [3]int

		s = strings.TrimPrefix(strings.TrimSpace(s), "v")
		s, _, _ = strings.Cut(s, "-")

		parts := strings.Split(s, ".")
		if len(parts) > 3 || s == "" {
			return v, fmt.Errorf("invalid version %q", s)
		}

		for i, part := range parts {
			n, err := strconv.Atoi(part)
			if err != nil {
				return v, fmt.Errorf("invalid version %q: %w", s, err)
			}
			v[i] = n
		}

		return v, nil
	}

	av, err := parse(a)
	if err != nil {
		return 0, err
	}

	bv, err := parse(b)
	if err != nil {
		return 0, err
	}

	for _, pair := range lo.Zip2(av[:], bv[:]) {
		if pair.A > pair.B {
			return 1, nil
		}

		if pair.A < pair.B {
			return -1, nil
		}
	}

	return 0, nil
}
