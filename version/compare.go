// Package version compares release identifiers and checks the decoder backend against the oldest supported release.
package version

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Compare orders two dotted versions. The patch component may be omitted.
// It returns 1 if a > b, -1 if a < b and 0 if they are equal.
func Compare(a, b string) (int, error) {
	av, err := parse(a)
	if err != nil {
		return 0, err
	}

	bv, err := parse(b)
	if err != nil {
		return 0, err
	}

	for _, pair := range lo.Zip2(av, bv) {
		if pair.A > pair.B {
			return 1, nil
		}

		if pair.A < pair.B {
			return -1, nil
		}
	}

	return 0, nil
}

func parse(s string) ([]int, error) {
	v := make([]int, 3)
	n, err := fmt.Sscanf(strings.TrimPrefix(s, "v"), "%d.%d.%d", &v[0], &v[1], &v[2])
	if n < 2 {
		return nil, fmt.Errorf("parse version %q: %w", s, err)
	}
	return v, nil
}
