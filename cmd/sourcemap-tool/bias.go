package main

import (
	"fmt"
	"strings"

	"github.com/MadAppGang/sourcemap/pkg/sourcemap"
)

func parseBias(s string) (sourcemap.Bias, error) {
	switch strings.ToLower(s) {
	case "exact":
		return sourcemap.EXACT, nil
	case "floor":
		return sourcemap.FLOOR, nil
	case "ceil":
		return sourcemap.CEIL, nil
	default:
		return sourcemap.EXACT, fmt.Errorf("unknown bias %q (want exact, floor, or ceil)", s)
	}
}
