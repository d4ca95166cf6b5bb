// pkg/util/size.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import "fmt"

// ByteCount returns a human-readable representation of the given number
// of bytes using binary units, e.g. "1.5 MiB".
func ByteCount[T ~int | ~int64 | ~uint64](b T) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", int64(b))
	}
	div, exp := int64(unit), 0
	for n := int64(b) / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
