package classifier

import (
	"fmt"
	"math"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatBytes renders a byte count using 1024-based units with one decimal digit.
// Sizes of 1024 GB and above stay in GB.
func FormatBytes(n int64) string {
	if n == 0 {
		return "0 Bytes"
	}

	// floor(log1024(n)) without float rounding at exact powers of 1024
	i := 0
	for threshold := int64(1024); i < len(sizeUnits)-1 && n >= threshold; threshold *= 1024 {
		i++
	}

	return fmt.Sprintf("%.1f %s", float64(n)/math.Pow(1024, float64(i)), sizeUnits[i])
}
