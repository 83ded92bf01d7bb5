package column

// analyzeNumeric picks a strategy for a numeric column's values (spec
// §4.4 selection order: Constant, then MFV, then bit-pack, then Rice,
// then a scalar-delta fallback with RLE_REPEAT collapse of long zero-
// delta runs).
func analyzeNumeric(values []int64) Strategy {
	n := len(values)
	if n == 0 {
		return StrategyScalarDelta
	}

	if allEqual(values) {
		return StrategyConstant
	}

	if mfv, count := majorityValue(values); count*100 >= n*60 {
		_ = mfv
		return StrategyMFV
	}

	if bitpackFits(values) {
		return StrategyBitpack
	}

	if riceFits(values) {
		return StrategyRice
	}

	return StrategyScalarDelta
}

// analyzeRaw picks a strategy for a string or bool column, represented
// as their canonical string form (spec §4.4: "string/bool RLE by
// consecutive equality").
func analyzeRaw(values []string) Strategy {
	n := len(values)
	if n == 0 {
		return StrategyRLE
	}
	if allEqualStr(values) {
		return StrategyConstant
	}
	if mfv, count := majorityValueStr(values); count*100 >= n*60 {
		_ = mfv
		return StrategyMFV
	}
	if averageRunLength(values) > 1.5 {
		return StrategyRLE
	}
	return StrategyRLE // RLE with run length 1 degrades to one pair per row; still correct.
}

func allEqual(values []int64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func allEqualStr(values []string) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// majorityValue implements the Boyer-Moore majority vote algorithm,
// returning the candidate and its true occurrence count.
func majorityValue(values []int64) (int64, int) {
	var candidate int64
	count := 0
	for _, v := range values {
		if count == 0 {
			candidate = v
			count = 1
		} else if v == candidate {
			count++
		} else {
			count--
		}
	}

	actual := 0
	for _, v := range values {
		if v == candidate {
			actual++
		}
	}
	return candidate, actual
}

func majorityValueStr(values []string) (string, int) {
	var candidate string
	count := 0
	for _, v := range values {
		if count == 0 {
			candidate = v
			count = 1
		} else if v == candidate {
			count++
		} else {
			count--
		}
	}

	actual := 0
	for _, v := range values {
		if v == candidate {
			actual++
		}
	}
	return candidate, actual
}

// bitpackFits reports whether every consecutive delta fits the nibble
// range [-8, 7] the bit-pack strategy encodes (spec §4.4).
func bitpackFits(values []int64) bool {
	for i := 1; i < len(values); i++ {
		delta := values[i] - values[i-1]
		if delta < -8 || delta > 7 {
			return false
		}
	}
	return true
}

// riceFits reports whether Rice coding the column's consecutive deltas
// would be both small enough and bounded enough to prefer over the
// scalar-delta fallback (spec §4.4: strictly <1.5*count bytes and
// max|delta|<1024).
func riceFits(values []int64) bool {
	n := len(values)
	if n < 2 {
		return false
	}

	var maxAbs uint64
	deltas := make([]int64, n-1)
	for i := 1; i < n; i++ {
		d := values[i] - values[i-1]
		deltas[i-1] = d
		if a := absInt64(d); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs >= 1024 {
		return false
	}

	k := riceK(maxAbs)
	bits := 0
	for _, d := range deltas {
		zz := zigzag64(d)
		bits += int(zz>>uint(k)) + 1 + k
	}
	bytes := (bits + 7) / 8

	return bytes < (n*3)/2 // strictly < 1.5*count
}

func zigzag64(v int64) uint64 { return (uint64(v) << 1) ^ uint64(v>>63) }
func unzigzag64(v uint64) int64 { return int64(v>>1) ^ -int64(v&1) }

// averageRunLength returns the mean length of consecutive-equal runs.
func averageRunLength(values []string) float64 {
	if len(values) == 0 {
		return 0
	}
	runs := 1
	for i := 1; i < len(values); i++ {
		if values[i] != values[i-1] {
			runs++
		}
	}
	return float64(len(values)) / float64(runs)
}
