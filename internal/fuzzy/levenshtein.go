package fuzzy

// DamerauLevenshteinDistance computes the Damerau-Levenshtein distance
// between two strings: the minimum number of single-character insertions,
// deletions, substitutions or adjacent transpositions required to change one
// into the other. Works on runes so accented ingredient names compare
// correctly.
func DamerauLevenshteinDistance(a, b string) int {
	return DamerauLevenshteinDistanceWithLimit(a, b, -1)
}

// DamerauLevenshteinDistanceWithLimit is DamerauLevenshteinDistance with
// early termination: once the distance provably exceeds maxDistance it
// returns maxDistance+1. A negative maxDistance disables the limit.
func DamerauLevenshteinDistanceWithLimit(a, b string, maxDistance int) int {
	runesA := []rune(a)
	runesB := []rune(b)

	lenA := len(runesA)
	lenB := len(runesB)

	if maxDistance >= 0 {
		lengthDiff := lenA - lenB
		if lengthDiff < 0 {
			lengthDiff = -lengthDiff
		}
		if lengthDiff > maxDistance {
			return maxDistance + 1
		}
	}

	if lenA == 0 {
		return lenB
	}
	if lenB == 0 {
		return lenA
	}

	// Three rolling rows: i-2 is needed for the transposition case.
	prevPrevRow := make([]int, lenB+1)
	prevRow := make([]int, lenB+1)
	currRow := make([]int, lenB+1)

	for j := 0; j <= lenB; j++ {
		prevRow[j] = j
	}

	for i := 1; i <= lenA; i++ {
		currRow[0] = i
		minInRow := i

		for j := 1; j <= lenB; j++ {
			cost := 0
			if runesA[i-1] != runesB[j-1] {
				cost = 1
			}

			deletion := prevRow[j] + 1
			insertion := currRow[j-1] + 1
			substitution := prevRow[j-1] + cost

			currRow[j] = min3(deletion, insertion, substitution)

			if i > 1 && j > 1 &&
				runesA[i-1] == runesB[j-2] &&
				runesA[i-2] == runesB[j-1] {
				transposition := prevPrevRow[j-2] + cost
				if transposition < currRow[j] {
					currRow[j] = transposition
				}
			}

			if currRow[j] < minInRow {
				minInRow = currRow[j]
			}
		}

		if maxDistance >= 0 && minInRow > maxDistance {
			return maxDistance + 1
		}

		prevPrevRow, prevRow, currRow = prevRow, currRow, prevPrevRow
	}

	return prevRow[lenB]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
