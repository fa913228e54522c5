package match

// EditDistance returns the Levenshtein distance between a and b, counted in runes.
//
// The comparison is case-sensitive. The full (len(b)+1) x (len(a)+1) cost table is
// built, so it is meant for short strings such as questions.
func EditDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	table := make([][]int, len(rb)+1)
	for i := range table {
		table[i] = make([]int, len(ra)+1)
		table[i][0] = i
	}
	for j := 0; j <= len(ra); j++ {
		table[0][j] = j
	}

	for i := 1; i <= len(rb); i++ {
		for j := 1; j <= len(ra); j++ {
			if rb[i-1] == ra[j-1] {
				table[i][j] = table[i-1][j-1]
				continue
			}
			table[i][j] = 1 + min(
				table[i-1][j-1], // substitution
				table[i][j-1],   // insertion
				table[i-1][j],   // deletion
			)
		}
	}
	return table[len(rb)][len(ra)]
}

// Similarity returns the length-normalized inverse edit distance of a and b:
// (len(longer) - EditDistance(longer, shorter)) / len(longer).
//
// Two empty strings are identical (1.0). The value is approximate in the sense
// that it is not a calibrated probability; it always falls within [0,1] because the
// distance never exceeds the longer length.
func Similarity(a, b string) float64 {
	longer, shorter := a, b
	if runeLen(b) > runeLen(a) {
		longer, shorter = b, a
	}
	n := runeLen(longer)
	if n == 0 {
		return 1.0
	}
	return float64(n-EditDistance(longer, shorter)) / float64(n)
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
