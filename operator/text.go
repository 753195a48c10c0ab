package operator

import (
	"strings"
	"unicode"
)

// tokenize lower-cases s and splits it on anything that is not a letter
// or digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// withinDistance reports whether the Levenshtein distance between a and b
// is at most maxDist. The first prefixLen runes must match exactly.
func withinDistance(a, b string, maxDist, prefixLen int) bool {
	ra, rb := []rune(a), []rune(b)
	if prefixLen > 0 {
		if len(ra) < prefixLen || len(rb) < prefixLen {
			return string(ra) == string(rb)
		}
		if string(ra[:prefixLen]) != string(rb[:prefixLen]) {
			return false
		}
		ra, rb = ra[prefixLen:], rb[prefixLen:]
	}
	if abs(len(ra)-len(rb)) > maxDist {
		return false
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			rowMin = min(rowMin, curr[j])
		}
		if rowMin > maxDist {
			return false
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)] <= maxDist
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// wildcardMatch matches s against pattern, where '*' matches any run of
// runes (including none) and '?' matches exactly one rune.
func wildcardMatch(pattern, s string) bool {
	p, t := []rune(pattern), []rune(s)
	pi, ti := 0, 0
	star, mark := -1, 0
	for ti < len(t) {
		switch {
		case pi < len(p) && p[pi] == '*':
			star = pi
			mark = ti
			pi++
		case pi < len(p) && (p[pi] == '?' || p[pi] == t[ti]):
			pi++
			ti++
		case star >= 0:
			pi = star + 1
			mark++
			ti = mark
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}

// phraseMatch reports whether terms occur in tokens in order, with at most
// slop extra tokens between them in total.
func phraseMatch(tokens, terms []string, slop int) bool {
	if len(terms) == 0 {
		return false
	}
	for start, tok := range tokens {
		if tok != terms[0] {
			continue
		}
		pos, gaps, ok := start, 0, true
		for _, term := range terms[1:] {
			next := -1
			for k := pos + 1; k < len(tokens) && k-pos-1+gaps <= slop; k++ {
				if tokens[k] == term {
					next = k
					break
				}
			}
			if next < 0 {
				ok = false
				break
			}
			gaps += next - pos - 1
			pos = next
		}
		if ok {
			return true
		}
	}
	return false
}

func containsToken(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}
