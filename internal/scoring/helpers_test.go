package scoring

import "strconv"

func itoa(id int) string {
	return strconv.Itoa(id)
}

// tkiAnswers expands a 30-character A/B pattern into raw answers keyed by pair id.
func tkiAnswers(pattern string) RawAnswers {
	raw := make(RawAnswers, len(pattern))
	for idx, choice := range pattern {
		raw[strconv.Itoa(idx+1)] = string(choice)
	}
	return raw
}

// likertAnswers answers question ids 1..n with the same rating.
func likertAnswers(n int, rating float64) RawAnswers {
	raw := make(RawAnswers, n)
	for id := 1; id <= n; id++ {
		raw[strconv.Itoa(id)] = rating
	}
	return raw
}

func ratingsFor(categories CategoryMap, perCategory map[Category][]int, fallback int) map[int]int {
	ratings := make(map[int]int, len(categories))
	offsets := make(map[Category]int)
	for _, id := range categories.QuestionIDs() {
		category := categories[id]
		values := perCategory[category]
		idx := offsets[category]
		offsets[category]++
		if idx < len(values) {
			ratings[id] = values[idx]
			continue
		}
		ratings[id] = fallback
	}
	return ratings
}
