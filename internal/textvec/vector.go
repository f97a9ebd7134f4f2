package textvec

import (
	"math"
	"sort"
)

// Vector is a sparse term → weight map.
type Vector map[string]float64

// BuildTFIDF returns one vector per document, in input order.
//
// Term frequency is normalised by document length and the inverse document
// frequency is smoothed as 1 + ln(N/df), so a term present in every document
// still carries weight.
func BuildTFIDF(docs []string) []Vector {
	n := len(docs)
	tokenized := make([][]string, n)
	df := make(map[string]int)
	for i, doc := range docs {
		tokens := Tokenize(doc)
		tokenized[i] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	out := make([]Vector, n)
	for i, tokens := range tokenized {
		counts := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			counts[tok]++
		}
		total := float64(len(tokens))
		if total == 0 {
			total = 1
		}
		vec := make(Vector, len(counts))
		for term, c := range counts {
			vec[term] = (float64(c) / total) * IDF(n, df[term])
		}
		out[i] = vec
	}
	return out
}

// IDF is the smoothed inverse document frequency for a term found in df of n
// documents.
func IDF(n, df int) float64 {
	if n <= 0 || df <= 0 {
		return 1
	}
	return 1 + math.Log(float64(n)/float64(df))
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either vector has zero norm.
func CosineSimilarity(a, b Vector) float64 {
	var dot, na, nb float64
	// iterate keys in sorted order so float summation is reproducible
	for _, k := range sortedKeys(a) {
		av := a[k]
		na += av * av
		if bv, ok := b[k]; ok {
			dot += av * bv
		}
	}
	for _, k := range sortedKeys(b) {
		bv := b[k]
		nb += bv * bv
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Centroid returns the element-wise mean of vectors. An empty input yields an
// empty vector.
func Centroid(vectors []Vector) Vector {
	out := make(Vector)
	if len(vectors) == 0 {
		return out
	}
	for _, v := range vectors {
		for _, k := range sortedKeys(v) {
			out[k] += v[k]
		}
	}
	n := float64(len(vectors))
	for k := range out {
		out[k] /= n
	}
	return out
}

func sortedKeys(v Vector) []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
