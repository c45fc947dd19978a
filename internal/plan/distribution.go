package plan

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
)

// Distribution maps bucket specs to relative weights, e.g.
//
//	{"1": 0.5, "2-3": 0.3, ">6": 0.2}
//
// Bucket syntax: "n" (exactly n), "a-b" (uniform in [a,b]) or ">n"
// (uniform in [n+1, 2n]). Weights need not sum to 1.
type Distribution map[string]float64

type bucket struct {
	lo, hi int
	weight float64
	spec   string
}

// sampler is a compiled Distribution with a deterministic bucket order.
type sampler struct {
	buckets []bucket
	total   float64
}

// maxBucket bounds every bucket endpoint so ">n" can double n without
// overflowing.
const maxBucket = math.MaxInt / 2

func parseBucket(spec string) (lo, hi int, err error) {
	s := strings.TrimSpace(spec)
	switch {
	case strings.HasPrefix(s, ">"):
		n, err := strconv.Atoi(strings.TrimSpace(s[1:]))
		if err != nil || n < 0 || n >= maxBucket {
			return 0, 0, fmt.Errorf("bucket %q: want >N with 0 <= N < %d", spec, maxBucket)
		}
		lo, hi = n+1, max(2*n, n+1)
	case strings.Contains(s, "-"):
		a, b, _ := strings.Cut(s, "-")
		var err1, err2 error
		lo, err1 = strconv.Atoi(strings.TrimSpace(a))
		hi, err2 = strconv.Atoi(strings.TrimSpace(b))
		if err1 != nil || err2 != nil {
			return 0, 0, fmt.Errorf("bucket %q: want A-B with 1 <= A <= B", spec)
		}
	default:
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, fmt.Errorf("bucket %q: want a positive integer", spec)
		}
		lo, hi = n, n
	}
	if lo < 1 || hi < lo || hi > maxBucket {
		return 0, 0, fmt.Errorf("bucket %q: range [%d,%d] outside [1,%d]", spec, lo, hi, maxBucket)
	}
	return lo, hi, nil
}

func (d Distribution) compile() (*sampler, error) {
	if len(d) == 0 {
		return nil, fmt.Errorf("distribution is empty")
	}
	s := &sampler{}
	for spec, w := range d {
		if w < 0 {
			return nil, fmt.Errorf("bucket %q has negative weight %v", spec, w)
		}
		lo, hi, err := parseBucket(spec)
		if err != nil {
			return nil, err
		}
		s.buckets = append(s.buckets, bucket{lo: lo, hi: hi, weight: w, spec: spec})
		s.total += w
	}
	if s.total == 0 {
		return nil, fmt.Errorf("distribution weights sum to zero")
	}
	// Map iteration order is random; sampling must not be.
	sort.Slice(s.buckets, func(i, j int) bool {
		if s.buckets[i].lo != s.buckets[j].lo {
			return s.buckets[i].lo < s.buckets[j].lo
		}
		return s.buckets[i].spec < s.buckets[j].spec
	})
	return s, nil
}

func (s *sampler) draw(r *rand.Rand) int {
	x := r.Float64() * s.total
	chosen := s.buckets[len(s.buckets)-1]
	cum := 0.0
	for _, b := range s.buckets {
		cum += b.weight
		if x < cum {
			chosen = b
			break
		}
	}
	if chosen.hi == chosen.lo {
		return chosen.lo
	}
	return chosen.lo + r.IntN(chosen.hi-chosen.lo+1)
}

// SizeDistribution picks a target word count per document: with probability
// MainRangeShare from [MainRangeMin, MainRangeMax], otherwise from
// [MinWords, MaxWords].
type SizeDistribution struct {
	MainRangeShare float64 `yaml:"main_range_share" json:"main_range_share"`
	MainRangeMin   int     `yaml:"main_range_min" json:"main_range_min"`
	MainRangeMax   int     `yaml:"main_range_max" json:"main_range_max"`
	MinWords       int     `yaml:"min_words" json:"min_words"`
	MaxWords       int     `yaml:"max_words" json:"max_words"`
}

func (s SizeDistribution) validate() error {
	if s.MainRangeShare < 0 || s.MainRangeShare > 1 {
		return fmt.Errorf("main_range_share %v outside [0,1]", s.MainRangeShare)
	}
	if s.MinWords < 0 || s.MaxWords < s.MinWords {
		return fmt.Errorf("invalid word range %d-%d", s.MinWords, s.MaxWords)
	}
	if s.MainRangeMin < 0 || s.MainRangeMax < s.MainRangeMin {
		return fmt.Errorf("invalid main word range %d-%d", s.MainRangeMin, s.MainRangeMax)
	}
	return nil
}

func (s SizeDistribution) draw(r *rand.Rand) int {
	lo, hi := s.MinWords, s.MaxWords
	if r.Float64() < s.MainRangeShare {
		lo, hi = s.MainRangeMin, s.MainRangeMax
	}
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}
