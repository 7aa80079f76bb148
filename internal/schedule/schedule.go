package schedule

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// ErrInvalidConfig is returned for digit-set and weight violations. It is
// raised synchronously before a run starts; the state machines assume a
// schedule that already passed these checks.
var ErrInvalidConfig = errors.New("invalid schedule configuration")

// Trial is one planned stimulus presentation. Immutable once generated.
type Trial struct {
	Digit int  `json:"digit"`
	IsGo  bool `json:"is_go"`
}

// ComputeGoRatio returns totalGoWeight / (totalGoWeight + totalNogoWeight),
// summing only strictly positive weights. Digits absent from the weight map
// count as zero.
func ComputeGoRatio(goDigits, nogoDigits []int, weights map[int]float64) (float64, error) {
	if len(goDigits) == 0 || len(nogoDigits) == 0 {
		return 0, fmt.Errorf("%w: at least one Go digit and one No-Go digit are required", ErrInvalidConfig)
	}
	if overlap := intersect(goDigits, nogoDigits); len(overlap) > 0 {
		return 0, fmt.Errorf("%w: digits cannot be both Go and No-Go: %v", ErrInvalidConfig, overlap)
	}
	totalGo := positiveWeightSum(goDigits, weights)
	totalNogo := positiveWeightSum(nogoDigits, weights)
	if totalGo <= 0 || totalNogo <= 0 {
		return 0, fmt.Errorf("%w: non-zero weights required for both Go and No-Go digits", ErrInvalidConfig)
	}
	return totalGo / (totalGo + totalNogo), nil
}

// GenerateTrialSchedule builds one block's trial plan: the Go/No-Go split is
// round(trialsPerBlock * goRatio) clamped to [0, trialsPerBlock], each class
// is sampled with replacement using normalized weights over its positive-
// weight candidates, and the concatenated list is shuffled uniformly.
func GenerateTrialSchedule(rng *rand.Rand, goDigits, nogoDigits []int, weights map[int]float64, goRatio float64, trialsPerBlock int) ([]Trial, error) {
	if trialsPerBlock <= 0 {
		return nil, fmt.Errorf("%w: trials per block must be positive, got %d", ErrInvalidConfig, trialsPerBlock)
	}
	if len(goDigits) == 0 || len(nogoDigits) == 0 {
		return nil, fmt.Errorf("%w: at least one Go digit and one No-Go digit are required", ErrInvalidConfig)
	}
	if overlap := intersect(goDigits, nogoDigits); len(overlap) > 0 {
		return nil, fmt.Errorf("%w: digits cannot be both Go and No-Go: %v", ErrInvalidConfig, overlap)
	}

	nGo := int(math.Round(float64(trialsPerBlock) * goRatio))
	if nGo < 0 {
		nGo = 0
	}
	if nGo > trialsPerBlock {
		nGo = trialsPerBlock
	}
	nNogo := trialsPerBlock - nGo

	goCandidates, goWeights := positiveCandidates(goDigits, weights)
	nogoCandidates, nogoWeights := positiveCandidates(nogoDigits, weights)
	if len(goCandidates) == 0 || len(nogoCandidates) == 0 {
		return nil, fmt.Errorf("%w: non-zero weights are required for Go and No-Go digits", ErrInvalidConfig)
	}
	normalize(goWeights)
	normalize(nogoWeights)

	trials := make([]Trial, 0, trialsPerBlock)
	for i := 0; i < nGo; i++ {
		trials = append(trials, Trial{Digit: weightedSample(rng, goCandidates, goWeights), IsGo: true})
	}
	for i := 0; i < nNogo; i++ {
		trials = append(trials, Trial{Digit: weightedSample(rng, nogoCandidates, nogoWeights), IsGo: false})
	}
	rng.Shuffle(len(trials), func(i, j int) {
		trials[i], trials[j] = trials[j], trials[i]
	})
	return trials, nil
}

// BuildSchedule generates one independent trial plan per block from the same
// ratio and weights. The Go count is rounded per block, not reconciled
// globally, so adjacent blocks may differ by one when trialsPerBlock*goRatio
// is fractional.
func BuildSchedule(rng *rand.Rand, goDigits, nogoDigits []int, weights map[int]float64, nBlocks, trialsPerBlock int) (map[int][]Trial, float64, error) {
	if nBlocks <= 0 {
		return nil, 0, fmt.Errorf("%w: number of blocks must be positive, got %d", ErrInvalidConfig, nBlocks)
	}
	ratio, err := ComputeGoRatio(goDigits, nogoDigits, weights)
	if err != nil {
		return nil, 0, err
	}
	plan := make(map[int][]Trial, nBlocks)
	for block := 1; block <= nBlocks; block++ {
		trials, err := GenerateTrialSchedule(rng, goDigits, nogoDigits, weights, ratio, trialsPerBlock)
		if err != nil {
			return nil, 0, err
		}
		plan[block] = trials
	}
	return plan, ratio, nil
}

// DigitProbabilities returns the per-digit draw probability for each class,
// scaled by the class ratio so the two maps sum to 1 together. Used by the
// configuration preview.
func DigitProbabilities(goDigits, nogoDigits []int, weights map[int]float64) (map[int]float64, map[int]float64, error) {
	ratio, err := ComputeGoRatio(goDigits, nogoDigits, weights)
	if err != nil {
		return nil, nil, err
	}
	goProbs := classProbabilities(goDigits, weights, ratio)
	nogoProbs := classProbabilities(nogoDigits, weights, 1-ratio)
	return goProbs, nogoProbs, nil
}

func classProbabilities(digits []int, weights map[int]float64, classMass float64) map[int]float64 {
	total := positiveWeightSum(digits, weights)
	probs := make(map[int]float64, len(digits))
	for _, d := range digits {
		if w := weights[d]; w > 0 && total > 0 {
			probs[d] = w / total * classMass
		} else {
			probs[d] = 0
		}
	}
	return probs
}

func positiveWeightSum(digits []int, weights map[int]float64) float64 {
	var total float64
	for _, d := range digits {
		if w := weights[d]; w > 0 {
			total += w
		}
	}
	return total
}

func positiveCandidates(digits []int, weights map[int]float64) ([]int, []float64) {
	candidates := make([]int, 0, len(digits))
	ws := make([]float64, 0, len(digits))
	for _, d := range digits {
		if w := weights[d]; w > 0 {
			candidates = append(candidates, d)
			ws = append(ws, w)
		}
	}
	return candidates, ws
}

func normalize(ws []float64) {
	var total float64
	for _, w := range ws {
		total += w
	}
	if total <= 0 {
		return
	}
	for i := range ws {
		ws[i] /= total
	}
}

// weightedSample draws one candidate; ws must be normalized to sum to 1.
func weightedSample(rng *rand.Rand, candidates []int, ws []float64) int {
	r := rng.Float64()
	var cum float64
	for i, w := range ws {
		cum += w
		if r < cum {
			return candidates[i]
		}
	}
	// Floating-point shortfall at the tail lands on the last candidate.
	return candidates[len(candidates)-1]
}

func intersect(a, b []int) []int {
	inA := make(map[int]bool, len(a))
	for _, d := range a {
		inA[d] = true
	}
	var out []int
	for _, d := range b {
		if inA[d] {
			out = append(out, d)
		}
	}
	sort.Ints(out)
	return out
}
