package roll

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var mockDiceQueue []int

// MockDice prepares a sequence of deterministic results for the next calls to Roll
func MockDice(results []int) {
	mockDiceQueue = results
}

// ResetMockDice clears the deterministic queue
func ResetMockDice() {
	mockDiceQueue = nil
}

// Result contains the finalized answer alongside the raw rolls used
type Result struct {
	Total    int
	RawRolls []int
	Kept     []int
	Dropped  []int
	Modifier int
}

// diceSpec is one parsed dice-notation term.
type diceSpec struct {
	count    int
	sides    int
	keep     int  // dice that count toward the total after sorting
	highest  bool // keep from the top of the sort rather than the bottom
	modifier int
}

var diceRegex = regexp.MustCompile(`(?i)^(\d*)[d](\d+)(k[hl]\d+|[ad])?([+-]\d+)?$`)

func parseDice(raw string) (diceSpec, error) {
	m := diceRegex.FindStringSubmatch(strings.ReplaceAll(raw, " ", ""))
	if m == nil {
		return diceSpec{}, fmt.Errorf("invalid dice expression format: %s", raw)
	}

	spec := diceSpec{count: 1, highest: true}
	if m[1] != "" {
		spec.count, _ = strconv.Atoi(m[1])
	}
	spec.sides, _ = strconv.Atoi(m[2])
	if spec.sides <= 0 {
		return diceSpec{}, fmt.Errorf("cannot roll a die with 0 or negative sides")
	}
	spec.keep = spec.count

	switch kd := strings.ToLower(m[3]); {
	case kd == "a" || kd == "d":
		// Shorthand advantage/disadvantage: two dice, keep one, whatever
		// the count prefix said.
		spec.count, spec.keep = 2, 1
		spec.highest = kd == "a"
	case strings.HasPrefix(kd, "k"):
		spec.highest = kd[1] == 'h'
		if n, err := strconv.Atoi(kd[2:]); err == nil {
			spec.keep = n
		}
	}
	if spec.keep > spec.count {
		spec.keep = spec.count
	}
	if spec.keep < 0 {
		spec.keep = 0
	}

	if m[4] != "" {
		spec.modifier, _ = strconv.Atoi(m[4])
	}
	return spec, nil
}

// rollDie answers from the mock queue when one is staged, otherwise from
// crypto/rand mapped onto 1..sides.
func rollDie(sides int) int {
	if len(mockDiceQueue) > 0 {
		v := mockDiceQueue[0]
		mockDiceQueue = mockDiceQueue[1:]
		return v
	}
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(sides)))
	return int(n.Int64()) + 1
}

// Roll processes a single dice-notation term (NdS[khN|klN|a|d][±M]) into a
// randomized Result.
func Roll(raw string) (Result, error) {
	if raw == "" {
		return Result{}, fmt.Errorf("dice expression cannot be empty")
	}
	spec, err := parseDice(raw)
	if err != nil {
		return Result{}, err
	}

	res := Result{Modifier: spec.modifier}
	for i := 0; i < spec.count; i++ {
		res.RawRolls = append(res.RawRolls, rollDie(spec.sides))
	}

	// Sort a copy so RawRolls keeps the order the dice landed in.
	sorted := make([]int, len(res.RawRolls))
	copy(sorted, res.RawRolls)
	sort.Slice(sorted, func(i, j int) bool {
		if spec.highest {
			return sorted[i] > sorted[j]
		}
		return sorted[i] < sorted[j]
	})
	res.Kept = sorted[:spec.keep]
	if spec.keep < spec.count {
		res.Dropped = sorted[spec.keep:]
	}

	res.Total = spec.modifier
	for _, v := range res.Kept {
		res.Total += v
	}
	return res, nil
}

var termRe = regexp.MustCompile(`[+-]?[^+-]+`)

// Total rolls a full formula made of dice terms and flat integers joined by
// + and -. It returns the grand total plus a per-term breakdown string.
// A term that is neither dice notation nor an integer fails the whole roll:
// unresolved formulas are for the human at the table, not the roller.
func Total(f string) (int, string, error) {
	terms := termRe.FindAllString(strings.ReplaceAll(f, " ", ""), -1)
	if len(terms) == 0 {
		return 0, "", fmt.Errorf("empty roll formula")
	}

	total := 0
	var parts []string
	for _, term := range terms {
		sign := 1
		body := term
		if strings.HasPrefix(term, "+") {
			body = term[1:]
		} else if strings.HasPrefix(term, "-") {
			sign = -1
			body = term[1:]
		}

		if n, err := strconv.Atoi(body); err == nil {
			total += sign * n
			parts = append(parts, term)
			continue
		}

		res, err := Roll(body)
		if err != nil {
			return 0, "", fmt.Errorf("cannot roll %q: %w", body, err)
		}
		total += sign * res.Total
		parts = append(parts, fmt.Sprintf("%s=%v", term, res.Kept))
	}

	return total, strings.Join(parts, " "), nil
}
