package rule

import (
	"fmt"
	"strconv"
	"strings"

	"rafters/internal/token"
)

// Per-kind predictability weights. Scale is pure arithmetic, state is a
// fixed color transform, contrast involves candidate search. Confidence
// blends predictability (60%) with input completeness (40%).
const (
	weightScale    = 0.95
	weightState    = 0.85
	weightContrast = 0.75

	blendPredictability = 0.6
	blendCompleteness   = 0.4
)

// stateAdjustments maps state names to their fixed transform of the base
// color.
var stateAdjustments = map[string]struct {
	darken  float64
	lighten float64
}{
	"hover":    {darken: 0.10},
	"active":   {darken: 0.20},
	"focus":    {darken: 0.05},
	"pressed":  {darken: 0.20},
	"disabled": {lighten: 0.40},
}

// contrastTargets maps contrast parameters to WCAG minimum ratios.
var contrastTargets = map[string]float64{
	"low":    3.0,
	"medium": 4.5,
	"high":   7.0,
}

// Executor evaluates rule strings against a target token and its
// dependency values. It is stateless and safe for concurrent use.
type Executor struct{}

func NewExecutor() *Executor { return &Executor{} }

// Execute evaluates raw against target using deps as the dependency
// values, in edge order. An unknown rule kind fails with ErrUnsupported
// and produces no partial result.
func (e *Executor) Execute(raw string, target token.Token, deps []token.Token) (Result, error) {
	spec, err := Parse(raw)
	if err != nil {
		return Result{}, err
	}
	switch spec.Kind {
	case "scale":
		return e.executeScale(spec, deps)
	case "state":
		return e.executeState(spec, deps)
	case "contrast":
		return e.executeContrast(spec, deps)
	}
	return Result{}, fmt.Errorf("%w: kind %q", ErrUnsupported, spec.Kind)
}

func (e *Executor) executeScale(spec Spec, deps []token.Token) (Result, error) {
	factor, err := strconv.ParseFloat(spec.Parameter, 64)
	if err != nil {
		return Result{}, fmt.Errorf("%w: scale parameter %q is not numeric", ErrBadInput, spec.Parameter)
	}
	if len(deps) == 0 {
		return Result{}, fmt.Errorf("%w: scale needs a dependency value", ErrBadInput)
	}
	base, unit, ok := SplitNumeric(deps[0].Value)
	if !ok {
		return Result{}, fmt.Errorf("%w: dependency value %q is not numeric", ErrBadInput, deps[0].Value)
	}
	derived := formatNumericValue(base*factor, unit)
	return Result{
		Result:     derived,
		Confidence: confidence(weightScale, completeness(deps, 1, 0)),
		Metadata: Metadata{
			RuleType:  "scale",
			Reasoning: fmt.Sprintf("scaled %s by %s", deps[0].Value, spec.Parameter),
		},
	}, nil
}

func (e *Executor) executeState(spec Spec, deps []token.Token) (Result, error) {
	adj, ok := stateAdjustments[strings.ToLower(spec.Parameter)]
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown state %q", ErrBadInput, spec.Parameter)
	}
	if len(deps) == 0 {
		return Result{}, fmt.Errorf("%w: state needs a base color dependency", ErrBadInput)
	}
	base, parsed := deps[0].Color()
	if !parsed {
		return Result{}, fmt.Errorf("%w: dependency value %q is not a color", ErrBadInput, deps[0].Value)
	}
	out := base
	verb := ""
	switch {
	case adj.darken > 0:
		out = base.Darken(adj.darken)
		verb = fmt.Sprintf("darkened %s by %d%%", base.Hex(), int(adj.darken*100))
	case adj.lighten > 0:
		out = base.Lighten(adj.lighten)
		verb = fmt.Sprintf("lightened %s by %d%%", base.Hex(), int(adj.lighten*100))
	}
	return Result{
		Result:     out.Hex(),
		Confidence: confidence(weightState, completeness(deps, 1, 0)),
		Metadata: Metadata{
			RuleType:  "state",
			Reasoning: fmt.Sprintf("%s state: %s", spec.Parameter, verb),
		},
	}, nil
}

func (e *Executor) executeContrast(spec Spec, deps []token.Token) (Result, error) {
	target, ok := contrastTargets[strings.ToLower(spec.Parameter)]
	if !ok {
		// Numeric parameters are accepted as explicit minimum ratios.
		v, err := strconv.ParseFloat(spec.Parameter, 64)
		if err != nil || v < 1 || v > 21 {
			return Result{}, fmt.Errorf("%w: unknown contrast level %q", ErrBadInput, spec.Parameter)
		}
		target = v
	}
	if len(deps) == 0 {
		return Result{}, fmt.Errorf("%w: contrast needs a background color dependency", ErrBadInput)
	}
	bg, parsed := deps[0].Color()
	if !parsed {
		return Result{}, fmt.Errorf("%w: dependency value %q is not a color", ErrBadInput, deps[0].Value)
	}

	white := token.Color{R: 255, G: 255, B: 255, A: 1}
	black := token.Color{A: 1}
	pick, ratio := white, token.ContrastRatio(white, bg)
	if r := token.ContrastRatio(black, bg); r > ratio {
		pick, ratio = black, r
	}

	shortfall := 0.0
	reasoning := fmt.Sprintf("%s on %s has contrast %.2f (target %.1f)", pick.Hex(), bg.Hex(), ratio, target)
	if ratio < target {
		shortfall = 0.5
		reasoning += "; target not reachable, best candidate returned"
	}
	return Result{
		Result:     pick.Hex(),
		Confidence: confidence(weightContrast, completeness(deps, 1, shortfall)),
		Metadata: Metadata{
			RuleType:  "contrast",
			Reasoning: reasoning,
		},
	}, nil
}

// completeness starts from a full score and deducts for unused extra
// dependencies and for penalties the kind reports (e.g. an unreachable
// contrast target).
func completeness(deps []token.Token, used int, penalty float64) float64 {
	score := 1.0 - penalty
	if len(deps) > used {
		score -= 0.25
	}
	if score < 0 {
		return 0
	}
	return score
}

func confidence(predictability, complete float64) float64 {
	c := blendPredictability*predictability + blendCompleteness*complete
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// SplitNumeric splits "16px" into (16, "px"). Plain numbers have an
// empty unit.
func SplitNumeric(raw string) (float64, string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, "", false
	}
	cut := len(s)
	for cut > 0 {
		c := s[cut-1]
		if (c >= '0' && c <= '9') || c == '.' {
			break
		}
		cut--
	}
	num, unit := s[:cut], strings.TrimSpace(s[cut:])
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, "", false
	}
	return v, unit, true
}

func formatNumericValue(v float64, unit string) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + unit
}
