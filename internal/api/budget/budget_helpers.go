package budget

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-travel-budget-planner/internal/api/jsonrepair"
	"github.com/FACorreiaa/go-travel-budget-planner/internal/api/tiers"
	"github.com/FACorreiaa/go-travel-budget-planner/internal/types"
)

// Bucket provenance markers. Confidence encodes how much to trust a tier:
// real inventory data is worth more than a model estimate, and a synthetic
// placeholder is worth nothing.
const (
	sourceProvider = "amadeus"
	sourceLLM      = "llm"
	sourceDefault  = "default"

	providerConfidence = 0.9
	llmConfidence      = 0.75

	// maxBucketRefs caps the example listings kept per tier. Statistics are
	// computed over everything found; only the reference list is trimmed.
	maxBucketRefs = 3
)

// flexFloat tolerates the numeric shapes LLMs actually produce: plain JSON
// numbers and quoted numbers ("120"). Quoted ranges ("35-40") still fail
// here, which sends the payload back through the repair normalizer before
// the second decode attempt.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return fmt.Errorf("not a numeric string: %q", str)
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// exampleEstimate is one named price point returned by the model.
type exampleEstimate struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       flexFloat `json:"price"`
}

// tierEstimate is one tier of a model estimate. Pointer fields distinguish
// "missing" from zero so an absent tier can fall through to the next source.
type tierEstimate struct {
	Min      *flexFloat        `json:"min"`
	Max      *flexFloat        `json:"max"`
	Average  *flexFloat        `json:"average"`
	Examples []exampleEstimate `json:"examples"`
}

// categoryEstimate is the full three-tier payload requested by the prompt.
type categoryEstimate struct {
	Budget  *tierEstimate `json:"budget"`
	Medium  *tierEstimate `json:"medium"`
	Premium *tierEstimate `json:"premium"`
}

func (c *categoryEstimate) tier(t types.PriceTier) *tierEstimate {
	switch t {
	case types.TierBudget:
		return c.Budget
	case types.TierPremium:
		return c.Premium
	default:
		return c.Medium
	}
}

// parseCategoryEstimate runs the model output through the repair pipeline
// and decodes the three-tier payload. The returned stage names how much
// repair was needed.
func parseCategoryEstimate(content string) (*categoryEstimate, string, error) {
	var est categoryEstimate
	stage, err := jsonrepair.ExtractInto(content, &est)
	if err != nil {
		return nil, "", err
	}
	return &est, stage, nil
}

// bucket validates one tier estimate and converts it into a TierBucket.
// Rejected tiers (missing fields, negative values, inverted range) return
// ok=false so the caller can fall through to the next source. A consistent
// triple with an average outside [min,max] is clamped rather than rejected.
func (t *tierEstimate) bucket(currency string) (types.TierBucket, bool) {
	if t == nil || t.Min == nil || t.Max == nil || t.Average == nil {
		return types.TierBucket{}, false
	}
	min, max, avg := float64(*t.Min), float64(*t.Max), float64(*t.Average)
	if min < 0 || max < 0 || avg < 0 || min > max {
		return types.TierBucket{}, false
	}
	if avg < min {
		avg = min
	}
	if avg > max {
		avg = max
	}

	refs := make([]types.PricedReference, 0, len(t.Examples))
	for _, ex := range t.Examples {
		name := strings.TrimSpace(ex.Name)
		if name == "" || ex.Price < 0 {
			continue
		}
		refs = append(refs, types.PricedReference{
			Name:        name,
			Description: strings.TrimSpace(ex.Description),
			Price:       types.Price{Amount: float64(ex.Price), Currency: currency},
		})
	}
	if len(refs) > maxBucketRefs {
		refs = refs[:maxBucketRefs]
	}

	return types.TierBucket{
		Min:        min,
		Max:        max,
		Average:    avg,
		Confidence: llmConfidence,
		Source:     sourceLLM,
		References: refs,
	}, true
}

// bucketFromReferences builds a provider-backed bucket: statistics over all
// found listings, reference list sorted cheapest-first and capped.
func bucketFromReferences(refs []types.PricedReference) types.TierBucket {
	if len(refs) == 0 {
		return types.TierBucket{}
	}
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Price.Amount < refs[j].Price.Amount })

	min, max, sum := refs[0].Price.Amount, refs[0].Price.Amount, 0.0
	for _, r := range refs {
		if r.Price.Amount < min {
			min = r.Price.Amount
		}
		if r.Price.Amount > max {
			max = r.Price.Amount
		}
		sum += r.Price.Amount
	}

	kept := refs
	if len(kept) > maxBucketRefs {
		kept = kept[:maxBucketRefs]
	}

	return types.TierBucket{
		Min:        min,
		Max:        max,
		Average:    sum / float64(len(refs)),
		Confidence: providerConfidence,
		Source:     sourceProvider,
		References: kept,
	}
}

// defaultBucket is the zero-confidence placeholder used when every source
// for a tier failed. The spans are derived from the same thresholds the
// classifier uses, so placeholders stay consistent with real buckets.
func defaultBucket(category string, tier types.PriceTier) types.TierBucket {
	th := tiers.ForCategory(category)
	var min, max float64
	switch tier {
	case types.TierBudget:
		min, max = th.BudgetMax*0.25, th.BudgetMax
	case types.TierMedium:
		min, max = th.BudgetMax, th.MediumMax
	case types.TierPremium:
		min, max = th.MediumMax, th.MediumMax*2.5
	}
	return types.TierBucket{
		Min:        min,
		Max:        max,
		Average:    (min + max) / 2,
		Confidence: 0,
		Source:     sourceDefault,
	}
}

// fillMissingTiers completes a category: tiers the provider left empty take
// the model estimate, and whatever remains gets a placeholder. A bucket is
// considered filled once its Source is set.
func fillMissingTiers(cb *types.CategoryBudget, category string, est map[types.PriceTier]types.TierBucket) {
	for _, tier := range types.Tiers() {
		b := cb.Bucket(tier)
		if b.Source != "" {
			continue
		}
		if e, ok := est[tier]; ok {
			*b = e
			continue
		}
		*b = defaultBucket(category, tier)
	}
}

// budgetCacheKey identifies a request for response caching. Every field
// that can change pricing participates, interests included, since they
// steer the activity estimates.
func budgetCacheKey(req types.BudgetRequest) string {
	interests := make([]string, len(req.Interests))
	for i, s := range req.Interests {
		interests[i] = strings.ToLower(strings.TrimSpace(s))
	}
	sort.Strings(interests)
	return fmt.Sprintf("budget:%s:%s:%s:%s:%d:%s:%s:%s",
		strings.ToUpper(req.Origin), strings.ToUpper(req.Destination),
		req.DepartureDate, req.ReturnDate, req.Travelers,
		strings.ToUpper(req.Currency), req.TravelStyle,
		strings.Join(interests, ","))
}
