package compplan

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"goal-engine/internal/model"
)

var ErrDuplicatePlan = errors.New("duplicate_plan")

type planKey struct {
	company string
	region  string
}

// Repository holds validated compensation plans keyed by company and region.
// It is read-only after New and safe for concurrent use.
type Repository struct {
	plans    map[planKey]model.CompensationPlan
	defaults map[string]planKey
}

// PlanRef identifies a loaded plan without its rank table.
type PlanRef struct {
	CompanyID string `json:"company_id"`
	Region    string `json:"region"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	UnitLabel string `json:"unit_label"`
}

// New validates plans and indexes them. The first plan given for a company
// becomes that company's default when no region is requested.
func New(plans ...model.CompensationPlan) (*Repository, error) {
	r := &Repository{
		plans:    make(map[planKey]model.CompensationPlan, len(plans)),
		defaults: make(map[string]planKey),
	}

	for _, p := range plans {
		if err := Validate(p); err != nil {
			return nil, err
		}
		key := keyFor(p.CompanyID, p.Region)
		if _, exists := r.plans[key]; exists {
			return nil, fmt.Errorf("%w: %s/%s", ErrDuplicatePlan, p.CompanyID, p.Region)
		}
		r.plans[key] = p
		if _, ok := r.defaults[key.company]; !ok {
			r.defaults[key.company] = key
		}
	}

	return r, nil
}

// Get looks up the plan for companyID in region. An empty region selects the
// company's default plan.
func (r *Repository) Get(companyID, region string) (model.CompensationPlan, bool) {
	company := normalize(companyID)
	if company == "" {
		return model.CompensationPlan{}, false
	}

	key := planKey{company: company, region: normalize(region)}
	if key.region == "" {
		def, ok := r.defaults[company]
		if !ok {
			return model.CompensationPlan{}, false
		}
		key = def
	}

	p, ok := r.plans[key]
	return p, ok
}

func (r *Repository) List() []PlanRef {
	refs := make([]PlanRef, 0, len(r.plans))
	for _, p := range r.plans {
		refs = append(refs, PlanRef{
			CompanyID: p.CompanyID,
			Region:    p.Region,
			Name:      p.Name,
			Version:   p.Version,
			UnitLabel: p.UnitLabel,
		})
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].CompanyID != refs[j].CompanyID {
			return refs[i].CompanyID < refs[j].CompanyID
		}
		return refs[i].Region < refs[j].Region
	})
	return refs
}

func (r *Repository) Len() int {
	return len(r.plans)
}

func keyFor(companyID, region string) planKey {
	return planKey{company: normalize(companyID), region: normalize(region)}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
