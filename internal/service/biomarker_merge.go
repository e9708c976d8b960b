package service

import (
	"fmt"
	"time"

	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/pkg/apperror"

	"github.com/google/uuid"
)

var (
	ErrBiomarkerNotDeclared = apperror.NotFound("biomarker is not part of the laboratory test")
	ErrBiomarkerDuplicate   = apperror.Unprocessable("biomarker submitted more than once")
)

// BiomarkerPlan is the value-level diff between stored and submitted readings
type BiomarkerPlan struct {
	Inserts []entity.BiomarkerValue
	Updates []entity.BiomarkerValue
}

// IsEmpty reports whether applying the plan would write nothing
func (p *BiomarkerPlan) IsEmpty() bool {
	return len(p.Inserts) == 0 && len(p.Updates) == 0
}

// PlanBiomarkerMerge matches readings against the values already stored for a
// result. Unknown biomarkers become inserts; known ones are rewritten only when
// the number changed, so untouched rows keep their updated_at. Every reading
// must reference a biomarker the test declares.
func PlanBiomarkerMerge(test *entity.LaboratoryTest, resultID uuid.UUID, existing []entity.BiomarkerValue, readings []entity.BiomarkerReading, now time.Time) (*BiomarkerPlan, error) {
	seen := make(map[uuid.UUID]struct{}, len(readings))
	for _, r := range readings {
		if _, dup := seen[r.BiomarkerID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrBiomarkerDuplicate, r.BiomarkerID)
		}
		seen[r.BiomarkerID] = struct{}{}

		if !test.Declares(r.BiomarkerID) {
			return nil, fmt.Errorf("%w: %s", ErrBiomarkerNotDeclared, r.BiomarkerID)
		}
	}

	stored := make(map[uuid.UUID]entity.BiomarkerValue, len(existing))
	for _, v := range existing {
		stored[v.BiomarkerID] = v
	}

	plan := &BiomarkerPlan{}
	for _, r := range readings {
		current, ok := stored[r.BiomarkerID]
		if !ok {
			plan.Inserts = append(plan.Inserts, entity.BiomarkerValue{
				ID:           uuid.New(),
				TestResultID: resultID,
				BiomarkerID:  r.BiomarkerID,
				Value:        r.Value,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
			continue
		}
		if current.Value == r.Value {
			continue
		}
		current.Value = r.Value
		current.UpdatedAt = now
		current.Biomarker = nil
		plan.Updates = append(plan.Updates, current)
	}

	return plan, nil
}
