package service

import (
	"fmt"
	"sort"
	"time"

	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/domain/repository"
	"go-clinic-management/internal/infrastructure/database"
	"go-clinic-management/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrEmrEntryExists       = apperror.Conflict("an active entry already exists")
	ErrEmrEntryNotFound     = apperror.NotFound("no active entry to update")
	ErrEmrLookupNotFound    = apperror.NotFound("referenced catalog entry does not exist")
	ErrEmrChangeInvalid     = apperror.Unprocessable("malformed change-set")
	ErrEmrConcurrentMerge   = apperror.Conflict("record was changed by another request")
	ErrInsurancePeriodOrder = apperror.Unprocessable("insurance policy ends before it starts")
)

// DeleteInsertPolicy decides what a delete and an insert of the same lookup id
// inside one change-set mean.
type DeleteInsertPolicy string

const (
	// DeleteInsertReplace applies the delete first so the insert replaces the entry
	DeleteInsertReplace DeleteInsertPolicy = "replace"
	// DeleteInsertReject drops the delete, so the insert collides with the active entry
	DeleteInsertReject DeleteInsertPolicy = "reject"
)

func ParseDeleteInsertPolicy(raw string) (DeleteInsertPolicy, error) {
	switch DeleteInsertPolicy(raw) {
	case "", DeleteInsertReplace:
		return DeleteInsertReplace, nil
	case DeleteInsertReject:
		return DeleteInsertReject, nil
	default:
		return "", fmt.Errorf("unknown EMR delete/insert policy %q", raw)
	}
}

// Collection names used in errors, metrics and the action log
const (
	CollectionAllergies         = "allergies"
	CollectionDiagnoses         = "diagnoses"
	CollectionMedicalConditions = "medicalConditions"
	CollectionSurgeries         = "surgeries"
	CollectionMedications       = "medications"
)

// MergePlan is the validated outcome of one collection's change-set
type MergePlan[E any] struct {
	// Deletes holds entry ids, not lookup ids
	Deletes []uuid.UUID
	Inserts []E
	Updates []E
}

// MergeCounts is how many entries a plan touches
type MergeCounts struct {
	Deleted  int `json:"deleted"`
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

// PlanMerge validates changes against the active entries of one collection and
// returns the writes to perform. It does no I/O.
//
// Deletes are resolved first, then inserts, then updates. Deleting a lookup id
// with no active entry is a no-op. An update must target an entry that was
// active before the change-set and is not deleted by it.
func PlanMerge[E any, P entity.EmrEntry[E]](
	collection string,
	emrID uuid.UUID,
	existing []E,
	changes []entity.EmrChange[E],
	policy DeleteInsertPolicy,
	now time.Time,
) (*MergePlan[E], error) {
	var deletes, inserts, updates []entity.EmrChange[E]
	seen := map[entity.EmrChangeKind]map[uuid.UUID]struct{}{
		entity.EmrChangeDelete: {},
		entity.EmrChangeInsert: {},
		entity.EmrChangeUpdate: {},
	}

	for _, c := range changes {
		if c.LookupID == uuid.Nil {
			return nil, fmt.Errorf("%w: %s %s without an id", ErrEmrChangeInvalid, collection, c.Kind)
		}
		ids, ok := seen[c.Kind]
		if !ok {
			return nil, fmt.Errorf("%w: %s has an unknown change kind", ErrEmrChangeInvalid, collection)
		}
		if _, dup := ids[c.LookupID]; dup {
			return nil, fmt.Errorf("%w: %s lists %s twice in %s", ErrEmrChangeInvalid, collection, c.LookupID, c.Kind)
		}
		ids[c.LookupID] = struct{}{}

		if c.Kind != entity.EmrChangeDelete && P(&c.Entry).LookupKey() != c.LookupID {
			return nil, fmt.Errorf("%w: %s entry does not reference %s", ErrEmrChangeInvalid, collection, c.LookupID)
		}

		switch c.Kind {
		case entity.EmrChangeDelete:
			deletes = append(deletes, c)
		case entity.EmrChangeInsert:
			inserts = append(inserts, c)
		case entity.EmrChangeUpdate:
			updates = append(updates, c)
		}
	}

	active := make(map[uuid.UUID]int, len(existing))
	for i := range existing {
		key := P(&existing[i]).LookupKey()
		if _, ok := active[key]; !ok {
			active[key] = i
		}
	}

	plan := &MergePlan[E]{}

	for _, c := range deletes {
		if _, alsoInserted := seen[entity.EmrChangeInsert][c.LookupID]; alsoInserted && policy == DeleteInsertReject {
			continue
		}
		idx, ok := active[c.LookupID]
		if !ok {
			continue
		}
		plan.Deletes = append(plan.Deletes, P(&existing[idx]).EntryID())
		delete(active, c.LookupID)
	}

	for _, c := range inserts {
		if _, ok := active[c.LookupID]; ok {
			return nil, fmt.Errorf("%w: %s %s", ErrEmrEntryExists, collection, c.LookupID)
		}
		entry := c.Entry
		P(&entry).Stamp(emrID, now)
		plan.Inserts = append(plan.Inserts, entry)
	}

	for _, c := range updates {
		idx, ok := active[c.LookupID]
		if !ok {
			return nil, fmt.Errorf("%w: %s %s", ErrEmrEntryNotFound, collection, c.LookupID)
		}
		entry := existing[idx]
		src := c.Entry
		P(&entry).Overwrite(&src, now)
		plan.Updates = append(plan.Updates, entry)
	}

	return plan, nil
}

func (p *MergePlan[E]) Counts() MergeCounts {
	return MergeCounts{Deleted: len(p.Deletes), Inserted: len(p.Inserts), Updated: len(p.Updates)}
}

// EmrEntryRepositories groups the stores of the five EMR collections
type EmrEntryRepositories struct {
	Allergies         repository.EmrEntryRepository[entity.PatientAllergy]
	Diagnoses         repository.EmrEntryRepository[entity.PatientDiagnosis]
	MedicalConditions repository.EmrEntryRepository[entity.PatientMedicalCondition]
	Surgeries         repository.EmrEntryRepository[entity.PatientSurgery]
	Medications       repository.EmrEntryRepository[entity.PatientMedication]
}

// MergeSummary reports per-collection counts of an applied patch
type MergeSummary struct {
	ScalarFields     []string               `json:"scalarFields,omitempty"`
	InsuranceChanged bool                   `json:"insuranceChanged"`
	Collections      map[string]MergeCounts `json:"collections,omitempty"`
}

// EmrMergeEngine applies an EmrPatch to a record inside the caller's transaction.
// Every change is validated before the first write, so a rejected patch writes nothing.
type EmrMergeEngine interface {
	Merge(tx *gorm.DB, emr *entity.ElectronicMedicalRecord, patch *entity.EmrPatch, now time.Time) (*MergeSummary, error)
}

type emrMergeEngine struct {
	log         *logrus.Logger
	policy      DeleteInsertPolicy
	emrRepo     repository.EmrRepository
	catalogRepo repository.CatalogRepository
	entries     EmrEntryRepositories
}

func NewEmrMergeEngine(
	log *logrus.Logger,
	policy DeleteInsertPolicy,
	emrRepo repository.EmrRepository,
	catalogRepo repository.CatalogRepository,
	entries EmrEntryRepositories,
) EmrMergeEngine {
	return &emrMergeEngine{
		log:         log,
		policy:      policy,
		emrRepo:     emrRepo,
		catalogRepo: catalogRepo,
		entries:     entries,
	}
}

// collectionMerge is a validated plan bound to its store
type collectionMerge struct {
	name   string
	counts MergeCounts
	apply  func(tx *gorm.DB) error
}

func (e *emrMergeEngine) Merge(tx *gorm.DB, emr *entity.ElectronicMedicalRecord, patch *entity.EmrPatch, now time.Time) (*MergeSummary, error) {
	if patch.Insurance != nil && patch.Insurance.PolicyEndDate.Before(patch.Insurance.PolicyStartDate) {
		return nil, ErrInsurancePeriodOrder
	}

	var merges []*collectionMerge
	add := func(m *collectionMerge, err error) error {
		if err != nil {
			return err
		}
		if m != nil {
			merges = append(merges, m)
		}
		return nil
	}

	if err := add(planCollection[entity.PatientAllergy](e, tx, e.entries.Allergies, &entity.Allergy{}, CollectionAllergies, emr.ID, patch.Allergies, now)); err != nil {
		return nil, err
	}
	if err := add(planCollection[entity.PatientDiagnosis](e, tx, e.entries.Diagnoses, &entity.Diagnosis{}, CollectionDiagnoses, emr.ID, patch.Diagnoses, now)); err != nil {
		return nil, err
	}
	if err := add(planCollection[entity.PatientMedicalCondition](e, tx, e.entries.MedicalConditions, &entity.MedicalCondition{}, CollectionMedicalConditions, emr.ID, patch.MedicalConditions, now)); err != nil {
		return nil, err
	}
	if err := add(planCollection[entity.PatientSurgery](e, tx, e.entries.Surgeries, &entity.Surgery{}, CollectionSurgeries, emr.ID, patch.Surgeries, now)); err != nil {
		return nil, err
	}
	if err := add(planCollection[entity.PatientMedication](e, tx, e.entries.Medications, &entity.Medication{}, CollectionMedications, emr.ID, patch.Medications, now)); err != nil {
		return nil, err
	}

	summary := &MergeSummary{Collections: map[string]MergeCounts{}}

	if updates := patch.ScalarUpdates(); len(updates) > 0 {
		if err := e.emrRepo.UpdateFields(tx, emr.ID, updates); err != nil {
			e.log.Warnf("Failed to update emr %s fields: %+v", emr.ID, err)
			return nil, err
		}
		for field := range updates {
			summary.ScalarFields = append(summary.ScalarFields, field)
		}
		sort.Strings(summary.ScalarFields)
	}

	if patch.Insurance != nil {
		insurance := *patch.Insurance
		insurance.EmrID = emr.ID
		if err := e.emrRepo.UpsertInsurance(tx, &insurance); err != nil {
			e.log.Warnf("Failed to upsert insurance for emr %s: %+v", emr.ID, err)
			return nil, err
		}
		summary.InsuranceChanged = true
	}

	for _, m := range merges {
		if err := m.apply(tx); err != nil {
			if database.IsUniqueViolation(err) {
				return nil, fmt.Errorf("%w: %s", ErrEmrConcurrentMerge, m.name)
			}
			e.log.Warnf("Failed to apply %s merge for emr %s: %+v", m.name, emr.ID, err)
			return nil, err
		}
		summary.Collections[m.name] = m.counts
	}

	return summary, nil
}

// planCollection loads the active entries of one collection, plans the change-set
// and checks that every inserted lookup id exists in its catalog.
func planCollection[E any, P entity.EmrEntry[E]](
	e *emrMergeEngine,
	tx *gorm.DB,
	repo repository.EmrEntryRepository[E],
	lookupModel interface{},
	collection string,
	emrID uuid.UUID,
	changes []entity.EmrChange[E],
	now time.Time,
) (*collectionMerge, error) {
	if len(changes) == 0 {
		return nil, nil
	}

	existing, err := repo.FindActiveByEmrID(tx, emrID)
	if err != nil {
		e.log.Warnf("Failed to load %s for emr %s: %+v", collection, emrID, err)
		return nil, err
	}

	plan, err := PlanMerge[E, P](collection, emrID, existing, changes, e.policy, now)
	if err != nil {
		return nil, err
	}

	if len(plan.Inserts) > 0 {
		ids := make([]uuid.UUID, 0, len(plan.Inserts))
		for i := range plan.Inserts {
			ids = append(ids, P(&plan.Inserts[i]).LookupKey())
		}
		missing, err := e.catalogRepo.FindMissingIDs(tx, lookupModel, ids)
		if err != nil {
			e.log.Warnf("Failed to check %s catalog: %+v", collection, err)
			return nil, err
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s %s", ErrEmrLookupNotFound, collection, missing[0])
		}
	}

	return &collectionMerge{
		name:   collection,
		counts: plan.Counts(),
		apply: func(tx *gorm.DB) error {
			if err := repo.SoftDeleteByIDs(tx, plan.Deletes); err != nil {
				return err
			}
			if err := repo.CreateBatch(tx, plan.Inserts); err != nil {
				return err
			}
			for i := range plan.Updates {
				if err := repo.Update(tx, &plan.Updates[i]); err != nil {
					return err
				}
			}
			return nil
		},
	}, nil
}
