package converter

import (
	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
)

// EmrToResponse converts an ElectronicMedicalRecord entity to EmrResponse DTO
func EmrToResponse(emr *entity.ElectronicMedicalRecord) *dto.EmrResponse {
	if emr == nil {
		return nil
	}

	response := &dto.EmrResponse{
		ID:                emr.ID,
		PatientID:         emr.PatientID,
		Height:            emr.Height,
		Weight:            emr.Weight,
		BloodType:         enumString(emr.BloodType),
		SmokingStatus:     enumString(emr.SmokingStatus),
		AlcoholStatus:     enumString(emr.AlcoholStatus),
		DrugsUsage:        enumString(emr.DrugsUsage),
		Allergies:         make([]dto.EmrEntryResponse, 0, len(emr.Allergies)),
		Diagnoses:         make([]dto.EmrEntryResponse, 0, len(emr.Diagnoses)),
		MedicalConditions: make([]dto.EmrEntryResponse, 0, len(emr.MedicalConditions)),
		Surgeries:         make([]dto.EmrEntryResponse, 0, len(emr.Surgeries)),
		Medications:       make([]dto.EmrEntryResponse, 0, len(emr.Medications)),
		UpdatedAt:         emr.UpdatedAt,
	}

	if emr.Insurance != nil {
		response.Insurance = &dto.InsuranceResponse{
			ProviderName:    emr.Insurance.ProviderName,
			PolicyNumber:    emr.Insurance.PolicyNumber,
			PolicyStartDate: emr.Insurance.PolicyStartDate,
			PolicyEndDate:   emr.Insurance.PolicyEndDate,
		}
	}

	for _, a := range emr.Allergies {
		entry := dto.EmrEntryResponse{ID: a.ID, LookupID: a.AllergyID, Notes: a.Notes, Reaction: a.Reaction, UpdatedAt: a.UpdatedAt}
		if a.Allergy != nil {
			entry.Name = a.Allergy.Name
		}
		response.Allergies = append(response.Allergies, entry)
	}
	for _, d := range emr.Diagnoses {
		entry := dto.EmrEntryResponse{ID: d.ID, LookupID: d.DiagnosisID, Notes: d.Notes, Date: d.Date, UpdatedAt: d.UpdatedAt}
		if d.Diagnosis != nil {
			entry.Name = d.Diagnosis.Name
		}
		response.Diagnoses = append(response.Diagnoses, entry)
	}
	for _, c := range emr.MedicalConditions {
		entry := dto.EmrEntryResponse{ID: c.ID, LookupID: c.MedicalConditionID, Notes: c.Notes, Date: c.Date, UpdatedAt: c.UpdatedAt}
		if c.MedicalCondition != nil {
			entry.Name = c.MedicalCondition.Name
		}
		response.MedicalConditions = append(response.MedicalConditions, entry)
	}
	for _, s := range emr.Surgeries {
		entry := dto.EmrEntryResponse{ID: s.ID, LookupID: s.SurgeryID, Notes: s.Notes, Date: s.Date, UpdatedAt: s.UpdatedAt}
		if s.Surgery != nil {
			entry.Name = s.Surgery.Name
		}
		response.Surgeries = append(response.Surgeries, entry)
	}
	for _, m := range emr.Medications {
		required := m.Required
		entry := dto.EmrEntryResponse{
			ID:        m.ID,
			LookupID:  m.MedicationID,
			Notes:     m.Notes,
			Dosage:    m.Dosage,
			Frequency: m.Frequency,
			Required:  &required,
			StartDate: m.StartDate,
			EndDate:   m.EndDate,
			UpdatedAt: m.UpdatedAt,
		}
		if m.Medication != nil {
			entry.Name = m.Medication.Name
		}
		response.Medications = append(response.Medications, entry)
	}

	return response
}

// EmrFromCreateRequest builds the record and the patch that seeds its
// insurance and collections. Every seeded entry is an insert.
func EmrFromCreateRequest(req *dto.CreateEmrRequest) (*entity.ElectronicMedicalRecord, *entity.EmrPatch) {
	emr := &entity.ElectronicMedicalRecord{
		Height:        req.Height,
		Weight:        req.Weight,
		BloodType:     bloodType(req.BloodType),
		SmokingStatus: substanceUsage(req.SmokingStatus),
		AlcoholStatus: substanceUsage(req.AlcoholStatus),
		DrugsUsage:    substanceUsage(req.DrugsUsage),
	}

	patch := &entity.EmrPatch{
		Insurance:         InsuranceFromRequest(req.Insurance),
		Allergies:         inserts(req.Allergies, allergyEntry),
		Diagnoses:         inserts(req.Diagnoses, diagnosisEntry),
		MedicalConditions: inserts(req.MedicalConditions, medicalConditionEntry),
		Surgeries:         inserts(req.Surgeries, surgeryEntry),
		Medications:       inserts(req.Medications, medicationEntry),
	}

	return emr, patch
}

// EmrPatchFromRequest turns the {deleted, new, updated} body into tagged changes
func EmrPatchFromRequest(req *dto.UpdateEmrRequest) *entity.EmrPatch {
	return &entity.EmrPatch{
		Height:            req.Height,
		Weight:            req.Weight,
		BloodType:         bloodType(req.BloodType),
		SmokingStatus:     substanceUsage(req.SmokingStatus),
		AlcoholStatus:     substanceUsage(req.AlcoholStatus),
		DrugsUsage:        substanceUsage(req.DrugsUsage),
		Insurance:         InsuranceFromRequest(req.Insurance),
		Allergies:         changes(req.Allergies, allergyEntry),
		Diagnoses:         changes(req.Diagnoses, diagnosisEntry),
		MedicalConditions: changes(req.MedicalConditions, medicalConditionEntry),
		Surgeries:         changes(req.Surgeries, surgeryEntry),
		Medications:       changes(req.Medications, medicationEntry),
	}
}

func InsuranceFromRequest(req *dto.InsuranceRequest) *entity.Insurance {
	if req == nil {
		return nil
	}
	return &entity.Insurance{
		ProviderName:    req.ProviderName,
		PolicyNumber:    req.PolicyNumber,
		PolicyStartDate: req.PolicyStartDate,
		PolicyEndDate:   req.PolicyEndDate,
	}
}

func changes[T any, E any, P entity.EmrEntry[E]](set *dto.ChangeSet[T], toEntry func(*T) E) []entity.EmrChange[E] {
	if set == nil {
		return nil
	}

	out := make([]entity.EmrChange[E], 0, len(set.Deleted)+len(set.New)+len(set.Updated))
	for _, id := range set.Deleted {
		out = append(out, entity.EmrChange[E]{Kind: entity.EmrChangeDelete, LookupID: id})
	}
	for i := range set.New {
		entry := toEntry(&set.New[i])
		out = append(out, entity.EmrChange[E]{Kind: entity.EmrChangeInsert, LookupID: P(&entry).LookupKey(), Entry: entry})
	}
	for i := range set.Updated {
		entry := toEntry(&set.Updated[i])
		out = append(out, entity.EmrChange[E]{Kind: entity.EmrChangeUpdate, LookupID: P(&entry).LookupKey(), Entry: entry})
	}
	return out
}

func inserts[T any, E any, P entity.EmrEntry[E]](items []T, toEntry func(*T) E) []entity.EmrChange[E] {
	if len(items) == 0 {
		return nil
	}
	return changes[T, E, P](&dto.ChangeSet[T]{New: items}, toEntry)
}

func allergyEntry(r *dto.AllergyEntryRequest) entity.PatientAllergy {
	return entity.PatientAllergy{AllergyID: r.AllergyID, Notes: r.Notes, Reaction: r.Reaction}
}

func diagnosisEntry(r *dto.DiagnosisEntryRequest) entity.PatientDiagnosis {
	return entity.PatientDiagnosis{DiagnosisID: r.DiagnosisID, Notes: r.Notes, Date: r.Date}
}

func medicalConditionEntry(r *dto.MedicalConditionEntryRequest) entity.PatientMedicalCondition {
	return entity.PatientMedicalCondition{MedicalConditionID: r.MedicalConditionID, Notes: r.Notes, Date: r.Date}
}

func surgeryEntry(r *dto.SurgeryEntryRequest) entity.PatientSurgery {
	return entity.PatientSurgery{SurgeryID: r.SurgeryID, Notes: r.Notes, Date: r.Date}
}

func medicationEntry(r *dto.MedicationEntryRequest) entity.PatientMedication {
	return entity.PatientMedication{
		MedicationID: r.MedicationID,
		Notes:        r.Notes,
		Dosage:       r.Dosage,
		Frequency:    r.Frequency,
		Required:     r.Required,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
	}
}

func bloodType(s *string) *entity.BloodType {
	if s == nil {
		return nil
	}
	v := entity.BloodType(*s)
	return &v
}

func substanceUsage(s *string) *entity.SubstanceUsage {
	if s == nil {
		return nil
	}
	v := entity.SubstanceUsage(*s)
	return &v
}

func enumString[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
