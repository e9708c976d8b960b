package converter

import (
	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
)

// TestResultToResponse converts a LaboratoryTestResult entity to TestResultResponse DTO
func TestResultToResponse(result *entity.LaboratoryTestResult) *dto.TestResultResponse {
	if result == nil {
		return nil
	}

	response := &dto.TestResultResponse{
		ID:               result.ID,
		AppointmentID:    result.AppointmentID,
		LaboratoryTestID: result.LaboratoryTestID,
		Title:            result.Title,
		Notes:            result.Notes,
		Values:           make([]dto.BiomarkerValueResponse, len(result.Values)),
		CreatedAt:        result.CreatedAt,
		UpdatedAt:        result.UpdatedAt,
	}
	if result.LaboratoryTest != nil {
		response.LaboratoryTest = result.LaboratoryTest.Name
	}

	for i, v := range result.Values {
		value := dto.BiomarkerValueResponse{
			ID:          v.ID,
			BiomarkerID: v.BiomarkerID,
			Value:       v.Value,
			UpdatedAt:   v.UpdatedAt,
		}
		if v.Biomarker != nil {
			value.Name = v.Biomarker.Name
			value.Unit = v.Biomarker.Unit
		}
		response.Values[i] = value
	}

	return response
}

func TestResultsToResponses(results []entity.LaboratoryTestResult) []dto.TestResultResponse {
	responses := make([]dto.TestResultResponse, len(results))
	for i := range results {
		responses[i] = *TestResultToResponse(&results[i])
	}
	return responses
}

// ReadingsFromRequest converts submitted values to domain readings
func ReadingsFromRequest(values []dto.BiomarkerValueRequest) []entity.BiomarkerReading {
	readings := make([]entity.BiomarkerReading, 0, len(values))
	for _, v := range values {
		reading := entity.BiomarkerReading{BiomarkerID: v.BiomarkerID}
		if v.Value != nil {
			reading.Value = *v.Value
		}
		readings = append(readings, reading)
	}
	return readings
}
