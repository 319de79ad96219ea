package utils

import (
	"strings"

	"risehub/logger"
	"risehub/models"
)

// DeduplicateInterestForms removes duplicate leads within the same list based on email+phone combination
func DeduplicateInterestForms(forms []models.InterestForm) []models.InterestForm {
	seen := make(map[string]bool)
	unique := []models.InterestForm{}

	for _, f := range forms {
		key := strings.ToLower(f.Email) + "|" + NormalizePhone(f.PhoneNumber)
		if !seen[key] {
			seen[key] = true
			unique = append(unique, f)
		}
	}

	if len(unique) < len(forms) {
		logger.Info("Removed %d duplicate leads from collection", len(forms)-len(unique))
	}

	return unique
}

// ConvertLeadsToResponse converts interest forms to LeadResponse values,
// resolving course titles and cohort names from the given lookups.
func ConvertLeadsToResponse(forms []models.InterestForm, courseTitles, cohortNames map[int64]string) []models.LeadResponse {
	responses := make([]models.LeadResponse, len(forms))
	for i := range forms {
		var courseTitle, cohortName string
		if id := forms[i].InterestedCourseID; id != nil {
			courseTitle = courseTitles[*id]
		}
		if id := forms[i].PreferredCohortID; id != nil {
			cohortName = cohortNames[*id]
		}
		responses[i] = forms[i].ToResponse(courseTitle, cohortName)
	}
	return responses
}
