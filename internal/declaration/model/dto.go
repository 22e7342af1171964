package model

// CreateDeclarationDTO is the request body for creating a declaration draft.
type CreateDeclarationDTO struct {
	TraineeID string            `json:"traineeId"` // defaults to the caller's trainee identity
	Title     string            `json:"title"`
	Record    DeclarationRecord `json:"record"`
}

// UpdateDeclarationDTO replaces the record of a draft.
type UpdateDeclarationDTO struct {
	Title  *string           `json:"title,omitempty"`
	Record DeclarationRecord `json:"record"`
}

// AutoFixRequestDTO carries a record and the finding whose correction should be applied.
type AutoFixRequestDTO struct {
	Record  DeclarationRecord `json:"record"`
	Finding Finding           `json:"finding"`
}

// ApplyFixDTO selects either one finding or every fixable finding of a stored draft.
type ApplyFixDTO struct {
	Finding *Finding `json:"finding,omitempty"`
	All     bool     `json:"all"`
}

// FixResult is a corrected record together with its fresh validation report.
type FixResult struct {
	Record DeclarationRecord `json:"record"`
	Report *ValidationReport `json:"report"`
}
