package dto

// ProfileSyncRequest mirrors COALESCE update semantics: nil means
// "leave the stored value alone", never "set to null".
type ProfileSyncRequest struct {
	Name         *string `json:"name,omitempty"`
	Department   *string `json:"department,omitempty"`
	ProfileImage *string `json:"profileImage,omitempty"`
}

type UserResponse struct {
	ID             uint   `json:"id"`
	Email          string `json:"email,omitempty"`
	Name           string `json:"name"`
	Department     string `json:"department,omitempty"`
	University     string `json:"university,omitempty"`
	ProfileImage   string `json:"profileImage,omitempty"`
	IsVerified     bool   `json:"isVerified"`
	UniversityID   *uint  `json:"universityId,omitempty"`
	UniversitySlug string `json:"universitySlug,omitempty"`
}
