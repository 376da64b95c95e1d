package dto

type UniversityResponse struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Domain string `json:"domain,omitempty"`
}

// UniversityLookupResponse is returned by the by-name endpoint; when the
// university is unknown only the derived slug comes back with Exists=false.
type UniversityLookupResponse struct {
	ID     uint   `json:"id,omitempty"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Domain string `json:"domain,omitempty"`
	Exists bool   `json:"exists"`
}

type UniversityDetailsResponse struct {
	University UniversityResponse `json:"university"`
	Details    interface{}        `json:"details"`
}
