package model

type RegisterParticipantRequest struct {
	DrawingID string `json:"drawing_id"`
	Name      string `json:"name"`
	Contact   string `json:"contact"`

	// Eligible defaults to true.
	Eligible *bool `json:"eligible"`
}

type RegisterParticipantResponse struct {
	ID string `json:"id"`
}

type SetParticipantEligibilityRequest struct {
	ID       string `json:"id"`
	Eligible bool   `json:"eligible"`
}

type SetParticipantEligibilityResponse struct{}

type GetParticipantsRequest struct {
	DrawingID string `json:"drawing_id" form:"drawing_id"`
	Offset    int    `json:"offset" form:"offset"`
	Limit     int    `json:"limit" form:"limit"`
}

type GetParticipantsResponse struct {
	Participants []Participant `json:"participants"`
}

type GetParticipantRequest struct {
	ID string `json:"id" form:"id"`
}

type GetParticipantResponse struct {
	Participant Participant `json:"participant"`
}
