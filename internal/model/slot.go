package model

type ReserveSlotRequest struct {
	DrawingID  string `json:"drawing_id"`
	Number     int    `json:"number"`
	Holder     string `json:"holder"`
	TTLMinutes int    `json:"ttl_minutes"`
}

type ReserveSlotResponse struct {
	Number    int    `json:"number"`
	ExpiresAt string `json:"expires_at"`
}

type ReserveRandomSlotsRequest struct {
	DrawingID  string `json:"drawing_id"`
	Holder     string `json:"holder"`
	Count      int    `json:"count"`
	TTLMinutes int    `json:"ttl_minutes"`
}

type ReserveRandomSlotsResponse struct {
	Numbers   []int  `json:"numbers"`
	ExpiresAt string `json:"expires_at"`
}

type ReleaseSlotsRequest struct {
	DrawingID string `json:"drawing_id"`
	Numbers   []int  `json:"numbers"`

	// Holder limits the release to the holds of this holder and to expired
	// holds. Empty releases every reserved slot of Numbers.
	Holder string `json:"holder"`
}

type ReleaseSlotsResponse struct {
	ReleasedCount int64 `json:"released_count"`
}

type ConfirmSlotsRequest struct {
	DrawingID     string `json:"drawing_id"`
	Numbers       []int  `json:"numbers"`
	Holder        string `json:"holder"`
	ParticipantID string `json:"participant_id"`
}

type ConfirmSlotsResponse struct {
	Slots []Slot `json:"slots"`
}

type GetSlotRequest struct {
	DrawingID string `json:"drawing_id" form:"drawing_id"`
	Number    int    `json:"number" form:"number"`
}

type GetSlotResponse struct {
	Slot Slot `json:"slot"`
}

type GetSlotsByNumbersRequest struct {
	DrawingID string `json:"drawing_id" form:"drawing_id"`
	Numbers   []int  `json:"numbers" form:"numbers"`
}

type GetSlotsByNumbersResponse struct {
	Slots []Slot `json:"slots"`
}

type GetSlotsRequest struct {
	DrawingID string `json:"drawing_id" form:"drawing_id"`
	Page      int    `json:"page" form:"page"`
	PageSize  int    `json:"page_size" form:"page_size"`
}

type GetSlotsResponse struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Slots    []Slot `json:"slots"`
	Stats    Stats  `json:"stats"`
}

type GetStatsRequest struct {
	DrawingID string `json:"drawing_id" form:"drawing_id"`
}

type GetStatsResponse struct {
	Stats Stats `json:"stats"`
}
