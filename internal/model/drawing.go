package model

import "time"

type CreateDrawingRequest struct {
	Title         string       `json:"title"`
	HostID        string       `json:"host_id"`
	TotalSlots    int          `json:"total_slots"`
	EndAt         time.Time    `json:"end_at"`
	SelectionMode string       `json:"selection_mode"`
	WinnersAmount int          `json:"winners_amount"`
	RandomNumber  bool         `json:"random_number"`
	AutoSelect    bool         `json:"auto_select"`
	Rules         DrawingRules `json:"rules"`
}

type CreateDrawingResponse struct {
	ID string `json:"id"`
}

type UpdateDrawingRequest struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	EndAt         time.Time    `json:"end_at"`
	SelectionMode string       `json:"selection_mode"`
	WinnersAmount int          `json:"winners_amount"`
	RandomNumber  bool         `json:"random_number"`
	AutoSelect    bool         `json:"auto_select"`
	Rules         DrawingRules `json:"rules"`
}

type UpdateDrawingResponse struct{}

type GetDrawingRequest struct {
	ID string `json:"id" form:"id"`
}

type GetDrawingResponse struct {
	Drawing Drawing `json:"drawing"`
}
