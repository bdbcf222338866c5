package model

type SelectWinnersRequest struct {
	DrawingID string `json:"drawing_id"`
}

type SelectWinnersResponse struct {
	Winners []Winner `json:"winners"`
}

type GetWinnersRequest struct {
	DrawingID string `json:"drawing_id" form:"drawing_id"`
}

type GetWinnersResponse struct {
	SelectedAt string   `json:"selected_at"`
	Seed       string   `json:"seed"`
	Winners    []Winner `json:"winners"`
}
