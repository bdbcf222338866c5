package model

type Slot struct {
	Number        int    `json:"number"`
	Status        string `json:"status"`
	ExpiresAt     string `json:"expires_at,omitempty"`
	ParticipantID string `json:"participant_id,omitempty"`
}

type Stats struct {
	Total           int64   `json:"total"`
	Available       int64   `json:"available"`
	Taken           int64   `json:"taken"`
	Reserved        int64   `json:"reserved"`
	PercentageTaken float64 `json:"percentage_taken"`

	// PercentageTakenDisplay is PercentageTaken rounded to two decimals.
	PercentageTakenDisplay string `json:"percentage_taken_display"`
}

type DrawingRules struct {
	MaxHoldsPerHolder int `json:"max_holds_per_holder"`
	NumberMin         int `json:"number_min"`
	NumberMax         int `json:"number_max"`
}

type Drawing struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	HostID            string       `json:"host_id"`
	TotalSlots        int          `json:"total_slots"`
	EndAt             string       `json:"end_at"`
	Phase             string       `json:"phase"`
	SelectionMode     string       `json:"selection_mode"`
	WinnersAmount     int          `json:"winners_amount"`
	RandomNumber      bool         `json:"random_number"`
	AutoSelect        bool         `json:"auto_select"`
	Rules             DrawingRules `json:"rules"`
	WinnersSelectedAt string       `json:"winners_selected_at,omitempty"`
	CreatedAt         string       `json:"created_at"`
}

type Participant struct {
	ID        string `json:"id"`
	DrawingID string `json:"drawing_id"`
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	Eligible  bool   `json:"eligible"`
	IsWinner  bool   `json:"is_winner"`
	Numbers   []int  `json:"numbers"`
	CreatedAt string `json:"created_at"`
}

type Winner struct {
	Rank          int    `json:"rank"`
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	Number        *int   `json:"number,omitempty"`
	SelectedAt    string `json:"selected_at"`
}
