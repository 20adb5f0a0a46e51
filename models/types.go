package models

import "time"

// Lifecycle status values, derived from the campaign window.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// Sort orders accepted by the results endpoint
const (
	SortOptionOrder = "options"
	SortVotesDesc   = "votes"
)

// Domain types

type Option struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

type Window struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

type Campaign struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	OrganizerID     string    `json:"organizer_id"`
	Options         []Option  `json:"options"`
	Window          Window    `json:"window"`
	Eligibility     []string  `json:"eligibility"`
	ContractAddress string    `json:"contract_address,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// OptionIndex maps option ids to their position in Options.
func (c Campaign) OptionIndex() map[string]int {
	idx := make(map[string]int, len(c.Options))
	for i, opt := range c.Options {
		idx[opt.ID] = i
	}
	return idx
}

// HasOption reports whether id names one of the campaign's current options.
func (c Campaign) HasOption(id string) bool {
	for _, opt := range c.Options {
		if opt.ID == id {
			return true
		}
	}
	return false
}

// AllowsVoter reports whether voterID passes the eligibility allow-list.
// An empty allow-list admits every voter.
func (c Campaign) AllowsVoter(voterID string) bool {
	if len(c.Eligibility) == 0 {
		return true
	}
	for _, v := range c.Eligibility {
		if v == voterID {
			return true
		}
	}
	return false
}

// CampaignDefinition is the organizer input for a new campaign.
type CampaignDefinition struct {
	OrganizerID     string
	Title           string
	Description     string
	Options         []Option
	Window          Window
	Eligibility     []string
	ContractAddress string
}

// CampaignPatch holds the fields an organizer may change. Nil means unchanged.
type CampaignPatch struct {
	Title           *string
	Description     *string
	Options         *[]Option
	StartAt         *time.Time
	EndAt           *time.Time
	Eligibility     *[]string
	ContractAddress *string
}

type VoteRecord struct {
	CampaignID string    `json:"campaign_id"`
	VoterID    string    `json:"voter_id"`
	OptionID   string    `json:"option_id"`
	CastAt     time.Time `json:"cast_at"`
	Receipt    string    `json:"receipt"`
}

type OptionTally struct {
	OptionID   string  `json:"option_id"`
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type TallyResult struct {
	CampaignID    string        `json:"campaign_id"`
	CampaignTitle string        `json:"campaign_title"`
	Status        Status        `json:"status"`
	TotalVotes    int           `json:"total_votes"`
	Options       []OptionTally `json:"options"`
	ComputedAt    time.Time     `json:"computed_at"`
}

// Request types

type OptionRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CreateCampaignRequest struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Options         []OptionRequest `json:"options"`
	StartAt         time.Time       `json:"start_at"`
	EndAt           time.Time       `json:"end_at"`
	Eligibility     []string        `json:"eligibility"`
	ContractAddress string          `json:"contract_address"`
}

type UpdateCampaignRequest struct {
	Title           *string          `json:"title,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Options         *[]OptionRequest `json:"options,omitempty"`
	StartAt         *time.Time       `json:"start_at,omitempty"`
	EndAt           *time.Time       `json:"end_at,omitempty"`
	Eligibility     *[]string        `json:"eligibility,omitempty"`
	ContractAddress *string          `json:"contract_address,omitempty"`
}

type CastVoteRequest struct {
	OptionID string `json:"option_id"`
}

// Response types

type CampaignResponse struct {
	Campaign
	Status   Status `json:"status"`
	StartsIn string `json:"starts_in"`
	EndsIn   string `json:"ends_in"`
}

type CreateCampaignResponse struct {
	Campaign CampaignResponse `json:"campaign"`
	AdminKey string           `json:"admin_key"`
}

type CastVoteResponse struct {
	Receipt string    `json:"receipt"`
	CastAt  time.Time `json:"cast_at"`
}

type HasVotedResponse struct {
	HasVoted bool `json:"has_voted"`
}

// Error response

type ErrorResponse struct {
	Error      string           `json:"error"`
	Message    string           `json:"message,omitempty"`
	Code       string           `json:"code,omitempty"`
	Violations []FieldViolation `json:"violations,omitempty"`
}
