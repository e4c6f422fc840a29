package api

import "time"

type Meal struct {
	ID        int       `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Notes     string    `json:"notes"`
	ImageURLs []string  `json:"imageUrls"`
	Datetime  time.Time `json:"datetime"`
	Type      string    `json:"type"`
	UserID    string    `json:"userId"`
}

// Photo is one image attached to a logged meal.
type Photo struct {
	Name string
	Data []byte
}

type MealForm struct {
	UserID string
	Notes  string
	Date   time.Time
	Type   string
	Rating int
	Images []Photo
}

type MealUpdate struct {
	Notes    string `json:"notes"`
	Datetime string `json:"datetime"`
	Type     string `json:"type"`
	MealID   string `json:"mealId"`
}

// QuickAddForm uploads a recorded voice note describing a meal.
type QuickAddForm struct {
	UserID         string
	Datetime       time.Time
	FileName       string
	Audio          []byte
	IdempotencyKey string
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type StravaActivity struct {
	Name               string    `json:"name"`
	StartDateLocal     time.Time `json:"startDateLocal"`
	Distance           float64   `json:"distance"`   // meters
	MovingTime         int       `json:"movingTime"` // seconds
	TotalElevationGain float64   `json:"totalElevationGain"`
}

type StravaData struct {
	UserConnected bool             `json:"userConnected"`
	ActivityData  []StravaActivity `json:"activityData"`
}

type StravaTokenRequest struct {
	Code         string `json:"code"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	GrantType    string `json:"grantType"`
	UserID       string `json:"userId"`
}
