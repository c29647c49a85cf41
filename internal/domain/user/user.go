package user

import (
	"errors"
	"time"
)

type User struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"-"` // never expose hash in JSON
	FullName           string     `json:"fullName"`
	DOB                *time.Time `json:"dob,omitempty"`
	Country            string     `json:"country,omitempty"`
	Occupation         string     `json:"occupation,omitempty"`
	AnnualIncomeRange  string     `json:"annualIncomeRange,omitempty"`
	RiskTolerance      string     `json:"riskTolerance,omitempty"`
	ConsentGiven       bool       `json:"consentGiven"`
	SurveyCompleted    bool       `json:"surveyCompleted"`
	EmailNotifications bool       `json:"emailNotifications"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

var ErrNotFound = errors.New("user not found")

// SensitiveProfile carries the fields that sit behind the settings gate.
// All of them are written together in a single update.
type SensitiveProfile struct {
	Email             string `json:"email" binding:"required,email"`
	DOB               string `json:"dob" binding:"required,datetime=2006-01-02"`
	Country           string `json:"country" binding:"required,min=2,max=80"`
	Occupation        string `json:"occupation" binding:"required,min=2,max=120"`
	AnnualIncomeRange string `json:"annual_income_range" binding:"required,max=40"`
}

type Preferences struct {
	EmailNotifications *bool `json:"email_notifications" binding:"required"`
}

type SurveyRequest struct {
	RiskTolerance string `json:"risk_tolerance" binding:"required,oneof=low moderate high"`
}
