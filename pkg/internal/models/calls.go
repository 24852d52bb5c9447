package models

import "time"

type CallRole string

const (
	CallRoleManager CallRole = "manager"
	CallRoleModel   CallRole = "model"
	CallRoleClient  CallRole = "client"
)

// Call is a tracked room at the conferencing provider. The id is only ever
// shown to the manager; participants receive the tokenized links instead.
type Call struct {
	ID       string
	RoomName string
	EndsAt   time.Time

	Tokens map[CallRole]string
	Names  map[CallRole]string
}

type CallLinks struct {
	Model          string `json:"model"`
	Client         string `json:"client"`
	ManagerStealth string `json:"managerStealth"`
}

// CallSummary is the create-call response payload.
type CallSummary struct {
	CallID          string    `json:"callId"`
	DurationMinutes int       `json:"durationMinutes"`
	EndsAt          time.Time `json:"-"`
	EndsAtISO       string    `json:"endsAtISO"`
	Links           CallLinks `json:"links"`
}

// CallOverview is the admin listing shape; token values are never echoed.
type CallOverview struct {
	CallID     string `json:"callId"`
	RoomName   string `json:"roomName"`
	EndsAtISO  string `json:"endsAtISO"`
	ModelName  string `json:"modelName"`
	ClientName string `json:"clientName"`
}
