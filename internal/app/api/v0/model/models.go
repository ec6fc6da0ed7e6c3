package model

type Error struct {
	Code    int    `json:"Code"`
	Message string `json:"Message"`
}

type Settings struct {
	SelfSignupAllowed bool `json:"SelfSignupAllowed"`
	MinPasswordLength int  `json:"MinPasswordLength"`
}
