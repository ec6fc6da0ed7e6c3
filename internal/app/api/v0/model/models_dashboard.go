package model

type DashboardView struct {
	Profile SessionInfo `json:"Profile"`
}

type AdminDashboardView struct {
	Profile       SessionInfo `json:"Profile"`
	TotalAccounts int         `json:"TotalAccounts,omitempty"`
}
