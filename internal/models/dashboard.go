package models

// DashboardMetrics is the summary shown on the admin landing page. When it is
// scoped to a university, Universities is 1.
type DashboardMetrics struct {
	Universities      int            `json:"universities"`
	Careers           int            `json:"careers"`
	Passes            int            `json:"passes"`
	PassesByStatus    map[string]int `json:"passesByStatus"`
	PassesByPayment   map[string]int `json:"passesByPayment"`
	AppleInstalls     int            `json:"appleInstalls"`
	GoogleInstalls    int            `json:"googleInstalls"`
	NotificationsSent int            `json:"notificationsSent"`
}
