package models

// Stats — сводка по всем сущностям для панели администратора.
// Вычисляется на лету, собственного состояния в хранилище не имеет.
type Stats struct {
	TotalUsers      int     `json:"total_users"`
	AdminUsers      int     `json:"admin_users"`
	BannedUsers     int     `json:"banned_users"`
	UsersWithAccess int     `json:"users_with_access"` // Пользователи с ненулевым балансом дней
	TotalApproved   int     `json:"total_approved"`
	TotalRejected   int     `json:"total_rejected"`
	TotalLoaded     int     `json:"total_loaded"`
	TotalTested     int     `json:"total_tested"`
	TotalRevenue    float64 `json:"total_revenue"`
	MonthRevenue    float64 `json:"month_revenue"` // Выручка за последние 30 дней
}
