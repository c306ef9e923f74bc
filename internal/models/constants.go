package models

// ReportStatus статус отчёта о проблеме.
type ReportStatus string

// Статусы отчётов. Допустимое подмножество определяется версией API контракта.
const (
	ReportStatusPending    ReportStatus = "pending"
	ReportStatusVerified   ReportStatus = "verified"
	ReportStatusInProgress ReportStatus = "in_progress"
	ReportStatusResolved   ReportStatus = "resolved"
	ReportStatusRejected   ReportStatus = "rejected"
)

// Роли пользователей
const (
	RoleAdmin    = "admin"
	RoleReporter = "reporter"
)

// KnownReportStatuses все статусы, встречающиеся в любой версии контракта
var KnownReportStatuses = map[ReportStatus]struct{}{
	ReportStatusPending:    {},
	ReportStatusVerified:   {},
	ReportStatusInProgress: {},
	ReportStatusResolved:   {},
	ReportStatusRejected:   {},
}

func (s ReportStatus) IsKnown() bool {
	_, ok := KnownReportStatuses[s]
	return ok
}

func (s ReportStatus) String() string {
	return string(s)
}
