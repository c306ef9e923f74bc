package models

// Statistics количество отчётов по статусам.
// Производная величина: может прийти с сервера или быть посчитана на клиенте.
type Statistics map[ReportStatus]int

// Total возвращает общее число отчётов.
func (s Statistics) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// TallyStatuses считает отчёты по статусам.
// Каждый статус из vocabulary присутствует в результате, даже с нулём;
// статусы вне словаря тоже учитываются.
func TallyStatuses(reports []Report, vocabulary []ReportStatus) Statistics {
	stats := make(Statistics, len(vocabulary))
	for _, status := range vocabulary {
		stats[status] = 0
	}
	for _, r := range reports {
		stats[r.Status]++
	}
	return stats
}
