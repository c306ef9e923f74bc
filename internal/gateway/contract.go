package gateway

import (
	"fmt"
	"strings"

	"github.com/ignatzorin/lapor-client/internal/models"
)

// ContractVersion версия API контракта удалённого сервиса.
type ContractVersion string

const (
	VersionV1 ContractVersion = "v1"
	VersionV2 ContractVersion = "v2"
)

// Contract описывает различия между версиями API.
type Contract struct {
	Version ContractVersion
	// Statuses содержит допустимые статусы отчёта в этой версии.
	Statuses []models.ReportStatus
	// StatusPathSuffix добавляется к /reports/{id} при смене статуса.
	StatusPathSuffix string
	// StatisticsPath пустой, если сервис не отдаёт статистику.
	StatisticsPath string
}

var (
	ContractV1 = Contract{
		Version: VersionV1,
		Statuses: []models.ReportStatus{
			models.ReportStatusPending,
			models.ReportStatusVerified,
			models.ReportStatusInProgress,
			models.ReportStatusResolved,
		},
		StatusPathSuffix: "/status",
		StatisticsPath:   "/reports/statistics",
	}

	ContractV2 = Contract{
		Version: VersionV2,
		Statuses: []models.ReportStatus{
			models.ReportStatusPending,
			models.ReportStatusVerified,
			models.ReportStatusResolved,
			models.ReportStatusRejected,
		},
	}
)

// ContractByVersion возвращает контракт по строке из конфигурации.
func ContractByVersion(version string) (Contract, error) {
	switch ContractVersion(strings.ToLower(strings.TrimSpace(version))) {
	case VersionV1:
		return ContractV1, nil
	case VersionV2, "":
		return ContractV2, nil
	default:
		return Contract{}, fmt.Errorf("gateway: неизвестная версия контракта %q", version)
	}
}

// AllowsStatus сообщает, входит ли статус в словарь контракта.
func (c Contract) AllowsStatus(status models.ReportStatus) bool {
	for _, s := range c.Statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (c Contract) HasStatistics() bool {
	return c.StatisticsPath != ""
}

func (c Contract) statusPath(id string) string {
	return reportPath(id) + c.StatusPathSuffix
}
