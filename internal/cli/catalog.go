package cli

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/lapor-client/internal/models"
	"github.com/ignatzorin/lapor-client/internal/pkg/apperror"
)

func (a *App) categoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Список категорий",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := a.gateway.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer().print(categories, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ID\tНАЗВАНИЕ\tИКОНКА")
				for _, c := range categories {
					icon := "-"
					if c.IconURL != nil {
						icon = *c.IconURL
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Name, icon)
				}
			})
		},
	}
}

type statRow struct {
	Status models.ReportStatus `json:"status" yaml:"status"`
	Count  int                 `json:"count" yaml:"count"`
}

type statsView struct {
	Source   string    `json:"source" yaml:"source"`
	Total    int       `json:"total" yaml:"total"`
	Statuses []statRow `json:"statuses" yaml:"statuses"`
}

func (a *App) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Количество отчётов по статусам",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, source, err := a.statistics(cmd.Context())
			if err != nil {
				return err
			}

			view := statsView{Source: source, Total: stats.Total(), Statuses: a.orderedStats(stats)}
			return a.printer().print(view, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "СТАТУС\tКОЛИЧЕСТВО")
				for _, row := range view.Statuses {
					fmt.Fprintf(tw, "%s\t%d\n", row.Status, row.Count)
				}
				fmt.Fprintf(tw, "всего\t%d\n", view.Total)
			})
		},
	}
}

// statistics берёт статистику у сервиса, а если контракт её не даёт, считает по списку отчётов.
func (a *App) statistics(ctx context.Context) (models.Statistics, string, error) {
	stats, err := a.gateway.GetStatistics(ctx)
	if err == nil {
		return stats, "service", nil
	}
	if !apperror.IsUnsupported(err) {
		return nil, "", err
	}

	reports, err := a.gateway.ListReports(ctx, nil)
	if err != nil {
		return nil, "", err
	}
	return models.TallyStatuses(reports, a.gateway.Contract().Statuses), "client", nil
}

// orderedStats ставит сначала статусы контракта по порядку, затем прочие по алфавиту.
func (a *App) orderedStats(stats models.Statistics) []statRow {
	rows := make([]statRow, 0, len(stats))
	seen := make(map[models.ReportStatus]bool, len(stats))
	for _, status := range a.gateway.Contract().Statuses {
		rows = append(rows, statRow{Status: status, Count: stats[status]})
		seen[status] = true
	}

	var extra []models.ReportStatus
	for status := range stats {
		if !seen[status] {
			extra = append(extra, status)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	for _, status := range extra {
		rows = append(rows, statRow{Status: status, Count: stats[status]})
	}
	return rows
}
