package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/lapor-client/internal/export"
	"github.com/ignatzorin/lapor-client/internal/gateway"
	"github.com/ignatzorin/lapor-client/internal/geo"
	"github.com/ignatzorin/lapor-client/internal/models"
	"github.com/ignatzorin/lapor-client/internal/pkg/apperror"
	"github.com/ignatzorin/lapor-client/internal/storage"
)

func (a *App) reportsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reports",
		Aliases: []string{"report"},
		Short:   "Работа с отчётами",
	}
	cmd.AddCommand(
		a.reportsListCommand(),
		a.reportsShowCommand(),
		a.reportsCreateCommand(),
		a.reportsSetStatusCommand(),
		a.reportsDeleteCommand(),
		a.reportsExportCommand(),
	)
	return cmd
}

// reportFilter общие флаги выборки отчётов.
type reportFilter struct {
	categories []string
	status     string
}

func (f *reportFilter) bind(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.categories, "category", "c", nil, "категории (через запятую или флаг несколько раз)")
	cmd.Flags().StringVarP(&f.status, "status", "s", "", "статус")
}

func (a *App) listReports(ctx context.Context, f reportFilter) ([]models.Report, error) {
	reports, err := a.gateway.ListReports(ctx, f.categories)
	if err != nil {
		return nil, err
	}
	return gateway.FilterByStatus(reports, parseStatus(f.status)), nil
}

type nearbyView struct {
	models.Report  `yaml:",inline"`
	DistanceMeters float64 `json:"distance_m" yaml:"distance_m"`
}

func (a *App) reportsListCommand() *cobra.Command {
	var (
		filter reportFilter
		near   string
		radius float64
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Список отчётов",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := a.listReports(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if near == "" {
				return a.printer().print(reports, func(tw *tabwriter.Writer) {
					writeReportTable(tw, reports, nil)
				})
			}

			center, err := geo.ParsePoint(near)
			if err != nil {
				return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
			}
			found := geo.FilterNear(reports, center, radius)
			views := make([]nearbyView, 0, len(found))
			distances := make([]float64, 0, len(found))
			sorted := make([]models.Report, 0, len(found))
			for _, n := range found {
				views = append(views, nearbyView{Report: n.Report, DistanceMeters: n.DistanceMeters})
				distances = append(distances, n.DistanceMeters)
				sorted = append(sorted, n.Report)
			}
			return a.printer().print(views, func(tw *tabwriter.Writer) {
				writeReportTable(tw, sorted, distances)
			})
		},
	}
	filter.bind(cmd)
	cmd.Flags().StringVar(&near, "near", "", "центр поиска \"lat,lng\"")
	cmd.Flags().Float64Var(&radius, "radius", geo.DefaultRadiusMeters, "радиус поиска в метрах")
	return cmd
}

func writeReportTable(tw *tabwriter.Writer, reports []models.Report, distances []float64) {
	header := "ID\tСТАТУС\tКАТЕГОРИЯ\tЗАГОЛОВОК\tКООРДИНАТЫ\tСОЗДАН"
	if distances != nil {
		header += "\tРАССТОЯНИЕ"
	}
	fmt.Fprintln(tw, header)
	for i, r := range reports {
		line := fmt.Sprintf("%s\t%s\t%s\t%s\t%.6f, %.6f\t%s",
			r.ID, r.Status, categoryLabel(r), r.Title, r.Latitude, r.Longitude, r.CreatedAt)
		if distances != nil {
			line += fmt.Sprintf("\t%.0f м", distances[i])
		}
		fmt.Fprintln(tw, line)
	}
}

func categoryLabel(r models.Report) string {
	if r.CategoryName != "" {
		return r.CategoryName
	}
	return r.CategoryID
}

func (a *App) reportsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Показать отчёт",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.gateway.GetReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printReport(report)
		},
	}
}

func (a *App) printReport(r *models.Report) error {
	return a.printer().print(r, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "ID:\t%s\n", r.ID)
		fmt.Fprintf(tw, "Заголовок:\t%s\n", r.Title)
		fmt.Fprintf(tw, "Категория:\t%s\n", categoryLabel(*r))
		fmt.Fprintf(tw, "Статус:\t%s\n", r.Status)
		fmt.Fprintf(tw, "Координаты:\t%.6f, %.6f\n", r.Latitude, r.Longitude)
		fmt.Fprintf(tw, "Создан:\t%s\n", r.CreatedAt)
		if r.ReporterName != nil {
			fmt.Fprintf(tw, "Автор:\t%s\n", *r.ReporterName)
		}
		if r.ImageURL != nil {
			fmt.Fprintf(tw, "Фото:\t%s\n", *r.ImageURL)
		}
		if r.Description != "" {
			fmt.Fprintf(tw, "Описание:\t%s\n", r.Description)
		}
	})
}

func (a *App) reportsCreateCommand() *cobra.Command {
	var (
		input     models.ReportInput
		location  string
		photoPath string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Отправить новый отчёт",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}

			point := geo.DefaultCenter
			if location != "" {
				var err error
				if point, err = geo.ParsePoint(location); err != nil {
					return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
				}
			}
			input.Latitude, input.Longitude = point.Lat, point.Lng

			if photoPath != "" {
				photo, err := storage.LoadPhoto(photoPath, a.cfg.MaxUploadBytes())
				if err != nil {
					return err
				}
				input.Photo = photo
			}

			report, err := a.gateway.CreateReport(cmd.Context(), input)
			if err != nil {
				return err
			}
			return a.printReport(report)
		},
	}
	cmd.Flags().StringVar(&input.Title, "title", "", "заголовок")
	cmd.Flags().StringVar(&input.CategoryID, "category", "", "идентификатор категории")
	cmd.Flags().StringVar(&input.Description, "description", "", "описание")
	cmd.Flags().StringVar(&location, "location", "", "координаты \"lat,lng\" (по умолчанию центр карты)")
	cmd.Flags().StringVar(&photoPath, "photo", "", "путь к фото (jpeg, png, webp, gif)")
	return cmd
}

func (a *App) reportsSetStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status ID STATUS",
		Short: "Изменить статус отчёта (администратор)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}

			report, err := a.gateway.UpdateReportStatus(cmd.Context(), args[0], parseStatus(args[1]))
			if err != nil {
				return err
			}
			if report == nil {
				return a.printer().message(fmt.Sprintf("Статус отчёта %s изменён на %s", args[0], parseStatus(args[1])))
			}
			return a.printReport(report)
		},
	}
}

func (a *App) reportsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Удалить отчёт (администратор)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			if err := a.gateway.DeleteReport(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.printer().message(fmt.Sprintf("Отчёт %s удалён", args[0]))
		},
	}
}

func (a *App) reportsExportCommand() *cobra.Command {
	var (
		filter reportFilter
		format string
		out    string
		title  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Выгрузить отчёты в csv, geojson или pdf (администратор)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			reports, err := a.listReports(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if out == "" {
				out = "reports" + f.Extension()
			}
			opts := export.Options{Title: title, GeneratedAt: a.now()}
			if out == "-" {
				return export.Write(a.out, f, reports, opts)
			}
			if err := writeFile(out, func(w io.Writer) error {
				return export.Write(w, f, reports, opts)
			}); err != nil {
				return err
			}
			a.log.WithField("path", out).WithField("count", len(reports)).Debug("выгрузка записана")
			fmt.Fprintf(a.errOut, "Выгружено отчётов: %d -> %s\n", len(reports), out)
			return nil
		},
	}
	filter.bind(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSV), "формат: csv, geojson, pdf")
	cmd.Flags().StringVar(&out, "out", "", "файл результата (\"-\" означает stdout)")
	cmd.Flags().StringVar(&title, "title", export.DefaultTitle, "заголовок PDF")
	return cmd
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("не удалось создать %s: %w", path, err)
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func parseStatus(raw string) models.ReportStatus {
	return models.ReportStatus(strings.ToLower(strings.TrimSpace(raw)))
}
