package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/lapor-client/internal/pkg/apperror"
	"github.com/ignatzorin/lapor-client/internal/storage"
	"github.com/ignatzorin/lapor-client/internal/validation"
)

func (a *App) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Настройки клиента",
	}
	cmd.AddCommand(a.configShowCommand(), a.configSetAPIURLCommand(), a.configClearAPIURLCommand())
	return cmd
}

type configView struct {
	APIURL        string `json:"api_url" yaml:"api_url"`
	Overridden    bool   `json:"api_url_overridden" yaml:"api_url_overridden"`
	FixtureMode   bool   `json:"fixture_mode" yaml:"fixture_mode"`
	Contract      string `json:"contract" yaml:"contract"`
	Env           string `json:"env" yaml:"env"`
	StorageDriver string `json:"storage_driver" yaml:"storage_driver"`
	StoragePath   string `json:"storage_path,omitempty" yaml:"storage_path,omitempty"`
	LoggedIn      bool   `json:"logged_in" yaml:"logged_in"`
}

func (a *App) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Показать текущие настройки",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view := configView{
				APIURL:        a.gateway.BaseURL(),
				Overridden:    a.endpoint.Overridden,
				FixtureMode:   a.gateway.FixtureMode(),
				Contract:      string(a.gateway.Contract().Version),
				Env:           a.cfg.Env,
				StorageDriver: a.cfg.StorageDriver,
				StoragePath:   a.cfg.StoragePath,
				LoggedIn:      a.store.IsLoggedIn(),
			}
			return a.printer().print(view, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "API:\t%s\n", view.APIURL)
				fmt.Fprintf(tw, "Переопределён:\t%t\n", view.Overridden)
				fmt.Fprintf(tw, "Режим фикстур:\t%t\n", view.FixtureMode)
				fmt.Fprintf(tw, "Контракт:\t%s\n", view.Contract)
				fmt.Fprintf(tw, "Окружение:\t%s\n", view.Env)
				fmt.Fprintf(tw, "Хранилище:\t%s %s\n", view.StorageDriver, view.StoragePath)
				fmt.Fprintf(tw, "Сессия:\t%t\n", view.LoggedIn)
			})
		},
	}
}

func (a *App) configSetAPIURLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-api-url URL",
		Short: "Сохранить адрес сервиса (отключает режим фикстур)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.TrimRight(strings.TrimSpace(args[0]), "/")
			if err := validation.ValidateBaseURL(raw); err != nil {
				return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
			}
			if err := a.storage.Set(storage.KeyAPIURL, raw); err != nil {
				return fmt.Errorf("не удалось сохранить api_url: %w", err)
			}
			return a.printer().message("Адрес сервиса сохранён: " + raw)
		},
	}
}

func (a *App) configClearAPIURLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-api-url",
		Short: "Удалить сохранённый адрес сервиса",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.storage.Remove(storage.KeyAPIURL); err != nil {
				return fmt.Errorf("не удалось удалить api_url: %w", err)
			}
			return a.printer().message("Адрес сервиса сброшен")
		},
	}
}
