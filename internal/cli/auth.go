package cli

import (
	"bufio"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/lapor-client/internal/models"
	"github.com/ignatzorin/lapor-client/internal/pkg/apperror"
)

func (a *App) loginCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Войти и сохранить сессию",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = a.readSecret("Пароль: "); err != nil {
					return err
				}
			}

			user, err := a.session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			a.log.WithField("user_id", user.ID).Debug("вход выполнен")
			return a.printer().print(user, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Вход выполнен: %s <%s> (%s)\n", user.Name, user.Email, user.Role)
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email")
	cmd.Flags().StringVar(&password, "password", "", "пароль (если не указан, читается из stdin)")
	return cmd
}

func (a *App) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Выйти и удалить сохранённую сессию",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(); err != nil {
				return err
			}
			return a.printer().message("Сессия удалена")
		},
	}
}

type whoamiView struct {
	User           *models.User `json:"user" yaml:"user"`
	Admin          bool         `json:"admin" yaml:"admin"`
	TokenExpiresAt string       `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	TokenExpired   bool         `json:"token_expired,omitempty" yaml:"token_expired,omitempty"`
}

func (a *App) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Показать текущего пользователя",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}

			view := whoamiView{User: a.store.CurrentUser(), Admin: a.store.IsAdmin()}
			if exp, ok := a.store.TokenExpiry(); ok {
				view.TokenExpiresAt = exp.UTC().Format(time.RFC3339)
				view.TokenExpired = !exp.After(a.now())
			}

			return a.printer().print(view, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "ID:\t%s\n", view.User.ID)
				fmt.Fprintf(tw, "Имя:\t%s\n", view.User.Name)
				fmt.Fprintf(tw, "Email:\t%s\n", view.User.Email)
				fmt.Fprintf(tw, "Роль:\t%s\n", view.User.Role)
				if view.User.Phone != nil {
					fmt.Fprintf(tw, "Телефон:\t%s\n", *view.User.Phone)
				}
				if view.TokenExpiresAt != "" {
					suffix := ""
					if view.TokenExpired {
						suffix = " (истёк)"
					}
					fmt.Fprintf(tw, "Токен до:\t%s%s\n", view.TokenExpiresAt, suffix)
				}
			})
		},
	}
}

func (a *App) registerCommand() *cobra.Command {
	var input models.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Создать аккаунт",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input.Password == "" {
				var err error
				if input.Password, err = a.readSecret("Пароль: "); err != nil {
					return err
				}
			}

			result, err := a.session.Register(cmd.Context(), input)
			if err != nil {
				return err
			}
			msg := result.Message
			if msg == "" {
				msg = "Аккаунт создан, теперь можно войти"
			}
			return a.printer().print(result, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, msg)
			})
		},
	}
	cmd.Flags().StringVar(&input.Name, "name", "", "имя")
	cmd.Flags().StringVar(&input.Email, "email", "", "email")
	cmd.Flags().StringVar(&input.Password, "password", "", "пароль (если не указан, читается из stdin)")
	cmd.Flags().StringVar(&input.Phone, "phone", "", "телефон (необязательно)")
	return cmd
}

// readSecret читает одну строку из stdin.
func (a *App) readSecret(prompt string) (string, error) {
	fmt.Fprint(a.errOut, prompt)
	// EOF без перевода строки допустим
	line, _ := bufio.NewReader(a.in).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", apperror.New(apperror.ErrCodeValidation, "пароль не указан")
	}
	return line, nil
}
