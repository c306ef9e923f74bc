package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ignatzorin/lapor-client/internal/config"
	"github.com/ignatzorin/lapor-client/internal/gateway"
	"github.com/ignatzorin/lapor-client/internal/logger"
	"github.com/ignatzorin/lapor-client/internal/pkg/apperror"
	"github.com/ignatzorin/lapor-client/internal/session"
	"github.com/ignatzorin/lapor-client/internal/storage"
)

// Deps всё, что CLI получает от cmd/lapor. Глобальных экземпляров нет.
type Deps struct {
	Config   *config.Config
	Endpoint config.Endpoint
	Storage  storage.Storage
	Gateway  *gateway.Client
	Session  *session.Manager
	Out      io.Writer
	Err      io.Writer
	In       io.Reader
	Now      func() time.Time
}

// App адаптер командной строки поверх Session Store и Data Gateway.
type App struct {
	cfg      *config.Config
	endpoint config.Endpoint
	storage  storage.Storage
	gateway  *gateway.Client
	session  *session.Manager
	store    *session.Store
	out      io.Writer
	errOut   io.Writer
	in       io.Reader
	now      func() time.Time
	log      *logrus.Entry

	output  string
	verbose bool
}

func New(d Deps) *App {
	app := &App{
		cfg:      d.Config,
		endpoint: d.Endpoint,
		storage:  d.Storage,
		gateway:  d.Gateway,
		session:  d.Session,
		store:    d.Session.Store(),
		out:      d.Out,
		errOut:   d.Err,
		in:       d.In,
		now:      d.Now,
		log:      logger.WithComponent("cli"),
	}
	if app.out == nil {
		app.out = os.Stdout
	}
	if app.errOut == nil {
		app.errOut = os.Stderr
	}
	if app.in == nil {
		app.in = os.Stdin
	}
	if app.now == nil {
		app.now = time.Now
	}
	return app
}

// Execute запускает команду и возвращает код выхода.
// Ошибка печатается одной строкой, повторов нет.
func (a *App) Execute(ctx context.Context, args []string) int {
	root := a.RootCommand()
	root.SetArgs(args)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(a.errOut, "ошибка: %s\n", apperror.Message(err))
		a.log.WithError(err).Debug("команда завершилась с ошибкой")
		return 1
	}
	return 0
}

// RootCommand собирает дерево команд.
func (a *App) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "lapor",
		Short:         "Клиент сервиса Lapor Desu",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.verbose {
				a.log.Logger.SetLevel(logrus.DebugLevel)
			}
			return validateOutput(a.output)
		},
	}
	root.PersistentFlags().StringVarP(&a.output, "output", "o", outputTable, "формат вывода: table, json, yaml")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "подробные логи в stderr")

	root.AddCommand(
		a.loginCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.registerCommand(),
		a.categoriesCommand(),
		a.statsCommand(),
		a.reportsCommand(),
		a.configCommand(),
	)
	return root
}

// requireLogin пускает только вошедших пользователей.
func (a *App) requireLogin() error {
	if !a.store.IsLoggedIn() {
		return apperror.ErrNotLoggedIn
	}
	return nil
}

// requireAdmin пускает только администратора.
func (a *App) requireAdmin() error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if !a.store.IsAdmin() {
		return apperror.ErrForbidden
	}
	return nil
}

func (a *App) printer() printer {
	return printer{w: a.out, format: a.output}
}
