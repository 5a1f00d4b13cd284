package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/eventsync/internal/common"
	"github.com/dmitrijs2005/eventsync/internal/logging"
	"github.com/dmitrijs2005/eventsync/internal/server"
	"github.com/dmitrijs2005/eventsync/internal/server/auth"
	"github.com/dmitrijs2005/eventsync/internal/server/config"
	"github.com/dmitrijs2005/eventsync/internal/server/models"
	"github.com/dmitrijs2005/eventsync/internal/server/services"
)

// EventService is the part of services.EventService the CLI drives.
type EventService interface {
	Get(ctx context.Context, id string) (*models.Event, error)
	Delete(ctx context.Context, id string, event *models.Event, confirm services.Confirmer) (*services.DeleteResult, error)
	BatchUpdateAttendance(ctx context.Context, seriesID, participantID string, status models.AttendanceStatus) (int, error)
}

type Sweeper interface {
	RunOnce(ctx context.Context) (int, error)
}

type App struct {
	events      EventService
	sweeper     Sweeper
	secret      []byte
	tokenTTL    time.Duration
	reader      *bufio.Reader
	out         io.Writer
	interactive bool
	closeFn     func() error
}

// NewApp opens the configured store and builds the services.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, cfg.LogLevel)

	comps, err := server.Build(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		events:      comps.Events,
		sweeper:     comps.Sweeper,
		secret:      []byte(cfg.SecretKey),
		tokenTTL:    cfg.TokenValidityDuration,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		interactive: stdinIsTerminal(),
		closeFn:     comps.Close,
	}, nil
}

func (a *App) Close() error {
	if a.closeFn == nil {
		return nil
	}
	return a.closeFn()
}

// Run executes one command, or starts the prompt when args is empty.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.repl(ctx)
	}
	return a.exec(ctx, args[0], args[1:])
}

func (a *App) exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "delete":
		if len(args) != 1 {
			return errors.New("usage: delete <id>")
		}
		return a.delete(ctx, args[0])
	case "attendance":
		if len(args) != 3 {
			return errors.New("usage: attendance <series> <participant> <pending|joined|declined>")
		}
		return a.attendance(ctx, args[0], args[1], models.AttendanceStatus(args[2]))
	case "sweep":
		return a.sweep(ctx)
	case "token":
		if len(args) < 1 || len(args) > 2 {
			return errors.New("usage: token <user-id> [name]")
		}
		name := ""
		if len(args) == 2 {
			name = args[1]
		}
		return a.token(args[0], name)
	case "help":
		fmt.Fprintln(a.out, "Available commands: delete, attendance, sweep, token, exit")
		return nil
	}
	return fmt.Errorf("unknown command: %s", cmd)
}

func (a *App) repl(ctx context.Context) error {
	fmt.Fprintln(a.out, "eventctl (type 'help' for commands)")
	for {
		fmt.Fprint(a.out, "eventctl> ")
		line, err := a.reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) > 0 {
			switch parts[0] {
			case "exit", "quit":
				fmt.Fprintln(a.out, "Bye!")
				return nil
			}
			if cmdErr := a.exec(ctx, parts[0], parts[1:]); cmdErr != nil {
				fmt.Fprintf(a.out, "Error: %v\n", cmdErr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (a *App) delete(ctx context.Context, id string) error {
	event, err := a.events.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}
	}

	res, err := a.events.Delete(ctx, id, event, NewTerminalConfirmer(a.reader, a.out, a.interactive))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted %d document(s)\n", res.Deleted)
	return nil
}

func (a *App) attendance(ctx context.Context, seriesID, participantID string, status models.AttendanceStatus) error {
	n, err := a.events.BatchUpdateAttendance(ctx, seriesID, participantID, status)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "updated %d occurrence(s)\n", n)
	return nil
}

func (a *App) sweep(ctx context.Context) error {
	n, err := a.sweeper.RunOnce(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "archived %d event(s)\n", n)
	return nil
}

func (a *App) token(userID, name string) error {
	tok, err := auth.GenerateToken(userID, name, a.secret, a.tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, tok)
	return nil
}

// PositionalArgs drops "-flag value" and "-flag=value" pairs, leaving the
// command and its operands. Flags are consumed by the config loader.
func PositionalArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") {
			if !strings.Contains(arg, "=") && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
			}
			continue
		}
		out = append(out, arg)
	}
	return out
}
