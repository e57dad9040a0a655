// Command admin is the moderation CLI: it works against the same database as
// the server and runs status changes through the complaint workflow.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"estatehub/backend/internal/complaint"
	"estatehub/backend/internal/config"
	"estatehub/backend/internal/localization"
	"estatehub/backend/internal/models"
	"estatehub/backend/internal/session"
	"estatehub/backend/internal/storage"
	"estatehub/backend/internal/telegram"

	"github.com/spf13/pflag"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const usage = `Usage: admin [flags] <command> [args]

Commands:
  complaints                   list complaints (use --status to filter)
  resolve-complaint <id>       mark a pending complaint as RESOLVED
  reject-complaint <id>        mark a pending complaint as REJECTED
  stats                        print the moderation dashboard as JSON
  ban <user_id>                block a user
  unban <user_id>              unblock a user
  promote <user_id>            grant the ADMIN role

Flags:
`

type app struct {
	store      *storage.Service
	complaints *complaint.Service
	actor      session.Actor
	out        *os.File
}

func main() {
	flags := pflag.NewFlagSet("admin", pflag.ContinueOnError)
	asUser := flags.String("as", "", "id of the ADMIN account performing the action")
	status := flags.String("status", "", "status filter for the complaints command")
	page := flags.Int("page", 1, "page for list commands")
	limit := flags.Int("limit", config.DefaultPageSize, "page size for list commands")
	notify := flags.Bool("notify", true, "send Telegram notifications when a token is configured")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	args := flags.Args()
	if len(args) == 0 {
		flags.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	store := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	localizer, err := localization.NewLocalizer()
	if err != nil {
		log.Fatalf("failed to load translations: %v", err)
	}

	var notifier telegram.Notifier = telegram.NopNotifier{}
	if *notify && cfg.TelegramToken != "" {
		bot, err := telegram.NewBotService(cfg.TelegramToken, store, nil)
		if err != nil {
			log.Printf("WARNING: Telegram is unavailable, continuing without notifications: %v", err)
		} else {
			notifier = telegram.NewBotNotifier(bot.Sender)
		}
	}

	a := &app{
		store:      store,
		complaints: complaint.NewService(store, notifier, localizer),
		out:        os.Stdout,
	}

	ctx := context.Background()
	if err := a.run(ctx, *asUser, args, *status, *page, *limit); err != nil {
		log.Fatalf("%s: %v", args[0], err)
	}
}

func (a *app) run(ctx context.Context, asUser string, args []string, status string, page, limit int) error {
	command := args[0]
	needArg := func() (string, error) {
		if len(args) != 2 {
			return "", fmt.Errorf("usage: admin %s <id>", command)
		}
		return args[1], nil
	}

	switch command {
	case "complaints", "resolve-complaint", "reject-complaint", "stats":
		actor, err := a.admin(ctx, asUser)
		if err != nil {
			return err
		}
		a.actor = actor
	}

	switch command {
	case "complaints":
		result, err := a.complaints.List(ctx, a.actor, models.ComplaintStatus(status), page, limit)
		if err != nil {
			return err
		}
		for _, c := range result.Items {
			fmt.Fprintf(a.out, "%s\t%s\t%s\tpost=%s\tby=%s\n", c.ID, c.Status, c.Reason, c.PostID, c.UserID)
		}
		fmt.Fprintf(a.out, "page %d, %d of %d\n", result.Page, len(result.Items), result.Total)
		return nil
	case "resolve-complaint", "reject-complaint":
		id, err := needArg()
		if err != nil {
			return err
		}
		next := models.ComplaintResolved
		if command == "reject-complaint" {
			next = models.ComplaintRejected
		}
		c, err := a.complaints.Transition(ctx, a.actor, id, next)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Complaint %s is now %s.\n", c.ID, c.Status)
		return nil
	case "stats":
		d, err := a.complaints.Dashboard(ctx, a.actor)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case "ban", "unban":
		id, err := needArg()
		if err != nil {
			return err
		}
		if err := a.setBlocked(ctx, id, command == "ban"); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "User %s has been %sned.\n", id, command)
		return nil
	case "promote":
		id, err := needArg()
		if err != nil {
			return err
		}
		user, err := a.store.GetUserByID(ctx, id)
		if err != nil {
			return err
		}
		user.Role = models.RoleAdmin
		if err := a.store.UpdateUser(ctx, user); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "User %s is now an admin.\n", id)
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// admin resolves the --as account; moderation commands act on its behalf.
func (a *app) admin(ctx context.Context, userID string) (session.Actor, error) {
	if userID == "" {
		return session.Actor{}, errors.New("--as <admin user id> is required")
	}
	user, err := a.store.GetUserByID(ctx, userID)
	if err != nil {
		return session.Actor{}, fmt.Errorf("load admin %s: %w", userID, err)
	}
	if !user.IsAdmin() {
		return session.Actor{}, fmt.Errorf("user %s is not an admin", userID)
	}
	return session.Actor{UserID: user.ID, Role: user.Role}, nil
}

func (a *app) setBlocked(ctx context.Context, userID string, blocked bool) error {
	user, err := a.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	user.IsBlocked = blocked
	return a.store.UpdateUser(ctx, user)
}
