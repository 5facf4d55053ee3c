package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/family-chores-api/internal/config"
	"github.com/yukikurage/family-chores-api/internal/constants"
	"github.com/yukikurage/family-chores-api/internal/database"
	"github.com/yukikurage/family-chores-api/internal/logging"
	"github.com/yukikurage/family-chores-api/internal/repository"
	"github.com/yukikurage/family-chores-api/internal/services"
	"gorm.io/gorm"
)

// appContext is handed to every command's Run method.
type appContext struct {
	ctx context.Context
	db  *gorm.DB
	log *logrus.Logger
}

func (a *appContext) familyService() (*services.FamilyService, error) {
	// No command sends mail; a service without a sender only logs.
	mailer, err := services.NewEmailService(a.ctx, "", "", "", "", a.log)
	if err != nil {
		return nil, err
	}
	return services.NewFamilyService(
		repository.NewFamilyRepository(a.db),
		repository.NewUserRepository(a.db),
		mailer,
		a.log,
	), nil
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(app *appContext) error {
	return database.Migrate(app.db, app.log)
}

type SeedDefaultsCmd struct {
	Family uint64 `help:"Family ID to seed." required:""`
	Locale string `help:"Catalog locale (en, es, fr)." default:"${default_locale}"`
}

func (c *SeedDefaultsCmd) Run(app *appContext) error {
	svc, err := app.familyService()
	if err != nil {
		return err
	}
	tasks, gifts, err := svc.SeedDefaults(app.ctx, c.Family, c.Locale)
	if err != nil {
		return err
	}
	fmt.Printf("Seeded %d tasks and %d gifts into family %d\n", tasks, gifts, c.Family)
	return nil
}

type WipeFamilyCmd struct {
	Family uint64 `help:"Family ID to delete." required:""`
	Yes    bool   `help:"Confirm the deletion." short:"y"`
}

func (c *WipeFamilyCmd) Run(app *appContext) error {
	if !c.Yes {
		return fmt.Errorf("refusing to wipe family %d without --yes", c.Family)
	}
	svc, err := app.familyService()
	if err != nil {
		return err
	}
	if err := svc.DeleteFamily(app.ctx, c.Family); err != nil {
		return err
	}
	fmt.Printf("Family %d deleted\n", c.Family)
	return nil
}

type GrantPremiumCmd struct {
	Family uint64 `help:"Family ID to upgrade." required:""`
	Days   int    `help:"Days of premium to add." default:"30"`
}

func (c *GrantPremiumCmd) Run(app *appContext) error {
	svc := services.NewSubscriptionService(repository.NewFamilyRepository(app.db), app.log)
	sub, err := svc.Extend(app.ctx, c.Family, c.Days)
	if err != nil {
		return err
	}
	fmt.Printf("Family %d is premium until %s\n", c.Family, sub.PremiumUntil.Format("2006-01-02 15:04 MST"))
	return nil
}

var CLI struct {
	Version kong.VersionFlag

	Migrate      MigrateCmd      `cmd:"" help:"Create or update the database schema."`
	SeedDefaults SeedDefaultsCmd `cmd:"" help:"Append the default task and gift catalog to a family."`
	WipeFamily   WipeFamilyCmd   `cmd:"" help:"Delete a family with its members, catalog and history."`
	GrantPremium GrantPremiumCmd `cmd:"" help:"Extend a family's ad-free period."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("famctl"),
		kong.Description("Administrative commands for the family chores API. Reads the same environment as the server."),
		kong.UsageOnError(),
		kong.Vars{
			"version":        "v0.1.0",
			"default_locale": constants.DefaultLocale,
		},
	)

	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	if err := database.Connect(cfg, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	app := &appContext{
		ctx: context.Background(),
		db:  database.GetDB(),
		log: log,
	}

	if err := kctx.Run(app); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
