package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/chama-dev/chama/backend/internal/config"
	"github.com/chama-dev/chama/backend/internal/registration"
	"github.com/chama-dev/chama/backend/internal/repository"
	"github.com/chama-dev/chama/backend/internal/session"
	"github.com/chama-dev/chama/backend/internal/storage"
	"github.com/chama-dev/chama/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const placeholderDocument = "%PDF-1.4\n% seeded registration document\n"

func main() {
	var op int
	var n int
	var groupID string

	flag.IntVar(&op, "op", 0, "operation to run (1: register random groups, 2: record random contributions for a group)")
	flag.IntVar(&n, "n", 5, "number of groups or contributions per member")
	flag.StringVar(&groupID, "group-id", "", "group receiving the contributions")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("cannot load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("cannot create database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("cannot connect to database", "error", err)
		return
	}

	if err := repository.RunMigrations(dbpool); err != nil {
		logger.Error("cannot run migrations", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("no operation given")
	case 1:
		if n <= 0 {
			slog.Error("number of groups must be positive")
			return
		}

		docs, err := storage.NewDocumentStore(cfg)
		if err != nil {
			slog.Error("cannot create document store", slog.String("error", err.Error()))
			return
		}

		// seeded officers are not invited, nobody reads those inboxes
		wf, err := registration.NewWorkflow(
			registration.Policy{MinSecretLength: cfg.Credential.MinLength},
			repo,
			nil,
			repo,
		)
		if err != nil {
			slog.Error("cannot create registration workflow", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			docID, err := docs.StoreDocument(context.Background(), "registration.pdf", "application/pdf", strings.NewReader(placeholderDocument))
			if err != nil {
				slog.Error("cannot store document", slog.String("error", err.Error()))
				continue
			}

			in := utils.GenerateRandomRegistration(cfg.Seed.Password, cfg.Seed.EmailDomain, docID)
			res, err := wf.Register(context.Background(), session.New(), in)
			if err != nil {
				slog.Error("cannot register group", slog.String("error", err.Error()))
				continue
			}

			slog.Info("group registered",
				slog.String("group_id", res.Group.ID),
				slog.String("name", res.Group.Name),
				slog.String("chairman_email", res.Chairman.Email),
			)
			cnt++
		}

		slog.Info("groups registered", slog.Int("count", cnt))
	case 2:
		if groupID == "" || n <= 0 {
			slog.Error("a group id and a positive count are required")
			return
		}

		members, err := repo.GetIdentitiesByGroupID(context.Background(), groupID)
		if err != nil {
			slog.Error("cannot load group members", slog.String("error", err.Error()))
			return
		}
		if len(members) == 0 {
			slog.Error("group has no members", slog.String("group_id", groupID))
			return
		}

		cnt := 0
		for _, m := range members {
			for i := 0; i < n; i++ {
				at := time.Now().UTC().AddDate(0, -(n - i), 0)
				if err := repo.RecordContribution(context.Background(), m.ID, utils.GenerateRandomContribution(), at); err != nil {
					slog.Error("cannot record contribution", slog.String("identity_id", m.ID), slog.String("error", err.Error()))
					continue
				}
				cnt++
			}
		}

		slog.Info("contributions recorded", slog.Int("count", cnt))
	default:
		slog.Error("unknown operation", slog.Int("op", op))
	}
}
