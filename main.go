package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	analyticsapp "energy-audit/internal/analytics/application"
	apihttp "energy-audit/internal/api/http"
	"energy-audit/internal/audit"
	auditsapp "energy-audit/internal/audits/application"
	audits "energy-audit/internal/audits/domain"
	auditsmemory "energy-audit/internal/audits/infrastructure/memory"
	auditsrepo "energy-audit/internal/audits/infrastructure/postgres"
	"energy-audit/internal/config"
	energyapp "energy-audit/internal/energy/application"
	energy "energy-audit/internal/energy/domain"
	energymemory "energy-audit/internal/energy/infrastructure/memory"
	energyrepo "energy-audit/internal/energy/infrastructure/postgres"
	mdapp "energy-audit/internal/masterdata/application"
	masterdata "energy-audit/internal/masterdata/domain"
	mdmemory "energy-audit/internal/masterdata/infrastructure/memory"
	masterdatarepo "energy-audit/internal/masterdata/infrastructure/postgres"
	"energy-audit/internal/observability/logging"
	"energy-audit/internal/observability/metrics"
	"energy-audit/internal/reporting"
	"energy-audit/migrations"
)

// repositories groups the storage backends the services run on.
type repositories struct {
	organizations masterdata.OrganizationRepository
	companies     masterdata.CompanyRepository
	users         masterdata.UserRepository
	news          masterdata.NewsRepository
	projects      auditProjects
	documents     audits.DocumentRepository
	records       energy.Repository
	auditLog      audit.Store
}

// auditProjects is a project repository that can also answer company usage.
type auditProjects interface {
	audits.ProjectRepository
	masterdata.CompanyUsage
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatalw("service stopped", "error", err)
	}
}

func run(cfg config.Config, logger *logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	directory, err := mdapp.NewDirectoryService(repos.organizations, repos.companies, repos.users, repos.news, repos.projects,
		mdapp.WithAuditLogger(repos.auditLog), mdapp.WithLogger(logger))
	if err != nil {
		return err
	}
	if cfg.Bootstrap.Enabled() {
		if err := directory.SeedSuperuser(ctx, cfg.Bootstrap.Username, cfg.Bootstrap.Password); err != nil {
			return fmt.Errorf("seed superuser: %w", err)
		}
	}
	projects, err := auditsapp.NewProjectService(repos.projects, repos.documents, auditsapp.Directory{
		Organizations: repos.organizations,
		Companies:     repos.companies,
		Users:         repos.users,
	}, repos.auditLog, logger)
	if err != nil {
		return err
	}
	records, err := energyapp.NewRecordService(repos.records, repos.projects, repos.auditLog, logger)
	if err != nil {
		return err
	}
	dashboards, err := analyticsapp.NewDashboardService(repos.projects, repos.records, repos.organizations, repos.users, repos.news, logger)
	if err != nil {
		return err
	}
	formatter, err := reporting.NewFormatter(cfg.ReportLocale)
	if err != nil {
		return err
	}

	secret := []byte(cfg.JWTSecret)
	api, err := apihttp.NewHandler(apihttp.Services{
		Directory:  directory,
		Projects:   projects,
		Records:    records,
		Dashboards: dashboards,
		Assembler:  reporting.NewAssembler(formatter),
	}, secret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           apihttp.NewServerHandler(api, secret, directory, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Infow("http listening", "addr", cfg.HTTPAddr, "storage", cfg.Storage, "locale", formatter.Locale())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	logger.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStorage(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, func(), error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warnw("using in-memory storage; data is lost on restart")
		metrics.Init(nil, logger)
		return repositories{
			organizations: mdmemory.NewOrganizationRepository(),
			companies:     mdmemory.NewCompanyRepository(),
			users:         mdmemory.NewUserRepository(),
			news:          mdmemory.NewNewsRepository(),
			projects:      auditsmemory.NewProjectRepository(),
			documents:     auditsmemory.NewDocumentRepository(),
			records:       energymemory.NewRecordRepository(),
			auditLog:      audit.NewMemoryLogger(),
		}, func() {}, nil
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return repositories{}, nil, fmt.Errorf("db open: %w", err)
	}
	closeDB := func() { _ = db.Close() }
	if err := db.PingContext(ctx); err != nil {
		closeDB()
		return repositories{}, nil, fmt.Errorf("db ping: %w", err)
	}
	if err := migrations.Apply(ctx, db); err != nil {
		closeDB()
		return repositories{}, nil, err
	}
	metrics.Init(db, logger)
	return repositories{
		organizations: masterdatarepo.NewOrganizationRepository(db),
		companies:     masterdatarepo.NewCompanyRepository(db),
		users:         masterdatarepo.NewUserRepository(db),
		news:          masterdatarepo.NewNewsRepository(db),
		projects:      auditsrepo.NewProjectRepository(db),
		documents:     auditsrepo.NewDocumentRepository(db),
		records:       energyrepo.NewRecordRepository(db),
		auditLog:      audit.NewRepository(db),
	}, closeDB, nil
}
