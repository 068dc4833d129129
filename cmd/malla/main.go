package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/malla/internal/catalog"
	"github.com/jask/malla/internal/config"
	"github.com/jask/malla/internal/curriculum"
	"github.com/jask/malla/internal/database"
	"github.com/jask/malla/internal/database/repository"
	"github.com/jask/malla/internal/logger"
	"github.com/jask/malla/internal/prefs"
	"github.com/jask/malla/internal/progress"
	"github.com/jask/malla/internal/service"
	"github.com/jask/malla/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// without a log file the logger keeps discarding
	if logFile, err := logger.OpenFile(cfg.Log.Path); err == nil {
		defer logFile.Close()
		logger.Configure(logger.Config{
			Level:  logger.ParseLevel(cfg.Log.Level),
			Pretty: cfg.Log.Pretty,
			Output: logFile,
		})
	}

	var notice string
	b, err := openBackend(cfg)
	if err != nil {
		logger.Error().Err(err).Str("backend", cfg.Storage.Backend).Msg("open storage")
		if b, err = openFileBackend(""); err != nil {
			log.Fatalf("storage: %v", err)
		}
		notice = "Database unavailable; progress is kept in " + b.location + "."
	}
	defer b.close()

	key := cfg.Storage.Key
	if key == "" {
		key = progress.DefaultKey(cfg.Catalog.Source)
	}
	logger.Info().
		Str("catalog", cfg.Catalog.Source).
		Str("backend", cfg.Storage.Backend).
		Str("key", key).
		Str("store", b.location).
		Msg("starting")

	load := func(ctx context.Context) (tui.Session, error) {
		catalogLog := logger.WithField("component", "catalog")
		courses, err := (&catalog.Loader{Log: &catalogLog}).Load(ctx, cfg.Catalog.Source)
		if err != nil {
			logger.Error().Err(err).Msg("load catalog")
			return tui.Session{}, err
		}
		reg := curriculum.NewRegistry(courses,
			curriculum.WithStore(progress.New(b.kv, key)),
			curriculum.WithTermOrder(cfg.TermOrder()),
			curriculum.WithNoneLabel(cfg.UI.NoneLabel),
			curriculum.WithLogger(logger.WithField("component", "registry")),
		)
		if dups := reg.Duplicates(); len(dups) > 0 {
			logger.Warn().Interface("ids", dups).Msg("duplicate course ids skipped")
		}
		s := tui.Session{Progress: &service.ProgressService{
			Registry:    reg,
			History:     b.history,
			Maintenance: b.maintenance,
			Key:         key,
			Log:         logger.WithField("component", "progress"),
		}, Notice: notice}
		if err := reg.Load(ctx); err != nil {
			logger.Warn().Err(err).Msg("stored progress unreadable; starting from pending")
			s.Notice = "Stored progress could not be read; all courses start as pending."
		}
		logger.Info().Int("courses", reg.Len()).Msg("catalog loaded")
		return s, nil
	}

	p := tea.NewProgram(tui.New(ctx, cfg, load), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

type backend struct {
	kv          progress.KV
	history     *repository.HistoryRepo
	maintenance *service.MaintenanceService
	db          *sql.DB
	location    string
}

func (b backend) close() {
	if b.db != nil {
		_ = b.db.Close()
	}
}

// openBackend prepares the progress store selected by storage.backend.
// Only sqlite keeps a change history.
func openBackend(cfg config.Config) (backend, error) {
	if cfg.Storage.Backend == config.BackendFile {
		path := ""
		if strings.HasSuffix(cfg.Storage.Path, ".json") {
			path = cfg.Storage.Path
		}
		return openFileBackend(path)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		return backend{}, fmt.Errorf("mkdir db dir: %w", err)
	}
	logger.Debug().Str("db", cfg.Storage.Path).Str("migrations", cfg.Storage.Migrations).Msg("running migrations")
	if err := database.RunMigrations(cfg.Storage.Path, cfg.Storage.Migrations); err != nil {
		return backend{}, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.Storage.Path)
	if err != nil {
		return backend{}, fmt.Errorf("open db: %w", err)
	}
	return backend{
		kv:          repository.NewKVRepo(db),
		history:     repository.NewHistoryRepo(db),
		maintenance: &service.MaintenanceService{DB: db},
		db:          db,
		location:    cfg.Storage.Path,
	}, nil
}

func openFileBackend(path string) (backend, error) {
	fs, err := prefs.NewFileStore(path)
	if err != nil {
		return backend{}, err
	}
	return backend{kv: fs, location: fs.Path()}, nil
}
