// Seed creates a demo account with projects and tasks for trying out the
// listing parameters locally:
//
//	PG_DSN=... go run ./cmd/seed -email demo@example.com -password demo123 -tasks 40
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"taskhub/internal/apperr"
	"taskhub/internal/config"
	dom "taskhub/internal/domain"
	"taskhub/internal/logging"
	"taskhub/internal/repo"
	"taskhub/internal/service"
	"taskhub/migrations"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

type seedConfig struct {
	PG  config.PGConfig
	Log config.LogConfig
}

func main() {
	username := flag.String("username", "demo", "account username")
	email := flag.String("email", "demo@example.com", "account email")
	password := flag.String("password", "demo123", "account password")
	projects := flag.Int("projects", 3, "projects to create")
	tasks := flag.Int("tasks", 25, "tasks per project")
	flag.Parse()

	var cfg seedConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		logrus.Fatalf("logging: %v", err)
	}

	ctx := context.Background()
	if err := migrations.Up(ctx, cfg.PG.DSN); err != nil {
		log.WithError(err).Fatal("migrate")
	}
	db, err := pgxpool.New(ctx, cfg.PG.DSN)
	if err != nil {
		log.WithError(err).Fatal("pg connect")
	}
	defer db.Close()

	users := service.NewUserService(repo.NewPGUserRepo(db))
	projectSvc := service.NewProjectService(repo.NewPGProjectRepo(db))
	taskSvc := service.NewTaskService(repo.NewPGTaskRepo(db), repo.NewPGProjectRepo(db), repo.NewPGSubtaskRepo(db))

	user, err := users.Register(ctx, *username, *email, *password)
	if apperr.IsCode(err, apperr.Conflict) {
		user, err = users.ValidateCredentials(ctx, *email, *password)
	}
	if err != nil {
		log.WithError(err).Fatal("account")
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	created := 0
	for i := 0; i < *projects; i++ {
		p, err := projectSvc.Create(ctx, user.ID, fmt.Sprintf("Project %d", i+1), "seeded")
		if err != nil {
			log.WithError(err).Fatal("project")
		}
		for j := 0; j < *tasks; j++ {
			in := service.TaskInput{
				Title:     fmt.Sprintf("Task %d.%d", i+1, j+1),
				ProjectID: p.ID,
				Status:    string(dom.Statuses[j%len(dom.Statuses)]),
				Priority:  string(dom.Priorities[(i+j)%len(dom.Priorities)]),
			}
			// Every fourth task has no due date.
			if j%4 != 3 {
				due := today.AddDate(0, 0, j-*tasks/2)
				in.DueDate = &due
			}
			if _, err := taskSvc.Create(ctx, user.ID, in); err != nil {
				log.WithError(err).Fatal("task")
			}
			created++
		}
	}
	log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"email":    user.Email,
		"projects": *projects,
		"tasks":    created,
	}).Info("seeded")
}
