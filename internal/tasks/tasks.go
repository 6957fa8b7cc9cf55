// Package tasks holds the units of deferred work executed by the
// worker pool. Tasks report progress and outcomes exclusively by
// writing notifications for the user they run on behalf of.
package tasks

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/laurfratila/microblog/internal/mailer"
	"github.com/laurfratila/microblog/internal/metrics"
	"github.com/laurfratila/microblog/internal/models"
	"github.com/laurfratila/microblog/internal/queue"
	"github.com/laurfratila/microblog/internal/snowflake"
)

// Env carries the collaborators a task may use.
type Env struct {
	DB     *gorm.DB
	Mailer mailer.Mailer

	// Secret signs password reset tokens; BaseURL is the public
	// address reset links point at.
	Secret  []byte
	BaseURL string

	// Metrics observes the tasks. May be nil.
	Metrics *metrics.Collector
}

// Register wires every task into the worker.
func Register(w *queue.Worker, env *Env) {
	w.Handle("export_posts", env.ExportPosts)
	w.Handle("reset_password", env.ResetPassword)
}

// Args is the serialised argument set shared by the built in tasks.
type Args struct {
	UserID snowflake.ID `json:"user_id,string"`
}

func (e *Env) user(job *queue.Job) (*models.User, error) {
	var args Args
	if err := json.Unmarshal(job.Args, &args); err != nil {
		return nil, err
	}
	return models.NewUsers(e.DB).FindByID(args.UserID)
}

// notify writes a notification for the user and records the write.
func (e *Env) notify(user *models.User, name string, payload map[string]any) error {
	if _, err := models.NewNotifications(e.DB).Notify(user, name, payload); err != nil {
		return err
	}
	e.Metrics.RecordNotificationWrite()
	return nil
}

// NotifyFailure records a task_failed notification for the user a job
// ran on behalf of. Best effort: if the job's arguments don't identify
// a user there is nobody to tell.
func (e *Env) NotifyFailure(job *queue.Job, taskErr error) {
	var args Args
	if err := json.Unmarshal(job.Args, &args); err != nil {
		return
	}
	user, err := models.NewUsers(e.DB).FindByID(args.UserID)
	if err != nil {
		return
	}
	e.notify(user, "task_failed", map[string]any{
		"job_id": job.ID,
		"task":   job.Name,
		"error":  taskErr.Error(),
	})
}

// ExportPosts mails the user an archive of all their posts, reporting
// progress through the export_posts notification as it goes.
func (e *Env) ExportPosts(ctx context.Context, job *queue.Job) error {
	user, err := e.user(job)
	if err != nil {
		return err
	}
	if err := e.notify(user, "export_posts", progress(0)); err != nil {
		return err
	}

	type exported struct {
		Body      string    `json:"body"`
		Timestamp time.Time `json:"timestamp"`
	}

	var total int64
	if err := e.DB.Model(&models.Post{}).Where("author_id = ?", user.ID).Count(&total).Error; err != nil {
		return err
	}

	var archive []exported
	var posts []models.Post
	err = e.DB.Where("author_id = ?", user.ID).FindInBatches(&posts, 100, func(tx *gorm.DB, batch int) error {
		for _, post := range posts {
			archive = append(archive, exported{
				Body:      post.Body,
				Timestamp: post.CreatedAt(),
			})
		}
		if total > 0 {
			if err := e.notify(user, "export_posts", progress(len(archive)*100/int(total))); err != nil {
				return err
			}
		}
		return nil
	}).Error
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return err
	}
	err = e.Mailer.Send(ctx, &mailer.Message{
		To:      []string{user.Email},
		Subject: "Your post archive",
		Text:    string(payload),
		HTML:    "<p>Your exported posts are attached below.</p><pre>" + string(payload) + "</pre>",
	})
	if err != nil {
		return err
	}

	return e.notify(user, "export_posts", progress(100))
}

// ResetPassword mails the user a signed link which lets them choose a
// new password within the next ten minutes.
func (e *Env) ResetPassword(ctx context.Context, job *queue.Job) error {
	user, err := e.user(job)
	if err != nil {
		return err
	}
	token, err := models.NewUsers(e.DB).ResetPasswordToken(user, e.Secret, 10*time.Minute)
	if err != nil {
		return err
	}
	link := e.BaseURL + "/reset_password?token=" + token
	return e.Mailer.Send(ctx, &mailer.Message{
		To:      []string{user.Email},
		Subject: "Reset your password",
		Text:    "To reset your password visit: " + link,
		HTML:    `<p>To reset your password <a href="` + link + `">click here</a>.</p>`,
	})
}

func progress(pct int) map[string]any {
	if pct > 100 {
		pct = 100
	}
	return map[string]any{"progress": pct}
}
