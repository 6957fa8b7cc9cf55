package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/laurfratila/microblog/internal/httpx"
	"github.com/laurfratila/microblog/internal/models"
	"github.com/laurfratila/microblog/internal/to"
)

var errTooManyPolls = errors.New("polling too fast")

// NotificationsIndex returns the caller's notifications newer than the
// since cursor, oldest first, along with the cursor to pass next time.
// Clients append the returned items to their local view and persist
// the cursor between polls.
func NotificationsIndex(env *Env, w http.ResponseWriter, r *http.Request) error {
	user, err := env.authenticate(r)
	if err != nil {
		return err
	}
	if !env.polls.allow(user.ID) {
		return httpx.Error(http.StatusTooManyRequests, errTooManyPolls)
	}
	var cursor int64
	if s := r.URL.Query().Get("since"); s != "" {
		cursor, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			return httpx.Error(http.StatusBadRequest, err)
		}
	}
	items, cursor, err := models.NewNotifications(env.DB).PollSince(user, cursor)
	if err != nil {
		return mapError(err)
	}
	notifications := make([]*Notification, 0, len(items))
	for i := range items {
		notifications = append(notifications, serialiseNotification(&items[i]))
	}
	return to.JSON(w, map[string]any{
		"notifications": notifications,
		"cursor":        cursor,
	})
}
