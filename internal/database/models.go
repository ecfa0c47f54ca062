package database

import "time"

// Chat is a Telegram chat that completed password authorization.
type Chat struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	AuthorizedAt time.Time `db:"authorized_at"`
}

// Request records one media request issued through the bot.
type Request struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	ChatID      int64     `db:"chat_id"`
	Kind        string    `db:"kind"`
	Title       string    `db:"title"`
	ExternalID  string    `db:"external_id"`
	RequestedAt time.Time `db:"requested_at"`
}
