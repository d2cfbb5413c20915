package domain

import "time"

type Project struct {
	ID          int64
	OwnerID     int64
	Title       string
	Description string
	CreatedAt   time.Time
}
