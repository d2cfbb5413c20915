package service

import (
	"errors"
	"strings"

	"taskhub/internal/apperr"
	dom "taskhub/internal/domain"

	"github.com/jackc/pgx/v5"
)

var (
	ErrInvalidCredentials = apperr.New(apperr.Unauthenticated, "invalid credentials", nil)
	ErrAccountTaken       = apperr.New(apperr.Conflict, "username or email already in use", nil)
)

// notFound turns a missing (or foreign) row into a 404 for what; other
// errors pass through.
func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFoundf("%s not found", what)
	}
	return err
}

func requireTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperr.InvalidField("title", "title is required")
	}
	return cleanText("title", title)
}

// cleanText rejects text Postgres cannot store.
func cleanText(field, s string) (string, error) {
	if !dom.StorableText(s) {
		return "", apperr.InvalidField(field, field+" must be valid UTF-8 without NUL characters")
	}
	return s, nil
}

// statusOr validates raw, using def when raw is blank.
func statusOr(raw string, def dom.Status) (dom.Status, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	return parseStatus(raw)
}

func parseStatus(raw string) (dom.Status, error) {
	st, ok := dom.ParseStatus(strings.TrimSpace(raw))
	if !ok {
		return "", apperr.InvalidField("status", "status must be one of "+dom.StatusChoices())
	}
	return st, nil
}

func priorityOr(raw string, def dom.Priority) (dom.Priority, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	return parsePriority(raw)
}

func parsePriority(raw string) (dom.Priority, error) {
	p, ok := dom.ParsePriority(strings.TrimSpace(raw))
	if !ok {
		return "", apperr.InvalidField("priority", "priority must be one of "+dom.PriorityChoices())
	}
	return p, nil
}
