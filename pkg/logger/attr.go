package logger

import (
	"log/slog"
	"time"
)

// Error returns an empty Attr for a nil error so callers can pass it unconditionally.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

func ProductID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("product_id", id)
}

func Email(email string) slog.Attr {
	return slog.String("email", email)
}

func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Event(name string) slog.Attr {
	return slog.String("event", name)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}
