package database

import (
	"strings"
	"testing"
)

func TestDSN(t *testing.T) {
	got := dsn("app", "secret", "db.internal", "3306", "eventbook")
	// loc is omitted from the DSN because UTC is the driver default.
	for _, want := range []string{
		"app:secret@tcp(db.internal:3306)/eventbook",
		"parseTime=true",
		"charset=utf8mb4",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("dsn %q missing %q", got, want)
		}
	}
}

func TestDSNWithoutPassword(t *testing.T) {
	got := dsn("app", "", "localhost", "3306", "eventbook")
	if !strings.HasPrefix(got, "app@tcp(localhost:3306)/eventbook") {
		t.Fatalf("dsn %q should omit the password separator", got)
	}
}
