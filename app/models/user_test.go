package models

import (
	"testing"
	"time"
)

func TestCreateUserHashesPassword(t *testing.T) {
	u, err := CreateUser("moritz", "moritz@example.com", "secret123")
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if u.Password == "secret123" {
		t.Fatal("password stored in plain text")
	}
	if !u.CheckPassword("secret123") {
		t.Error("correct password rejected")
	}
	if u.CheckPassword("wrong") {
		t.Error("wrong password accepted")
	}
	if u.Role != ROLE_USER || u.Status != STATUS_ACTIVE {
		t.Errorf("unexpected defaults: role=%s status=%s", u.Role, u.Status)
	}
}

func TestCreateUserValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"short username", "ab", "a@example.com", "secret123"},
		{"invalid email", "moritz", "not-an-email", "secret123"},
		{"short password", "moritz", "a@example.com", "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CreateUser(tt.username, tt.email, tt.password); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"no due date", Task{Status: TaskStatusTodo}, false},
		{"due yesterday", Task{Status: TaskStatusTodo, DueDate: &yesterday}, true},
		{"due tomorrow", Task{Status: TaskStatusTodo, DueDate: &tomorrow}, false},
		{"done task never overdue", Task{Status: TaskStatusDone, DueDate: &yesterday}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.IsOverdue(now); got != tt.want {
				t.Errorf("IsOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}
