package model

import (
	"testing"
	"time"
)

func TestOrderStatusAtLeast(t *testing.T) {
	tests := []struct {
		status OrderStatus
		other  OrderStatus
		want   bool
	}{
		{OrderStatusUploaded, OrderStatusUploaded, true},
		{OrderStatusUploaded, OrderStatusPaid, false},
		{OrderStatusPaid, OrderStatusPaid, true},
		{OrderStatusReady, OrderStatusPaid, true},
		{OrderStatusDelivered, OrderStatusUploaded, true},
		{OrderStatusRejected, OrderStatusUploaded, false},
		{OrderStatusPaid, OrderStatusRejected, false},
	}
	for _, tt := range tests {
		if got := tt.status.AtLeast(tt.other); got != tt.want {
			t.Fatalf("%s AtLeast %s = %v, want %v", tt.status, tt.other, got, tt.want)
		}
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusUploaded, OrderStatusPaid, OrderStatusReady} {
		if s.Terminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
	for _, s := range []OrderStatus{OrderStatusDelivered, OrderStatusRejected} {
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want OrderStatus
	}{
		{"uploaded", OrderStatusUploaded},
		{"paid", OrderStatusPaid},
		{"ready", OrderStatusReady},
		{"delivered", OrderStatusDelivered},
		{"rejected", OrderStatusRejected},
		{"pending", OrderStatusUploaded},
		{"in_progress", OrderStatusPaid},
		{"garbage", OrderStatusUploaded},
	}
	for _, tt := range tests {
		if got := NormalizeStatus(tt.raw); got != tt.want {
			t.Fatalf("NormalizeStatus(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestTouchStrictlyIncreases(t *testing.T) {
	now := time.Now()
	order := Order{UpdatedAt: now}

	order.Touch(now)
	if !order.UpdatedAt.After(now) {
		t.Fatalf("expected updated at to advance past %s, got %s", now, order.UpdatedAt)
	}

	prev := order.UpdatedAt
	order.Touch(now.Add(-time.Hour))
	if !order.UpdatedAt.After(prev) {
		t.Fatalf("expected updated at to advance for stale clock, got %s", order.UpdatedAt)
	}

	prev = order.UpdatedAt
	later := now.Add(time.Second)
	order.Touch(later)
	if !order.UpdatedAt.Equal(later) {
		t.Fatalf("expected updated at %s, got %s", later, order.UpdatedAt)
	}
	if !order.UpdatedAt.After(prev) {
		t.Fatal("expected updated at to advance")
	}
}

func TestClampRating(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-3, 0},
		{0, 0},
		{4, 4},
		{5, 5},
		{9, 5},
	}
	for _, tt := range tests {
		if got := ClampRating(tt.in); got != tt.want {
			t.Fatalf("ClampRating(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFileRefEmpty(t *testing.T) {
	if !(FileRef{}).Empty() {
		t.Fatal("zero FileRef should be empty")
	}
	if (FileRef{Name: "dump.bin", URL: "/api/files/dump.bin", Size: 12}).Empty() {
		t.Fatal("populated FileRef should not be empty")
	}
}
