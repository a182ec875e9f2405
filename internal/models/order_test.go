package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestValidStatus(t *testing.T) {
	valid := []OrderStatus{
		OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled,
	}
	for _, s := range valid {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false, want true", s)
		}
	}

	invalid := []OrderStatus{"", "pending", "COMPLETED", "ASSIGNED", "UNKNOWN"}
	for _, s := range invalid {
		if ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = true, want false", s)
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"pending to processing", OrderStatusPending, OrderStatusProcessing, true},
		{"pending to cancelled", OrderStatusPending, OrderStatusCancelled, true},
		{"pending to delivered skips steps", OrderStatusPending, OrderStatusDelivered, false},
		{"processing to shipped", OrderStatusProcessing, OrderStatusShipped, true},
		{"shipped to delivered", OrderStatusShipped, OrderStatusDelivered, true},
		{"delivered is terminal", OrderStatusDelivered, OrderStatusShipped, false},
		{"cancelled is terminal", OrderStatusCancelled, OrderStatusProcessing, false},
		{"cancelled after delivered", OrderStatusDelivered, OrderStatusCancelled, false},
		{"same status allowed", OrderStatusShipped, OrderStatusShipped, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestTerminal(t *testing.T) {
	if !Terminal(OrderStatusDelivered) || !Terminal(OrderStatusCancelled) {
		t.Error("DELIVERED and CANCELLED must be terminal")
	}
	if Terminal(OrderStatusPending) || Terminal(OrderStatusProcessing) || Terminal(OrderStatusShipped) {
		t.Error("non-final statuses must not be terminal")
	}
}

func TestOrderOperator(t *testing.T) {
	mcpID := uuid.New()
	partnerID := uuid.New()
	customerID := uuid.New()
	strangerID := uuid.New()

	order := &Order{
		MCPID:      mcpID,
		CustomerID: customerID,
	}

	if !order.Operator(mcpID) {
		t.Error("MCP must be an operator of its order")
	}
	if order.Operator(partnerID) {
		t.Error("unassigned partner must not be an operator")
	}
	if order.Operator(customerID) {
		t.Error("customer must not be an operator")
	}

	order.PickupPartnerID = &partnerID
	if !order.Operator(partnerID) {
		t.Error("assigned partner must be an operator")
	}

	if !order.Participant(customerID) {
		t.Error("customer must be a participant")
	}
	if order.Participant(strangerID) {
		t.Error("stranger must not be a participant")
	}
}

func TestOrderToResponse(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	completed := now.Add(time.Hour)

	order := &Order{
		ID:            uuid.New(),
		Status:        OrderStatusDelivered,
		ScheduledTime: now,
		CompletedTime: &completed,
		CurrentLocation: &Location{
			Latitude:  23.3441,
			Longitude: 85.3096,
			UpdatedAt: now,
		},
		StatusHistory: []StatusChange{
			{Status: OrderStatusPending, Timestamp: now},
			{Status: OrderStatusDelivered, Timestamp: completed},
		},
		CreatedAt: now,
	}

	resp := order.ToResponse()
	if resp.Status != "DELIVERED" {
		t.Errorf("Status = %s, want DELIVERED", resp.Status)
	}
	if resp.CompletedTime == nil || *resp.CompletedTime != completed.Format(time.RFC3339) {
		t.Errorf("CompletedTime = %v, want %s", resp.CompletedTime, completed.Format(time.RFC3339))
	}
	if resp.CurrentLocation == nil {
		t.Fatal("CurrentLocation missing in response")
	}
	if resp.CurrentLocation.Latitude != 23.3441 || resp.CurrentLocation.Longitude != 85.3096 {
		t.Errorf("location mismatch: %+v", resp.CurrentLocation)
	}
	if len(resp.StatusHistory) != 2 {
		t.Errorf("history length = %d, want 2", len(resp.StatusHistory))
	}
}
