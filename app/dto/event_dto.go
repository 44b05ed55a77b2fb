package dto

import (
	"time"
)

// TrackEventRequest represents the request body of the public pixel track endpoint
type TrackEventRequest struct {
	AppUUID     string         `json:"app_id" validate:"required,uuid4"`
	EventName   string         `json:"event_name" validate:"required,min=1,max=128"`
	ProductID   *string        `json:"product_id,omitempty" validate:"omitempty,max=128"`
	ProductName *string        `json:"product_name,omitempty" validate:"omitempty,max=512"`
	Value       float64        `json:"value" validate:"omitempty,gte=0"`
	Quantity    int            `json:"quantity" validate:"omitempty,gte=0"`
	CustomData  map[string]any `json:"custom_data,omitempty"`
}

// TrackEventResponse represents the acknowledgement of a tracked event
type TrackEventResponse struct {
	Message   string `json:"message"`
	UUID      string `json:"uuid"`
	Forwarded bool   `json:"forwarded"`
}

// ListEventsRequest represents filter criteria for listing stored events
type ListEventsRequest struct {
	AppUUID   string  `json:"-" validate:"required,uuid4"`
	EventName *string `json:"-" validate:"omitempty,max=128"`
	Limit     int     `json:"-" validate:"omitempty,gte=1,lte=500"`
	Offset    int     `json:"-" validate:"omitempty,gte=0"`
}

// EventResponse represents one stored event in listings
type EventResponse struct {
	UUID        string         `json:"uuid"`
	EventName   string         `json:"event_name"`
	ProductID   *string        `json:"product_id,omitempty"`
	ProductName *string        `json:"product_name,omitempty"`
	Value       float64        `json:"value"`
	Quantity    int            `json:"quantity"`
	CustomData  map[string]any `json:"custom_data,omitempty"`
	Source      string         `json:"source"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ListEventsResponse represents a page of stored events
type ListEventsResponse struct {
	Events []EventResponse `json:"events"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}
