package optiq

import (
	"context"
	"time"
)

// DefaultProviderName is the fallback data-provider name when neither the
// call nor the resource names one.
const DefaultProviderName = "default"

// UpdateResponse is the data provider's answer to an update call.
type UpdateResponse struct {
	Data Record
}

// DataProvider performs the authoritative update against a backend.
// Providers should return *DataProviderError so error notifications can
// carry a status code, but any error is forwarded to the caller unchanged.
// The orchestrator calls Update at most once per mutation.
type DataProvider interface {
	Update(ctx context.Context, resource string, id any, values Record, meta Meta) (*UpdateResponse, error)
}

// NotificationType classifies notifications handed to the Notifier.
type NotificationType string

const (
	NotificationSuccess  NotificationType = "success"
	NotificationError    NotificationType = "error"
	NotificationProgress NotificationType = "progress"
)

// Notification is dispatched on mutation settle, plus once at the start of
// an undoable mutation (Type=progress) carrying the undo window and a
// Cancel function.
type Notification struct {
	Key         string
	Message     string
	Description string
	Type        NotificationType

	// Undoable mutations only.
	UndoTimeout time.Duration
	Cancel      func() bool
}

// Notifier surfaces mutation outcomes to the user. Owned externally.
type Notifier interface {
	Open(Notification)
}

type NopNotifier struct{}

func (NopNotifier) Open(Notification) {}

// LiveEvent is published after a successful mutation so other clients can
// react to the change.
type LiveEvent struct {
	Channel string
	Type    string
	Payload LivePayload
	Date    time.Time
	Meta    Meta
}

type LivePayload struct {
	IDs []any
}

// LivePublisher pushes live events to interested parties. Owned externally.
type LivePublisher interface {
	Publish(LiveEvent)
}

type NopLivePublisher struct{}

func (NopLivePublisher) Publish(LiveEvent) {}

// AuthHook is consulted when a data provider rejects a mutation, before the
// error notification goes out. Owned externally.
type AuthHook interface {
	OnError(ctx context.Context, err error) error
}

type NopAuthHook struct{}

func (NopAuthHook) OnError(context.Context, error) error { return nil }
