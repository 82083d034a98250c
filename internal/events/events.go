package events

import (
	"fmt"
	"sync"

	console "cybersite/internal/utils/logger"
)

var log = console.New("EVENTS")

// Event names emitted by the services.
const (
	SubscriberConfirmed    = "subscribers.confirmed"
	SubscriberUnsubscribed = "subscribers.unsubscribed"
	CampaignSent           = "campaigns.sent"
	ResourceDownloaded     = "resources.downloaded"
)

type EventHandler func(interface{})

type EventBus struct {
	handlers map[string][]EventHandler
	mu       sync.RWMutex
	inflight sync.WaitGroup
}

var defaultBus = NewEventBus()

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
	}
}

// On registers a handler for an event
func (bus *EventBus) On(event string, handler EventHandler) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	bus.handlers[event] = append(bus.handlers[event], handler)
	log.Info("Registered handler for event: %s", event)
}

// Emit runs every handler of the event on its own goroutine.
func (bus *EventBus) Emit(event string, data interface{}) {
	bus.mu.RLock()
	handlers := append([]EventHandler(nil), bus.handlers[event]...)
	bus.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	log.Debug("Emitting event: %s", event)

	for _, handler := range handlers {
		bus.inflight.Add(1)
		go func(h EventHandler) {
			defer bus.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					_ = log.Error("Panic in event handler for "+event+": %v", fmt.Errorf("panic: %v", r))
				}
			}()
			h(data)
		}(handler)
	}
}

// Wait blocks until all handlers started so far have returned.
func (bus *EventBus) Wait() {
	bus.inflight.Wait()
}

// Reset drops every registered handler.
func (bus *EventBus) Reset() {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers = make(map[string][]EventHandler)
}

// On Global event functions that use the default event bus
func On(event string, handler EventHandler) {
	defaultBus.On(event, handler)
}

func Emit(event string, data interface{}) {
	defaultBus.Emit(event, data)
}

func Wait() {
	defaultBus.Wait()
}

func Reset() {
	defaultBus.Reset()
}
