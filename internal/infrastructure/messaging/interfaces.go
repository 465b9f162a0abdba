// Package messaging defines interfaces for real-time communication.
package messaging

// Publisher fans page events out to subscribed editors.
type Publisher interface {
	Publish(event PageEvent)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(PageEvent) {}
