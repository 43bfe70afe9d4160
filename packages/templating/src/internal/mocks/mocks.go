package mocks

import (
	"ngt-go/packages/templating/src/event"
	"ngt-go/packages/templating/src/observe"
)

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -destination=mock_services.go -package=mocks ngt-go/packages/templating/src/internal/mocks Observer,Handler

// Aliases of the mocked interfaces for mockgen's reflect mode.
type (
	Observer = observe.Observer
	Handler  = event.Handler
)

var (
	_ observe.Observer = (*MockObserver)(nil)
	_ event.Handler    = (*MockHandler)(nil)
)
