package engine

import (
	"fmt"

	"github.com/project-samarth/samarth/internal/dataset"
	"github.com/project-samarth/samarth/internal/parser"
)

// Registry maps each intent to exactly one handler. It is built once at
// process start and read-only afterwards; it performs no analytics
// itself.
type Registry struct {
	handlers map[parser.Intent]Handler
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[parser.Intent]Handler)}
}

// Register binds a handler to an intent. Rebinding an intent is a
// configuration fault, not a silent overwrite.
func (r *Registry) Register(intent parser.Intent, h Handler) error {
	if intent == parser.IntentUnknown {
		return UnroutableIntentError{Intent: intent}
	}
	if _, exists := r.handlers[intent]; exists {
		return DuplicateIntentError{Intent: intent}
	}
	r.handlers[intent] = h
	return nil
}

// Handlers returns the bound intents, for startup sanity logging
func (r *Registry) Handlers() map[parser.Intent]string {
	out := make(map[parser.Intent]string, len(r.handlers))
	for intent, h := range r.handlers {
		out[intent] = h.Name()
	}
	return out
}

// Dispatch routes an intent to its handler and normalizes failures.
// Unknown or unbound intents yield NoHandlerError; any panic or error
// inside a handler comes back as HandlerExecutionError carrying the
// intent tag, except InvalidParamsError which passes through for the
// transport layer to phrase.
func (r *Registry) Dispatch(intent parser.Intent, params parser.Params, snap *dataset.Snapshot) (env *Envelope, err error) {
	h, ok := r.handlers[intent]
	if intent == parser.IntentUnknown || !ok {
		return nil, NoHandlerError{Intent: intent}
	}

	defer func() {
		if rec := recover(); rec != nil {
			env = nil
			err = HandlerExecutionError{Intent: intent, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	env, err = h.Execute(params, snap)
	if err != nil {
		if _, ok := err.(InvalidParamsError); ok {
			return nil, err
		}
		return nil, HandlerExecutionError{Intent: intent, Err: err}
	}

	env.Debug = &Debug{Intent: intent.String(), Params: params}
	return env, nil
}
