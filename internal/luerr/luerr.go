// Package luerr defines the error kinds shared across LuCLI's core
// components (§7), along with a typed error carrying the instance
// name, offending manifest key path, and a remedy hint so every
// command surfaces actionable context instead of a bare message.
package luerr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error kinds from §7. It is not a Go error
// type itself; Error wraps a Kind with context.
type Kind string

// The error kinds named in §7.
const (
	UnknownEnvironment        Kind = "UnknownEnvironment"
	MissingVariable           Kind = "MissingVariable"
	MissingSecret             Kind = "MissingSecret"
	NameConflict              Kind = "NameConflict"
	InstanceBusy              Kind = "InstanceBusy"
	PortUnavailable           Kind = "PortUnavailable"
	RuntimeIncompatible       Kind = "RuntimeIncompatible"
	EngineDownloadFailed      Kind = "EngineDownloadFailed"
	DependencyFetchFailed     Kind = "DependencyFetchFailed"
	DependencyIntegrityFailed Kind = "DependencyIntegrityFailed"
	MaterializationFailed     Kind = "MaterializationFailed"
	StartTimeout              Kind = "StartTimeout"
	StopFailed                Kind = "StopFailed"
	ManifestInvalid           Kind = "ManifestInvalid"
	IOError                   Kind = "IOError"
)

// Error is the typed error surfaced by every core component.
type Error struct {
	Kind     Kind
	Instance string // instance name, if known
	KeyPath  string // offending manifest key path, if applicable
	Remedy   string // suggested CLI remedy, if any
	Err      error  // underlying cause, if any
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Instance != "" {
		msg += fmt.Sprintf(" (instance %q)", e.Instance)
	}
	if e.KeyPath != "" {
		msg += fmt.Sprintf(" [%s]", e.KeyPath)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Remedy != "" {
		msg += " — " + e.Remedy
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, luerr.UnknownEnvironment)-style matching by
// comparing Kind against a target *Error, such as the sentinel KindOf
// returns.
func (e *Error) Is(target error) bool {
	var k *Error
	if errors.As(target, &k) {
		return e.Kind == k.Kind
	}
	return false
}

// New constructs an Error of the given kind with optional context.
func New(kind Kind, opts ...Option) *Error {
	e := &Error{Kind: kind}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Option configures an Error built by New.
type Option func(*Error)

// WithInstance sets the instance name.
func WithInstance(name string) Option { return func(e *Error) { e.Instance = name } }

// WithKeyPath sets the offending manifest key path.
func WithKeyPath(path string) Option { return func(e *Error) { e.KeyPath = path } }

// WithRemedy sets a suggested CLI remedy.
func WithRemedy(remedy string) Option { return func(e *Error) { e.Remedy = remedy } }

// WithCause wraps an underlying error.
func WithCause(err error) Option { return func(e *Error) { e.Err = err } }

// KindOf lets callers write errors.Is(err, luerr.KindOf(luerr.UnknownEnvironment))
// without constructing a full Error by hand.
func KindOf(k Kind) error { return &Error{Kind: k} }
