package models

import (
	"context"
	"errors"
	"net"
	"strings"
)

// ErrorKind classifies every failure the client can surface.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindTransport
	KindUnauthorized
	KindSymbolNotFound
	KindNoValidSymbols
	KindNoValidQuotes
	KindInvalidPeriod
	KindInvalidInterval
	KindBackend
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindSymbolNotFound:
		return "symbol_not_found"
	case KindNoValidSymbols:
		return "no_valid_symbols"
	case KindNoValidQuotes:
		return "no_valid_quotes"
	case KindInvalidPeriod:
		return "invalid_period"
	case KindInvalidInterval:
		return "invalid_interval"
	case KindBackend:
		return "backend"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// KindFromCode maps a backend error code to a kind. Unrecognised codes are
// KindBackend.
func KindFromCode(code string) ErrorKind {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "SYMBOL_NOT_FOUND":
		return KindSymbolNotFound
	case "NO_VALID_SYMBOLS":
		return KindNoValidSymbols
	case "NO_VALID_QUOTES":
		return KindNoValidQuotes
	case "INVALID_PERIOD":
		return KindInvalidPeriod
	case "INVALID_INTERVAL":
		return KindInvalidInterval
	default:
		return KindBackend
	}
}

// KindedError is implemented by errors that know their kind.
type KindedError interface {
	error
	Kind() ErrorKind
}

// KindOf classifies err, unwrapping as needed.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var ke KindedError
	if errors.As(err, &ke) {
		return ke.Kind()
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTransport
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransport
	}
	return KindUnknown
}
