// Copyright (c) 2026 dotandev
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for comparison with errors.Is
var (
	// ErrWasmInvalid covers every decode failure; the specific sentinels
	// below are wrapped into it so callers can match either level.
	ErrWasmInvalid        = errors.New("invalid wasm module")
	ErrTruncated          = errors.New("truncated module")
	ErrBadMagic           = errors.New("bad magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported wasm version")
	ErrMalformedSection   = errors.New("malformed section")

	// ErrConfig marks operator-input mistakes (bad symbol table, bad
	// implicit-call spec, bad pattern). These abort the whole run.
	ErrConfig = errors.New("invalid configuration")

	// ErrNoMatch reports an empty result set under active filters. It is
	// surfaced only through the process exit code, never printed.
	ErrNoMatch = errors.New("no matching call chains")

	ErrUnauthorized = errors.New("unauthorized")
)

// Wrap functions for consistent error wrapping

func WrapTruncated(msg string) error {
	return fmt.Errorf("%w: %w: %s", ErrWasmInvalid, ErrTruncated, msg)
}

func WrapBadMagic(msg string) error {
	return fmt.Errorf("%w: %w: %s", ErrWasmInvalid, ErrBadMagic, msg)
}

func WrapUnsupportedVersion(version uint32) error {
	return fmt.Errorf("%w: %w: 0x%08x", ErrWasmInvalid, ErrUnsupportedVersion, version)
}

func WrapMalformedSection(msg string) error {
	return fmt.Errorf("%w: %w: %s", ErrWasmInvalid, ErrMalformedSection, msg)
}

func WrapConfigError(msg string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrConfig, msg, err)
}

func WrapValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrConfig, msg)
}

func WrapCliArgumentRequired(flag string) error {
	return fmt.Errorf("%w: required flag --%s not set", ErrConfig, flag)
}

// IsDecodeError reports whether err is any decode failure. Decode errors
// are fatal for a single input file but do not abort a multi-file batch.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrWasmInvalid)
}

// Is and As re-export the stdlib helpers so callers need only one errors
// import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func New(text string) error {
	return errors.New(text)
}
