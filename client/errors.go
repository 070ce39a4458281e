// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package client

import (
	"errors"
	"fmt"
)

var (
	ErrIdMismatch      = errors.New("response id does not match request id")
	ErrTimeout         = errors.New("request timed out")
	ErrRpc             = errors.New("rpc error")
	ErrUnknownScript   = errors.New("unknown script")
	ErrAmbiguousResult = errors.New("ambiguous result")
	ErrCellNotFound    = errors.New("cell not found")
	ErrClientClosed    = errors.New("client is closed")
)

// RpcError is an error reported by the node
type RpcError struct {
	Code    int64
	Message string
	Data    string
}

func (e *RpcError) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("rpc error %d: %s: %s", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (*RpcError) Is(target error) bool {
	return target == ErrRpc
}

// IdMismatchError is returned when a response carries a different id than its request
type IdMismatchError struct {
	Expected uint64
	Actual   uint64
}

func (e *IdMismatchError) Error() string {
	return fmt.Sprintf(
		"response id mismatch: expected %d, got %d",
		e.Expected,
		e.Actual,
	)
}

func (*IdMismatchError) Is(target error) bool {
	return target == ErrIdMismatch
}

// UnknownScriptError indicates a known-script lookup miss
type UnknownScriptError struct {
	Network string
	Name    string
}

func (e *UnknownScriptError) Error() string {
	return fmt.Sprintf(
		"unknown script %q on network %q",
		e.Name,
		e.Network,
	)
}

func (*UnknownScriptError) Is(target error) bool {
	return target == ErrUnknownScript
}

// TimeoutError wraps the context error of an expired request
type TimeoutError struct {
	Method string
	Err    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request %s timed out: %v", e.Method, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

func (*TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
