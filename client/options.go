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
	"log/slog"
	"net/http"
	"time"

	"github.com/blinklabs-io/gockb"
)

const (
	DefaultTimeout  = 30 * time.Second
	DefaultCacheTTL = 60 * time.Second
	DefaultPageSize = 100
)

type RPCClientOptionFunc func(*RPCClient)

// WithNetwork selects the network whose known scripts are loaded. The network RpcUrl
// is used unless WithUrl is also given
func WithNetwork(network gockb.Network) RPCClientOptionFunc {
	return func(c *RPCClient) {
		c.network = network
	}
}

func WithUrl(url string) RPCClientOptionFunc {
	return func(c *RPCClient) {
		c.url = url
	}
}

// WithTimeout sets the per-request timeout. A zero value disables it
func WithTimeout(timeout time.Duration) RPCClientOptionFunc {
	return func(c *RPCClient) {
		c.timeout = timeout
	}
}

func WithCacheTTL(ttl time.Duration) RPCClientOptionFunc {
	return func(c *RPCClient) {
		c.cacheTTL = ttl
	}
}

func WithHttpClient(httpClient *http.Client) RPCClientOptionFunc {
	return func(c *RPCClient) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger *slog.Logger) RPCClientOptionFunc {
	return func(c *RPCClient) {
		c.logger = logger
	}
}
