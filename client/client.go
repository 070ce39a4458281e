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
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ReneKroon/ttlcache/v2"
	"github.com/blinklabs-io/gockb"
	"github.com/blinklabs-io/gockb/ledger"
	"github.com/go-resty/resty/v2"
	"go.uber.org/atomic"
)

// OutputsValidator selects the node-side acceptance policy for a submitted transaction
type OutputsValidator string

const (
	ValidatorPassthrough          OutputsValidator = "passthrough"
	ValidatorWellKnownScriptsOnly OutputsValidator = "well_known_scripts_only"
)

func (v OutputsValidator) Valid() bool {
	return v == ValidatorPassthrough || v == ValidatorWellKnownScriptsOnly
}

// Client is the node access used by the transaction builder and signers
type Client interface {
	Network() gockb.Network
	KnownScript(name gockb.KnownScript, args []byte) (ledger.Script, error)
	KnownScriptCellDep(name gockb.KnownScript) (ledger.CellDep, error)
	SendTransaction(
		ctx context.Context,
		tx *ledger.Transaction,
		validator OutputsValidator,
	) (ledger.Hash, error)
	GetTransaction(
		ctx context.Context,
		txHash ledger.Hash,
	) (*ledger.TransactionWithStatus, error)
	GetCell(ctx context.Context, outPoint ledger.OutPoint) (*ledger.Cell, error)
	FindCells(
		ctx context.Context,
		key SearchKey,
		order Order,
		limit uint32,
		cursor string,
	) (*CellsPage, error)
	GetCellsCapacity(ctx context.Context, key SearchKey) (uint64, error)
	FindSingletonCellByType(
		ctx context.Context,
		typeScript ledger.Script,
	) (*ledger.Cell, error)
	GetTipBlockNumber(ctx context.Context) (uint64, error)
	GetFeeRate(ctx context.Context) (uint64, error)
}

// KnownScripts resolves known scripts against a fixed network registry
type KnownScripts struct {
	network gockb.Network
}

// NewKnownScripts takes a snapshot of the network's registry
func NewKnownScripts(network gockb.Network) KnownScripts {
	return KnownScripts{network: network.Snapshot()}
}

func (k KnownScripts) Network() gockb.Network {
	return k.network
}

func (k KnownScripts) KnownScriptInfo(name gockb.KnownScript) (gockb.ScriptInfo, error) {
	info, ok := k.network.KnownScripts[name]
	if !ok {
		return gockb.ScriptInfo{}, &UnknownScriptError{
			Network: k.network.Name,
			Name:    string(name),
		}
	}
	return info, nil
}

func (k KnownScripts) KnownScript(name gockb.KnownScript, args []byte) (ledger.Script, error) {
	info, err := k.KnownScriptInfo(name)
	if err != nil {
		return ledger.Script{}, err
	}
	return info.Script(args), nil
}

func (k KnownScripts) KnownScriptCellDep(name gockb.KnownScript) (ledger.CellDep, error) {
	info, err := k.KnownScriptInfo(name)
	if err != nil {
		return ledger.CellDep{}, err
	}
	if info.CellDep == nil {
		return ledger.CellDep{}, fmt.Errorf(
			"%w: %s has no cell dep on network %s",
			ErrUnknownScript,
			name,
			k.network.Name,
		)
	}
	return *info.CellDep, nil
}

// RPCClient is a Client talking JSON-RPC to a node over HTTP
type RPCClient struct {
	KnownScripts
	network    gockb.Network
	url        string
	timeout    time.Duration
	cacheTTL   time.Duration
	httpClient *http.Client
	http       *resty.Client
	cache      *ttlcache.Cache
	nextId     *atomic.Uint64
	closed     *atomic.Bool
	logger     *slog.Logger
}

// NewRPCClient returns a client for the configured network. The network's known-script
// registry is copied at construction, so later changes to it have no effect
func NewRPCClient(options ...RPCClientOptionFunc) (*RPCClient, error) {
	c := &RPCClient{
		network:  gockb.NetworkTestnet,
		timeout:  DefaultTimeout,
		cacheTTL: DefaultCacheTTL,
		nextId:   atomic.NewUint64(0),
		closed:   atomic.NewBool(false),
	}
	for _, option := range options {
		option(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.network.Name == gockb.NetworkInvalid.Name {
		return nil, fmt.Errorf("invalid network")
	}
	if c.url == "" {
		c.url = c.network.RpcUrl
	}
	if c.url == "" {
		return nil, fmt.Errorf("no RPC URL for network %s", c.network.Name)
	}
	c.KnownScripts = NewKnownScripts(c.network)
	if c.httpClient != nil {
		c.http = resty.NewWithClient(c.httpClient)
	} else {
		c.http = resty.New()
	}
	c.cache = ttlcache.NewCache()
	c.cache.SkipTTLExtensionOnHit(true)
	if err := c.cache.SetTTL(c.cacheTTL); err != nil {
		_ = c.cache.Close()
		return nil, err
	}
	return c, nil
}

func (c *RPCClient) Network() gockb.Network {
	return c.KnownScripts.Network()
}

// Close stops the cache expiry worker. The client can't be used afterward
func (c *RPCClient) Close() error {
	if !c.closed.CAS(false, true) {
		return nil
	}
	return c.cache.Close()
}

// ClearCache drops every cached result
func (c *RPCClient) ClearCache() error {
	return c.cache.Purge()
}
