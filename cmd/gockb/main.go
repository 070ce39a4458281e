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

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/blinklabs-io/gockb"
	"github.com/blinklabs-io/gockb/client"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	cfgConfig     = "config"
	cfgNetwork    = "network"
	cfgRpcUrl     = "rpc-url"
	cfgTimeout    = "timeout"
	cfgSignerType = "signer"
	cfgPrivateKey = "private-key"
	cfgMnemonic   = "mnemonic"
	cfgPrompt     = "mnemonic-prompt"
	cfgKeyCount   = "key-count"
	cfgDebug      = "debug"
)

type globalFlags struct {
	flagset *flag.FlagSet
	config  *viper.Viper
	network gockb.Network
	logger  *slog.Logger
}

func newGlobalFlags() *globalFlags {
	f := &globalFlags{
		flagset: flag.NewFlagSet(os.Args[0], flag.ExitOnError),
		config:  viper.New(),
	}
	f.flagset.String(cfgConfig, "", "path to an optional config file")
	f.flagset.String(
		cfgNetwork,
		gockb.NetworkTestnet.Name,
		"specifies the network (mainnet or testnet)",
	)
	f.flagset.String(
		cfgRpcUrl,
		"",
		"node RPC URL (defaults to the network's public node)",
	)
	f.flagset.Duration(cfgTimeout, client.DefaultTimeout, "per-request timeout")
	f.flagset.String(
		cfgSignerType,
		"ckb",
		"lock type of the signing keys (ckb, btc or evm)",
	)
	f.flagset.String(
		cfgPrivateKey,
		"",
		"private key in hex or WIF format",
	)
	f.flagset.String(
		cfgMnemonic,
		"",
		"BIP-39 mnemonic to derive keys from",
	)
	f.flagset.Bool(
		cfgPrompt,
		false,
		"read the mnemonic from the terminal",
	)
	f.flagset.Uint32(cfgKeyCount, 1, "number of keys derived from the mnemonic")
	f.flagset.Bool(cfgDebug, false, "enable debug logging")
	// Stop at the subcommand so its flags are left alone
	f.flagset.SetInterspersed(false)
	return f
}

func (f *globalFlags) Parse() error {
	if err := f.flagset.Parse(os.Args[1:]); err != nil {
		return fmt.Errorf("failed to parse command args: %w", err)
	}
	f.config.SetEnvPrefix("GOCKB")
	f.config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	f.config.AutomaticEnv()
	if err := f.config.BindPFlags(f.flagset); err != nil {
		return err
	}
	if path := f.config.GetString(cfgConfig); path != "" {
		f.config.SetConfigFile(path)
		if err := f.config.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	level := slog.LevelInfo
	if f.config.GetBool(cfgDebug) {
		level = slog.LevelDebug
	}
	f.logger = slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	)
	slog.SetDefault(f.logger)
	f.network = gockb.NetworkByName(f.config.GetString(cfgNetwork))
	if f.network.Name == gockb.NetworkInvalid.Name {
		return fmt.Errorf("invalid network specified: %s", f.config.GetString(cfgNetwork))
	}
	return nil
}

func (f *globalFlags) newClient() (*client.RPCClient, error) {
	options := []client.RPCClientOptionFunc{
		client.WithNetwork(f.network),
		client.WithTimeout(f.config.GetDuration(cfgTimeout)),
		client.WithLogger(f.logger),
	}
	if url := f.config.GetString(cfgRpcUrl); url != "" {
		options = append(options, client.WithUrl(url))
	}
	return client.NewRPCClient(options...)
}

type subcommand struct {
	name  string
	usage string
	run   func(*globalFlags, []string) error
}

var subcommands = []subcommand{
	{"address", "print the addresses of the configured keys", runAddress},
	{"balance", "print the free capacity of an address", runBalance},
	{"transfer", "send capacity to an address", runTransfer},
	{"build", "build a transfer and write it to an envelope file", runBuild},
	{"sign", "sign an envelope file", runSign},
	{"send", "submit a signed envelope file", runSend},
	{"sign-message", "sign a message", runSignMessage},
	{"verify-message", "verify a message signature", runVerifyMessage},
}

func usage(f *globalFlags) {
	fmt.Printf("Usage: %s [global flags] <subcommand> [flags]\n\nSubcommands:\n", os.Args[0])
	for _, cmd := range subcommands {
		fmt.Printf("  %-16s %s\n", cmd.name, cmd.usage)
	}
	fmt.Printf("\nGlobal flags (also read from GOCKB_* environment variables):\n")
	f.flagset.PrintDefaults()
}

func main() {
	f := newGlobalFlags()
	if err := f.Parse(); err != nil {
		fmt.Printf("%s\n", err)
		os.Exit(1)
	}
	if f.flagset.NArg() == 0 {
		usage(f)
		os.Exit(1)
	}
	for _, cmd := range subcommands {
		if cmd.name != f.flagset.Arg(0) {
			continue
		}
		start := time.Now()
		if err := cmd.run(f, f.flagset.Args()[1:]); err != nil {
			fmt.Printf("ERROR: %s\n", err)
			os.Exit(1)
		}
		f.logger.Debug("done", "subcommand", cmd.name, "elapsed", time.Since(start))
		return
	}
	fmt.Printf("Unknown subcommand: %s\n", f.flagset.Arg(0))
	os.Exit(1)
}
