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
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/blinklabs-io/gockb/client"
	"github.com/blinklabs-io/gockb/signer"
	"golang.org/x/term"
)

var errNoKeys = errors.New("no keys configured, use --private-key, --mnemonic or --mnemonic-prompt")

func readMnemonic() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, "Mnemonic: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(string(raw)), " "), nil
}

func (f *globalFlags) loadKeys() ([]signer.KeyProvider, error) {
	if keyStr := f.config.GetString(cfgPrivateKey); keyStr != "" {
		key, err := signer.ParseLocalKey(keyStr)
		if err != nil {
			return nil, err
		}
		return []signer.KeyProvider{key}, nil
	}
	mnemonic := f.config.GetString(cfgMnemonic)
	if mnemonic == "" && f.config.GetBool(cfgPrompt) {
		var err error
		if mnemonic, err = readMnemonic(); err != nil {
			return nil, err
		}
	}
	if mnemonic == "" {
		return nil, errNoKeys
	}
	keys, err := signer.KeysFromMnemonic(mnemonic, "", f.config.GetUint32(cfgKeyCount))
	if err != nil {
		return nil, err
	}
	ret := make([]signer.KeyProvider, 0, len(keys))
	for _, key := range keys {
		ret = append(ret, key)
	}
	return ret, nil
}

func (f *globalFlags) newSigner(c client.Client) (signer.Signer, error) {
	keys, err := f.loadKeys()
	if err != nil {
		return nil, err
	}
	options := []signer.SignerOptionFunc{signer.WithLogger(f.logger)}
	var ret signer.Signer
	switch strings.ToLower(f.config.GetString(cfgSignerType)) {
	case "ckb":
		ret, err = signer.NewCkbSigner(c, keys, options...)
	case "btc":
		ret, err = signer.NewBtcSigner(c, keys, options...)
	case "evm":
		ret, err = signer.NewEvmSigner(c, keys, options...)
	default:
		return nil, fmt.Errorf("unknown signer type: %s", f.config.GetString(cfgSignerType))
	}
	if err != nil {
		return nil, err
	}
	return ret, nil
}
