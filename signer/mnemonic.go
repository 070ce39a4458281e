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

package signer

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"
)

// Registered coin type of the ledger
const CoinType uint32 = 309

var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// NewMnemonic returns a new 12-word mnemonic
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// DerivationPath returns the external key path m/44'/309'/0'/0/index
func DerivationPath(index uint32) string {
	return fmt.Sprintf("m/44'/%d'/0'/0/%d", CoinType, index)
}

// KeysFromMnemonic derives count consecutive external keys from a BIP-39 mnemonic
func KeysFromMnemonic(mnemonic string, passphrase string, count uint32) ([]*LocalKey, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMnemonic, err)
	}
	// The network parameters only affect extended key serialization, which isn't used
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, err
	}
	external := master
	for _, idx := range []uint32{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + CoinType,
		hdkeychain.HardenedKeyStart,
		0,
	} {
		external, err = external.Derive(idx)
		if err != nil {
			return nil, err
		}
	}
	ret := make([]*LocalKey, 0, count)
	for i := range count {
		child, err := external.Derive(i)
		if err != nil {
			return nil, fmt.Errorf("derive %s: %w", DerivationPath(i), err)
		}
		privateKey, err := child.ECPrivKey()
		if err != nil {
			return nil, err
		}
		ret = append(ret, NewLocalKey(privateKey))
	}
	return ret, nil
}
