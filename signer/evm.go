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
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/blinklabs-io/gockb/client"
	"github.com/blinklabs-io/gockb/ledger"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// EvmSigner signs for Omnilock in Ethereum mode with personal_sign messages
type EvmSigner struct {
	*sighashSigner
}

func NewEvmSigner(
	c client.Client,
	keys []KeyProvider,
	options ...SignerOptionFunc,
) (*EvmSigner, error) {
	s, err := newSighashSigner(c, evmVariant{}, keys, options...)
	if err != nil {
		return nil, err
	}
	return &EvmSigner{sighashSigner: s}, nil
}

// EvmAddress returns the 20-byte account address of pub
func EvmAddress(pub *secp256k1.PublicKey) []byte {
	return keccak256(pub.SerializeUncompressed()[1:])[12:]
}

type evmVariant struct{}

func (evmVariant) signerType() SignerType { return SignerTypeEvm }

func (evmVariant) signType() SignType { return SignTypeEvmPersonal }

func (evmVariant) identity(pub *secp256k1.PublicKey) string {
	return "0x" + hex.EncodeToString(EvmAddress(pub))
}

func (evmVariant) lockScript(c client.Client, pub *secp256k1.PublicKey) (ledger.Script, error) {
	return omniLockScript(c, OmniLockAuthEthereum, EvmAddress(pub))
}

func (evmVariant) cellDeps(c client.Client) ([]ledger.CellDep, error) {
	return omniLockCellDeps(c)
}

func (evmVariant) lockSize() int { return omniLockWitnessLockSize }

func (evmVariant) signDigest(
	ctx context.Context,
	key KeyProvider,
	digest ledger.Hash,
) ([]byte, error) {
	sig, err := key.SignRecoverable(ctx, EthereumMessageHash(digest[:]))
	if err != nil {
		return nil, err
	}
	return OmniLockWitnessLock(sig), nil
}

func (evmVariant) signMessage(
	ctx context.Context,
	key KeyProvider,
	message []byte,
) (string, error) {
	sig, err := key.SignRecoverable(ctx, EthereumMessageHash(message))
	if err != nil {
		return "", err
	}
	sig[64] += 27
	return "0x" + hex.EncodeToString(sig), nil
}

func recoverEvmMessage(message []byte, signature string) (*secp256k1.PublicKey, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	if len(sig) != RecoverableSignatureSize {
		return nil, ErrInvalidSignature
	}
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	return recoverPublicKey(sig, EthereumMessageHash(message))
}
